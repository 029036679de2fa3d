package markup

import (
	"fmt"
	"io"
	"iter"
)

// TokenStream is a pull cursor over a token sequence with one token of
// push-back.
type TokenStream struct {
	next    func() (Token, bool)
	stop    func()
	current Token
	pushed  []Token
	eof     bool
}

// NewTokenStream wraps seq. Close must be called when the stream is not
// drained to the end.
func NewTokenStream(seq iter.Seq[Token]) *TokenStream {
	next, stop := iter.Pull(seq)
	s := &TokenStream{next: next, stop: stop}
	s.Next()
	return s
}

// Current returns the token under the cursor. At the end of input it is a
// token of type TokenEOF.
func (s *TokenStream) Current() Token { return s.current }

// EOF reports whether the stream is exhausted.
func (s *TokenStream) EOF() bool { return s.eof && len(s.pushed) == 0 && s.current.Type == TokenEOF }

// Next advances the cursor and returns the token that was current.
func (s *TokenStream) Next() Token {
	prev := s.current
	if n := len(s.pushed); n > 0 {
		s.current = s.pushed[n-1]
		s.pushed = s.pushed[:n-1]
		return prev
	}
	if s.eof {
		s.current = Token{Type: TokenEOF}
		return prev
	}
	tok, ok := s.next()
	if !ok {
		s.eof = true
		s.current = Token{Type: TokenEOF}
		return prev
	}
	s.current = tok
	return prev
}

// Look returns the token after the current one without consuming it.
func (s *TokenStream) Look() Token {
	old := s.Next()
	result := s.current
	s.Push(result)
	s.current = old
	return result
}

// Push un-consumes tok: it becomes the current token and the old current
// token follows it. Only one pending token is supported.
func (s *TokenStream) Push(tok Token) {
	s.pushed = append(s.pushed[:0], s.current)
	s.current = tok
}

// Skip advances n tokens.
func (s *TokenStream) Skip(n int) {
	for i := 0; i < n; i++ {
		s.Next()
	}
}

// Test reports whether the current token matches type and, optionally,
// one of values.
func (s *TokenStream) Test(typ TokenType, values ...string) bool {
	return s.current.Is(typ, values...)
}

// Expect consumes the current token if it matches, otherwise it fails with
// a *ParseError.
func (s *TokenStream) Expect(typ TokenType, values ...string) (Token, error) {
	if !s.current.Is(typ, values...) {
		return s.current, &ParseError{Expected: typ, Got: s.current}
	}
	return s.Next(), nil
}

// Close releases the underlying sequence.
func (s *TokenStream) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// Debug drains the stream and writes one token per line to w.
func (s *TokenStream) Debug(w io.Writer) error {
	defer s.Close()
	for !s.EOF() {
		if _, err := fmt.Fprintln(w, s.Next()); err != nil {
			return err
		}
	}
	return nil
}

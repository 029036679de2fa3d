package markup

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamOf(toks ...Token) *TokenStream {
	return NewTokenStream(slices.Values(toks))
}

func TestTokenStream_Navigation(t *testing.T) {
	a := Token{Type: TokenText, Value: "a"}
	b := Token{Type: TokenText, Value: "b"}
	nl := Token{Type: TokenNewline}
	s := streamOf(a, nl, b)
	defer s.Close()

	assert.Equal(t, a, s.Current())
	assert.Equal(t, nl, s.Look())
	assert.Equal(t, a, s.Current(), "look does not consume")

	assert.Equal(t, a, s.Next())
	assert.True(t, s.Test(TokenNewline))
	assert.False(t, s.Test(TokenText))

	s.Skip(1)
	assert.True(t, s.Test(TokenText, "x", "b"))
	assert.False(t, s.EOF())

	s.Next()
	assert.True(t, s.EOF())
	assert.Equal(t, TokenEOF, s.Current().Type)
	s.Next()
	assert.True(t, s.EOF(), "next past the end stays at eof")
}

func TestTokenStream_Push(t *testing.T) {
	a := Token{Type: TokenText, Value: "a"}
	pushed := Token{Type: TokenRuler}
	s := streamOf(a)
	defer s.Close()

	s.Push(pushed)
	assert.Equal(t, pushed, s.Next())
	assert.Equal(t, a, s.Current())
}

func TestTokenStream_Expect(t *testing.T) {
	s := streamOf(Token{Type: TokenText, Value: "a"})
	defer s.Close()

	_, err := s.Expect(TokenRuler)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, TokenRuler, perr.Expected)
	assert.Equal(t, "expected ruler, got <Token text \"a\">", err.Error())

	tok, err := s.Expect(TokenText, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Value)
	assert.True(t, s.EOF())
}

func TestTokenStream_Debug(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTokenStream(Tokenize("'''x'''")).Debug(&buf))
	assert.Equal(t, "<Token strong_begin \"'''\">\n<Token text \"x\">\n<Token strong_end \"'''\">\n", buf.String())
}

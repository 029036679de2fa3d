// lexer.go turns markup into a lazy token sequence.
package markup

import (
	"iter"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

var (
	quoteRe      = regexp2.MustCompile(`^(>+) ?`, regexp2.None)
	blockStartRe = regexp2.MustCompile(`(?<!\\)\{\{\{`, regexp2.None)
	blockEndRe   = regexp2.MustCompile(`(?<!\\)\}\}\}`, regexp2.None)

	defaultRules = sync.OnceValue(func() map[string][]rule {
		return flatten(grammar())
	})
)

// Lexer tokenizes markup. The zero value is ready to use and a Lexer
// holds no per-call state, so one value may serve concurrent calls.
type Lexer struct{}

type stackEntry struct {
	close TokenType // empty when the state was entered silently
	state string
}

// Tokenize returns the token sequence for text. Quotes are resolved in an
// outer pass and every quote level is lexed in isolation, so broken markup
// in one block cannot leak into its neighbours.
func (l *Lexer) Tokenize(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		var buffer []string
		depth := []int{0}
		openBlocks := []bool{false}

		flushBuffer := func() bool {
			if len(buffer) == 0 {
				return true
			}
			block := strings.Join(buffer, "\n")
			buffer = buffer[:0]
			return tokenizeBlock(block, nil, yield)
		}

		for _, line := range splitLines(text) {
			blockOpen := openBlocks[len(openBlocks)-1]
			if !blockOpen {
				level := 0
				if m, _ := quoteRe.FindStringMatch(line); m != nil {
					level = len(groupString(m, 1))
					line = string([]rune(line)[m.Length:])
				}
				current := depth[len(depth)-1]
				switch {
				case level > current:
					if !flushBuffer() {
						return
					}
					for n := current + 1; n <= level; n++ {
						depth = append(depth, n)
						openBlocks = append(openBlocks, false)
						if !yield(Token{Type: TokenQuoteBegin}) {
							return
						}
					}
				case level < current:
					if !flushBuffer() {
						return
					}
					for n := 0; n < current-level; n++ {
						depth = depth[:len(depth)-1]
						openBlocks = openBlocks[:len(openBlocks)-1]
						if !yield(Token{Type: TokenQuoteEnd}) {
							return
						}
					}
				}
			} else {
				line = stripQuotePrefix(line, len(openBlocks)-1)
			}
			if !blockOpen && changesBlockState(line, false) {
				openBlocks[len(openBlocks)-1] = true
			} else if blockOpen && changesBlockState(line, true) {
				openBlocks[len(openBlocks)-1] = false
			}
			buffer = append(buffer, line)
		}

		if !flushBuffer() {
			return
		}
		for len(depth) > 0 {
			level := depth[len(depth)-1]
			depth = depth[:len(depth)-1]
			if level != 0 && !yield(Token{Type: TokenQuoteEnd}) {
				return
			}
		}
	}
}

// Tokenize lexes text with a zero Lexer.
func Tokenize(text string) iter.Seq[Token] {
	var l Lexer
	return l.Tokenize(text)
}

// Escape returns text with a backslash in front of every markup construct
// so that it renders literally.
func Escape(text string) string {
	var hints []int
	var sb strings.Builder
	tokenizeBlock(strings.Join(splitLines(text), "\n"), &hints, func(t Token) bool {
		sb.WriteString(t.Value)
		return true
	})
	out := []rune(sb.String())
	result := make([]rune, 0, len(out)+len(hints))
	prev := 0
	for _, pos := range hints {
		result = append(result, out[prev:pos]...)
		result = append(result, '\\')
		prev = pos
	}
	result = append(result, out[prev:]...)
	return string(result)
}

// tokenizeBlock is the inner single-pass tokenizer. When hints is non-nil
// every rule match is kept as text and its start offset recorded.
func tokenizeBlock(text string, hints *[]int, yield func(Token) bool) bool {
	rules := defaultRules()
	src := []rune(text)
	end := len(src)
	pos := 0
	escaped := false
	stack := []stackEntry{{state: "everything"}}
	var buf []rune

	flush := func() bool {
		if len(buf) == 0 {
			return true
		}
		t := string(buf)
		buf = buf[:0]
		return yield(Token{Type: TokenText, Value: t})
	}

	for pos < end {
		state := stack[len(stack)-1].state
		matched := false
		for _, r := range rules[state] {
			m, err := r.re.FindRunesMatchStartingAt(src, pos)
			if err != nil || m == nil || m.Index != pos {
				continue
			}
			matched = true
			value := m.String()

			if escaped || hints != nil {
				buf = append(buf, src[m.Index:m.Index+m.Length]...)
				if hints != nil {
					*hints = append(*hints, m.Index)
				}
				pos = m.Index + m.Length
				escaped = false
				break
			}

			if !flush() {
				return false
			}

			if r.enter != "" {
				stack = append(stack, stackEntry{close: endToken(r.enter), state: r.enter})
				if !yield(Token{Type: beginToken(r.enter), Value: value}) {
					return false
				}
			} else if r.silentEnter != "" {
				stack = append(stack, stackEntry{state: r.silentEnter})
			}

			switch {
			case r.emit != nil:
				for _, t := range r.emit(m) {
					if !yield(t) {
						return false
					}
				}
			case r.token != "":
				if !yield(Token{Type: r.token, Value: value}) {
					return false
				}
			}

			pos = m.Index + m.Length
			for n := 0; n < r.leave && len(stack) > 0; n++ {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.close != "" && !yield(Token{Type: top.close, Value: value}) {
					return false
				}
			}

			if r.switchTo != "" && len(stack) > 0 {
				stack[len(stack)-1].state = r.switchTo
			}
			break
		}
		if matched {
			if len(stack) == 0 {
				stack = append(stack, stackEntry{state: "everything"})
			}
			continue
		}

		char := src[pos]
		switch {
		case hints != nil:
			buf = append(buf, char)
		case char == '\\' && escaped:
			// two backslashes collapse into one
			buf = append(buf, '\\')
			escaped = false
		case char == '\\':
			escaped = true
		case escaped:
			buf = append(buf, '\\', char)
			escaped = false
		default:
			buf = append(buf, char)
		}
		pos++
	}

	if escaped {
		buf = append(buf, '\\')
	}
	if !flush() {
		return false
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.close != "" && !yield(Token{Type: top.close}) {
			return false
		}
	}
	return true
}

// changesBlockState reports whether line leaves a {{{ block open (or,
// with reverse, closes an open one) after pairing starts and ends.
func changesBlockState(line string, reverse bool) bool {
	primary, secondary := blockStartRe, blockEndRe
	if reverse {
		primary, secondary = blockEndRe, blockStartRe
	}
	runes := []rune(line)
	m, _ := primary.FindRunesMatchStartingAt(runes, 0)
	for m != nil {
		pos := m.Index + m.Length
		m, _ = secondary.FindRunesMatchStartingAt(runes, pos)
		if m == nil {
			return true
		}
		pos = m.Index + m.Length
		m, _ = primary.FindRunesMatchStartingAt(runes, pos)
	}
	return false
}

// stripQuotePrefix removes exactly depth "> ?" prefixes, or nothing when
// the line carries fewer.
func stripQuotePrefix(line string, depth int) string {
	rest := line
	for i := 0; i < depth; i++ {
		if !strings.HasPrefix(rest, ">") {
			return line
		}
		rest = strings.TrimPrefix(rest[1:], " ")
	}
	return rest
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

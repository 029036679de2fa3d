package markup

import (
	"errors"
	"fmt"
)

var (
	// ErrStackExhausted is returned by strict parses of markup nested
	// deeper than the parser's depth ceiling.
	ErrStackExhausted = errors.New("markup nested too deeply")

	// ErrParserUsed is returned when Parse is called twice on one Parser.
	ErrParserUsed = errors.New("parser already used, create a new one")

	// ErrUnknownFormat is returned for output formats no renderer exists for.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrInvalidInstructions is returned for compiled input that carries
	// neither instruction marker or cannot be decoded.
	ErrInvalidInstructions = errors.New("invalid compiled instructions")

	// ErrDuplicateExtension is returned when an extension name is taken.
	ErrDuplicateExtension = errors.New("extension already registered")
)

// ParseError reports a token the parser did not expect.
type ParseError struct {
	Expected TokenType
	Got      Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// FormatMismatchError is returned when compiled instructions are rendered
// into a format other than the one they were compiled for.
type FormatMismatchError struct {
	Compiled  string
	Requested string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("instructions compiled for %q cannot render %q", e.Compiled, e.Requested)
}

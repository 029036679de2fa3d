// tokens.go defines the token model shared by the lexer and the parser.
package markup

import (
	"fmt"
	"strings"
)

// TokenType names a token kind. Construct tokens come in pairs built from
// the state name: "strong_begin" / "strong_end".
type TokenType string

const (
	TokenText    TokenType = "text"
	TokenEOF     TokenType = "eof"
	TokenNewline TokenType = "nl"
	TokenRuler   TokenType = "ruler"
	TokenRaw     TokenType = "raw"

	TokenQuoteBegin TokenType = "quote_begin"
	TokenQuoteEnd   TokenType = "quote_end"

	TokenLinkTarget   TokenType = "link_target"
	TokenFreeLink     TokenType = "free_link"
	TokenSourceLink   TokenType = "sourcelink"
	TokenMacroName    TokenType = "macro_name"
	TokenTemplateName TokenType = "template_name"
	TokenParserBegin  TokenType = "parser_begin"
	TokenParserEnd    TokenType = "parser_end"

	TokenFuncArgDelimiter TokenType = "func_argument_delimiter"
	TokenFuncStringArg    TokenType = "func_string_arg"
	TokenFuncKwarg        TokenType = "func_kwarg"

	TokenMetadataKey    TokenType = "metadata_key"
	TokenDefinitionTerm TokenType = "definition_term"
	TokenConflictSwitch TokenType = "conflict_switch"
	TokenColorValue     TokenType = "color_value"
	TokenFontSize       TokenType = "font_size"
	TokenFontFace       TokenType = "font_face"
	TokenUsername       TokenType = "username"

	TokenTableDefBegin  TokenType = "table_def_begin"
	TokenTableDefEnd    TokenType = "table_def_end"
	TokenTableColSwitch TokenType = "table_col_switch"
	TokenBoxDefBegin    TokenType = "box_def_begin"
	TokenBoxDefEnd      TokenType = "box_def_end"
)

func beginToken(state string) TokenType { return TokenType(state + "_begin") }
func endToken(state string) TokenType   { return TokenType(state + "_end") }

// Token is a single lexer output unit. Parts carries a structured payload
// for tokens built from several match groups, such as the (wiki, page)
// pair of a wiki link target.
type Token struct {
	Type  TokenType `json:"type"`
	Value string    `json:"value"`
	Parts []string  `json:"parts,omitempty"`
}

// Is reports whether the token has the given type and, when values are
// passed, one of those values.
func (t Token) Is(typ TokenType, values ...string) bool {
	if t.Type != typ {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

func (t Token) String() string {
	if len(t.Parts) > 0 {
		return fmt.Sprintf("<Token %s %q>", t.Type, strings.Join(t.Parts, ":"))
	}
	return fmt.Sprintf("<Token %s %q>", t.Type, t.Value)
}

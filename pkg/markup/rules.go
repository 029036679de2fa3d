// rules.go holds the lexer grammar: named rulesets of ordered rules.
package markup

import (
	"github.com/dlclark/regexp2"
)

// emitter turns a match into tokens. It replaces the static token of a
// rule when the rule needs its match groups.
type emitter func(m *regexp2.Match) []Token

type rule struct {
	re          *regexp2.Regexp
	token       TokenType
	emit        emitter
	enter       string
	silentEnter string
	switchTo    string
	leave       int
	include     string
}

type ruleOption func(*rule)

// on compiles a rule anchored at the scan position. Leading inline flags
// such as (?m) or (?s) stay in front of the anchor.
func on(pattern string, opts ...ruleOption) rule {
	flags := ""
	for len(pattern) >= 4 && pattern[0] == '(' && pattern[1] == '?' && pattern[3] == ')' {
		flags += pattern[:4]
		pattern = pattern[4:]
	}
	r := rule{re: regexp2.MustCompile(flags+`\G(?:`+pattern+`)`, regexp2.None)}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func include(name string) rule { return rule{include: name} }

// fallback pops the current state without consuming input.
func fallback() rule { return on(``, leave(1)) }

// switchState replaces the current state without consuming input.
func switchState(state string) rule { return on(``, switchTo(state)) }

func emits(t TokenType) ruleOption        { return func(r *rule) { r.token = t } }
func enter(state string) ruleOption       { return func(r *rule) { r.enter = state } }
func silentEnter(state string) ruleOption { return func(r *rule) { r.silentEnter = state } }
func switchTo(state string) ruleOption    { return func(r *rule) { r.switchTo = state } }
func leave(n int) ruleOption              { return func(r *rule) { r.leave = n } }

// byGroups yields one token per match group, in group order.
func byGroups(types ...TokenType) ruleOption {
	return func(r *rule) {
		r.emit = func(m *regexp2.Match) []Token {
			out := make([]Token, 0, len(types))
			for i, t := range types {
				out = append(out, Token{Type: t, Value: groupString(m, i+1)})
			}
			return out
		}
	}
}

// asTuple yields a single token carrying every group as Parts.
func asTuple(t TokenType) ruleOption {
	return func(r *rule) {
		r.emit = func(m *regexp2.Match) []Token {
			parts := make([]string, 0, m.GroupCount()-1)
			for i := 1; i < m.GroupCount(); i++ {
				parts = append(parts, groupString(m, i))
			}
			return []Token{{Type: t, Parts: parts}}
		}
	}
}

func groupString(m *regexp2.Match, n int) string {
	g := m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// urlPattern lists the schemes recognised as links. Short on purpose so it
// clashes less with inter-wiki names.
const urlPattern = `(?:(?:https?|ftps?|file|ssh|mms|svn(?:\+ssh)?|git|dict|nntp|ircs?|` +
	`rsync|smb|apt)://|(?:mailto|telnet|s?news|sips?|skype|apt):)`

const stringArgPattern = `(?s)('([^'\\]*(?:\\.[^'\\]*)*)'|"([^"\\]*(?:\\.[^"\\]*)*)")`

func grammar() map[string][]rule {
	return map[string][]rule{
		"everything": {
			include("block"),
			include("inline"),
			include("links"),
		},
		"inline_with_links": {
			include("inline"),
			include("links"),
		},
		"block": {
			on(`(?m)^##.*?(\n|$)`),
			on(`(?m)^#\s*(.*?)\s*:\s*`, byGroups(TokenMetadataKey), enter("metadata")),
			on(`(?m)^={1,5}\s*`, enter("headline")),
			on(`(?m)^[ \t]+((?!::).*?)::\s+`, byGroups(TokenDefinitionTerm), enter("definition")),
			on(`(?m)^\|\|`, enter("table_row")),
			on(`(?m)^[ \t]+(?:[*-]|[01aAiI]\.)\s*`, enter("list_item")),
			on(`\{\{\|`, enter("box")),
			on(`\{\{\{`, enter("pre")),
			on(`(?m)^<{40}\s*$`, enter("conflict")),
			on(`(?m)^----+\s*(\n|$)`, emits(TokenRuler)),
		},
		"inline": {
			on(`(?s)<!--.*?-->`),
			on(`'''`, enter("strong")),
			on(`''`, enter("emphasized")),
			on("``", enter("escaped_code")),
			on("`", enter("code")),
			on(`__`, enter("underline")),
			on(`--\(`, enter("stroke")),
			on(`~-\(`, enter("small")),
			on(`~\+\(`, enter("big")),
			on(`,,\(`, enter("sub")),
			on(`\^\^\(`, enter("sup")),
			on(`\(\(`, enter("footnote")),
			on(`\[\[([\w_]+)`, byGroups(TokenMacroName), enter("macro")),
			on(`\[@(.+?)\s*\(`, byGroups(TokenTemplateName), enter("template")),
			on(`\[color\s*=\s*(.*?)\s*\]`, byGroups(TokenColorValue), enter("color")),
			on(`\[size\s*=\s*(.*?)\s*\]`, byGroups(TokenFontSize), enter("size")),
			on(`\[font\s*=\s*(.*?)\s*\]`, byGroups(TokenFontFace), enter("font")),
			on(`\[mod\s*=\s*(.*?)\s*\]`, byGroups(TokenUsername), enter("mod")),
			on(`\[edit\s*=\s*(.*?)\s*\]`, byGroups(TokenUsername), enter("edit")),
			on(`\[raw\](.*?)\[/raw\]`, byGroups(TokenRaw)),
			on(`(?m)\\\\[^\S\n]*(\n|$)`, emits(TokenNewline)),
			include("highlightable_with_inlines"),
		},
		"links": {
			on(`\[\s*(\d+)\s*\]`, byGroups(TokenSourceLink)),
			on(`(\[\s*)((?:`+urlPattern+`|\?|#)\S+?)(\s*\])`,
				byGroups(beginToken("external_link"), TokenLinkTarget, endToken("external_link"))),
			on(`\[((?:`+urlPattern+`|\?|#).*?)\s+`, byGroups(TokenLinkTarget), enter("external_link")),
			on(`\[\s*([^:\]]+?)?\s*:\s*((?:::|\\:|[^:\]])*)\s*:\s*`, asTuple(TokenLinkTarget), enter("wiki_link")),
			on(urlPattern+`[^\[\s/\]]+(/[^\s\].,:;?]*([.,:;?][^\s\].,:;?]+)*)?[^\]\)\\\s]`, emits(TokenFreeLink)),
		},
		"highlightable_with_inlines": {
			on(`\[mark\]`, enter("highlighted_wi")),
		},
		"highlightable": {
			on(`\[mark\]`, enter("highlighted")),
		},
		"highlighted_wi": {
			on(`\[/mark\]`, leave(1)),
			include("inline_with_links"),
		},
		"highlighted": {
			on(`\[/mark\]`, leave(1)),
		},
		"metadata": {
			on(`(?m)\s*(\n|$)`, leave(1)),
			on(`\s*,\s*`, emits(TokenFuncArgDelimiter)),
			on(stringArgPattern, emits(TokenFuncStringArg)),
		},
		"conflict": {
			on(`(?m)^={40}\s*$`, emits(TokenConflictSwitch)),
			on(`(?m)^>{40}\s*$`, leave(1)),
			include("everything"),
		},
		"headline": {
			on(`(?m)\s*=+\s*$`, leave(1)),
			include("inline_with_links"),
		},
		"definition": {
			on(`(?m)(\n|$)`, leave(1)),
			include("inline_with_links"),
		},
		"strong": {
			on(`'''`, leave(1)),
			include("inline_with_links"),
		},
		"emphasized": {
			on(`'''([^'])`, byGroups(TokenText), enter("strong")),
			on(`''`, leave(1)),
			include("inline_with_links"),
		},
		"escaped_code": {
			on("``", leave(1)),
		},
		"code": {
			on("`", leave(1)),
		},
		"underline": {
			on(`__`, leave(1)),
			include("inline_with_links"),
		},
		"stroke": {
			on(`\)--`, leave(1)),
			include("inline_with_links"),
		},
		"small": {
			on(`\)-~`, leave(1)),
			include("inline_with_links"),
		},
		"big": {
			on(`\)\+~`, leave(1)),
			include("inline_with_links"),
		},
		"sub": {
			on(`\),,`, leave(1)),
			include("inline_with_links"),
		},
		"sup": {
			on(`\)\^\^`, leave(1)),
			include("inline_with_links"),
		},
		"footnote": {
			on(`\)\)`, leave(1)),
			include("everything"),
		},
		"list_item": {
			on(`(?m)(\n|$)`, leave(1)),
			include("everything"),
		},
		"color": {
			on(`\[/color\]`, leave(1)),
			include("inline_with_links"),
		},
		"size": {
			on(`\[/size\]`, leave(1)),
			include("inline_with_links"),
		},
		"font": {
			on(`\[/font\]`, leave(1)),
			include("inline_with_links"),
		},
		"mod": {
			on(`\[/mod\]`, leave(1)),
			include("everything"),
		},
		"edit": {
			on(`\[/edit\]`, leave(1)),
			include("everything"),
		},
		"wiki_link": {
			on(`\s*\]`, leave(1)),
			include("inline"),
		},
		"external_link": {
			on(`\s*\]`, leave(1)),
			include("inline"),
		},
		"pre": {
			on(`\n?#!([\w_]+)`, byGroups(TokenParserBegin), switchTo("parser_arguments")),
			switchState("pre_data"),
		},
		"parser_arguments": {
			on(`(?m)(?=\n|$)`, emits(TokenParserEnd), switchTo("parser_data")),
			on(`[^\S\n]+`),
			include("function_call"),
		},
		"parser_data": {
			on(`\}\}\}`, leave(1)),
		},
		"pre_data": {
			include("parser_data"),
			include("highlightable"),
		},
		"table_row": {
			on(`\s*<`, emits(TokenTableDefBegin), switchTo("table_def")),
			switchState("table_contents"),
		},
		"table_def": {
			on(`>`, emits(TokenTableDefEnd), switchTo("table_contents")),
			include("function_call"),
		},
		"table_contents": {
			on(`(?m)\|\|\s*?(\n|$)`, leave(1)),
			on(`\|\|`, emits(TokenTableColSwitch), switchTo("table_row")),
			include("everything"),
		},
		"box": {
			on(`\s*<`, emits(TokenBoxDefBegin), switchTo("box_def")),
			switchState("box_contents"),
		},
		"box_def": {
			on(`>`, emits(TokenBoxDefEnd), switchTo("box_contents")),
			include("function_call"),
		},
		"box_contents": {
			on(`\|\}\}`, leave(1)),
			include("everything"),
		},
		// A macro waits for its argument list and closes itself on anything
		// it does not understand.
		"macro": {
			on(`\s+`),
			on(`\]\]`, leave(1)),
			on(`\(`, silentEnter("macro_arguments")),
			fallback(),
		},
		// Leaves macro_arguments and macro at once.
		"macro_arguments": {
			on(`\)\s*\]\]`, leave(2)),
			include("function_call"),
		},
		"template": {
			on(`\s*\)\s*@?\]`, leave(1)),
			include("function_call"),
		},
		"function_call": {
			on(`,`, emits(TokenFuncArgDelimiter)),
			on(`\s+`),
			on(stringArgPattern, emits(TokenFuncStringArg)),
			on(`([\w_]+)\s*=`, byGroups(TokenFuncKwarg)),
		},
	}
}

// flatten inlines includes once per state.
func flatten(sets map[string][]rule) map[string][]rule {
	out := make(map[string][]rule, len(sets))
	var walk func(name string, dst []rule) []rule
	walk = func(name string, dst []rule) []rule {
		for _, r := range sets[name] {
			if r.include != "" {
				dst = walk(r.include, dst)
				continue
			}
			dst = append(dst, r)
		}
		return dst
	}
	for name := range sets {
		out[name] = walk(name, nil)
	}
	return out
}

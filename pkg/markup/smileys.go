package markup

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// Smiley maps a text code to its replacement. A Class renders the glyph
// inside a span with that class so a stylesheet can swap in an image; with
// no Glyph the span is left empty.
type Smiley struct {
	Code  string `yaml:"code"`
	Glyph string `yaml:"glyph"`
	Class string `yaml:"class,omitempty"`
}

// DefaultSmileys is the set used by the default pipeline.
var DefaultSmileys = []Smiley{
	{Code: ":-)", Glyph: "🙂"},
	{Code: ":)", Glyph: "🙂"},
	{Code: ":-(", Glyph: "🙁"},
	{Code: ":(", Glyph: "🙁"},
	{Code: ";-)", Glyph: "😉"},
	{Code: ";)", Glyph: "😉"},
	{Code: ":-D", Glyph: "😀"},
	{Code: ":D", Glyph: "😀"},
	{Code: ":-P", Glyph: "😛"},
	{Code: ":P", Glyph: "😛"},
	{Code: ":-O", Glyph: "😮"},
	{Code: ":-/", Glyph: "😕"},
	{Code: ":/", Glyph: "😕"},
	{Code: ":???:", Glyph: "😕"},
	{Code: "8-)", Glyph: "😎"},
	{Code: ":'(", Glyph: "😢"},
	{Code: ":?:", Glyph: "❓"},
	{Code: ":!:", Glyph: "❗"},
	{Code: "<3", Glyph: "❤️"},
}

// SmileyInjector replaces smiley codes and {xx} country flags in text
// nodes outside raw containers. Codes touching letters or digits are left
// alone.
type SmileyInjector struct {
	smileys map[string]Smiley
	re      *regexp2.Regexp
}

// NewSmileyInjector builds an injector for smileys. Longer codes win over
// their prefixes.
func NewSmileyInjector(smileys []Smiley) *SmileyInjector {
	sorted := slices.Clone(smileys)
	slices.SortStableFunc(sorted, func(a, b Smiley) int {
		return cmp.Compare(len([]rune(b.Code)), len([]rune(a.Code)))
	})
	alternatives := make([]string, 0, len(sorted)+1)
	byCode := make(map[string]Smiley, len(sorted))
	for _, s := range sorted {
		if s.Code == "" {
			continue
		}
		alternatives = append(alternatives, regexp2.Escape(s.Code))
		byCode[s.Code] = s
	}
	alternatives = append(alternatives, `\{[a-z]{2}\}`)
	pattern := `(?<![\d\w])(` + strings.Join(alternatives, "|") + `)(?![\d\w])`
	return &SmileyInjector{
		smileys: byCode,
		re:      regexp2.MustCompile(pattern, regexp2.None),
	}
}

var defaultSmileyInjector = sync.OnceValue(func() *SmileyInjector {
	return NewSmileyInjector(DefaultSmileys)
})

func (t *SmileyInjector) Transform(doc *Document) *Document {
	t.process(doc)
	return doc
}

func (t *SmileyInjector) process(parent Node) {
	children := Children(parent)
	out := make([]Node, 0, len(children))
	for _, c := range children {
		switch n := c.(type) {
		case *Text:
			out = append(out, t.split(n.Value)...)
		default:
			if f := FlagsOf(c); f&FlagContainer != 0 && f&FlagRaw == 0 {
				t.process(c)
			}
			out = append(out, c)
		}
	}
	SetChildren(parent, out)
}

// split cuts text around every smiley match.
func (t *SmileyInjector) split(text string) []Node {
	runes := []rune(text)
	m, _ := t.re.FindRunesMatch(runes)
	if m == nil {
		return []Node{NewText(text)}
	}
	var out []Node
	pos := 0
	for m != nil {
		g := m.GroupByNumber(1)
		if g.Index > pos {
			out = append(out, NewText(string(runes[pos:g.Index])))
		}
		out = append(out, t.node(g.String()))
		pos = g.Index + g.Length
		m, _ = t.re.FindNextMatch(m)
	}
	if pos < len(runes) {
		out = append(out, NewText(string(runes[pos:])))
	}
	return out
}

func (t *SmileyInjector) node(code string) Node {
	s, ok := t.smileys[code]
	if !ok {
		s = Smiley{Code: code, Glyph: flagGlyph(code[1:3]), Class: "flag"}
	}
	if s.Class == "" {
		return &HTML{Source: escapeHTML(s.Glyph)}
	}
	span := &Span{Element{Class: s.Class}}
	if s.Glyph != "" {
		span.Children = []Node{&HTML{Source: escapeHTML(s.Glyph)}}
	}
	return span
}

// flagGlyph spells a country code in regional indicator symbols. "en" has
// no flag of its own and shows the British one.
func flagGlyph(country string) string {
	if country == "en" {
		country = "gb"
	}
	var sb strings.Builder
	for _, r := range country {
		sb.WriteRune(0x1F1E6 + r - 'a')
	}
	return sb.String()
}

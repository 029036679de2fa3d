package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRaw(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := ParseWithOptions(text, ParseOptions{Transformers: []Transformer{}})
	require.NoError(t, err)
	return doc
}

func htmlOf(t *testing.T, n Node) string {
	t.Helper()
	out, err := NewMachine(MachineOptions{}).RenderNode(n, nil, FormatHTML)
	require.NoError(t, err)
	return out
}

func TestTransformers_Idempotent(t *testing.T) {
	const text = "= A =\nHello :) ((a note))\n\n= A =\n * item {de}\n\n[[SPAN(\"K\", class_=\"key\")]]"

	for _, tr := range DefaultTransformers() {
		once := tr.Transform(parseRaw(t, text))
		twice := tr.Transform(tr.Transform(parseRaw(t, text)))
		assert.Equal(t, htmlOf(t, once), htmlOf(t, twice), "%T", tr)
	}

	once := parseRaw(t, text)
	twice := parseRaw(t, text)
	for _, tr := range DefaultTransformers() {
		once = tr.Transform(once)
		twice = tr.Transform(twice)
	}
	for _, tr := range DefaultTransformers() {
		twice = tr.Transform(twice)
	}
	assert.Equal(t, htmlOf(t, once), htmlOf(t, twice))
}

func TestAutomaticParagraphs(t *testing.T) {
	doc := AutomaticParagraphs{}.Transform(parseRaw(t, "one\ntwo\n\nthree\n----\nfour"))

	paragraphs := NodesOf[*Paragraph](doc)
	require.Len(t, paragraphs, 3)
	assert.Equal(t, "one\ntwo\n\n", TextOf(paragraphs[0]))
	assert.Equal(t, "three\n\n", TextOf(paragraphs[1]))
	assert.Equal(t, "four\n\n", TextOf(paragraphs[2]))
}

func TestAutomaticParagraphs_SkipsRawContainers(t *testing.T) {
	doc := AutomaticParagraphs{}.Transform(parseRaw(t, "{{{\na\n\nb\n}}}"))
	assert.Empty(t, NodesOf[*Paragraph](doc))
}

func TestSmileyInjector(t *testing.T) {
	injector := NewSmileyInjector(DefaultSmileys)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hi :)", "Hi 🙂"},
		{"longer code wins", "Hi :-)", "Hi 🙂"},
		{"glued to a word", "x:)", "x:)"},
		{"glued to a digit", ":)1", ":)1"},
		{"flag", "{de}", "🇩🇪"},
		{"english flag", "{en}", "🇬🇧"},
		{"heart", "<3", "❤️"},
		{"adjacent codes", ":) :/", "🙂 😕"},
		{"inside a url", "http://example.org", "http://example.org"},
		{"longest overlapping code", "what :???: now", "what 😕 now"},
		{"shorter code alone", "what :?: now", "what ❓ now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := injector.Transform(parseRaw(t, tt.input))
			assert.Equal(t, tt.want, StripTags(htmlOf(t, doc)))
		})
	}
}

func TestSmileyInjector_FlagClass(t *testing.T) {
	doc := NewSmileyInjector(nil).Transform(parseRaw(t, "{fr}"))
	assert.Equal(t, `<span class="flag">🇫🇷</span>`, htmlOf(t, doc))
}

func TestSmileyInjector_SkipsCode(t *testing.T) {
	doc := NewSmileyInjector(DefaultSmileys).Transform(parseRaw(t, "`:)`"))
	assert.Equal(t, `<code class="notranslate">:)</code>`, htmlOf(t, doc))
}

func TestSmileyInjector_CustomSet(t *testing.T) {
	injector := NewSmileyInjector([]Smiley{{Code: ":wave:", Glyph: "👋", Class: "emoji"}})
	doc := injector.Transform(parseRaw(t, "hi :wave: :)"))
	assert.Equal(t, `hi <span class="emoji">👋</span> :)`, htmlOf(t, doc))
}

func TestSmileyInjector_StyledOnly(t *testing.T) {
	injector := NewSmileyInjector([]Smiley{{Code: ":yay:", Class: "smiley-yay"}})
	doc := injector.Transform(parseRaw(t, "so :yay:"))
	assert.Equal(t, `so <span class="smiley-yay"></span>`, htmlOf(t, doc))
}

func TestSmileyInjector_OverlappingCodes(t *testing.T) {
	injector := NewSmileyInjector([]Smiley{
		{Code: ":?", Glyph: "A"},
		{Code: ":???:", Glyph: "B"},
		{Code: ":/", Glyph: "C"},
	})
	doc := injector.Transform(parseRaw(t, "text:) x :???: y :? z :) :/"))
	assert.Equal(t, "text:) x B y A z :) C", htmlOf(t, doc))
}

func TestFootnoteSupport(t *testing.T) {
	doc := FootnoteSupport{}.Transform(parseRaw(t, "a((first)) b((second))"))

	notes := NodesOf[*Footnote](doc)
	require.Len(t, notes, 2)
	assert.Equal(t, 1, notes[0].Number)
	assert.Equal(t, 2, notes[1].Number)

	out := htmlOf(t, doc)
	assert.Contains(t, out, `<a href="#fn-1" id="bfn-1" class="footnote"><span class="paren">[</span>1<span class="paren">]</span></a>`)
	assert.Contains(t, out, `<ul class="footnotes"><li><a href="#bfn-1" id="fn-1" class="crosslink">1</a>: first</li>`)
	assert.Contains(t, out, `<a href="#bfn-2" id="fn-2" class="crosslink">2</a>: second`)
}

func TestFootnoteSupport_NoFootnotes(t *testing.T) {
	doc := FootnoteSupport{}.Transform(parseRaw(t, "plain"))
	assert.Empty(t, NodesOf[*List](doc))
}

func TestHeadlineProcessor(t *testing.T) {
	doc := &Document{Element{Children: []Node{
		NewHeadline(1, []Node{NewText("Intro")}),
		NewHeadline(2, []Node{NewText("Intro")}),
		NewHeadline(1, []Node{NewText("Intro")}),
		NewHeadline(1, nil),
		NewHeadline(1, nil),
	}}}
	HeadlineProcessor{}.Transform(doc)

	var ids []string
	for _, h := range NodesOf[*Headline](doc) {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"Intro", "Intro-2", "Intro-3", "empty-headline", "empty-headline-2"}, ids)
}

func TestAutomaticStructure(t *testing.T) {
	doc := AutomaticStructure{}.Transform(parseRaw(t, "before\n= A =\n== B ==\n= C ="))

	sections := NodesOf[*Section](doc)
	require.Len(t, sections, 3)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, 2, sections[1].Level)
	assert.Equal(t, 1, sections[2].Level)
	assert.Contains(t, Children(sections[0]), Node(sections[1]))

	_, ok := doc.Children[0].(*Text)
	assert.True(t, ok, "content before the first headline stays at the top")
}

func TestKeyHandler(t *testing.T) {
	key := &Span{Element{Children: []Node{NewText("Alt")}, Class: "key"}}
	other := &Paragraph{Element{Children: []Node{NewText("x")}}}
	doc := &Document{Element{Children: []Node{
		&Paragraph{Element{Children: []Node{key}}},
		other,
	}}}
	KeyHandler{}.Transform(doc)

	assert.Equal(t, []Node{key, other}, doc.Children)
}

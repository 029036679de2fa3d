package markup

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string]string

func (s mapStore) Page(_ context.Context, name string) (string, error) {
	text, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrPageNotFound)
	}
	return text, nil
}

func renderPage(t *testing.T, text string, store PageStore) string {
	t.Helper()
	m := NewMachine(MachineOptions{})
	doc, err := m.Parse(text)
	require.NoError(t, err)
	rc := NewRenderContext(context.Background(), "wiki")
	rc.Pages = store
	out, err := m.Render(doc, rc, FormatHTML)
	require.NoError(t, err)
	return out
}

func TestMacro_TableOfContents(t *testing.T) {
	out := renderHTML(t, "[[TableOfContents]]\n= A =\n== B ==\n= C =")

	assert.Contains(t, out, `<div class="toc toc-depth-3"><div class="head">Table of contents</div><ol class="arabic">`)
	assert.Contains(t, out, `<a href="#A" class="crosslink">A</a>`)
	assert.Contains(t, out, `<a href="#B" class="crosslink">B</a>`)
	assert.Contains(t, out, `<a href="#C" class="crosslink">C</a>`)
}

func TestMacro_TableOfContentsTree(t *testing.T) {
	doc, err := Parse("[[TableOfContents(2, unordered)]]\n= A =\n=== Deep ===\n== B ==\n= C =")
	require.NoError(t, err)

	layers := NodesOf[*Layer](doc)
	require.NotEmpty(t, layers)
	toc := layers[0]
	assert.Equal(t, "toc toc-depth-2", toc.Class)

	list := toc.Children[1].(*List)
	assert.Equal(t, "unordered", list.Type)
	require.Len(t, list.Children, 2, "A and C at the top level")

	var captions []string
	for _, l := range NodesOf[*Link](toc) {
		captions = append(captions, TextOf(l))
	}
	assert.Equal(t, []string{"A", "B", "C"}, captions)
}

func TestMacro_TableOfContentsSkippedLevel(t *testing.T) {
	doc, err := Parse("[[TableOfContents]]\n= A =\n=== Deep ===")
	require.NoError(t, err)

	var unstyled int
	for _, item := range NodesOf[*ListItem](NodesOf[*Layer](doc)[0]) {
		if item.Style == "list-style: none" {
			unstyled++
		}
	}
	assert.Equal(t, 1, unstyled)
}

func TestMacro_TableOfContentsInFootnote(t *testing.T) {
	doc, err := Parse("= A =\ntext ((see [[TableOfContents]]))")
	require.NoError(t, err)

	assert.Empty(t, NodesOf[*Deferred](doc))
	assert.Len(t, NodesOf[*Layer](doc), 2, "inline and in the footnote list")

	out, err := NewMachine(MachineOptions{}).Render(doc, nil, FormatHTML)
	require.NoError(t, err)
	notes := out[strings.Index(out, `<ul class="footnotes">`):]
	assert.Contains(t, notes, `<a href="#A" class="crosslink">A</a>`)
}

func TestMacro_Date(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[[Date(2024-01-02)]]", "2024-01-02 00:00"},
		{`[[Datum("2024-01-02 13:45:00")]]`, "2024-01-02 13:45"},
		{"[[Date(2024-01-02T13:45:00Z)]]", "2024-01-02 13:45"},
		{"[[Date(0)]]", "1970-01-01 00:00"},
		{"[[Date(yesterday)]]", "Invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Contains(t, renderPage(t, tt.input, nil), tt.want)
		})
	}
}

func TestMacro_Static(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"line break", "a[[BR]]b", "<p>a<br />b</p>"},
		{"anchor", "[[Anchor(top)]]", `<a href="#top" id="top" class="crosslink anchor">⚓︎</a>`},
		{"german anchor", "[[Anker(top)]]", `id="top"`},
		{"span", `x [[SPAN("hi", style="color: red")]]`, `<span style="color: red">hi</span>`},
		{"span style is filtered", `[[SPAN("hi", style="position: fixed")]]`, `<p><span>hi</span></p>`},
		{"missing", "[[Nope]]", "The macro “Nope” does not exist."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, renderHTML(t, tt.input), tt.want)
		})
	}
}

func TestMacro_KeySpanLeavesParagraph(t *testing.T) {
	out := renderHTML(t, `[[SPAN("Ctrl", class_="key")]]`)
	assert.Equal(t, `<span class="key">Ctrl</span>`, out)
}

func TestMacro_Include(t *testing.T) {
	store := mapStore{
		"Shared": "'''shared'''",
		"Outer":  "outer [[Include(Shared)]]",
		"Loop":   "[[Include(Loop)]]",
		"Ping":   "[[Include(Pong)]]",
		"Pong":   "[[Include(Ping)]]",
		"Dated":  "[[Date(2024-01-02)]]",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"page", "[[Include(Shared)]]", "<strong>shared</strong>"},
		{"german name", "[[Einbinden(Shared)]]", "<strong>shared</strong>"},
		{"nested", "[[Include(Outer)]]", "<strong>shared</strong>"},
		{"dynamic content", "[[Include(Dated)]]", "2024-01-02 00:00"},
		{"self", "[[Include(Loop)]]", "Circular include"},
		{"indirect cycle", "[[Include(Ping)]]", "The page “Ping” includes itself."},
		{"missing page", "[[Include(Nope)]]", "The page “Nope” does not exist."},
		{"empty name", "[[Include]]", "No page was given."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, renderPage(t, tt.input, store), tt.want)
		})
	}
}

func TestMacro_IncludeSamePageTwice(t *testing.T) {
	out := renderPage(t, "[[Include(Shared)]] [[Include(Shared)]]", mapStore{"Shared": "x"})
	assert.NotContains(t, out, "Circular include")
}

func TestMacro_IncludeWithoutStore(t *testing.T) {
	out := renderPage(t, "[[Include(Shared)]]", nil)
	assert.Contains(t, out, "Macro failed")
	assert.Contains(t, out, "no page store configured")
}

func TestMacro_IncludeOutsideWiki(t *testing.T) {
	m := NewMachine(MachineOptions{})
	doc, err := m.Parse("[[Include(Shared)]]")
	require.NoError(t, err)
	rc := NewRenderContext(context.Background(), "forum")
	rc.Pages = mapStore{"Shared": "x"}

	out, err := m.Render(doc, rc, FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, out, "This macro is not available.")
}

package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/open-cli-collective/wikimark/pkg/markup"
)

var (
	nodeStyle = lipgloss.NewStyle().Bold(true)
	attrStyle = lipgloss.NewStyle().Faint(true)
	textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	enumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1)
)

// TextPreview is the number of cells shown for text nodes.
const TextPreview = 40

// Tree builds a tree view of n and its descendants.
func Tree(n markup.Node) *tree.Tree {
	t := tree.Root(Label(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	for _, c := range markup.Children(n) {
		if len(markup.Children(c)) == 0 {
			t.Child(Label(c))
			continue
		}
		t.Child(Tree(c))
	}
	return t
}

// RenderTree writes the tree of n.
func (r *Renderer) RenderTree(n markup.Node) {
	fmt.Fprintln(r.writer, Tree(n).String())
}

// Label describes a single node: its type and the attributes that set it
// apart from others of that type.
func Label(n markup.Node) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", n), "*markup.")
	var attrs []string
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, key+"="+strconv.Quote(value))
		}
	}

	switch n := n.(type) {
	case *markup.Text:
		return nodeStyle.Render(name) + " " + textStyle.Render(strconv.Quote(Truncate(n.Value, TextPreview)))
	case *markup.HTML:
		add("source", Truncate(n.Source, TextPreview))
	case *markup.MetaData:
		add("key", n.Key)
		add("values", strings.Join(n.Values, ", "))
	case *markup.ConflictMarker:
		add("side", n.Side)
	case *markup.MacroRef:
		add("macro", n.Unit.Name)
	case *markup.ParserRef:
		add("parser", n.Unit.Name)
	case *markup.Deferred:
		add("macro", n.Name)
	case *markup.Headline:
		add("level", strconv.Itoa(n.Level))
		add("id", n.ID)
	case *markup.Section:
		add("level", strconv.Itoa(n.Level))
	case *markup.Link:
		add("url", n.URL)
	case *markup.InternalLink:
		add("page", n.Page)
		add("anchor", n.Anchor)
		if !n.Existing {
			add("missing", "true")
		}
	case *markup.InterWikiLink:
		add("wiki", n.Wiki)
		add("page", n.Page)
	case *markup.SourceLink:
		add("target", strconv.Itoa(n.Target))
	case *markup.Footnote:
		if n.Number > 0 {
			add("number", strconv.Itoa(n.Number))
		}
	case *markup.List:
		add("type", n.Type)
	case *markup.Color:
		add("value", n.Value)
	case *markup.Size:
		add("percent", strconv.Itoa(n.Percent))
	case *markup.Font:
		add("faces", strings.Join(n.Faces, ", "))
	case *markup.Edited:
		add("user", n.Username)
	case *markup.Moderated:
		add("user", n.Username)
	case *markup.DefinitionTerm:
		add("term", n.Term)
	case *markup.TableCell:
		cellAttrs(n, add)
	case *markup.TableHeader:
		cellAttrs(&n.TableCell, add)
	case *markup.Box:
		add("title", n.Title)
		add("align", n.Align)
	}
	if e := markup.ElementOf(n); e != nil {
		add("class", e.Class)
		add("style", e.Style)
		if _, ok := n.(*markup.Headline); !ok {
			add("id", e.ID)
		}
	}

	label := nodeStyle.Render(name)
	if len(attrs) > 0 {
		label += " " + attrStyle.Render(strings.Join(attrs, " "))
	}
	return label
}

func cellAttrs(c *markup.TableCell, add func(string, string)) {
	if c.Colspan > 1 {
		add("colspan", strconv.Itoa(c.Colspan))
	}
	if c.Rowspan > 1 {
		add("rowspan", strconv.Itoa(c.Rowspan))
	}
	add("align", c.Align)
	add("valign", c.Valign)
}

// nodes.go defines the closed set of AST node types.
package markup

import (
	"fmt"
	"strings"
)

// Flags describe static capabilities of a node.
type Flags uint8

const (
	FlagContainer  Flags = 1 << iota // has children
	FlagBlock                        // block level
	FlagText                         // plain text node
	FlagRaw                          // children are exempt from text rewriting
	FlagParagraphs                   // may hold paragraphs
	FlagParagraph                    // is a paragraph
)

// Node is one of the node types of this package. The set is closed; every
// switch over it lives in this package.
type Node interface {
	isNode()
}

// Element is embedded by every node with children.
type Element struct {
	Children []Node
	ID       string
	Style    string
	Class    string
}

func (*Element) isNode() {}

func (e *Element) element() *Element { return e }

// Append adds children.
func (e *Element) Append(nodes ...Node) { e.Children = append(e.Children, nodes...) }

type container interface {
	Node
	element() *Element
}

// Children returns the children of n, or nil for leaf nodes.
func Children(n Node) []Node {
	if c, ok := n.(container); ok {
		return c.element().Children
	}
	return nil
}

// ElementOf returns the shared attributes of a container node, or nil for
// leaf nodes.
func ElementOf(n Node) *Element {
	if c, ok := n.(container); ok {
		return c.element()
	}
	return nil
}

// SetChildren replaces the children of a container node. It is a no-op for
// leaf nodes.
func SetChildren(n Node, children []Node) {
	if c, ok := n.(container); ok {
		c.element().Children = children
	}
}

// Leaf nodes.
type (
	Text struct{ Value string }
	// HTML is pre-rendered markup emitted verbatim.
	HTML struct {
		Source string
		Block  bool
	}
	Newline  struct{}
	Ruler    struct{}
	MetaData struct {
		Key    string
		Values []string
	}
	ConflictMarker struct{ Side string } // left, middle or right
	// MacroRef is a dynamic macro evaluated at render time.
	MacroRef struct{ Unit *Unit }
	// ParserRef is a dynamic parser block evaluated at render time.
	ParserRef struct{ Unit *Unit }
	// Deferred stands in for a tree processor until its stage runs.
	Deferred struct {
		Name  string
		Block bool
		ext   TreeProcessor
	}
)

func (*Text) isNode()           {}
func (*HTML) isNode()           {}
func (*Newline) isNode()        {}
func (*Ruler) isNode()          {}
func (*MetaData) isNode()       {}
func (*ConflictMarker) isNode() {}
func (*MacroRef) isNode()       {}
func (*ParserRef) isNode()      {}
func (*Deferred) isNode()       {}

// Containers.
type (
	Document       struct{ Element }
	Raw            struct{ Element }
	Span           struct{ Element }
	Strong         struct{ Element }
	Emphasized     struct{ Element }
	Highlighted    struct{ Element }
	Underline      struct{ Element }
	Stroke         struct{ Element }
	Small          struct{ Element }
	Big            struct{ Element }
	Sub            struct{ Element }
	Sup            struct{ Element }
	Code           struct{ Element }
	Paragraph      struct{ Element }
	ErrorBox       struct{ Element }
	Quote          struct{ Element }
	Preformatted   struct{ Element }
	Layer          struct{ Element }
	ListItem       struct{ Element }
	DefinitionList struct{ Element }
	Table          struct{ Element }
	TableRow       struct{ Element }

	Color struct {
		Element
		Value string
	}
	Size struct {
		Element
		Percent int
	}
	Font struct {
		Element
		Faces []string
	}
	Edited struct {
		Element
		Username string
	}
	Moderated struct {
		Element
		Username string
	}
	Link struct {
		Element
		URL   string
		Title string
	}
	InternalLink struct {
		Element
		Page     string
		Anchor   string
		Existing bool
	}
	InterWikiLink struct {
		Element
		Wiki   string
		Page   string
		Anchor string
	}
	SourceLink struct {
		Element
		Target int
	}
	Section struct {
		Element
		Level int
	}
	// Footnote renders inline until FootnoteSupport numbers it.
	Footnote struct {
		Element
		Number int
	}
	Headline struct {
		Element
		Level int
	}
	List struct {
		Element
		Type string
	}
	DefinitionTerm struct {
		Element
		Term string
	}
	TableCell struct {
		Element
		Colspan int
		Rowspan int
		Align   string
		Valign  string
	}
	TableHeader struct{ TableCell }
	Box         struct {
		Element
		Title  string
		Align  string
		Valign string
	}
)

// NewText returns a text node.
func NewText(s string) *Text { return &Text{Value: s} }

// NewErrorBox builds the standard inline error: a bold title followed by
// a paragraph with the message.
func NewErrorBox(title, message string) *ErrorBox {
	return &ErrorBox{Element{Children: []Node{
		&Strong{Element{Children: []Node{NewText(title)}}},
		&Paragraph{Element{Children: []Node{NewText(message)}}},
	}}}
}

// NewHeadline builds a headline whose id is the slug of its text.
func NewHeadline(level int, children []Node) *Headline {
	h := &Headline{Element: Element{Children: children}, Level: level}
	h.ID = Slugify(TextOf(h))
	return h
}

// NewLink builds a link. Without children the URL itself is the caption
// and the title.
func NewLink(url string, children []Node) *Link {
	l := &Link{Element: Element{Children: children}, URL: url}
	if len(children) == 0 {
		l.Children = []Node{NewText(strings.TrimPrefix(url, "mailto:"))}
		l.Title = url
	}
	return l
}

// NewInternalLink builds a link to a wiki page. Without children the page
// title, and the anchor if any, become the caption.
func NewInternalLink(page, anchor string, children []Node, existing bool) *InternalLink {
	page = NormalizePageName(page)
	if len(children) == 0 {
		caption := page
		if anchor != "" {
			caption = fmt.Sprintf("%s (section “%s”)", page, anchor)
		}
		children = []Node{NewText(caption)}
	}
	return &InternalLink{Element: Element{Children: children}, Page: page, Anchor: anchor, Existing: existing}
}

// NewInterWikiLink builds a link resolved through the inter-wiki map at
// render time.
func NewInterWikiLink(wiki, page, anchor string, children []Node) *InterWikiLink {
	if len(children) == 0 {
		children = []Node{NewText(page)}
	}
	return &InterWikiLink{Element: Element{Children: children}, Wiki: wiki, Page: page, Anchor: anchor}
}

// FlagsOf returns the capability flags of n. Containers without a fixed
// block level are block level when any child is.
func FlagsOf(n Node) Flags {
	switch n := n.(type) {
	case *Text:
		return FlagText
	case *HTML:
		if n.Block {
			return FlagBlock
		}
		return 0
	case *Ruler, *ConflictMarker:
		return FlagBlock
	case *Newline, *MetaData:
		return 0
	case *MacroRef:
		if n.Unit != nil && n.Unit.Block {
			return FlagBlock
		}
		return 0
	case *ParserRef:
		if n.Unit != nil && n.Unit.Block {
			return FlagBlock
		}
		return 0
	case *Deferred:
		if n.Block {
			return FlagBlock
		}
		return 0
	case *Document:
		return FlagContainer | FlagParagraphs | blockChildren(n.Children)
	case *Raw, *Code:
		return FlagContainer | FlagRaw | blockChildren(Children(n))
	case *Paragraph:
		return FlagContainer | FlagBlock | FlagParagraph
	case *ErrorBox, *Quote, *Edited, *Moderated, *DefinitionTerm, *ListItem, *Box, *Layer:
		return FlagContainer | FlagBlock | FlagParagraphs
	case *Preformatted:
		return FlagContainer | FlagBlock | FlagRaw
	case *Headline, *DefinitionList, *List, *Table, *TableRow, *TableCell, *TableHeader:
		return FlagContainer | FlagBlock
	case container:
		return FlagContainer | blockChildren(n.element().Children)
	}
	return 0
}

func blockChildren(children []Node) Flags {
	for _, c := range children {
		if FlagsOf(c)&FlagBlock != 0 {
			return FlagBlock
		}
	}
	return 0
}

// IsBlock reports whether n is block level.
func IsBlock(n Node) bool { return FlagsOf(n)&FlagBlock != 0 }

// TextOf returns the plain text of n.
func TextOf(n Node) string {
	switch n := n.(type) {
	case *Text:
		return n.Value
	case *HTML:
		return StripTags(n.Source)
	case *Newline:
		return "\n"
	case *ParserRef:
		if n.Unit != nil {
			return n.Unit.Body
		}
		return ""
	case *SourceLink:
		return fmt.Sprintf("[%d]", n.Target)
	case *Document, *Raw:
		return joinText(Children(n))
	case *Paragraph:
		return strings.TrimSpace(joinText(n.Children)) + "\n\n"
	case container:
		text := joinText(n.element().Children)
		if IsBlock(n) {
			text += "\n"
		}
		return text
	}
	return ""
}

func joinText(children []Node) string {
	var sb strings.Builder
	for _, c := range children {
		sb.WriteString(TextOf(c))
	}
	return sb.String()
}

// listTypes maps list markers, by position in listMarkers, to list types.
var listTypes = [...]string{
	"unordered", "unordered", "arabiczero", "arabic",
	"alphalower", "alphaupper", "romanlower", "romanupper",
}

const listMarkers = "*-01aAiI"

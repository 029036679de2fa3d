// transformers.go holds the tree rewrites that run after parsing.
package markup

import (
	"fmt"
	"regexp"
	"strconv"
)

// Transformer rewrites a complete document. It may modify doc in place and
// return it, or return a new document. Running a transformer twice must
// give the same tree as running it once.
type Transformer interface {
	Transform(doc *Document) *Document
}

// DefaultTransformers returns the standard pipeline in order.
func DefaultTransformers() []Transformer {
	return pipeline(defaultSmileyInjector())
}

// TransformersWithSmileys returns the standard pipeline replacing
// DefaultSmileys with smileys.
func TransformersWithSmileys(smileys []Smiley) []Transformer {
	return pipeline(NewSmileyInjector(smileys))
}

func pipeline(smileys *SmileyInjector) []Transformer {
	return []Transformer{
		AutomaticParagraphs{},
		smileys,
		FootnoteSupport{},
		HeadlineProcessor{},
		AutomaticStructure{},
		KeyHandler{},
	}
}

var paragraphBreakRe = regexp.MustCompile(`(\s*?\n){2,}`)

// AutomaticParagraphs wraps inline content of every paragraph-allowing
// container into paragraphs. Blank lines split paragraphs and block nodes
// end them.
type AutomaticParagraphs struct{}

func (t AutomaticParagraphs) Transform(doc *Document) *Document {
	t.process(doc)
	return doc
}

func (t AutomaticParagraphs) process(parent Node) {
	for _, c := range Children(parent) {
		if f := FlagsOf(c); f&FlagContainer != 0 && f&FlagRaw == 0 {
			t.process(c)
		}
	}
	if FlagsOf(parent)&FlagParagraphs == 0 {
		return
	}

	// groups alternate between inline runs and single blocks.
	type group struct {
		block  Node
		inline []Node
	}
	groups := []*group{{}}
	current := func() *group { return groups[len(groups)-1] }

	for _, child := range joinTextNodes(Children(parent)) {
		switch {
		case FlagsOf(child)&FlagText != 0:
			text := child.(*Text).Value
			pos := 0
			for _, loc := range paragraphBreakRe.FindAllStringIndex(text, -1) {
				if block := text[pos:loc[0]]; block != "" {
					current().inline = append(current().inline, NewText(block))
				}
				groups = append(groups, &group{})
				pos = loc[1]
			}
			if block := text[pos:]; block != "" {
				current().inline = append(current().inline, NewText(block))
			}
		case IsBlock(child):
			groups = append(groups, &group{block: child}, &group{})
		default:
			current().inline = append(current().inline, child)
		}
	}

	var out []Node
	for _, g := range groups {
		if g.block != nil {
			out = append(out, g.block)
			continue
		}
		for _, n := range g.inline {
			if t, ok := n.(*Text); !ok || t.Value != "" {
				out = append(out, &Paragraph{Element{Children: g.inline}})
				break
			}
		}
	}
	SetChildren(parent, out)
}

// joinTextNodes merges runs of adjacent text nodes.
func joinTextNodes(children []Node) []Node {
	var out []Node
	var buf string
	pending := false
	flush := func() {
		if pending && buf != "" {
			out = append(out, NewText(buf))
		}
		buf, pending = "", false
	}
	for _, c := range children {
		if t, ok := c.(*Text); ok {
			buf += t.Value
			pending = true
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	return out
}

// FootnoteSupport numbers footnotes in document order and collects their
// contents in a list at the end of the document. An existing footnote
// list is rebuilt in place.
type FootnoteSupport struct{}

func (FootnoteSupport) Transform(doc *Document) *Document {
	var existing *List
	var footnotes []*Footnote
	var collect func(n Node)
	collect = func(n Node) {
		if l, ok := n.(*List); ok && l.Class == "footnotes" {
			existing = l
			return
		}
		if f, ok := n.(*Footnote); ok {
			footnotes = append(footnotes, f)
		}
		for _, c := range Children(n) {
			collect(c)
		}
	}
	collect(doc)
	if len(footnotes) == 0 {
		return doc
	}

	items := make([]Node, 0, len(footnotes))
	for i, f := range footnotes {
		f.Number = i + 1
		n := strconv.Itoa(f.Number)
		backlink := &Link{
			Element: Element{Children: []Node{NewText(n)}, ID: "fn-" + n},
			URL:     "#bfn-" + n,
		}
		children := append([]Node{backlink, NewText(": ")}, f.Children...)
		items = append(items, &ListItem{Element{Children: children}})
	}
	if existing != nil {
		existing.Children = items
		return doc
	}
	doc.Append(&List{Element: Element{Children: items, Class: "footnotes"}, Type: "unordered"})
	return doc
}

// HeadlineProcessor makes headline ids unique by appending "-N" to
// repeats. Headlines without an id get "empty-headline".
type HeadlineProcessor struct{}

func (HeadlineProcessor) Transform(doc *Document) *Document {
	seen := map[string]int{}
	for _, h := range NodesOf[*Headline](doc) {
		for {
			if h.ID == "" {
				h.ID = "empty-headline"
			}
			if _, ok := seen[h.ID]; !ok {
				seen[h.ID] = 1
				break
			}
			seen[h.ID]++
			h.ID = fmt.Sprintf("%s-%d", h.ID, seen[h.ID])
		}
	}
	return doc
}

// AutomaticStructure nests the top-level nodes into sections opened by
// headlines.
type AutomaticStructure struct{}

func (AutomaticStructure) Transform(doc *Document) *Document {
	root := &Section{}
	stack := []*Section{root}
	for _, node := range doc.Children {
		if h, ok := node.(*Headline); ok {
			for h.Level < len(stack) {
				stack = stack[:len(stack)-1]
			}
			for h.Level > len(stack)-1 {
				sec := &Section{Level: len(stack)}
				stack[len(stack)-1].Append(sec)
				stack = append(stack, sec)
			}
		}
		stack[len(stack)-1].Append(node)
	}
	doc.Children = root.Children
	return doc
}

// KeyHandler removes the paragraph around keyboard key spans so that key
// sequences sit inline in their container.
type KeyHandler struct{}

func (t KeyHandler) Transform(doc *Document) *Document {
	t.process(doc)
	return doc
}

func (t KeyHandler) process(parent Node) {
	children := Children(parent)
	out := make([]Node, 0, len(children))
	for _, c := range children {
		if p, ok := c.(*Paragraph); ok && holdsKey(p) {
			out = append(out, p.Children...)
			continue
		}
		if f := FlagsOf(c); f&FlagContainer != 0 && f&FlagRaw == 0 {
			t.process(c)
		}
		out = append(out, c)
	}
	SetChildren(parent, out)
}

func holdsKey(p *Paragraph) bool {
	for _, c := range p.Children {
		if e, ok := c.(container); ok && e.element().Class == "key" {
			return true
		}
	}
	return false
}

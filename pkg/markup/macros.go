// macros.go holds the builtin macros.
package markup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func registerMacros(r *Registry) {
	r.MustRegister(Spec{
		Kind:  KindMacro,
		Names: []string{"TableOfContents", "Inhaltsverzeichnis"},
		Block: true,
		Arguments: []Argument{
			{Name: "max_depth", Type: ArgInt, Default: 3},
			{Name: "type", Type: ArgOneOf, Default: "arabic", OneOf: map[string]string{
				"unordered": "unordered",
				"arabic0":   "arabiczero",
				"arabic":    "arabic",
				"alphabeth": "alphalower",
				"ALPHABETH": "alphaupper",
				"roman":     "romanlower",
				"ROMAN":     "romanupper",
			}},
		},
		New: func(c Call) Extension {
			return &tableOfContents{depth: c.Values.Int("max_depth"), listType: c.Values.String("type")}
		},
	})
	r.MustRegister(Spec{
		Kind:      KindMacro,
		Names:     []string{"Date", "Datum"},
		Arguments: []Argument{{Name: "date", Type: ArgString}},
		Contexts:  []string{"ikhaya", "wiki"},
		New:       func(c Call) Extension { return newDate(c.Values.String("date")) },
	})
	r.MustRegister(Spec{
		Kind:  KindMacro,
		Names: []string{"BR"},
		New:   func(Call) Extension { return lineBreak{} },
	})
	r.MustRegister(Spec{
		Kind:      KindMacro,
		Names:     []string{"Anchor", "Anker"},
		Arguments: []Argument{{Name: "id", Type: ArgString}},
		New:       func(c Call) Extension { return anchor{id: c.Values.String("id")} },
	})
	r.MustRegister(Spec{
		Kind:  KindMacro,
		Names: []string{"SPAN"},
		Arguments: []Argument{
			{Name: "content", Type: ArgString, Default: ""},
			{Name: "class_", Type: ArgString},
			{Name: "style", Type: ArgString},
		},
		New: func(c Call) Extension {
			return span{
				content: c.Values.String("content"),
				class:   c.Values.String("class_"),
				style:   FilterStyle(c.Values.String("style")),
			}
		},
	})
	r.MustRegister(Spec{
		Kind:      KindMacro,
		Names:     []string{"Include", "Einbinden"},
		Arguments: []Argument{{Name: "page", Type: ArgString}},
		Block:     true,
		Contexts:  []string{"wiki"},
		New:       func(c Call) Extension { return includeMacro{page: c.Values.String("page")} },
	})
}

// tableOfContents lists the headlines of the final tree.
type tableOfContents struct {
	depth    int
	listType string
}

func (*tableOfContents) Stage() Stage { return StageFinal }

// BuildTree nests one list per headline level. Skipped levels get an
// unstyled item so the nesting stays intact.
func (t *tableOfContents) BuildTree(doc *Document) Node {
	result := &List{Type: t.listType}
	stack := []*List{result}
	lastLevel := 1
	top := func() *List { return stack[len(stack)-1] }
	pop := func() {
		n := top()
		stack = stack[:len(stack)-1]
		if items := top().Children; len(items) > 0 {
			items[len(items)-1].(*ListItem).Append(n)
			return
		}
		top().Append(&ListItem{Element{Children: []Node{n}, Style: "list-style: none"}})
	}

	for _, h := range NodesOf[*Headline](doc) {
		if h.Level > t.depth {
			continue
		}
		switch {
		case h.Level > lastLevel:
			for i := 0; i < h.Level-lastLevel-1; i++ {
				l := &List{Type: t.listType}
				l.Append(&ListItem{Element{Style: "list-style: none"}})
				stack = append(stack, l)
			}
			stack = append(stack, &List{Type: t.listType})
		case h.Level < lastLevel:
			for i := 0; i < lastLevel-h.Level; i++ {
				pop()
			}
		}
		link := NewLink("#"+h.ID, []Node{NewText(strings.TrimSpace(TextOf(h)))})
		top().Append(&ListItem{Element{Children: []Node{link}}})
		lastLevel = h.Level
	}
	for i := 0; i < lastLevel-1; i++ {
		pop()
	}

	head := &Layer{Element{Children: []Node{NewText("Table of contents")}, Class: "head"}}
	return &Layer{Element{
		Children: []Node{head, result},
		Class:    fmt.Sprintf("toc toc-depth-%d", t.depth),
	}}
}

// date renders a point in time, or now when none was given.
type date struct {
	now   bool
	value time.Time
	valid bool
}

func newDate(raw string) *date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &date{now: true, valid: true}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &date{value: t, valid: true}
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &date{value: time.Unix(n, 0).UTC(), valid: true}
	}
	return &date{}
}

func (d *date) Render(rc *RenderContext, format string, m *Machine) (string, error) {
	if !d.valid {
		return m.RenderNode(NewText("Invalid date"), rc, format)
	}
	t := d.value
	if d.now {
		t = time.Now()
	}
	return m.RenderNode(NewText(t.Format("2006-01-02 15:04")), rc, format)
}

type lineBreak struct{}

func (lineBreak) BuildNode() Node { return &Newline{} }

type anchor struct{ id string }

func (a anchor) BuildNode() Node {
	return &Link{
		Element: Element{Children: []Node{NewText("⚓︎")}, ID: a.id, Class: "anchor"},
		URL:     "#" + a.id,
	}
}

type span struct{ content, class, style string }

func (s span) BuildNode() Node {
	return &Span{Element{Children: []Node{NewText(s.content)}, Class: s.class, Style: s.style}}
}

// includeMacro renders another page in place. The page is parsed with the
// machine's settings and rendered with the same context, so a page that
// includes itself, directly or not, is caught.
type includeMacro struct{ page string }

func (i includeMacro) Render(rc *RenderContext, format string, m *Machine) (string, error) {
	page := NormalizePageName(i.page)
	if page == "" {
		return m.RenderNode(NewErrorBox("Missing page", "No page was given."), rc, format)
	}
	if rc.Pages == nil {
		return "", errors.New("no page store configured")
	}
	leave, ok := rc.Enter(page)
	if !ok {
		m.loggerFor(rc).Warn("include cycle", "page", page, "render", rc.ID)
		return m.RenderNode(NewErrorBox("Circular include",
			fmt.Sprintf("The page “%s” includes itself.", page)), rc, format)
	}
	defer leave()

	text, err := rc.Pages.Page(rc.Context(), page)
	if errors.Is(err, ErrPageNotFound) {
		return m.RenderNode(NewErrorBox("Missing page",
			fmt.Sprintf("The page “%s” does not exist.", page)), rc, format)
	}
	if err != nil {
		return "", fmt.Errorf("loading %q: %w", page, err)
	}
	doc, err := m.Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", page, err)
	}
	return m.RenderNode(doc, rc, format)
}

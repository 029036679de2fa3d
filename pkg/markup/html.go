// html.go turns nodes into output fragments for the html and text formats.
package markup

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Output formats.
const (
	FormatHTML = "html"
	FormatText = "text"
)

var conflictMessages = map[string]string{
	"left":   "<strong>Conflict</strong> – remote version",
	"middle": "<strong>Conflict</strong> – local version",
	"right":  "<strong>Conflict End</strong>",
}

// preparer walks a tree and feeds fragments to yield. Once yield asks to
// stop, the walk finishes without emitting anything further.
type preparer struct {
	links   Links
	yield   func(Fragment) bool
	stopped bool
}

func (p *preparer) out(parts ...string) {
	for _, s := range parts {
		if p.stopped || s == "" {
			continue
		}
		if !p.yield(Fragment{Text: s}) {
			p.stopped = true
		}
	}
}

func (p *preparer) unit(u *Unit) {
	if p.stopped || u == nil {
		return
	}
	if !p.yield(Fragment{Unit: u}) {
		p.stopped = true
	}
}

func (p *preparer) htmlChildren(children []Node) {
	for _, c := range children {
		if p.stopped {
			return
		}
		p.html(c)
	}
}

// wrap emits children inside tag.
func (p *preparer) wrap(open, close string, children []Node) {
	p.out(open)
	p.htmlChildren(children)
	p.out(close)
}

func (p *preparer) html(n Node) {
	switch n := n.(type) {
	case *Text:
		p.out(escapeHTML(n.Value))
	case *HTML:
		p.out(n.Source)
	case *Newline:
		p.out("<br />")
	case *Ruler:
		p.out("<hr />")
	case *MetaData, *Deferred:
	case *ConflictMarker:
		p.out(`<div class="conflict conflict-`+n.Side+`">`, conflictMessages[n.Side], "</div>")
	case *MacroRef:
		p.unit(n.Unit)
	case *ParserRef:
		p.unit(n.Unit)
	case *Document:
		p.htmlChildren(n.Children)
	case *Raw:
		p.htmlChildren(n.Children)
	case *Span:
		p.wrap(standardTag("span", &n.Element), "</span>", n.Children)
	case *Strong:
		p.wrap(standardTag("strong", &n.Element), "</strong>", n.Children)
	case *Emphasized:
		p.wrap(standardTag("em", &n.Element), "</em>", n.Children)
	case *Highlighted:
		p.wrap(standardTag("mark", &n.Element), "</mark>", n.Children)
	case *Underline:
		p.wrap(standardTag("span", &n.Element, "underline"), "</span>", n.Children)
	case *Stroke:
		p.wrap(standardTag("del", &n.Element), "</del>", n.Children)
	case *Small:
		p.wrap(standardTag("small", &n.Element), "</small>", n.Children)
	case *Big:
		p.wrap(standardTag("big", &n.Element), "</big>", n.Children)
	case *Sub:
		p.wrap(standardTag("sub", &n.Element), "</sub>", n.Children)
	case *Sup:
		p.wrap(standardTag("sup", &n.Element), "</sup>", n.Children)
	case *Code:
		p.wrap(standardTag("code", &n.Element), "</code>", n.Children)
	case *Paragraph:
		p.wrap(standardTag("p", &n.Element), "</p>", n.Children)
	case *ErrorBox:
		p.wrap(standardTag("div", &n.Element, "error"), "</div>", n.Children)
	case *Quote:
		p.wrap(standardTag("blockquote", &n.Element), "</blockquote>", n.Children)
	case *Preformatted:
		p.wrap(standardTag("pre", &n.Element), "</pre>", n.Children)
	case *Layer:
		p.wrap(standardTag("div", &n.Element), "</div>", n.Children)
	case *ListItem:
		p.wrap(standardTag("li", &n.Element), "</li>", n.Children)
	case *DefinitionList:
		p.wrap(standardTag("dl", &n.Element), "</dl>", n.Children)
	case *Table:
		p.wrap(standardTag("table", &n.Element), "</table>", n.Children)
	case *TableRow:
		p.wrap(standardTag("tr", &n.Element), "</tr>", n.Children)
	case *Color:
		p.wrap(styledTag("span", &n.Element, "color: "+n.Value), "</span>", n.Children)
	case *Size:
		p.wrap(styledTag("span", &n.Element, fmt.Sprintf("font-size: %.2f%%", float64(n.Percent))), "</span>", n.Children)
	case *Font:
		if len(n.Faces) == 0 {
			p.htmlChildren(n.Children)
			return
		}
		p.wrap(styledTag("span", &n.Element, "font-family: "+strings.Join(n.Faces, ", ")), "</span>", n.Children)
	case *Edited:
		p.moderation(&n.Element, "edited", "Edited by", n.Username)
	case *Moderated:
		p.moderation(&n.Element, "moderated", "Moderated by", n.Username)
	case *Link:
		p.link(n)
	case *InternalLink:
		existing := n.Existing || p.links.PageExists(n.Page)
		missing := ""
		if !existing {
			missing = "missing"
		}
		p.wrap(openTag("a",
			attr{"href", p.links.PageURL(n.Page, n.Anchor)},
			attr{"id", n.ID},
			attr{"style", n.Style},
			attr{"class", classes("internal", missing, n.Class)},
		), "</a>", n.Children)
	case *InterWikiLink:
		target, ok := p.links.InterWiki(n.Wiki, n.Page)
		if !ok {
			p.htmlChildren(n.Children)
			return
		}
		if n.Anchor != "" {
			target += "#" + n.Anchor
		}
		p.wrap(openTag("a",
			attr{"href", target},
			attr{"id", n.ID},
			attr{"style", n.Style},
			attr{"class", classes("interwiki", "interwiki-"+n.Wiki, n.Class)},
		), "</a>", n.Children)
	case *SourceLink:
		p.out(standardTag("sup", &n.Element), fmt.Sprintf(`<a href="#source-%d">`, n.Target))
		p.htmlChildren(n.Children)
		p.out("</a></sup>")
	case *Section:
		p.wrap(standardTag("section", &n.Element, "section_"+strconv.Itoa(n.Level)), "</section>", n.Children)
	case *Footnote:
		if n.Number == 0 {
			p.wrap(standardTag("small", &n.Element, "note"), "</small>", n.Children)
			return
		}
		p.out(fmt.Sprintf(`<a href="#fn-%[1]d" id="bfn-%[1]d" class="footnote">`+
			`<span class="paren">[</span>%[1]d<span class="paren">]</span></a>`, n.Number))
	case *Headline:
		tag := "h" + strconv.Itoa(n.Level+1)
		p.out(standardTag(tag, &n.Element))
		p.htmlChildren(n.Children)
		p.out(`<a href="#`+escapeHTML(n.ID)+`" class="headerlink">¶</a>`, "</"+tag+">")
	case *List:
		if n.Type == "unordered" {
			p.wrap(standardTag("ul", &n.Element), "</ul>", n.Children)
			return
		}
		p.wrap(standardTag("ol", &n.Element, n.Type), "</ol>", n.Children)
	case *DefinitionTerm:
		p.out(standardTag("dt", &n.Element), escapeHTML(n.Term), "</dt>", openTag("dd", attr{"class", n.Class}))
		p.htmlChildren(n.Children)
		p.out("</dd>")
	case *TableHeader:
		p.cell("th", &n.TableCell)
	case *TableCell:
		p.cell("td", n)
	case *Box:
		p.box(n)
	}
}

// styledTag is standardTag with style replaced by a computed declaration.
func styledTag(tag string, e *Element, style string) string {
	return openTag(tag, attr{"id", e.ID}, attr{"style", style}, attr{"class", e.Class})
}

func (p *preparer) moderation(e *Element, class, message, username string) {
	userURL, _ := p.links.Shortcut("user", username)
	p.out(fmt.Sprintf(`<div class="%s"><p><strong>%s <a class="crosslink user" href="%s">%s</a>:</strong></p> `,
		class, message, escapeHTML(userURL), escapeHTML(username)))
	p.htmlChildren(e.Children)
	p.out("</div>")
}

func (p *preparer) link(n *Link) {
	href, class, rel := "invalid-url", "crosslink", ""
	if u, err := url.Parse(n.URL); err == nil {
		if strings.EqualFold(u.Scheme, "javascript") {
			p.out(escapeHTML(TextOf(n)))
			return
		}
		href = u.String()
		if !p.links.IsLocal(u.Hostname()) {
			class, rel = "external", "nofollow"
		}
	}
	p.wrap(openTag("a",
		attr{"href", href},
		attr{"rel", rel},
		attr{"id", n.ID},
		attr{"style", n.Style},
		attr{"title", n.Title},
		attr{"class", classes(class, n.Class)},
	), "</a>", n.Children)
}

func alignStyle(align, valign, style string) string {
	var parts []string
	if align != "" {
		parts = append(parts, "text-align: "+align)
	}
	if valign != "" {
		parts = append(parts, "vertical-align: "+valign)
	}
	if style != "" {
		parts = append(parts, style)
	}
	return strings.Join(parts, "; ")
}

func (p *preparer) cell(tag string, n *TableCell) {
	span := func(v int) string {
		if v <= 0 {
			return ""
		}
		return strconv.Itoa(v)
	}
	p.wrap(openTag(tag,
		attr{"colspan", span(n.Colspan)},
		attr{"rowspan", span(n.Rowspan)},
		attr{"style", alignStyle(n.Align, n.Valign, n.Style)},
		attr{"id", n.ID},
		attr{"class", n.Class},
	), "</"+tag+">", n.Children)
}

func (p *preparer) box(n *Box) {
	p.out(openTag("div",
		attr{"id", n.ID},
		attr{"style", alignStyle(n.Align, n.Valign, n.Style)},
		attr{"class", n.Class},
	))
	if n.Title != "" {
		p.out(openTag("h3", attr{"class", n.Class}), escapeHTML(n.Title), "</h3>")
	}
	p.wrap(`<div class="contents">`, "</div></div>", n.Children)
}

// text renders the plain text format. Units are still emitted so dynamic
// extensions can contribute their own text.
func (p *preparer) text(n Node) {
	switch n := n.(type) {
	case *MacroRef:
		p.unit(n.Unit)
	case *ParserRef:
		p.unit(n.Unit)
	case *MetaData, *Deferred:
	case *Ruler:
		p.out("\n")
	case *Footnote:
		if n.Number > 0 {
			p.out(fmt.Sprintf("[%d]", n.Number))
			return
		}
		p.out("(")
		p.textChildren(n.Children)
		p.out(")")
	case *ListItem:
		p.out("* ")
		p.textChildren(n.Children)
		p.out("\n")
	case *DefinitionTerm:
		p.out(n.Term, ": ")
		p.textChildren(n.Children)
		p.out("\n")
	case *Box:
		if n.Title != "" {
			p.out(n.Title, "\n")
		}
		p.textChildren(n.Children)
		p.out("\n")
	case *Paragraph:
		p.textChildren(n.Children)
		p.out("\n\n")
	case *TableCell, *TableHeader:
		p.textChildren(Children(n))
		p.out("\t")
	case container:
		p.textChildren(n.element().Children)
		if IsBlock(n) {
			p.out("\n")
		}
	default:
		p.out(TextOf(n))
	}
}

func (p *preparer) textChildren(children []Node) {
	for _, c := range children {
		if p.stopped {
			return
		}
		p.text(c)
	}
}

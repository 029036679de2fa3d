package markup

import (
	"strings"

	"golang.org/x/net/html"
)

type attr struct {
	name  string
	value string
}

// openTag builds an opening tag. Empty attribute values are omitted and
// void elements are closed with " /".
func openTag(tag string, attrs ...attr) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(tag)
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.name)
		sb.WriteString(`="`)
		sb.WriteString(escapeHTML(a.value))
		sb.WriteByte('"')
	}
	switch tag {
	case "br", "hr", "img":
		sb.WriteString(" />")
	default:
		sb.WriteByte('>')
	}
	return sb.String()
}

// standardTag is openTag with the id, style and class of e.
func standardTag(tag string, e *Element, extra ...string) string {
	return openTag(tag,
		attr{"id", e.ID},
		attr{"style", e.Style},
		attr{"class", classes(append(extra, e.Class)...)},
	)
}

func classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}

// StripTags returns the text content of an HTML fragment with entities
// decoded.
func StripTags(source string) string {
	z := html.NewTokenizer(strings.NewReader(source))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

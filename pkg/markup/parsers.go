// parsers.go holds the builtin parser blocks.
package markup

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

func registerParsers(r *Registry) {
	r.MustRegister(Spec{
		Kind:      KindParser,
		Names:     []string{"code"},
		Arguments: []Argument{{Name: "syntax", Type: ArgString, Default: "text"}},
		New: func(c Call) Extension {
			return codeBlock{data: c.Body, syntax: c.Values.String("syntax")}
		},
	})
	r.MustRegister(Spec{
		Kind:  KindParser,
		Names: []string{"csv"},
		New:   func(c Call) Extension { return csvBlock{data: c.Body} },
	})
	r.MustRegister(Spec{
		Kind:  KindParser,
		Names: []string{"markdown"},
		New:   func(c Call) Extension { return markdownBlock{data: c.Body} },
	})
}

var codeFormatter = chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(false))

// codeBlock highlights source code. Unknown languages are shown as plain
// preformatted text.
type codeBlock struct{ data, syntax string }

func (b codeBlock) BuildNode() Node {
	layer := &Layer{Element{Class: "code"}}
	if html, ok := highlight(b.data, b.syntax); ok {
		layer.Append(&HTML{Source: html, Block: true})
	} else {
		layer.Append(&Preformatted{Element{Children: []Node{NewText(b.data)}, Class: "notranslate"}})
	}
	return layer
}

func highlight(code, syntax string) (string, bool) {
	lexer := lexers.Get(syntax)
	if lexer == nil {
		return "", false
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, styles.Fallback, it); err != nil {
		return "", false
	}
	return buf.String(), true
}

// csvBlock turns comma separated rows into a table. Rows shorter than the
// widest one stretch their last cell over the missing columns.
type csvBlock struct{ data string }

func (b csvBlock) BuildNode() Node {
	r := csv.NewReader(strings.NewReader(b.data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	table := &Table{}
	type rowEnd struct {
		count int
		cell  *TableCell
	}
	var ends []rowEnd
	widest := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return NewErrorBox("Invalid CSV", err.Error())
		}
		if len(record) == 0 {
			continue
		}
		row := &TableRow{}
		var cell *TableCell
		for _, value := range record {
			cell = &TableCell{Element: Element{Children: []Node{NewText(value)}}}
			row.Append(cell)
		}
		table.Append(row)
		widest = max(widest, len(record))
		ends = append(ends, rowEnd{len(record), cell})
	}
	for _, e := range ends {
		if e.count < widest {
			e.cell.Colspan = widest - e.count + 1
		}
	}
	return table
}

var (
	markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
	markdownPolicy   = bluemonday.UGCPolicy()
)

// markdownBlock renders CommonMark with the GitHub extensions. The output
// is sanitised before it enters the tree.
type markdownBlock struct{ data string }

func (b markdownBlock) BuildNode() Node {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(b.data), &buf); err != nil {
		return NewErrorBox("Invalid Markdown", err.Error())
	}
	return &HTML{Source: markdownPolicy.Sanitize(buf.String()), Block: true}
}

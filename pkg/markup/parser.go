// parser.go builds the node tree from the token stream.
package markup

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// MaxDepth is the default nesting ceiling of a Parser.
const MaxDepth = 200

// ParseOptions configures a parse.
type ParseOptions struct {
	// ForceExisting marks every internal link as pointing to an existing
	// page.
	ForceExisting bool
	// Strict returns depth and parse errors instead of degrading them into
	// an error document.
	Strict bool
	// Transformers run between the late and final stages. Nil selects
	// DefaultTransformers; an empty slice disables them.
	Transformers []Transformer
	Registry     *Registry
	Links        Links
	Logger       *log.Logger
}

// Parser turns one markup text into a Document. It is single use.
type Parser struct {
	// MaxDepth caps node nesting.
	MaxDepth int

	text         string
	lexer        Lexer
	opts         ParseOptions
	transformers []Transformer
	registry     *Registry
	links        Links
	logger       *log.Logger
	depth        int
	used         bool
	handlers     map[TokenType]func(*TokenStream) Node
	deferred     map[Stage][]*Deferred
}

// parseFailure unwinds the recursive descent; Parse recovers it.
type parseFailure struct{ err error }

// NewParser returns a parser for text.
func NewParser(text string, opts ParseOptions) *Parser {
	p := &Parser{
		MaxDepth:     MaxDepth,
		text:         text,
		opts:         opts,
		transformers: opts.Transformers,
		registry:     opts.Registry,
		links:        opts.Links,
		logger:       opts.Logger,
		deferred:     map[Stage][]*Deferred{},
	}
	if p.transformers == nil {
		p.transformers = DefaultTransformers()
	}
	if p.registry == nil {
		p.registry = sharedRegistry()
	}
	if p.links == nil {
		p.links = StaticLinks{}
	}
	if p.logger == nil {
		p.logger = discardLogger()
	}
	p.handlers = p.buildHandlers()
	return p
}

// Parse parses text with default options.
func Parse(text string) (*Document, error) {
	return ParseWithOptions(text, ParseOptions{})
}

// ParseWithOptions parses text. Unless opts.Strict is set, nesting past
// the depth ceiling and malformed token sequences yield a document
// describing the failure instead of an error.
func ParseWithOptions(text string, opts ParseOptions) (*Document, error) {
	doc, err := NewParser(text, opts).Parse()
	if err == nil || opts.Strict {
		return doc, err
	}
	message := err.Error()
	if errors.Is(err, ErrStackExhausted) {
		message = "The parser found too deeply nested elements."
	}
	return &Document{Element{Children: []Node{
		&Paragraph{Element{Children: []Node{
			&Strong{Element{Children: []Node{NewText("Internal error: ")}}},
			NewText(message),
		}}},
	}}}, nil
}

// Parse runs the parser. The tree processors of the initial and late
// stages run before the transformers, those of the final stage after.
func (p *Parser) Parse() (doc *Document, err error) {
	if p.used {
		return nil, ErrParserUsed
	}
	p.used = true

	stream := NewTokenStream(p.lexer.Tokenize(p.text))
	defer stream.Close()
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(parseFailure)
			if !ok {
				panic(r)
			}
			doc, err = nil, f.err
		}
	}()

	doc = &Document{}
	for !stream.EOF() {
		doc.Append(p.parseNode(stream))
	}
	p.expand(doc, StageInitial)
	p.expand(doc, StageLate)
	for _, t := range p.transformers {
		doc = t.Transform(doc)
	}
	p.expand(doc, StageFinal)
	return doc, nil
}

func (p *Parser) fail(err error) { panic(parseFailure{err}) }

func (p *Parser) expand(doc *Document, stage Stage) {
	for _, d := range p.deferred[stage] {
		node := d.ext.BuildTree(doc)
		if node == nil {
			node = NewText("")
		}
		replaceNode(doc, d, node)
	}
}

func (p *Parser) parseNode(s *TokenStream) Node {
	if p.depth >= p.MaxDepth {
		p.fail(ErrStackExhausted)
	}
	p.depth++
	defer func() { p.depth-- }()
	if h, ok := p.handlers[s.Current().Type]; ok {
		return h(s)
	}
	return NewText(s.Next().Value)
}

func (p *Parser) expect(s *TokenStream, typ TokenType) Token {
	tok, err := s.Expect(typ)
	if err != nil {
		p.fail(err)
	}
	return tok
}

// until parses nodes up to, but not including, a token of type end.
func (p *Parser) until(s *TokenStream, end TokenType) []Node {
	var children []Node
	for !s.Test(end) {
		if s.EOF() {
			p.fail(&ParseError{Expected: end, Got: s.Current()})
		}
		children = append(children, p.parseNode(s))
	}
	return children
}

// wrapped parses begin, children, end for state and lets build make the
// node.
func (p *Parser) wrapped(state string, build func(children []Node) Node) func(*TokenStream) Node {
	return func(s *TokenStream) Node {
		p.expect(s, beginToken(state))
		children := p.until(s, endToken(state))
		s.Next()
		return build(children)
	}
}

func el(children []Node) Element { return Element{Children: children} }

func (p *Parser) buildHandlers() map[TokenType]func(*TokenStream) Node {
	return map[TokenType]func(*TokenStream) Node{
		TokenText:    func(s *TokenStream) Node { return NewText(p.expect(s, TokenText).Value) },
		TokenRaw:     func(s *TokenStream) Node { return &Raw{el([]Node{NewText(p.expect(s, TokenRaw).Value)})} },
		TokenNewline: func(s *TokenStream) Node { p.expect(s, TokenNewline); return &Newline{} },
		TokenRuler:   func(s *TokenStream) Node { p.expect(s, TokenRuler); return &Ruler{} },

		beginToken("highlighted"):    p.wrapped("highlighted", func(c []Node) Node { return &Highlighted{el(c)} }),
		beginToken("highlighted_wi"): p.wrapped("highlighted_wi", func(c []Node) Node { return &Highlighted{el(c)} }),
		beginToken("strong"):         p.wrapped("strong", func(c []Node) Node { return &Strong{el(c)} }),
		beginToken("emphasized"):     p.wrapped("emphasized", func(c []Node) Node { return &Emphasized{el(c)} }),
		beginToken("underline"):      p.wrapped("underline", func(c []Node) Node { return &Underline{el(c)} }),
		beginToken("stroke"):         p.wrapped("stroke", func(c []Node) Node { return &Stroke{el(c)} }),
		beginToken("small"):          p.wrapped("small", func(c []Node) Node { return &Small{el(c)} }),
		beginToken("big"):            p.wrapped("big", func(c []Node) Node { return &Big{el(c)} }),
		beginToken("sub"):            p.wrapped("sub", func(c []Node) Node { return &Sub{el(c)} }),
		beginToken("sup"):            p.wrapped("sup", func(c []Node) Node { return &Sup{el(c)} }),
		beginToken("footnote"):       p.wrapped("footnote", func(c []Node) Node { return &Footnote{Element: el(c)} }),
		TokenQuoteBegin:              p.wrapped("quote", func(c []Node) Node { return &Quote{el(c)} }),

		beginToken("conflict"): func(s *TokenStream) Node { s.Next(); return &ConflictMarker{Side: "left"} },
		TokenConflictSwitch:    func(s *TokenStream) Node { s.Next(); return &ConflictMarker{Side: "middle"} },
		endToken("conflict"):   func(s *TokenStream) Node { s.Next(); return &ConflictMarker{Side: "right"} },

		beginToken("metadata"):      p.parseMetadata,
		beginToken("headline"):      p.parseHeadline,
		beginToken("escaped_code"):  p.parseEscapedCode,
		beginToken("code"):          p.parseCode,
		beginToken("color"):         p.parseColor,
		beginToken("size"):          p.parseSize,
		beginToken("font"):          p.parseFont,
		beginToken("mod"):           p.parseModeration,
		beginToken("edit"):          p.parseModeration,
		beginToken("list_item"):     p.parseList,
		beginToken("definition"):    p.parseDefinition,
		beginToken("wiki_link"):     p.parseWikiLink,
		beginToken("external_link"): p.parseExternalLink,
		TokenFreeLink:               p.parseFreeLink,
		TokenSourceLink:             p.parseSourceLink,
		beginToken("macro"):         p.parseMacro,
		beginToken("template"):      p.parseTemplate,
		beginToken("pre"):           p.parsePreBlock,
		beginToken("table_row"):     p.parseTable,
		beginToken("box"):           p.parseBox,
	}
}

func (p *Parser) parseMetadata(s *TokenStream) Node {
	p.expect(s, beginToken("metadata"))
	key := p.expect(s, TokenMetadataKey).Value
	args, _ := p.parseArguments(s, endToken("metadata"))
	p.expect(s, endToken("metadata"))
	return &MetaData{Key: key, Values: args}
}

func (p *Parser) parseHeadline(s *TokenStream) Node {
	tok := p.expect(s, beginToken("headline"))
	children := p.until(s, endToken("headline"))
	s.Next()
	return NewHeadline(len(strings.TrimSpace(tok.Value)), children)
}

func (p *Parser) parseEscapedCode(s *TokenStream) Node {
	p.expect(s, beginToken("escaped_code"))
	var sb strings.Builder
	for !s.Test(endToken("escaped_code")) {
		if s.EOF() {
			p.fail(&ParseError{Expected: endToken("escaped_code"), Got: s.Current()})
		}
		sb.WriteString(s.Next().Value)
	}
	s.Next()
	return &Code{Element{Children: []Node{NewText(sb.String())}, Class: "notranslate"}}
}

func (p *Parser) parseCode(s *TokenStream) Node {
	p.expect(s, beginToken("code"))
	var sb strings.Builder
	for s.Test(TokenText) {
		sb.WriteString(s.Next().Value)
	}
	p.expect(s, endToken("code"))
	return &Code{Element{Children: []Node{NewText(sb.String())}, Class: "notranslate"}}
}

func (p *Parser) parseColor(s *TokenStream) Node {
	p.expect(s, beginToken("color"))
	value := ParseColor(p.expect(s, TokenColorValue).Value)
	children := p.until(s, endToken("color"))
	s.Next()
	return &Color{Element: el(children), Value: value}
}

func (p *Parser) parseSize(s *TokenStream) Node {
	p.expect(s, beginToken("size"))
	raw := strings.TrimSpace(p.expect(s, TokenFontSize).Value)
	percent := 100
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		percent = int(100.0 / 14 * f)
	}
	children := p.until(s, endToken("size"))
	s.Next()
	return &Size{Element: el(children), Percent: percent}
}

func (p *Parser) parseFont(s *TokenStream) Node {
	p.expect(s, beginToken("font"))
	face := strings.TrimSpace(p.expect(s, TokenFontFace).Value)
	children := p.until(s, endToken("font"))
	s.Next()
	return &Font{Element: el(children), Faces: []string{face}}
}

// parseModeration handles both [mod=user] and [edit=user].
func (p *Parser) parseModeration(s *TokenStream) Node {
	begin := s.Next()
	state := strings.TrimSuffix(string(begin.Type), "_begin")
	username := strings.TrimSpace(p.expect(s, TokenUsername).Value)
	children := p.until(s, endToken(state))
	s.Next()
	if state == "mod" {
		return &Moderated{Element: el(children), Username: username}
	}
	return &Edited{Element: el(children), Username: username}
}

// listItem returns the indentation and list type of a list_item_begin
// token.
func listItem(tok Token) (int, string) {
	full := expandTabs(tok.Value, 8)
	stripped := strings.TrimLeft(full, " \t\n\r\f\v")
	indent := len(full) - len(stripped)
	if stripped == "" {
		return indent, listTypes[0]
	}
	i := strings.IndexByte(listMarkers, stripped[0])
	if i < 0 {
		i = 0
	}
	return indent, listTypes[i]
}

// parseList parses a list and any deeper nested lists. A sibling with a
// different marker at the same indentation starts a new list.
func (p *Parser) parseList(s *TokenStream) Node {
	indent, typ := listItem(s.Current())
	list := &List{Type: typ}
	for s.Test(beginToken("list_item")) {
		newIndent, newType := listItem(s.Current())
		if (newType != typ && newIndent == indent) || newIndent < indent {
			break
		}
		if newIndent > indent {
			nested := p.parseList(s)
			if n := len(list.Children); n > 0 {
				list.Children[n-1].(*ListItem).Append(nested)
			} else {
				list.Append(&ListItem{el([]Node{nested})})
			}
			continue
		}
		s.Next()
		children := p.until(s, endToken("list_item"))
		if len(children) > 0 {
			list.Append(&ListItem{el(children)})
		}
		s.Next()
	}
	return list
}

func (p *Parser) parseDefinition(s *TokenStream) Node {
	p.expect(s, beginToken("definition"))
	list := &DefinitionList{}
	for !s.EOF() {
		term := p.expect(s, TokenDefinitionTerm).Value
		children := p.until(s, endToken("definition"))
		list.Append(&DefinitionTerm{Element: el(children), Term: term})
		s.Next()
		if !s.Test(beginToken("definition")) {
			break
		}
		s.Next()
	}
	return list
}

func (p *Parser) parseWikiLink(s *TokenStream) Node {
	p.expect(s, beginToken("wiki_link"))
	target := p.expect(s, TokenLinkTarget)
	var wiki, page string
	if len(target.Parts) > 1 {
		wiki, page = target.Parts[0], target.Parts[1]
	}
	page = strings.ReplaceAll(page, `\:`, ":")
	anchor := ""
	if i := strings.IndexByte(page, '#'); i >= 0 {
		page, anchor = page[:i], page[i+1:]
	}
	children := p.until(s, endToken("wiki_link"))
	s.Next()
	page = strings.TrimSpace(page)

	if wiki == "" {
		return NewInternalLink(page, anchor, children, p.opts.ForceExisting)
	}
	if target, ok := p.links.Shortcut(wiki, page); ok {
		if len(children) == 0 {
			children = []Node{NewText(page)}
		}
		link := NewLink(target, children)
		link.Class = wiki
		return link
	}
	return NewInterWikiLink(wiki, page, anchor, children)
}

func (p *Parser) parseExternalLink(s *TokenStream) Node {
	p.expect(s, beginToken("external_link"))
	target := p.expect(s, TokenLinkTarget).Value
	children := p.until(s, endToken("external_link"))
	s.Next()
	return NewLink(target, children)
}

func (p *Parser) parseFreeLink(s *TokenStream) Node {
	target := p.expect(s, TokenFreeLink).Value
	if _, err := url.Parse(target); err != nil {
		return NewText(target)
	}
	return NewLink(target, nil)
}

func (p *Parser) parseSourceLink(s *TokenStream) Node {
	tok := p.expect(s, TokenSourceLink)
	n, err := strconv.Atoi(strings.TrimSpace(tok.Value))
	if err != nil {
		return NewText(tok.Value)
	}
	return &SourceLink{Element: el([]Node{NewText(fmt.Sprintf("[%d]", n))}), Target: n}
}

func (p *Parser) parseMacro(s *TokenStream) Node {
	p.expect(s, beginToken("macro"))
	name := p.expect(s, TokenMacroName).Value
	args, kwargs := p.parseArguments(s, endToken("macro"))
	s.Next()
	return p.expandMacro(name, args, kwargs)
}

// parseTemplate resolves [@name(args)] through the Template macro.
func (p *Parser) parseTemplate(s *TokenStream) Node {
	p.expect(s, beginToken("template"))
	name := p.expect(s, TokenTemplateName).Value
	args, kwargs := p.parseArguments(s, endToken("template"))
	s.Next()
	return p.expandMacro("Template", append([]string{name}, args...), kwargs)
}

func (p *Parser) expandMacro(name string, args []string, kwargs map[string]string) Node {
	inst, ok := p.registry.GetMacro(name, args, kwargs)
	if !ok {
		p.logger.Warn("missing macro", "name", name)
		return NewErrorBox("Missing macro", fmt.Sprintf("The macro “%s” does not exist.", name))
	}
	switch ext := inst.Ext.(type) {
	case TreeProcessor:
		d := &Deferred{Name: name, Block: inst.Spec.Block, ext: ext}
		p.deferred[ext.Stage()] = append(p.deferred[ext.Stage()], d)
		return d
	case StaticExtension:
		return ext.BuildNode()
	case DynamicExtension:
		return &MacroRef{Unit: newUnit(inst)}
	}
	p.logger.Warn("macro implements no extension interface", "name", name)
	return NewErrorBox("Missing macro", fmt.Sprintf("The macro “%s” does not exist.", name))
}

// parsePreBlock parses a {{{ }}} block. A #!name shebang hands the data to
// the parser block of that name; unknown names and plain blocks become
// preformatted text.
func (p *Parser) parsePreBlock(s *TokenStream) Node {
	p.expect(s, beginToken("pre"))
	name := ""
	var args []string
	var kwargs map[string]string
	if s.Test(TokenParserBegin) {
		name = s.Next().Value
		args, kwargs = p.parseArguments(s, TokenParserEnd)
		if !s.Test(endToken("pre")) {
			s.Next()
		}
	}

	var children []Node
	var last *Text
	for !s.Test(endToken("pre")) {
		if s.EOF() {
			p.fail(&ParseError{Expected: endToken("pre"), Got: s.Current()})
		}
		node := p.parseNode(s)
		if t, ok := node.(*Text); ok {
			if last == nil {
				t.Value = strings.TrimPrefix(t.Value, "\n")
			}
			last = t
		}
		children = append(children, node)
	}
	if last != nil {
		last.Value = strings.TrimSuffix(last.Value, "\n")
	}
	s.Next()

	if name == "" {
		return &Preformatted{Element{Children: children, Class: "notranslate"}}
	}
	data := joinText(children)
	plain := &Preformatted{Element{Children: []Node{NewText(data)}, Class: "notranslate"}}
	inst, ok := p.registry.GetParser(name, args, kwargs, data)
	if !ok {
		return plain
	}
	switch ext := inst.Ext.(type) {
	case StaticExtension:
		return ext.BuildNode()
	case DynamicExtension:
		return &ParserRef{Unit: newUnit(inst)}
	}
	return plain
}

type cellPosition int

const (
	tableFirst cellPosition = iota
	rowFirst
	normalCell
)

func (p *Parser) parseTable(s *TokenStream) Node {
	table := &Table{}
	var row *TableRow
	var cell *TableCell
	position := tableFirst

	attachDefs := func() {
		if !s.Test(TokenTableDefBegin) {
			return
		}
		s.Next()
		args, kwargs := p.parseArguments(s, TokenTableDefEnd)
		if s.Test(TokenTableDefEnd) {
			s.Next()
		}
		attrs, rest := parseAlignArgs(args, kwargs)
		if position == tableFirst {
			table.Class = attrs.str("tableclass")
			table.Style = FilterStyle(attrs.str("tablestyle"))
		}
		if position == tableFirst || position == rowFirst {
			row.Class = attrs.str("rowclass")
			if row.Class == "" {
				row.Class = strings.Join(rest, " ")
			}
			row.Style = FilterStyle(attrs.str("rowstyle"))
		}
		cell.Class = attrs.str("cellclass")
		cell.Style = FilterStyle(attrs.str("cellstyle"))
		cell.Colspan = attrs.colspan
		cell.Rowspan = attrs.rowspan
		cell.Align = attrs.align
		cell.Valign = attrs.valign
		if position == normalCell && cell.Class == "" {
			cell.Class = strings.Join(rest, " ")
		}
	}

	for !s.EOF() {
		switch {
		case s.Test(beginToken("table_row")):
			s.Next()
			cell = &TableCell{}
			row = &TableRow{el([]Node{cell})}
			table.Append(row)
			attachDefs()
		case s.Test(TokenTableColSwitch):
			s.Next()
			position = normalCell
			cell = &TableCell{}
			row.Append(cell)
			attachDefs()
		case s.Test(endToken("table_row")):
			s.Next()
			position = rowFirst
			if !s.Test(beginToken("table_row")) {
				return table
			}
		default:
			if cell == nil {
				return table
			}
			cell.Append(p.parseNode(s))
		}
	}
	return table
}

func (p *Parser) parseBox(s *TokenStream) Node {
	box := &Box{}
	p.expect(s, beginToken("box"))
	if s.Test(TokenBoxDefBegin) {
		s.Next()
		args, kwargs := p.parseArguments(s, TokenBoxDefEnd)
		if s.Test(TokenBoxDefEnd) {
			s.Next()
		}
		attrs, rest := parseAlignArgs(args, kwargs)
		box.Align = attrs.align
		box.Valign = attrs.valign
		box.Class = attrs.str("class")
		if box.Class == "" {
			box.Class = attrs.str("klasse")
		}
		if box.Class == "" {
			box.Class = strings.Join(rest, " ")
		}
		box.Style = FilterStyle(attrs.str("style"))
		box.Title = attrs.str("title")
	}
	box.Children = p.until(s, endToken("box"))
	s.Next()
	return box
}

// parseArguments collects positional and keyword arguments up to end. A
// keyword without a value becomes a positional argument.
func (p *Parser) parseArguments(s *TokenStream, end TokenType) ([]string, map[string]string) {
	var args []string
	kwargs := map[string]string{}
	var keywords []string
	for !s.Test(end) {
		tok := s.Current()
		switch tok.Type {
		case TokenFuncStringArg, TokenText:
			value := tok.Value
			if tok.Type == TokenFuncStringArg && len(value) >= 2 {
				value = unescapeString(value[1 : len(value)-1])
			}
			s.Next()
			if len(keywords) > 0 {
				for _, k := range keywords {
					kwargs[k] = value
				}
				keywords = keywords[:0]
			} else {
				args = append(args, value)
			}
		case TokenFuncKwarg:
			keywords = append(keywords, tok.Value)
			s.Next()
		case TokenFuncArgDelimiter:
			s.Next()
		default:
			return append(args, keywords...), kwargs
		}
	}
	return append(args, keywords...), kwargs
}

var simpleEscapes = map[rune]string{
	'a': "\a", 'n': "\n", 'r': "\r", 'f': "\f", 't': "\t", 'v': "\v",
	'\\': "\\", '"': "\"", '\'': "'", '0': "\x00",
}

var unicodeEscapes = map[rune]int{'x': 2, 'u': 4, 'U': 8}

// unescapeString resolves backslash escapes in a quoted argument. Unknown
// escapes are kept verbatim and broken ones are dropped.
func unescapeString(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\\' {
			sb.WriteRune(c)
			continue
		}
		i++
		if i >= len(runes) {
			break
		}
		c = runes[i]
		if r, ok := simpleEscapes[c]; ok {
			sb.WriteString(r)
			continue
		}
		if n, ok := unicodeEscapes[c]; ok {
			if i+n >= len(runes) {
				break
			}
			if v, err := strconv.ParseUint(string(runes[i+1:i+1+n]), 16, 32); err == nil {
				sb.WriteRune(rune(v))
			}
			i += n
			continue
		}
		sb.WriteRune('\\')
		sb.WriteRune(c)
	}
	return sb.String()
}

func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := size - col%size
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col++
		}
	}
	return sb.String()
}

var alignArgRe = regexp.MustCompile(`^(?:(-(\d+))|(\|(\d+))|(\()|(\))|(:)|(\^)|(~)|(v))`)

// alignAttrs are table and box attributes after the align shorthand has
// been resolved.
type alignAttrs struct {
	kwargs           map[string]string
	colspan, rowspan int
	align, valign    string
}

func (a alignAttrs) str(name string) string { return a.kwargs[name] }

// parseAlignArgs resolves the "-2", "|3", "(", ")", ":", "^", "~" and "v"
// shorthands in args. Arguments that are not shorthand, or the unmatched
// rest of one, are returned.
func parseAlignArgs(args []string, kwargs map[string]string) (alignAttrs, []string) {
	attrs := alignAttrs{kwargs: kwargs, align: kwargs["align"], valign: kwargs["valign"]}
	attrs.colspan, _ = strconv.Atoi(kwargs["colspan"])
	attrs.rowspan, _ = strconv.Atoi(kwargs["rowspan"])
	var rest []string
	for _, arg := range args {
		pos := 0
		for pos < len(arg) {
			m := alignArgRe.FindStringSubmatch(arg[pos:])
			if m == nil {
				rest = append(rest, arg[pos:])
				break
			}
			pos += len(m[0])
			switch {
			case m[2] != "":
				attrs.colspan, _ = strconv.Atoi(m[2])
			case m[4] != "":
				attrs.rowspan, _ = strconv.Atoi(m[4])
			case m[5] != "":
				attrs.align = "left"
			case m[6] != "":
				attrs.align = "right"
			case m[7] != "":
				attrs.align = "center"
			case m[8] != "":
				attrs.valign = "top"
			case m[9] != "":
				attrs.valign = "middle"
			case m[10] != "":
				attrs.valign = "bottom"
			}
		}
	}
	switch attrs.align {
	case "left", "right", "center":
	default:
		attrs.align = ""
	}
	switch attrs.valign {
	case "top", "middle", "bottom":
	default:
		attrs.valign = ""
	}
	return attrs, rest
}

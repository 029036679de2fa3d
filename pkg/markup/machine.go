// machine.go compiles trees into instruction sets and renders them.
package markup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/log"
)

// Unit is a dynamic extension invocation as stored in an instruction set.
// It is rebuilt through the registry when the live instance is missing.
type Unit struct {
	Kind   ExtensionKind     `json:"kind"`
	Name   string            `json:"name"`
	Args   []string          `json:"args,omitempty"`
	Kwargs map[string]string `json:"kwargs,omitempty"`
	Body   string            `json:"body,omitempty"`
	Block  bool              `json:"block,omitempty"`

	live *Instance
}

func newUnit(inst *Instance) *Unit {
	return &Unit{
		Kind:   inst.Spec.Kind,
		Name:   inst.Call.Name,
		Args:   inst.Call.Args,
		Kwargs: inst.Call.Kwargs,
		Body:   inst.Call.Body,
		Block:  inst.Spec.Block,
		live:   inst,
	}
}

// Fragment is one piece of prepared output: literal text or a unit.
type Fragment struct {
	Text string `json:"text,omitempty"`
	Unit *Unit  `json:"unit,omitempty"`
}

// Compiled is an immutable instruction set. The static form is
// '!' format NUL text; the hybrid form is '@' followed by JSON.
type Compiled []byte

type hybrid struct {
	Format    string     `json:"format"`
	Fragments []Fragment `json:"fragments"`
}

// IsStatic reports whether c holds no dynamic units.
func (c Compiled) IsStatic() bool { return len(c) > 0 && c[0] == '!' }

// Format returns the output format c was compiled for.
func (c Compiled) Format() (string, error) {
	format, _, err := c.decode()
	return format, err
}

func (c Compiled) decode() (string, []Fragment, error) {
	if len(c) == 0 {
		return "", nil, ErrInvalidInstructions
	}
	switch c[0] {
	case '!':
		i := bytes.IndexByte(c, 0)
		if i < 0 {
			return "", nil, fmt.Errorf("static instructions without format: %w", ErrInvalidInstructions)
		}
		return string(c[1:i]), []Fragment{{Text: string(c[i+1:])}}, nil
	case '@':
		var h hybrid
		if err := json.Unmarshal(c[1:], &h); err != nil {
			return "", nil, fmt.Errorf("decoding instructions: %w: %w", ErrInvalidInstructions, err)
		}
		return h.Format, h.Fragments, nil
	}
	return "", nil, ErrInvalidInstructions
}

// Source is anything the machine can render: a tree or compiled
// instructions.
type Source interface {
	fragments(m *Machine, format string) (iter.Seq[Fragment], string, error)
}

func (c Compiled) fragments(_ *Machine, format string) (iter.Seq[Fragment], string, error) {
	compiled, frags, err := c.decode()
	if err != nil {
		return nil, "", err
	}
	if format != "" && format != compiled {
		return nil, "", &FormatMismatchError{Compiled: compiled, Requested: format}
	}
	return func(yield func(Fragment) bool) {
		for _, f := range frags {
			if !yield(f) {
				return
			}
		}
	}, compiled, nil
}

func (d *Document) fragments(m *Machine, format string) (iter.Seq[Fragment], string, error) {
	return nodeSource{d}.fragments(m, format)
}

type nodeSource struct{ node Node }

// FromNode wraps any node as a Source.
func FromNode(n Node) Source { return nodeSource{n} }

func (s nodeSource) fragments(m *Machine, format string) (iter.Seq[Fragment], string, error) {
	if format == "" {
		format = FormatHTML
	}
	seq, err := m.Prepare(s.node, format)
	return seq, format, err
}

// MachineOptions configures a Machine. Zero fields take defaults.
type MachineOptions struct {
	Registry *Registry
	Links    Links
	Logger   *log.Logger
	// Transformers replaces the default pipeline for Parse. A non-nil empty
	// slice disables it.
	Transformers []Transformer
	// Strict makes Parse return parse errors instead of an error document.
	Strict bool
}

// Machine prepares, compiles and renders trees. It is safe for concurrent
// use once constructed.
type Machine struct {
	registry     *Registry
	links        Links
	logger       *log.Logger
	transformers []Transformer
	strict       bool
}

// NewMachine returns a machine for opts.
func NewMachine(opts MachineOptions) *Machine {
	m := &Machine{
		registry:     opts.Registry,
		links:        opts.Links,
		logger:       opts.Logger,
		transformers: opts.Transformers,
		strict:       opts.Strict,
	}
	if m.registry == nil {
		m.registry = sharedRegistry()
	}
	if m.links == nil {
		m.links = StaticLinks{}
	}
	if m.logger == nil {
		m.logger = discardLogger()
	}
	return m
}

// Registry returns the registry units are rebuilt from.
func (m *Machine) Registry() *Registry { return m.registry }

// Parse parses text with the machine's settings. Included pages go
// through here too.
func (m *Machine) Parse(text string) (*Document, error) {
	return ParseWithOptions(text, ParseOptions{
		Strict:       m.strict,
		Transformers: m.transformers,
		Registry:     m.registry,
		Links:        m.links,
		Logger:       m.logger,
	})
}

// Prepare returns the output fragments of n in format.
func (m *Machine) Prepare(n Node, format string) (iter.Seq[Fragment], error) {
	if format != FormatHTML && format != FormatText {
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return func(yield func(Fragment) bool) {
		p := &preparer{links: m.links, yield: yield}
		if format == FormatText {
			p.text(n)
			return
		}
		p.html(n)
	}, nil
}

// Compile turns n into an instruction set for format. Adjacent text is
// merged; the result is static when no unit was emitted.
func (m *Machine) Compile(n Node, format string) (Compiled, error) {
	seq, err := m.Prepare(n, format)
	if err != nil {
		return nil, err
	}
	var frags []Fragment
	var buf strings.Builder
	dynamic := false
	for f := range seq {
		if f.Unit == nil {
			buf.WriteString(f.Text)
			continue
		}
		if buf.Len() > 0 {
			frags = append(frags, Fragment{Text: buf.String()})
			buf.Reset()
		}
		frags = append(frags, Fragment{Unit: f.Unit})
		dynamic = true
	}
	if !dynamic {
		return Compiled("!" + format + "\x00" + buf.String()), nil
	}
	if buf.Len() > 0 {
		frags = append(frags, Fragment{Text: buf.String()})
	}
	data, err := json.Marshal(hybrid{Format: format, Fragments: frags})
	if err != nil {
		return nil, fmt.Errorf("encoding instructions: %w", err)
	}
	return append(Compiled("@"), data...), nil
}

// Stream renders src piece by piece. An empty format takes the format of
// compiled input, or html for trees. A nil rc renders with a fresh
// context.
func (m *Machine) Stream(src Source, rc *RenderContext, format string) (iter.Seq[string], error) {
	frags, format, err := src.fragments(m, format)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		rc = NewRenderContext(context.Background(), "")
	}
	return func(yield func(string) bool) {
		for f := range frags {
			s := f.Text
			if f.Unit != nil {
				s = m.renderUnit(f.Unit, rc, format)
			}
			if s != "" && !yield(s) {
				return
			}
		}
	}, nil
}

// Render is Stream collected into a string.
func (m *Machine) Render(src Source, rc *RenderContext, format string) (string, error) {
	seq, err := m.Stream(src, rc, format)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for s := range seq {
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// RenderNode renders a single node, units included.
func (m *Machine) RenderNode(n Node, rc *RenderContext, format string) (string, error) {
	return m.Render(FromNode(n), rc, format)
}

func (m *Machine) loggerFor(rc *RenderContext) *log.Logger {
	if rc.Logger != nil {
		return rc.Logger
	}
	return m.logger
}

func (m *Machine) renderUnit(u *Unit, rc *RenderContext, format string) string {
	if rc.Simplified {
		return ""
	}
	logger := m.loggerFor(rc)
	inst := u.live
	if inst == nil {
		var ok bool
		if u.Kind == KindParser {
			inst, ok = m.registry.GetParser(u.Name, u.Args, u.Kwargs, u.Body)
		} else {
			inst, ok = m.registry.GetMacro(u.Name, u.Args, u.Kwargs)
		}
		if !ok {
			logger.Warn("unit cannot be rebuilt", "kind", u.Kind, "name", u.Name, "render", rc.ID)
			return m.renderError(rc, format, "Missing macro", fmt.Sprintf("The macro “%s” does not exist.", u.Name))
		}
	}
	if !inst.Spec.Allowed(rc.Application) {
		return m.renderError(rc, format, "Invalid macro", "This macro is not available.")
	}
	switch ext := inst.Ext.(type) {
	case DynamicExtension:
		out, err := ext.Render(rc, format, m)
		if err != nil {
			logger.Warn("dynamic extension failed", "name", u.Name, "render", rc.ID, "err", err)
			return m.renderError(rc, format, "Macro failed", err.Error())
		}
		return out
	case StaticExtension:
		out, err := m.RenderNode(ext.BuildNode(), rc, format)
		if err != nil {
			return ""
		}
		return out
	}
	return m.renderError(rc, format, "Invalid macro", "This macro is not available.")
}

func (m *Machine) renderError(rc *RenderContext, format, title, message string) string {
	out, err := m.RenderNode(NewErrorBox(title, message), rc, format)
	if err != nil {
		return ""
	}
	return out
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// extension.go defines the macro and parser-block extension protocol.
package markup

import (
	"fmt"
	"slices"
	"sync"
)

// ExtensionKind tells macros from parser blocks.
type ExtensionKind string

const (
	KindMacro  ExtensionKind = "macro"
	KindParser ExtensionKind = "parser"
)

// Stage orders tree processors relative to the transformers.
type Stage int

const (
	// StageInitial runs right after parsing.
	StageInitial Stage = iota
	// StageLate runs after StageInitial, still before the transformers.
	StageLate
	// StageFinal runs after the transformers.
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageLate:
		return "late"
	case StageFinal:
		return "final"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Extension is the value a Spec constructs. It implements exactly one of
// StaticExtension, DynamicExtension or TreeProcessor.
type Extension any

// StaticExtension is expanded into a node while parsing.
type StaticExtension interface {
	BuildNode() Node
}

// DynamicExtension is stored in compiled output and evaluated on every
// render.
type DynamicExtension interface {
	Render(rc *RenderContext, format string, m *Machine) (string, error)
}

// TreeProcessor sees the whole document once its stage is reached. The
// returned node replaces the macro's placeholder.
type TreeProcessor interface {
	Stage() Stage
	BuildTree(doc *Document) Node
}

// Call is what an extension constructor receives.
type Call struct {
	Name   string
	Args   []string
	Kwargs map[string]string
	// Body is the data of a parser block. Empty for macros.
	Body string
	// Values holds the bound arguments unless the Spec asked for raw ones.
	Values Values
}

// Spec registers an extension.
type Spec struct {
	Kind      ExtensionKind
	Names     []string
	Arguments []Argument
	// RawArguments skips binding; the constructor parses Args and Kwargs
	// itself.
	RawArguments bool
	// Block marks dynamic output and placeholders as block level.
	Block bool
	// Contexts lists the applications a dynamic extension renders in. Empty
	// means everywhere.
	Contexts []string
	New      func(Call) Extension
}

// Allowed reports whether the extension may render for application.
func (s *Spec) Allowed(application string) bool {
	return len(s.Contexts) == 0 || slices.Contains(s.Contexts, application)
}

// Instance is a constructed extension together with the call that built it.
type Instance struct {
	Spec *Spec
	Call Call
	Ext  Extension
}

// Registry maps names to extension specs. It must not be modified once it
// is shared between goroutines.
type Registry struct {
	macros  map[string]*Spec
	parsers map[string]*Spec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{macros: map[string]*Spec{}, parsers: map[string]*Spec{}}
}

func (r *Registry) table(kind ExtensionKind) map[string]*Spec {
	if kind == KindParser {
		return r.parsers
	}
	return r.macros
}

// Register adds spec under all of its names.
func (r *Registry) Register(spec Spec) error {
	if spec.New == nil {
		return fmt.Errorf("extension %v: missing constructor", spec.Names)
	}
	table := r.table(spec.Kind)
	for _, name := range spec.Names {
		if _, ok := table[name]; ok {
			return fmt.Errorf("%s %q: %w", spec.Kind, name, ErrDuplicateExtension)
		}
	}
	s := &spec
	for _, name := range spec.Names {
		table[name] = s
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(spec Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// GetMacro constructs the macro called name.
func (r *Registry) GetMacro(name string, args []string, kwargs map[string]string) (*Instance, bool) {
	return r.get(KindMacro, Call{Name: name, Args: args, Kwargs: kwargs})
}

// GetParser constructs the parser block called name over body.
func (r *Registry) GetParser(name string, args []string, kwargs map[string]string, body string) (*Instance, bool) {
	return r.get(KindParser, Call{Name: name, Args: args, Kwargs: kwargs, Body: body})
}

func (r *Registry) get(kind ExtensionKind, call Call) (*Instance, bool) {
	spec, ok := r.table(kind)[call.Name]
	if !ok {
		return nil, false
	}
	if !spec.RawArguments {
		call.Values = BindArguments(spec.Arguments, call.Args, call.Kwargs)
	}
	ext := spec.New(call)
	if ext == nil {
		return nil, false
	}
	return &Instance{Spec: spec, Call: call, Ext: ext}, true
}

// Names returns the sorted registered names of kind.
func (r *Registry) Names(kind ExtensionKind) []string {
	table := r.table(kind)
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry returns a new registry holding the builtin macros and
// parser blocks.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerMacros(r)
	registerParsers(r)
	return r
}

var sharedRegistry = sync.OnceValue(DefaultRegistry)

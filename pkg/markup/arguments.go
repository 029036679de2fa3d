package markup

import (
	"slices"
	"strconv"
	"strings"
)

// ArgType selects how a raw argument string is converted.
type ArgType int

const (
	ArgString ArgType = iota
	ArgInt
	ArgFloat
	ArgBool
	// ArgChoice accepts one of Choices verbatim.
	ArgChoice
	// ArgOneOf maps the raw value through OneOf.
	ArgOneOf
)

// Argument declares one extension argument. It binds positionally first
// and by keyword otherwise. Values that fail conversion fall back to
// Default.
type Argument struct {
	Name    string
	Type    ArgType
	Choices []string
	OneOf   map[string]string
	Default any
}

// Values holds bound arguments by name.
type Values map[string]any

var truthy = []string{"1", "true", "yes", "on", "ja", "wahr", "positiv"}

// BindArguments converts args and kwargs according to defs.
func BindArguments(defs []Argument, args []string, kwargs map[string]string) Values {
	values := make(Values, len(defs))
	for i, def := range defs {
		var raw string
		var ok bool
		if i < len(args) {
			raw, ok = args[i], true
		} else {
			raw, ok = kwargs[def.Name]
		}
		if !ok {
			values[def.Name] = def.Default
			continue
		}
		values[def.Name] = convertArgument(def, raw)
	}
	return values
}

func convertArgument(def Argument, raw string) any {
	switch def.Type {
	case ArgInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return def.Default
		}
		return n
	case ArgFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return def.Default
		}
		return f
	case ArgBool:
		return slices.Contains(truthy, strings.ToLower(strings.TrimSpace(raw)))
	case ArgChoice:
		if !slices.Contains(def.Choices, raw) {
			return def.Default
		}
		return raw
	case ArgOneOf:
		v, ok := def.OneOf[raw]
		if !ok {
			return def.Default
		}
		return v
	}
	return raw
}

// String returns the named value as a string, or "" when it is unset or of
// another type.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the named value as an int.
func (v Values) Int(name string) int {
	switch n := v[name].(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// Float returns the named value as a float64.
func (v Values) Float(name string) float64 {
	switch n := v[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// Bool returns the named value as a bool.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Has reports whether the named value is set to something other than nil.
func (v Values) Has(name string) bool {
	return v[name] != nil
}

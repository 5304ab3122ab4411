package types

import (
	"fmt"
	"sort"
	"strconv"
)

// ParamType is the closed set of parameter types a schema may declare.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamBoolean ParamType = "boolean"
	ParamInteger ParamType = "integer"
	ParamEnum    ParamType = "enum"
)

// Valid reports whether t is one of the declared parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case ParamString, ParamBoolean, ParamInteger, ParamEnum:
		return true
	}
	return false
}

// Constraints restricts the values a parameter accepts. Zero values mean
// "unconstrained". Pattern applies to string parameters, Min/Max to integer
// parameters, Allowed to enum parameters.
type Constraints struct {
	Pattern string
	Min     *int64
	Max     *int64
	Allowed []string
}

// Dependency makes a parameter applicable only while another parameter holds
// a given value. An inapplicable parameter is excluded from validation and
// from the final value set, defaults included.
type Dependency struct {
	Parameter string
	Equals    any
}

// ParameterDefinition declares one parameter of a template bundle's schema.
// Definitions are loaded once per bundle and never mutated afterwards.
type ParameterDefinition struct {
	Name        string
	Type        ParamType
	Description string

	// Default is the value used when no explicit value or preset supplies
	// one. A nil Default means the parameter has no default.
	Default any

	Required    bool
	Constraints Constraints
	DependsOn   *Dependency
}

// HasDefault reports whether the definition carries a default value.
func (d ParameterDefinition) HasDefault() bool {
	return d.Default != nil
}

// ValueSet maps parameter names to concrete values. Values are one of
// string, bool, or int64, matching the closed ParamType set (enum values
// are strings).
type ValueSet map[string]any

// Clone returns an independent copy of the set.
func (v ValueSet) Clone() ValueSet {
	out := make(ValueSet, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge returns a new set containing v overlaid with over; values in over
// win. Neither input is mutated.
func (v ValueSet) Merge(over ValueSet) ValueSet {
	out := v.Clone()
	for k, val := range over {
		out[k] = val
	}
	return out
}

// Names returns the parameter names in the set, sorted.
func (v ValueSet) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FormatValue renders a parameter value as the string substituted into
// template output. Booleans render as "true"/"false", integers in base 10.
func FormatValue(val any) string {
	switch x := val.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Preset is a named, reusable partial value set. A preset may compose other
// presets via Extends; composed values are merged first (in order), then the
// preset's own values override them.
type Preset struct {
	Name    string
	Extends []string
	Values  ValueSet
}

// PresetTable maps preset names to their definitions.
type PresetTable map[string]Preset

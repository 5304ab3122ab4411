package types

import "io/fs"

// TemplateEntry is one unit of a template tree: a directory or a file.
// Path is slash-separated and relative to the bundle's content root; it may
// embed placeholder expressions in any segment. Guard names a boolean
// parameter (optionally prefixed with "!") that controls whether the entry,
// and for directories its whole subtree, is materialized.
type TemplateEntry struct {
	Path    string
	IsDir   bool
	Content []byte
	Guard   string
	Mode    fs.FileMode
}

// FileMode returns the mode to materialize the entry with, falling back to
// conventional defaults when the bundle did not record one.
func (e TemplateEntry) FileMode() fs.FileMode {
	if e.Mode != 0 {
		return e.Mode
	}
	if e.IsDir {
		return 0o755
	}
	return 0o644
}

// TemplateBundle is a loaded template bundle: the parameter schema, the
// entry tree, the preset table, and declared hooks. Bundles are read-only
// for the duration of a run and safe to share across concurrent runs
// targeting different output roots.
type TemplateBundle struct {
	Name        string
	Description string
	Definitions []ParameterDefinition
	Entries     []TemplateEntry
	Presets     PresetTable
	Hooks       []Hook
}

// Definition returns the parameter definition with the given name.
func (b *TemplateBundle) Definition(name string) (ParameterDefinition, bool) {
	for _, d := range b.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return ParameterDefinition{}, false
}

// RenderContext carries everything a render pass reads: the fully validated
// value set and the fixed table of case transforms. It is passed by
// reference and never mutated during rendering.
type RenderContext struct {
	Values     ValueSet
	Transforms map[string]Transform
}

// Transform is a pure case-transform function over identifier-like strings.
type Transform func(string) string

// Lookup returns the formatted string value of a variable.
func (c *RenderContext) Lookup(name string) (string, bool) {
	val, ok := c.Values[name]
	if !ok {
		return "", false
	}
	return FormatValue(val), true
}

// Truthy reports the boolean value of a variable. The second return is
// false when the variable is absent, the third when it is not a boolean.
func (c *RenderContext) Truthy(name string) (value, present, isBool bool) {
	val, ok := c.Values[name]
	if !ok {
		return false, false, false
	}
	b, ok := val.(bool)
	if !ok {
		return false, true, false
	}
	return b, true, true
}

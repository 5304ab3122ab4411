// Package presets resolves named parameter-value bundles. Presets compose
// other presets; composition expands post-order so a preset's own values
// override whatever it composes, and a cycle on the active resolution path
// is an error.
package presets

import (
	"strings"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/types"
)

// Resolve merges the named presets, in order, into one partial value set.
// Later names override earlier ones. The output is unvalidated and is meant
// to be layered beneath explicit user overrides.
func Resolve(presetNames []string, table types.PresetTable) (types.ValueSet, error) {
	out := make(types.ValueSet)
	for _, name := range presetNames {
		vals, err := expand(name, table, nil)
		if err != nil {
			return nil, err
		}
		out = out.Merge(vals)
	}
	return out, nil
}

// expand resolves one preset: composed presets first (in declaration
// order), then the preset's own values on top. path is the active
// resolution chain used to detect cycles.
func expand(name string, table types.PresetTable, path []string) (types.ValueSet, error) {
	for _, seen := range path {
		if seen == name {
			chain := strings.Join(append(path, name), " -> ")
			return nil, errors.Newf(errors.ErrPresetCycle,
				"circular preset reference: %s", chain).
				WithDetail("chain", chain)
		}
	}

	preset, ok := table[name]
	if !ok {
		return nil, errors.Newf(errors.ErrPresetNotFound,
			"preset %q not found", name).WithDetail("preset", name)
	}

	path = append(path, name)
	out := make(types.ValueSet)
	for _, base := range preset.Extends {
		vals, err := expand(base, table, path)
		if err != nil {
			return nil, err
		}
		out = out.Merge(vals)
	}
	return out.Merge(preset.Values), nil
}

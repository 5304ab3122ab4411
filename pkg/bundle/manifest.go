package bundle

import (
	"fmt"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/types"
)

// ManifestName is the manifest file every bundle directory must contain.
const ManifestName = "armature.toml"

// PresetsFileName is the optional standalone preset file. Presets declared
// there override same-named presets from the manifest.
const PresetsFileName = "presets.yaml"

// ContentRoot is the subdirectory whose tree becomes the template entries.
const ContentRoot = "root"

type manifest struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`

	Parameters []manifestParameter `toml:"parameter"`
	Presets    []manifestPreset    `toml:"preset"`
	Hooks      []manifestHook      `toml:"hook"`

	// Guards maps entry paths, relative to the content root and exactly as
	// they appear on disk, to guard expressions.
	Guards map[string]string `toml:"guards"`
}

type manifestParameter struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Description string `toml:"description"`
	Default     any    `toml:"default"`
	Required    bool   `toml:"required"`

	Pattern string   `toml:"pattern"`
	Min     *int64   `toml:"min"`
	Max     *int64   `toml:"max"`
	Allowed []string `toml:"allowed"`

	DependsOn *manifestDependency `toml:"depends_on"`
}

type manifestDependency struct {
	Parameter string `toml:"parameter"`
	Equals    any    `toml:"equals"`
}

type manifestPreset struct {
	Name    string         `toml:"name"`
	Extends []string       `toml:"extends"`
	Values  map[string]any `toml:"values"`
}

type manifestHook struct {
	ID      string   `toml:"id"`
	Stage   string   `toml:"stage"`
	Command []string `toml:"command"`
	Timeout string   `toml:"timeout"`
}

func parseManifest(data []byte) (*manifest, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrBundleInvalid, "parsing manifest")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *manifest) validate() error {
	if m.Name == "" {
		return errors.New(errors.ErrBundleInvalid, "manifest has no name")
	}

	seen := make(map[string]struct{}, len(m.Parameters))
	for _, p := range m.Parameters {
		if p.Name == "" {
			return errors.New(errors.ErrBundleInvalid, "parameter with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return errors.Newf(errors.ErrBundleInvalid,
				"parameter %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}

		if !types.ParamType(p.Type).Valid() {
			return errors.Newf(errors.ErrBundleInvalid,
				"parameter %q has unknown type %q", p.Name, p.Type)
		}
		if types.ParamType(p.Type) == types.ParamEnum && len(p.Allowed) == 0 {
			return errors.Newf(errors.ErrBundleInvalid,
				"enum parameter %q declares no allowed values", p.Name)
		}
		if p.DependsOn != nil && p.DependsOn.Parameter == "" {
			return errors.Newf(errors.ErrBundleInvalid,
				"parameter %q has a dependency with no parameter name", p.Name)
		}
	}

	for _, h := range m.Hooks {
		if h.ID == "" {
			return errors.New(errors.ErrBundleInvalid, "hook with empty id")
		}
		if h.Stage != string(types.HookPre) && h.Stage != string(types.HookPost) {
			return errors.Newf(errors.ErrBundleInvalid,
				"hook %q has unknown stage %q", h.ID, h.Stage)
		}
		if len(h.Command) == 0 {
			return errors.Newf(errors.ErrBundleInvalid,
				"hook %q declares no command", h.ID)
		}
		if h.Timeout != "" {
			if _, err := time.ParseDuration(h.Timeout); err != nil {
				return errors.Newf(errors.ErrBundleInvalid,
					"hook %q has invalid timeout %q", h.ID, h.Timeout)
			}
		}
	}
	return nil
}

// definitions converts manifest parameters to their runtime form.
func (m *manifest) definitions() ([]types.ParameterDefinition, error) {
	defs := make([]types.ParameterDefinition, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		def := types.ParameterDefinition{
			Name:        p.Name,
			Type:        types.ParamType(p.Type),
			Description: p.Description,
			Required:    p.Required,
			Constraints: types.Constraints{
				Pattern: p.Pattern,
				Min:     p.Min,
				Max:     p.Max,
				Allowed: p.Allowed,
			},
		}
		if p.Default != nil {
			v, err := normalizeValue(p.Default)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrBundleInvalid,
					"default for parameter %q", p.Name)
			}
			def.Default = v
		}
		if p.DependsOn != nil {
			eq, err := normalizeValue(p.DependsOn.Equals)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrBundleInvalid,
					"dependency value for parameter %q", p.Name)
			}
			def.DependsOn = &types.Dependency{
				Parameter: p.DependsOn.Parameter,
				Equals:    eq,
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (m *manifest) presetTable() (types.PresetTable, error) {
	table := make(types.PresetTable, len(m.Presets))
	for _, p := range m.Presets {
		if p.Name == "" {
			return nil, errors.New(errors.ErrBundleInvalid, "preset with empty name")
		}
		values, err := normalizeValues(p.Values)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrBundleInvalid, "preset %q", p.Name)
		}
		table[p.Name] = types.Preset{
			Name:    p.Name,
			Extends: p.Extends,
			Values:  values,
		}
	}
	return table, nil
}

func (m *manifest) hooks() []types.Hook {
	out := make([]types.Hook, 0, len(m.Hooks))
	for _, h := range m.Hooks {
		hook := types.Hook{
			ID:      h.ID,
			Stage:   types.HookStage(h.Stage),
			Command: h.Command,
		}
		if h.Timeout != "" {
			// Validated in validate().
			hook.Timeout, _ = time.ParseDuration(h.Timeout)
		}
		out = append(out, hook)
	}
	return out
}

// normalizeValue maps decoded manifest values onto the closed value domain:
// string, bool, or int64.
func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x == float64(int64(x)) {
			return int64(x), nil
		}
		return nil, fmt.Errorf("non-integer number %v", x)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func normalizeValues(in map[string]any) (types.ValueSet, error) {
	out := make(types.ValueSet, len(in))
	for k, v := range in {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

package bundle

import (
	"io/fs"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/logging"
	"github.com/armature-io/armature/pkg/types"
)

// Load reads the bundle at dir through fsys and assembles a TemplateBundle.
// The returned bundle is fully in memory and independent of the directory.
func Load(fsys types.FS, dir string) (*types.TemplateBundle, error) {
	logger := logging.GetLogger("bundle")

	data, err := fsys.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBundleLoad,
			"reading %s in %q", ManifestName, dir)
	}
	m, err := parseManifest(data)
	if err != nil {
		return nil, err
	}

	defs, err := m.definitions()
	if err != nil {
		return nil, err
	}
	presets, err := m.presetTable()
	if err != nil {
		return nil, err
	}
	if err := loadPresetsFile(fsys, dir, presets); err != nil {
		return nil, err
	}

	entries, err := walkContent(fsys, filepath.Join(dir, ContentRoot), m.Guards)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("bundle", m.Name).
		Int("parameters", len(defs)).
		Int("entries", len(entries)).
		Int("presets", len(presets)).
		Msg("Bundle loaded")

	return &types.TemplateBundle{
		Name:        m.Name,
		Description: m.Description,
		Definitions: defs,
		Entries:     entries,
		Presets:     presets,
		Hooks:       m.hooks(),
	}, nil
}

type presetFileEntry struct {
	Extends []string       `yaml:"extends"`
	Values  map[string]any `yaml:"values"`
}

// loadPresetsFile merges the optional presets.yaml into table. Entries from
// the file override same-named manifest presets.
func loadPresetsFile(fsys types.FS, dir string, table types.PresetTable) error {
	data, err := fsys.ReadFile(filepath.Join(dir, PresetsFileName))
	if err != nil {
		// The file is optional.
		return nil
	}

	var raw map[string]presetFileEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrapf(err, errors.ErrBundleInvalid, "parsing %s", PresetsFileName)
	}

	for name, entry := range raw {
		values, err := normalizeValues(entry.Values)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBundleInvalid, "preset %q", name)
		}
		table[name] = types.Preset{
			Name:    name,
			Extends: entry.Extends,
			Values:  values,
		}
	}
	return nil
}

// walkContent walks the content root depth-first in sorted order and builds
// the entry list. Directories precede their children, so a false directory
// guard can short-circuit its whole subtree downstream.
func walkContent(fsys types.FS, root string, guards map[string]string) ([]types.TemplateEntry, error) {
	if _, err := fsys.Stat(root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBundleLoad,
			"bundle has no %s directory", ContentRoot)
	}

	var entries []types.TemplateEntry
	var walk func(rel string) error
	walk = func(rel string) error {
		dirEntries, err := fsys.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return errors.Wrapf(err, errors.ErrBundleLoad, "reading directory %q", rel)
		}
		for _, de := range dirEntries {
			childRel := de.Name()
			if rel != "" {
				childRel = path.Join(rel, de.Name())
			}
			entry := types.TemplateEntry{
				Path:  childRel,
				IsDir: de.IsDir(),
				Guard: guards[childRel],
			}
			if de.IsDir() {
				entries = append(entries, entry)
				if err := walk(childRel); err != nil {
					return err
				}
				continue
			}

			if info, err := de.Info(); err == nil {
				entry.Mode = info.Mode() & fs.ModePerm
			}
			content, err := fsys.ReadFile(filepath.Join(root, filepath.FromSlash(childRel)))
			if err != nil {
				return errors.Wrapf(err, errors.ErrBundleLoad, "reading file %q", childRel)
			}
			entry.Content = content
			entries = append(entries, entry)
		}
		return nil
	}

	if err := walk(""); err != nil {
		return nil, err
	}
	return entries, nil
}

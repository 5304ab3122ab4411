package bundle_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-io/armature/pkg/bundle"
	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/filesystem"
	"github.com/armature-io/armature/pkg/types"
)

const sampleManifest = `
name = "go-lib"
description = "A library skeleton"

[[parameter]]
name = "module_name"
type = "string"
required = true
pattern = "^[a-z][a-z0-9_]*$"

[[parameter]]
name = "include_widget"
type = "boolean"
default = false

[[parameter]]
name = "widget_name"
type = "string"
default = "widget"

[parameter.depends_on]
parameter = "include_widget"
equals = true

[[parameter]]
name = "license"
type = "enum"
default = "mit"
allowed = ["mit", "apache-2.0"]

[[preset]]
name = "minimal"

[preset.values]
include_widget = false

[[preset]]
name = "full"
extends = ["minimal"]

[preset.values]
include_widget = true

[[hook]]
id = "git-init"
stage = "post"
command = ["git", "init"]
timeout = "30s"

[guards]
"docs" = "include_widget"
`

func writeBundle(t *testing.T, fsys types.FS, manifest string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll("tpl/root/docs", 0o755))
	require.NoError(t, fsys.MkdirAll("tpl/root/lib", 0o755))
	require.NoError(t, fsys.WriteFile("tpl/armature.toml", []byte(manifest), 0o644))
	require.NoError(t, fsys.WriteFile("tpl/root/lib/{{ module_name }}.ext",
		[]byte("module {{ module_name.pascalCase() }}\n"), 0o644))
	require.NoError(t, fsys.WriteFile("tpl/root/docs/readme.md", []byte("docs"), 0o644))
}

func TestLoad(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
	writeBundle(t, fsys, sampleManifest)

	b, err := bundle.Load(fsys, "tpl")
	require.NoError(t, err)

	assert.Equal(t, "go-lib", b.Name)
	assert.Equal(t, "A library skeleton", b.Description)
	require.Len(t, b.Definitions, 4)

	module, ok := b.Definition("module_name")
	require.True(t, ok)
	assert.Equal(t, types.ParamString, module.Type)
	assert.True(t, module.Required)
	assert.Equal(t, "^[a-z][a-z0-9_]*$", module.Constraints.Pattern)

	widget, ok := b.Definition("widget_name")
	require.True(t, ok)
	require.NotNil(t, widget.DependsOn)
	assert.Equal(t, "include_widget", widget.DependsOn.Parameter)
	assert.Equal(t, true, widget.DependsOn.Equals)

	license, ok := b.Definition("license")
	require.True(t, ok)
	assert.Equal(t, types.ParamEnum, license.Type)
	assert.Equal(t, []string{"mit", "apache-2.0"}, license.Constraints.Allowed)
	assert.Equal(t, "mit", license.Default)

	require.Contains(t, b.Presets, "full")
	assert.Equal(t, []string{"minimal"}, b.Presets["full"].Extends)
	assert.Equal(t, true, b.Presets["full"].Values["include_widget"])

	require.Len(t, b.Hooks, 1)
	assert.Equal(t, "git-init", b.Hooks[0].ID)
	assert.Equal(t, types.HookPost, b.Hooks[0].Stage)
	assert.Equal(t, []string{"git", "init"}, b.Hooks[0].Command)
	assert.Equal(t, 30*time.Second, b.Hooks[0].Timeout)
}

func TestLoadEntryTree(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
	writeBundle(t, fsys, sampleManifest)

	b, err := bundle.Load(fsys, "tpl")
	require.NoError(t, err)

	byPath := make(map[string]types.TemplateEntry, len(b.Entries))
	for _, e := range b.Entries {
		byPath[e.Path] = e
	}

	require.Contains(t, byPath, "docs")
	assert.True(t, byPath["docs"].IsDir)
	assert.Equal(t, "include_widget", byPath["docs"].Guard,
		"guard table must attach to the matching entry")

	require.Contains(t, byPath, "lib/{{ module_name }}.ext")
	file := byPath["lib/{{ module_name }}.ext"]
	assert.False(t, file.IsDir)
	assert.Equal(t, "module {{ module_name.pascalCase() }}\n", string(file.Content))

	// Directories precede their children.
	order := make(map[string]int, len(b.Entries))
	for i, e := range b.Entries {
		order[e.Path] = i
	}
	assert.Less(t, order["docs"], order["docs/readme.md"])
	assert.Less(t, order["lib"], order["lib/{{ module_name }}.ext"])
}

func TestLoadPresetsFileOverridesManifest(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
	writeBundle(t, fsys, sampleManifest)
	require.NoError(t, fsys.WriteFile("tpl/presets.yaml", []byte(`
full:
  extends: [minimal]
  values:
    include_widget: true
    widget_name: deluxe
extra:
  values:
    license: apache-2.0
`), 0o644))

	b, err := bundle.Load(fsys, "tpl")
	require.NoError(t, err)

	require.Contains(t, b.Presets, "extra")
	assert.Equal(t, "apache-2.0", b.Presets["extra"].Values["license"])

	// Same-named preset from the file wins over the manifest's.
	assert.Equal(t, "deluxe", b.Presets["full"].Values["widget_name"])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing name",
			manifest: `description = "x"`,
			wantCode: errors.ErrBundleInvalid,
		},
		{
			name: "unknown parameter type",
			manifest: `
name = "x"
[[parameter]]
name = "p"
type = "float"
`,
			wantCode: errors.ErrBundleInvalid,
		},
		{
			name: "duplicate parameter",
			manifest: `
name = "x"
[[parameter]]
name = "p"
type = "string"
[[parameter]]
name = "p"
type = "string"
`,
			wantCode: errors.ErrBundleInvalid,
		},
		{
			name: "enum without allowed values",
			manifest: `
name = "x"
[[parameter]]
name = "p"
type = "enum"
`,
			wantCode: errors.ErrBundleInvalid,
		},
		{
			name: "hook with bad stage",
			manifest: `
name = "x"
[[hook]]
id = "h"
stage = "during"
command = ["true"]
`,
			wantCode: errors.ErrBundleInvalid,
		},
		{
			name: "hook with bad timeout",
			manifest: `
name = "x"
[[hook]]
id = "h"
stage = "pre"
command = ["true"]
timeout = "soon"
`,
			wantCode: errors.ErrBundleInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
			writeBundle(t, fsys, tt.manifest)

			_, err := bundle.Load(fsys, "tpl")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got: %v", err)
		})
	}
}

func TestLoadMissingManifest(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fsys.MkdirAll("tpl/root", 0o755))

	_, err := bundle.Load(fsys, "tpl")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBundleLoad))
}

func TestLoadMissingContentRoot(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fsys.MkdirAll("tpl", 0o755))
	require.NoError(t, fsys.WriteFile("tpl/armature.toml", []byte(`name = "x"`), 0o644))

	_, err := bundle.Load(fsys, "tpl")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBundleLoad))
}

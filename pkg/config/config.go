// Package config loads armature's own settings, as opposed to a bundle's
// parameter schema. Settings are layered: embedded defaults, then the user
// config file in the XDG config directory, then ARMATURE_* environment
// variables. Later layers win.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/armature-io/armature/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultsTOML []byte

const envPrefix = "ARMATURE_"

// GenerateSettings are the defaults applied to generate runs when the
// corresponding flag is not given.
type GenerateSettings struct {
	Workers                   int    `koanf:"workers"`
	HooksEnabled              bool   `koanf:"hooks_enabled"`
	HookPolicy                string `koanf:"hook_policy"`
	Overwrite                 bool   `koanf:"overwrite"`
	RollbackOnPostHookFailure bool   `koanf:"rollback_on_post_hook_failure"`
}

// UISettings control output presentation.
type UISettings struct {
	Color string `koanf:"color"`
}

// Settings is the resolved configuration.
type Settings struct {
	Generate GenerateSettings `koanf:"generate"`
	UI       UISettings       `koanf:"ui"`
}

// UserConfigPath returns the user config file location, whether or not the
// file exists.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "armature", "config.toml")
}

// Load resolves settings from all layers.
func Load() (*Settings, error) {
	return load(UserConfigPath())
}

func load(userConfig string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsTOML), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading built-in defaults")
	}

	if _, err := os.Stat(userConfig); err == nil {
		if err := k.Load(file.Provider(userConfig), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad,
				"loading user config %q", userConfig)
		}
	}

	// ARMATURE_GENERATE__HOOK_POLICY=best-effort sets generate.hook_policy.
	// A double underscore separates path segments so single underscores can
	// stay part of key names.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading environment overrides")
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "decoding settings")
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) validate() error {
	switch s.Generate.HookPolicy {
	case "fail-fast", "best-effort":
	default:
		return errors.Newf(errors.ErrConfigLoad,
			"invalid hook policy %q", s.Generate.HookPolicy)
	}
	switch s.UI.Color {
	case "auto", "always", "never":
	default:
		return errors.Newf(errors.ErrConfigLoad,
			"invalid color mode %q", s.UI.Color)
	}
	if s.Generate.Workers < 0 {
		return errors.Newf(errors.ErrConfigLoad,
			"workers must not be negative, got %d", s.Generate.Workers)
	}
	return nil
}

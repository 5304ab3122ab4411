package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/armature-io/armature/pkg/bundle"
	"github.com/armature-io/armature/pkg/config"
	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/filesystem"
	"github.com/armature-io/armature/pkg/orchestrator"
	"github.com/armature-io/armature/pkg/schema"
	"github.com/armature-io/armature/pkg/types"
	"github.com/armature-io/armature/pkg/ui/output"
)

var (
	genSets       []string
	genPresets    []string
	genOutput     string
	genDryRun     bool
	genOverwrite  bool
	genHooks      bool
	genHookPolicy string
	genRollback   bool
	genWorkers    int

	generateCmd = &cobra.Command{
		Use:   "generate <bundle-dir>",
		Short: "Generate a project tree from a template bundle",
		Long: `Generate loads the bundle at <bundle-dir>, resolves presets and
parameter values, renders the template tree, and writes it under the
output directory. On any failure every path written by the run is
removed again.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
)

func init() {
	generateCmd.Flags().StringArrayVar(&genSets, "set", nil,
		"Set a parameter value (name=value, repeatable)")
	generateCmd.Flags().StringSliceVar(&genPresets, "preset", nil,
		"Apply a named preset (repeatable; later presets win)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", ".",
		"Directory to generate into")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false,
		"Report what would be written without touching the filesystem")
	generateCmd.Flags().BoolVar(&genOverwrite, "overwrite", false,
		"Allow replacing pre-existing files")
	generateCmd.Flags().BoolVar(&genHooks, "hooks", false,
		"Run the bundle's declared hooks")
	generateCmd.Flags().StringVar(&genHookPolicy, "hook-policy", "",
		"Pre-hook failure policy: fail-fast or best-effort")
	generateCmd.Flags().BoolVar(&genRollback, "rollback-on-hook-failure", false,
		"Roll back written files when a post-hook fails")
	generateCmd.Flags().IntVar(&genWorkers, "workers", 0,
		"Render worker pool size (0 = one per CPU, capped at 8)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	applyGenerateSettings(cmd, settings)

	fsys := filesystem.NewOS()
	b, err := bundle.Load(fsys, args[0])
	if err != nil {
		return err
	}

	overrides, err := parseSetFlags(b, genSets)
	if err != nil {
		return err
	}

	cfg := types.ScaffoldConfig{
		TargetRoot:                genOutput,
		Bundle:                    b,
		Overrides:                 overrides,
		Presets:                   genPresets,
		HooksEnabled:              genHooks,
		HookPolicy:                types.HookPolicy(genHookPolicy),
		RollbackOnPostHookFailure: genRollback,
		Overwrite:                 genOverwrite,
		DryRun:                    genDryRun,
		RenderWorkers:             genWorkers,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := orchestrator.New(orchestrator.WithFS(fsys)).Generate(ctx, cfg)

	renderer := output.NewRenderer(resolveColorMode(settings))
	fmt.Print(renderer.Summary(res))

	if res.Outcome != types.OutcomeCompleted && res.Outcome != types.OutcomePartial {
		// The summary already printed every error.
		os.Exit(1)
	}
	return nil
}

// applyGenerateSettings fills flag defaults from configuration; flags the
// user actually passed win.
func applyGenerateSettings(cmd *cobra.Command, settings *config.Settings) {
	flags := cmd.Flags()
	if !flags.Changed("workers") {
		genWorkers = settings.Generate.Workers
	}
	if !flags.Changed("hooks") {
		genHooks = settings.Generate.HooksEnabled
	}
	if !flags.Changed("hook-policy") {
		genHookPolicy = settings.Generate.HookPolicy
	}
	if !flags.Changed("overwrite") {
		genOverwrite = settings.Generate.Overwrite
	}
	if !flags.Changed("rollback-on-hook-failure") {
		genRollback = settings.Generate.RollbackOnPostHookFailure
	}
}

func resolveColorMode(settings *config.Settings) string {
	if colorMode != "" {
		return colorMode
	}
	return settings.UI.Color
}

// parseSetFlags turns --set name=value pairs into typed overrides using the
// bundle's schema. A name the schema does not declare is passed through raw
// so the validator reports it.
func parseSetFlags(b *types.TemplateBundle, sets []string) (types.ValueSet, error) {
	overrides := make(types.ValueSet, len(sets))
	for _, s := range sets {
		name, raw, found := strings.Cut(s, "=")
		if !found || name == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"--set needs name=value, got %q", s)
		}
		def, ok := b.Definition(name)
		if !ok {
			overrides[name] = raw
			continue
		}
		val, err := schema.ParseValue(def, raw)
		if err != nil {
			return nil, err
		}
		overrides[name] = val
	}
	return overrides, nil
}

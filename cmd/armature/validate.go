package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/armature-io/armature/pkg/bundle"
	"github.com/armature-io/armature/pkg/config"
	"github.com/armature-io/armature/pkg/filesystem"
	"github.com/armature-io/armature/pkg/presets"
	"github.com/armature-io/armature/pkg/schema"
	"github.com/armature-io/armature/pkg/ui/output"
)

var (
	valSets    []string
	valPresets []string

	validateCmd = &cobra.Command{
		Use:   "validate <bundle-dir>",
		Short: "Validate parameter values against a bundle's schema",
		Long: `Validate runs preset resolution and schema validation for the given
values without rendering or writing anything. All violations are
reported, not just the first.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().StringArrayVar(&valSets, "set", nil,
		"Set a parameter value (name=value, repeatable)")
	validateCmd.Flags().StringSliceVar(&valPresets, "preset", nil,
		"Apply a named preset (repeatable; later presets win)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	b, err := bundle.Load(filesystem.NewOS(), args[0])
	if err != nil {
		return err
	}

	overrides, err := parseSetFlags(b, valSets)
	if err != nil {
		return err
	}

	presetVals, err := presets.Resolve(valPresets, b.Presets)
	if err != nil {
		return err
	}

	_, verrs := schema.Validate(b.Definitions, presetVals.Merge(overrides))

	renderer := output.NewRenderer(resolveColorMode(settings))
	fmt.Print(renderer.ValidationReport(verrs))
	if len(verrs) > 0 {
		os.Exit(1)
	}
	return nil
}

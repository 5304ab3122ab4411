package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armature-io/armature/pkg/bundle"
	"github.com/armature-io/armature/pkg/config"
	"github.com/armature-io/armature/pkg/filesystem"
	"github.com/armature-io/armature/pkg/ui/output"
)

var listCmd = &cobra.Command{
	Use:   "list <bundle-dir>",
	Short: "Show a bundle's parameters and presets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		b, err := bundle.Load(filesystem.NewOS(), args[0])
		if err != nil {
			return err
		}

		renderer := output.NewRenderer(resolveColorMode(settings))
		fmt.Print(renderer.BundleInfo(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

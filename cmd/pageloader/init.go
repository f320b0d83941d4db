package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/pageloader/internal/domain/manifest"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write the built-in manifest",
	Long: `Init writes the built-in batch as a manifest to edit. The format follows
the file extension: .yaml, .yml, .toml or .json.

Examples:
  pageloader init                 # pageloader.yaml
  pageloader init page.toml
  pageloader init --force page.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	file := "pageloader.yaml"
	if len(args) > 0 {
		file = args[0]
	}

	format, err := manifest.FormatFor(file)
	if err != nil {
		return err
	}
	if _, err := os.Stat(file); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", file)
	}

	data, err := manifest.Default().Encode(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), file)
	return nil
}

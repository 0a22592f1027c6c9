package main

import (
	"github.com/spf13/cobra"
)

var setVersionCmd = &cobra.Command{
	Use:   "set-version VERSION",
	Short: "Set the version in package.json",
	Long: `Set the version member of package.json, keeping all other members and
their order intact.

Examples:
  nodeops set-version 1.4.2
  nodeops set-version 2.0.0-rc.1 --source-dir web`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetVersion,
}

var setVersionSourceDir string

func init() {
	setVersionCmd.Flags().StringVar(&setVersionSourceDir, "source-dir", "", "directory containing package.json (default: working directory)")

	rootCmd.AddCommand(setVersionCmd)
}

func runSetVersion(cmd *cobra.Command, args []string) error {
	version := ""
	if len(args) > 0 {
		version = args[0]
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	dir := env.config.Defaults.SourceDirectory
	if cmd.Flags().Changed("source-dir") {
		dir = setVersionSourceDir
	}

	result, err := env.runner.SetProjectVersion(cmd.Context(), dir, version)
	if err != nil {
		return err
	}
	if !result.Success {
		return errOperationFailed
	}
	return nil
}

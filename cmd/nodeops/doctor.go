package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nodeops/internal/domain/npm"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Show where npm is looked for and which one is used",
	Long: `Doctor lists the locations probed for npm on the execution agent, in
order, and the executable an operation would use.

Examples:
  nodeops doctor
  nodeops doctor --npm-path /opt/node/bin/npm
  nodeops doctor --agent ssh://build@agent-03`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorNpmPath string

var (
	foundStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	missingStyle = lipgloss.NewStyle().Faint(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true)
)

func init() {
	doctorCmd.Flags().StringVar(&doctorNpmPath, "npm-path", "", "npm executable (default: config npm_path, then $"+npmPathEnv+", then discovery)")

	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	locator := env.runner.Locator()

	_, _ = fmt.Fprintf(out, "Working directory: %s\n\n", env.exec.WorkingDirectory)

	candidates, err := locator.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list npm locations: %w", err)
	}
	_, _ = fmt.Fprintln(out, "Probed locations:")
	for _, c := range candidates {
		exists, err := env.exec.Agent.Files.FileExists(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", c, err)
		}
		if exists {
			_, _ = fmt.Fprintf(out, "  %s %s\n", foundStyle.Render("found  "), c)
		} else {
			_, _ = fmt.Fprintf(out, "  %s %s\n", missingStyle.Render("missing"), c)
		}
	}

	toolPath := resolveToolPath(cmd.Flags(), doctorNpmPath, env.config.Defaults.NpmPath)
	path, err := locator.Locate(ctx, toolPath)
	var failure *npm.ExecutionFailure
	switch {
	case errors.As(err, &failure):
		_, _ = fmt.Fprintf(out, "\n%s %s\n", failedStyle.Render("npm:"), failure.Message)
		return errOperationFailed
	case err != nil:
		return err
	}
	_, _ = fmt.Fprintf(out, "\nnpm: %s\n", path)
	return nil
}

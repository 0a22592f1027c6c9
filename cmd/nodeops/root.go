package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nodeops/internal/domain/config"
)

var (
	// Global flags
	cfgFile      string
	sourcesFile  string
	agentAddress string
	identityFile string
	verboseLog   bool
	quiet        bool
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "nodeops",
	Short: "Run npm in build pipelines",
	Long: `nodeops runs npm install, build, run, exec and publish on a local or
remote build agent.

For every run it locates npm, writes a transient .npmrc for the selected
package source, streams npm's output into the log with matching severities
and checks the exit code against a success policy such as "== 0" or "< 2".`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&sourcesFile, "sources", "", "package source catalogue (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&agentAddress, "agent", "", "execution agent: local or ssh://user@host[:port]")
	rootCmd.PersistentFlags().StringVar(&identityFile, "identity", "", "SSH private key for a remote agent")
	rootCmd.PersistentFlags().BoolVarP(&verboseLog, "verbose-log", "v", false, "log debug messages")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "discard all log output; report through the exit code only")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string) int {
	return runWith(ctx, args, os.Stdout, os.Stderr)
}

func runWith(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	code := exitCodeFor(err)
	if code == ExitFatal {
		printErrorTo(stderr, err)
	}
	return code
}

// formatError returns a user-friendly error message.
func formatError(err error) string {
	if userErr := config.GetUserError(err); userErr != nil {
		msg := userErr.Error()
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verboseLog && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var list *config.ErrorList
	if errors.As(err, &list) {
		return "invalid configuration:\n" + list.Format()
	}
	return err.Error()
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("sources", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tColoured console output",
			"json\tOne JSON object per line",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

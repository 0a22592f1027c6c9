package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag of every command to its default so that
// consecutive executions of rootCmd do not see each other's values.
func resetFlags(t *testing.T) {
	t.Helper()

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					require.NoError(t, sv.Replace(nil))
				} else {
					require.NoError(t, f.Value.Set(f.DefValue))
				}
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// execute runs the CLI with an empty config file so the result does not
// depend on the current directory.
func execute(t *testing.T, args ...string) cliResult {
	t.Helper()
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })

	cfg := filepath.Join(t.TempDir(), "nodeops.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))

	var stdout, stderr bytes.Buffer
	code := runWith(context.Background(), append([]string{"--config", cfg}, args...), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// executeWithConfig is execute with the given nodeops.yaml content.
func executeWithConfig(t *testing.T, yaml string, args ...string) cliResult {
	t.Helper()
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })

	cfg := filepath.Join(t.TempDir(), "nodeops.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o600))

	var stdout, stderr bytes.Buffer
	code := runWith(context.Background(), append([]string{"--config", cfg}, args...), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

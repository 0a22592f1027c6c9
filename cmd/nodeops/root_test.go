package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nodeops/internal/domain/config"
)

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "nodeops", rootCmd.Use)
}

func TestRootCommand_HasPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"config", "sources", "agent", "identity", "verbose-log", "quiet", "log-format"} {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, flags.Lookup(name))
		})
	}
	assert.Equal(t, "v", flags.Lookup("verbose-log").Shorthand)
	assert.Equal(t, "q", flags.Lookup("quiet").Shorthand)
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"install", "build", "run", "exec", "publish", "set-version", "npmrc", "doctor", "source", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestOperationCommands_HaveSharedFlags(t *testing.T) {
	for _, name := range []string{"install", "build", "run", "exec", "publish"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)

		for _, flag := range []string{"source-dir", "package-source", "scope", "npm-verbose", "success-exit-code", "npm-path", "npmrc", "allow-self-signed"} {
			assert.NotNil(t, cmd.Flags().Lookup(flag), "%s --%s", name, flag)
		}
	}
}

func TestFormatError(t *testing.T) {
	t.Run("user error", func(t *testing.T) {
		msg := formatError(config.NewConfigNotFoundError("ci.yaml"))
		assert.Contains(t, msg, "configuration file not found: ci.yaml (at ci.yaml)")
		assert.Contains(t, msg, "Suggestion: Check the --config path")
	})

	t.Run("error list", func(t *testing.T) {
		var list config.ErrorList
		list.AddValidation("log.format", "unknown format", "")
		msg := formatError(list.AsError())
		assert.Contains(t, msg, "invalid configuration:")
		assert.Contains(t, msg, "[VALIDATION_FAILED] log.format: unknown format")
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "boom", formatError(errors.New("boom")))
	})
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestRun_Version(t *testing.T) {
	res := execute(t, "version")

	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "nodeops dev")
	assert.Contains(t, res.stdout, "commit: none")
}

func TestRun_UsageErrorsAreFatal(t *testing.T) {
	res := execute(t, "install", "--no-such-flag")

	assert.Equal(t, ExitFatal, res.code)
	assert.Contains(t, res.stderr, "Error: unknown flag: --no-such-flag")
}

func TestRun_MissingRequiredConfig(t *testing.T) {
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })

	var stdout, stderr bytes.Buffer
	code := runWith(t.Context(), []string{"--config", "/nonexistent/nodeops.yaml", "install"}, &stdout, &stderr)

	assert.Equal(t, ExitFatal, code)
	assert.Contains(t, stderr.String(), "configuration file not found")
}

func TestRun_InvalidConfig(t *testing.T) {
	res := executeWithConfig(t, "log:\n  format: xml\n", "install")

	assert.Equal(t, ExitFatal, res.code)
	assert.Contains(t, res.stderr, "invalid configuration:")
}

func TestRun_UnsupportedAgent(t *testing.T) {
	res := execute(t, "--agent", "docker://builder", "install")

	assert.Equal(t, ExitFatal, res.code)
	assert.Contains(t, res.stderr, `unsupported agent "docker://builder"`)
}

func TestRun_UnknownLogFormat(t *testing.T) {
	res := execute(t, "--log-format", "xml", "install")

	assert.Equal(t, ExitFatal, res.code)
	assert.Contains(t, res.stderr, `unknown log format "xml"`)
}

func TestRun_QuietWithVerboseLog(t *testing.T) {
	res := execute(t, "-q", "-v", "install")

	assert.Equal(t, ExitFatal, res.code)
	assert.Contains(t, res.stderr, "--quiet and --verbose-log cannot be used together")
}

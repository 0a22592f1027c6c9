package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
agent:
  address: ssh://build@agent.example.com:2222
  identity: ~/.ssh/ci_ed25519
  working_directory: /srv/checkout
defaults:
  source_directory: web
  package_source: internal
  scopes:
    - "@acme"
    - "@tools"
  npm_verbose: true
  success_exit_code: "0"
  npm_path: /opt/node/bin/npm
  allow_self_signed: true
sources:
  - name: internal
    url: https://registry.example.com/npm/
    username: ci
    keyring: true
log:
  level: debug
  format: json
`

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.True(t, cfg.Agent.IsRemote())
	assert.Equal(t, "ssh://build@agent.example.com:2222", cfg.Agent.Address)
	assert.Equal(t, "/srv/checkout", cfg.Agent.WorkingDirectory)
	assert.Equal(t, Defaults{
		SourceDirectory: "web",
		PackageSource:   "internal",
		Scopes:          []string{"@acme", "@tools"},
		Verbose:         true,
		SuccessExitCode: "0",
		NpmPath:         "/opt/node/bin/npm",
		AllowSelfSigned: true,
	}, cfg.Defaults)
	require.Len(t, cfg.Sources, 1)
	assert.True(t, cfg.Sources[0].Keyring)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.False(t, cfg.Agent.IsRemote())
}

func TestParse_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"agent", "agent:\n  address: docker://x\n", "agent.address"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"log format", "log:\n  format: xml\n", "log.format"},
		{"source name", "sources:\n  - url: https://r.example.com/\n", "sources[0].name"},
		{"source url", "sources:\n  - name: r\n", "sources[0].url"},
		{"duplicate source", "sources:\n  - name: r\n    url: https://a/\n  - name: R\n    url: https://b/\n", "sources[1].name"},
		{"exclusive", "sources_file: s.toml\nsources:\n  - name: r\n    url: https://a/\n", "sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var list *ErrorList
			require.ErrorAs(t, err, &list)
			var fields []string
			for _, e := range list.Errors() {
				fields = append(fields, e.Context)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("missing optional", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, DefaultFileName), false)
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "other.yaml"), true)
		userErr := GetUserError(err)
		require.NotNil(t, userErr, "got %v", err)
		assert.Equal(t, ErrCodeConfigNotFound, userErr.Code)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.yaml")
		require.NoError(t, os.WriteFile(path, []byte("defaults:\n  verbose: true\n"), 0o600))

		_, err := Load(path, true)
		userErr := GetUserError(err)
		require.NotNil(t, userErr, "got %v", err)
		assert.Equal(t, ErrCodeConfigParse, userErr.Code)
		assert.Equal(t, "unknown setting", userErr.Message)
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o600))

		_, err := Load(path, true)
		var list *ErrorList
		assert.ErrorAs(t, err, &list)
	})

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, "internal", cfg.Defaults.PackageSource)
	})
}

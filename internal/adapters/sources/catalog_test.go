package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

const yamlCatalog = `
sources:
  - name: internal
    url: https://registry.example.com/npm/
    username: alice
    password: secret
  - name: Public
    url: https://registry.npmjs.org/
  - name: nuget-feed
    type: nuget
    url: https://nuget.example.com/
  - name: token
    url: https://npm.pkg.github.com/
    api_key: ${NODEOPS_TEST_TOKEN}
`

const tomlCatalog = `
[[sources]]
name = "internal"
url = "https://registry.example.com/npm/"
username = "alice"
password = "secret"

[[sources]]
name = "Public"
url = "https://registry.npmjs.org/"
`

func TestParse_YAML(t *testing.T) {
	t.Setenv("NODEOPS_TEST_TOKEN", "tok-123")

	c, err := Parse([]byte(yamlCatalog), "yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Public", "internal", "nuget-feed", "token"}, c.Names())

	ctx := context.Background()

	src, err := c.FindSource(ctx, "internal")
	require.NoError(t, err)
	assert.Equal(t, ports.RegistrySource{
		Name:     "internal",
		Type:     "npm",
		URL:      "https://registry.example.com/npm/",
		UserName: "alice",
		Password: "secret",
	}, src)

	src, err = c.FindSource(ctx, "PUBLIC")
	require.NoError(t, err)
	assert.Equal(t, "Public", src.Name)

	src, err = c.FindSource(ctx, "nuget-feed")
	require.NoError(t, err)
	assert.Equal(t, "nuget", src.Type)

	src, err = c.FindSource(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", src.APIKey)

	_, err = c.FindSource(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrSourceNotFound)
}

func TestParse_TOML(t *testing.T) {
	c, err := Parse([]byte(tomlCatalog), "toml", nil)
	require.NoError(t, err)

	src, err := c.FindSource(context.Background(), "internal")
	require.NoError(t, err)
	assert.Equal(t, "alice", src.UserName)
	assert.Equal(t, "secret", src.Password)
	assert.Equal(t, []string{"Public", "internal"}, c.Names())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  string
		wantErr string
	}{
		{"bad yaml", "sources: [", "yaml", "invalid YAML"},
		{"bad toml", "[[sources]\n", "toml", "invalid TOML"},
		{"unknown format", "", "json", "unsupported sources format"},
		{"missing name", "sources:\n  - url: https://r.example.com/\n", "yaml", "name is required"},
		{"missing url", "sources:\n  - name: x\n", "yaml", "url is required"},
		{"duplicate", "sources:\n  - name: x\n    url: https://a/\n  - name: X\n    url: https://b/\n", "yml", "defined more than once"},
		{"keyring unavailable", "sources:\n  - name: x\n    url: https://a/\n    keyring: true\n", "yaml", "keyring is not available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlCatalog), 0o600))

	c, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Len(t, c.Names(), 2)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestCatalog_Keyring(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	require.NoError(t, store.Store("internal", "from-keyring"))
	require.NoError(t, store.Store("token", "tok-keyring"))

	c, err := NewCatalog([]Entry{
		{Name: "internal", URL: "https://registry.example.com/npm/", UserName: "alice", Keyring: true},
		{Name: "token", URL: "https://npm.pkg.github.com/", Keyring: true},
		{Name: "unset", URL: "https://npm.example.com/", Keyring: true},
	}, store)
	require.NoError(t, err)

	ctx := context.Background()

	src, err := c.FindSource(ctx, "internal")
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", src.Password)
	assert.Empty(t, src.APIKey)

	src, err = c.FindSource(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-keyring", src.APIKey)
	assert.Empty(t, src.Password)

	_, err = c.FindSource(ctx, "unset")
	assert.True(t, errors.Is(err, ErrSecretNotFound))
}

func TestCatalog_Cancelled(t *testing.T) {
	c, err := NewCatalog(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.FindSource(ctx, "any")
	assert.ErrorIs(t, err, context.Canceled)
}

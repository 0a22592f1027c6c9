package testutil

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder(t *testing.T) {
	doc := NewConfigBuilder().
		WithAgent("address", "local").
		WithDefault("source_directory", "web").
		WithDefault("scopes", []string{"@acme"}).
		WithSource(TestSource{Name: "internal", URL: "https://registry.example.com/", Keyring: true}).
		WithLog("level", "debug").
		ToYAML()

	AssertYAMLEquals(t, `
agent:
  address: local
defaults:
  scopes: ["@acme"]
  source_directory: web
sources:
  - name: internal
    url: https://registry.example.com/
    keyring: true
log:
  level: debug
`, doc)
}

func TestConfigBuilder_Empty(t *testing.T) {
	assert.Equal(t, "{}\n", NewConfigBuilder().ToYAML())
}

func TestCatalogBuilder(t *testing.T) {
	b := NewCatalogBuilder().
		WithSource(TestSource{Name: "public", URL: "https://registry.npmjs.org/"}).
		WithSource(TestSource{Name: "internal", URL: "https://registry.example.com/", UserName: "ci", Password: "pw"})

	AssertYAMLEquals(t, `
sources:
  - name: public
    url: https://registry.npmjs.org/
  - name: internal
    url: https://registry.example.com/
    username: ci
    password: pw
`, b.ToYAML())

	var decoded CatalogBuilder
	require.NoError(t, toml.Unmarshal([]byte(b.ToTOML()), &decoded))
	assert.Equal(t, b.Sources, decoded.Sources)
}

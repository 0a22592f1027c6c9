package testutil

import (
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// TestSource is a package source entry as written in nodeops.yaml or a
// source catalogue.
type TestSource struct {
	Name     string `yaml:"name" toml:"name"`
	Type     string `yaml:"type,omitempty" toml:"type,omitempty"`
	URL      string `yaml:"url" toml:"url"`
	UserName string `yaml:"username,omitempty" toml:"username,omitempty"`
	Password string `yaml:"password,omitempty" toml:"password,omitempty"`
	APIKey   string `yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	Keyring  bool   `yaml:"keyring,omitempty" toml:"keyring,omitempty"`
}

type testConfig struct {
	Agent    map[string]string `yaml:"agent,omitempty"`
	Defaults map[string]any    `yaml:"defaults,omitempty"`
	Sources  []TestSource      `yaml:"sources,omitempty"`
	Log      map[string]string `yaml:"log,omitempty"`
}

// ConfigBuilder builds nodeops.yaml documents.
type ConfigBuilder struct {
	config testConfig
}

// NewConfigBuilder creates a new config builder.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDefault sets a key in the defaults section.
func (b *ConfigBuilder) WithDefault(key string, value any) *ConfigBuilder {
	if b.config.Defaults == nil {
		b.config.Defaults = make(map[string]any)
	}
	b.config.Defaults[key] = value
	return b
}

// WithAgent sets a key in the agent section.
func (b *ConfigBuilder) WithAgent(key, value string) *ConfigBuilder {
	if b.config.Agent == nil {
		b.config.Agent = make(map[string]string)
	}
	b.config.Agent[key] = value
	return b
}

// WithSource adds an inline package source.
func (b *ConfigBuilder) WithSource(source TestSource) *ConfigBuilder {
	b.config.Sources = append(b.config.Sources, source)
	return b
}

// WithLog sets a key in the log section.
func (b *ConfigBuilder) WithLog(key, value string) *ConfigBuilder {
	if b.config.Log == nil {
		b.config.Log = make(map[string]string)
	}
	b.config.Log[key] = value
	return b
}

// ToYAML renders the configuration.
func (b *ConfigBuilder) ToYAML() string {
	out, err := yaml.Marshal(b.config)
	if err != nil {
		panic(err)
	}
	return string(out)
}

// CatalogBuilder builds package source catalogue files.
type CatalogBuilder struct {
	Sources []TestSource `yaml:"sources" toml:"sources"`
}

// NewCatalogBuilder creates a new catalogue builder.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// WithSource adds a package source.
func (b *CatalogBuilder) WithSource(source TestSource) *CatalogBuilder {
	b.Sources = append(b.Sources, source)
	return b
}

// ToYAML renders the catalogue as YAML.
func (b *CatalogBuilder) ToYAML() string {
	out, err := yaml.Marshal(b)
	if err != nil {
		panic(err)
	}
	return string(out)
}

// ToTOML renders the catalogue as TOML.
func (b *CatalogBuilder) ToTOML() string {
	out, err := toml.Marshal(b)
	if err != nil {
		panic(err)
	}
	return string(out)
}

// Package config loads nodeops.yaml: defaults for the npm operation flags,
// the execution agent and inline package sources.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// DefaultFileName is looked up in the current directory when no --config
// flag is given.
const DefaultFileName = "nodeops.yaml"

// Config is the content of nodeops.yaml.
type Config struct {
	Agent       Agent         `yaml:"agent"`
	Defaults    Defaults      `yaml:"defaults"`
	SourcesFile string        `yaml:"sources_file"`
	Sources     []SourceEntry `yaml:"sources"`
	Log         Log           `yaml:"log"`
}

// Agent selects where operations run.
type Agent struct {
	// Address is "local" (the default) or ssh://[user@]host[:port].
	Address          string `yaml:"address"`
	Identity         string `yaml:"identity"`
	KnownHosts       string `yaml:"known_hosts"`
	WorkingDirectory string `yaml:"working_directory"`
}

// Defaults are applied to every operation unless a flag overrides them.
type Defaults struct {
	SourceDirectory string   `yaml:"source_directory"`
	PackageSource   string   `yaml:"package_source"`
	Scopes          []string `yaml:"scopes"`
	Verbose         bool     `yaml:"npm_verbose"`
	SuccessExitCode string   `yaml:"success_exit_code"`
	NpmPath         string   `yaml:"npm_path"`
	ConfigFile      string   `yaml:"npmrc"`
	AllowSelfSigned bool     `yaml:"allow_self_signed"`
}

// SourceEntry is a package source declared inline.
type SourceEntry struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	APIKey   string `yaml:"api_key"`
	Keyring  bool   `yaml:"keyring"`
}

// Log configures console logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IsRemote reports whether the agent is an SSH host.
func (a Agent) IsRemote() bool {
	return strings.HasPrefix(a.Address, "ssh://")
}

// Load reads the configuration at path. A missing file is an error only
// when required is set; otherwise an empty Config is returned.
func Load(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if required {
				return nil, NewConfigNotFoundError(path)
			}
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		var list *ErrorList
		if errors.As(err, &list) {
			return nil, err
		}
		return nil, NewYAMLParseError(path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that can be checked without an agent.
func (c *Config) Validate() error {
	var list ErrorList

	switch {
	case c.Agent.Address == "", c.Agent.Address == "local", c.Agent.IsRemote():
	default:
		list.AddValidation("agent.address", fmt.Sprintf("unsupported agent %q", c.Agent.Address),
			"Use \"local\" or ssh://user@host[:port].")
	}

	if c.Log.Level != "" {
		if _, ok := ports.ParseLevel(c.Log.Level); !ok {
			list.AddValidation("log.level", fmt.Sprintf("unknown level %q", c.Log.Level),
				"Use debug, info, warn or error.")
		}
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		list.AddValidation("log.format", fmt.Sprintf("unknown format %q", c.Log.Format), "Use text or json.")
	}

	seen := make(map[string]bool)
	for i, s := range c.Sources {
		field := fmt.Sprintf("sources[%d]", i)
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			list.AddValidation(field+".name", "is required", "")
		} else if seen[name] {
			list.AddValidation(field+".name", fmt.Sprintf("source %q is defined more than once", s.Name), "")
		}
		seen[name] = true
		if strings.TrimSpace(s.URL) == "" {
			list.AddValidation(field+".url", "is required", "Set the registry URL, e.g. https://registry.npmjs.org/.")
		}
	}

	if len(c.Sources) > 0 && c.SourcesFile != "" {
		list.AddValidation("sources", "inline sources and sources_file are mutually exclusive",
			"Move the inline sources into the sources file.")
	}

	return list.AsError()
}

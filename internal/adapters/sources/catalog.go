// Package sources provides the package source catalogue: named npm
// registries with their credentials, loaded from a YAML or TOML file.
package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// Entry is one package source in a catalogue file.
type Entry struct {
	Name     string `yaml:"name" toml:"name"`
	Type     string `yaml:"type,omitempty" toml:"type,omitempty"`
	URL      string `yaml:"url" toml:"url"`
	UserName string `yaml:"username,omitempty" toml:"username,omitempty"`
	Password string `yaml:"password,omitempty" toml:"password,omitempty"`
	APIKey   string `yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	// Keyring reads the secret from the OS keyring instead of the file.
	Keyring bool `yaml:"keyring,omitempty" toml:"keyring,omitempty"`
}

type catalogFile struct {
	Sources []Entry `yaml:"sources" toml:"sources"`
}

// Catalog is an in-memory ports.SourceLookup. Names are case-insensitive.
type Catalog struct {
	entries map[string]Entry
	secrets SecretStore
}

// NewCatalog validates entries and builds a Catalog. secrets may be nil when
// no entry uses the keyring.
func NewCatalog(entries []Entry, secrets SecretStore) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry, len(entries)), secrets: secrets}

	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i+1)
		}
		if strings.TrimSpace(e.URL) == "" {
			return nil, fmt.Errorf("source %q: url is required", e.Name)
		}
		if e.Type == "" {
			e.Type = ports.SourceTypeNPM
		}
		if e.Keyring && secrets == nil {
			return nil, fmt.Errorf("source %q: keyring is not available", e.Name)
		}

		key := strings.ToLower(e.Name)
		if _, dup := c.entries[key]; dup {
			return nil, fmt.Errorf("source %q: defined more than once", e.Name)
		}
		c.entries[key] = e
	}
	return c, nil
}

// LoadFile reads a catalogue from path. The format follows the extension:
// .yaml, .yml or .toml.
func LoadFile(path string, secrets SecretStore) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	catalog, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."), secrets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Parse decodes a catalogue in format "yaml", "yml" or "toml".
func Parse(data []byte, format string, secrets SecretStore) (*Catalog, error) {
	var file catalogFile

	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported sources format %q", format)
	}

	return NewCatalog(file.Sources, secrets)
}

// Names returns the source names in alphabetical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Entry returns the catalogue entry for name as written in the file.
func (c *Catalog) Entry(name string) (Entry, bool) {
	e, ok := c.entries[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// FindSource returns the source called name with its credentials resolved.
func (c *Catalog) FindSource(ctx context.Context, name string) (ports.RegistrySource, error) {
	if err := ctx.Err(); err != nil {
		return ports.RegistrySource{}, err
	}

	e, ok := c.Entry(name)
	if !ok {
		return ports.RegistrySource{}, ports.ErrSourceNotFound
	}

	src := ports.RegistrySource{
		Name:     e.Name,
		Type:     e.Type,
		URL:      e.URL,
		UserName: expandEnv(e.UserName),
		Password: expandEnv(e.Password),
		APIKey:   expandEnv(e.APIKey),
	}

	if e.Keyring {
		secret, err := c.secrets.Secret(ctx, e.Name)
		if err != nil {
			if errors.Is(err, ErrSecretNotFound) {
				return ports.RegistrySource{}, err
			}
			return ports.RegistrySource{}, fmt.Errorf("source %q: %w", e.Name, err)
		}
		if strings.TrimSpace(src.UserName) != "" {
			src.Password = secret
		} else {
			src.APIKey = secret
		}
	}

	return src, nil
}

// expandEnv replaces a value of the exact form ${NAME} with the variable.
func expandEnv(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") && len(v) > 3 {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}

// Ensure Catalog implements ports.SourceLookup.
var _ ports.SourceLookup = (*Catalog)(nil)

package npmrc

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"gopkg.in/ini.v1"
)

const masked = "****"

// ScopeRegistry maps a package scope to a registry.
type ScopeRegistry struct {
	Scope    string
	Registry string
}

// Credential is one host-scoped auth setting with its secret masked.
type Credential struct {
	RegistryKey string
	Key         string
	Value       string
}

// Document is the inspected content of an .npmrc file.
type Document struct {
	Registry    string
	StrictSSL   bool
	AlwaysAuth  bool
	Scopes      []ScopeRegistry
	Credentials []Credential
	Other       map[string]string
}

// Read parses an .npmrc. Only "=" separates keys from values, so
// host-scoped keys such as "//host/:_auth" are kept whole.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading npmrc: %w", err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:  "=",
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("parsing npmrc: %w", err)
	}

	doc := &Document{StrictSSL: true, Other: make(map[string]string)}
	for _, key := range f.Section("").Keys() {
		name := strings.TrimSpace(key.Name())
		value := strings.TrimSpace(key.Value())

		switch {
		case name == "registry":
			doc.Registry = value
		case name == "strict-ssl":
			doc.StrictSSL = !strings.EqualFold(value, "false")
		case name == "always-auth":
			doc.AlwaysAuth = strings.EqualFold(value, "true")
		case strings.HasPrefix(name, "@") && strings.HasSuffix(name, ":registry"):
			doc.Scopes = append(doc.Scopes, ScopeRegistry{
				Scope:    strings.TrimSuffix(name, ":registry"),
				Registry: value,
			})
		case strings.HasPrefix(name, "//"):
			idx := strings.LastIndex(name, ":")
			if idx < 0 {
				doc.Other[name] = value
				continue
			}
			setting := name[idx+1:]
			doc.Credentials = append(doc.Credentials, Credential{
				RegistryKey: name[:idx],
				Key:         setting,
				Value:       maskCredential(setting, value),
			})
		default:
			doc.Other[name] = value
		}
	}

	return doc, nil
}

func maskCredential(setting, value string) string {
	switch setting {
	case "username", "email", "certfile", "keyfile":
		return value
	case "_auth":
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return masked
		}
		user, _, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return masked
		}
		return user + ":" + masked
	default:
		return masked
	}
}

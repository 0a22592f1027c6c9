// Package registry resolves package source identifiers into npm registry
// endpoints and their credentials.
package registry

import (
	"net/url"
	"strings"
)

// urlPrefix marks an identifier that is explicitly a registry URL.
const urlPrefix = "url::"

// SourceID identifies a package source: either a symbolic name known to a
// ports.SourceLookup, or a literal registry URL.
type SourceID struct {
	raw string
	url string
}

// ParseSourceID classifies s. Identifiers of the form "url::<url>" and
// absolute http(s) URLs are literal URLs; everything else is a name.
func ParseSourceID(s string) SourceID {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, urlPrefix); ok {
		return SourceID{raw: s, url: strings.TrimSpace(rest)}
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https") {
		return SourceID{raw: s, url: s}
	}
	return SourceID{raw: s}
}

// String returns the identifier as it was given.
func (id SourceID) String() string {
	return id.raw
}

// IsZero reports whether no source was specified.
func (id SourceID) IsZero() bool {
	return id.raw == ""
}

// IsURL reports whether the identifier is a literal registry URL.
func (id SourceID) IsURL() bool {
	return id.url != ""
}

// URL returns the literal registry URL, or "" for named sources.
func (id SourceID) URL() string {
	return id.url
}

// Name returns the symbolic name, or "" for URL sources.
func (id SourceID) Name() string {
	if id.IsURL() {
		return ""
	}
	return id.raw
}

// Source is a resolved npm registry endpoint.
type Source struct {
	ID          SourceID
	RegistryURL string
	UserName    string
	Password    string
	APIKey      string
}

// HasCredentials reports whether any of user name, password or API key is set.
func (s Source) HasCredentials() bool {
	return !blank(s.UserName) || !blank(s.Password) || !blank(s.APIKey)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

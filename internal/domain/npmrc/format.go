// Package npmrc generates and inspects the per-run .npmrc file that points
// npm at a package source.
package npmrc

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/nodeops/internal/domain/registry"
)

// FileName is the name of the generated config file.
const FileName = ".npmrc"

// modernMajor is the first npm major version that expects the _auth form.
const modernMajor = 9

// Format selects how credentials are written.
type Format int

const (
	// Legacy writes host-scoped username and _password lines (npm 8 and older).
	Legacy Format = iota
	// Modern writes a single host-scoped _auth line (npm 9 and newer).
	Modern
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case Modern:
		return "modern"
	default:
		return "legacy"
	}
}

// FormatFor returns the format understood by npm version v.
func FormatFor(v ToolVersion) Format {
	if v.Major >= modernMajor {
		return Modern
	}
	return Legacy
}

// credentialWriter renders the auth lines for one format.
type credentialWriter func(host, user, secret string) []string

var credentialWriters = map[Format]credentialWriter{
	Legacy: func(host, user, secret string) []string {
		return []string{
			fmt.Sprintf("%s:username=%s", host, user),
			fmt.Sprintf(`%s:_password="%s"`, host, encode(secret)),
		}
	},
	Modern: func(host, user, secret string) []string {
		return []string{
			fmt.Sprintf(`%s:_auth="%s"`, host, encode(user+":"+secret)),
		}
	},
}

// Options is the input to Generate.
type Options struct {
	Source                     registry.Source
	Scopes                     []string
	AllowSelfSignedCertificate bool
}

var schemePattern = regexp.MustCompile(`^https?://`)

// RegistryKey returns the host-relative key npm uses for per-registry
// settings: the registry URL with its http(s) scheme replaced by "//".
func RegistryKey(registryURL string) string {
	return schemePattern.ReplaceAllString(registryURL, "//")
}

// Generate renders the .npmrc content for format.
func Generate(format Format, opts Options) string {
	src := opts.Source
	var lines []string

	if opts.AllowSelfSignedCertificate {
		lines = append(lines, "strict-ssl=false")
	}
	lines = append(lines, "registry="+src.RegistryURL)

	for _, scope := range opts.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s:registry=%s", scope, src.RegistryURL))
	}

	if src.HasCredentials() {
		user, secret := credentials(src)
		lines = append(lines, "always-auth=true")
		lines = append(lines, credentialWriters[format](RegistryKey(src.RegistryURL), user, secret)...)
	}

	return strings.Join(lines, "\n") + "\n"
}

// credentials picks the user and secret to write. Without a user name the
// source authenticates as "api" with its API key.
func credentials(src registry.Source) (user, secret string) {
	if strings.TrimSpace(src.UserName) != "" {
		return src.UserName, src.Password
	}
	if strings.TrimSpace(src.APIKey) != "" {
		return "api", src.APIKey
	}
	return "api", src.Password
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// UserConfigArgument returns the npm argument selecting path as user config.
// The path is wrapped in double quotes verbatim so Windows paths keep their
// backslashes.
func UserConfigArgument(path string) string {
	return `--userconfig="` + path + `"`
}

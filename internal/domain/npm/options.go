// Package npm runs npm commands on an execution agent: it locates the
// executable, prepares the registry configuration, streams and classifies
// npm's output and applies the success exit code policy.
package npm

import "strings"

// Options are the settings shared by every npm operation.
type Options struct {
	// SourceDirectory is where npm runs; defaults to the working directory.
	SourceDirectory string
	// PackageSource is a source name or registry URL. When set, a .npmrc is
	// generated in SourceDirectory for this run.
	PackageSource string
	// Scopes are routed to PackageSource in the generated .npmrc.
	Scopes []string
	// Verbose passes --loglevel verbose to npm and logs full stderr lines.
	Verbose bool
	// SuccessExitCode is a policy such as "0" or ">= 0". Empty means the
	// exit code is ignored.
	SuccessExitCode string
	// ToolPath overrides npm discovery.
	ToolPath string
	// ConfigFilePath is passed as --userconfig when PackageSource is empty.
	ConfigFilePath string
	// AllowSelfSignedCertificate writes strict-ssl=false to the generated .npmrc.
	AllowSelfSignedCertificate bool
}

// SplitScopes splits a multi-line scope list, dropping blank lines.
func SplitScopes(s string) []string {
	var scopes []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			scopes = append(scopes, line)
		}
	}
	return scopes
}

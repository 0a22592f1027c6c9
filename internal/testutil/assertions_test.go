package testutil

import (
	"testing"
)

func TestFileAssertions(t *testing.T) {
	dir := t.TempDir()
	path := WriteTempFile(t, dir, ".npmrc", "registry=https://registry.npmjs.org/\r\n")

	AssertFileExists(t, path)
	AssertDirExists(t, dir)
	AssertFileContains(t, path, "registry=")
	AssertFileEquals(t, path, "registry=https://registry.npmjs.org/\n")
}

func TestAssertYAMLEquals(t *testing.T) {
	AssertYAMLEquals(t,
		"defaults:\n  scopes: [\"@acme\"]\n  npm_verbose: true\n",
		"defaults:\n  npm_verbose: true\n  scopes:\n    - \"@acme\"\n",
	)
}

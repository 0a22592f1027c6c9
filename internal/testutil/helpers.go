// Package testutil provides test helpers and utilities for nodeops tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTempFile writes content to a file in the specified directory.
func WriteTempFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err, "failed to write temp file: %s", filename)

	return path
}

// WriteTempDir creates a subdirectory in the temp directory.
func WriteTempDir(t *testing.T, dir, dirname string) string {
	t.Helper()

	path := filepath.Join(dir, dirname)
	err := os.MkdirAll(path, 0o755)
	require.NoError(t, err, "failed to create temp subdirectory: %s", dirname)

	return path
}

// WriteScript writes an executable POSIX shell script into a fresh temp
// directory and returns its path. The test is skipped on Windows.
func WriteScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a POSIX host")
	}

	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	require.NoError(t, err, "failed to write script: %s", name)

	return path
}

// FakeNpm is a stand-in for npm. It reports version 10.2.0, echoes its
// arguments to stdout, writes one warning to stderr and exits with
// $FAKE_NPM_EXIT (default 0).
const FakeNpm = `if [ "$1" = "--version" ]; then
  echo "10.2.0"
  exit 0
fi
echo "args: $*"
echo "npm WARN deprecated left-pad@1.3.0" >&2
exit ${FAKE_NPM_EXIT:-0}
`

// WriteFakeNpm installs FakeNpm as an executable called npm.
func WriteFakeNpm(t *testing.T) string {
	t.Helper()
	return WriteScript(t, "npm", FakeNpm)
}

// ChangeDir changes to a directory for the duration of the test.
func ChangeDir(t *testing.T, dir string) {
	t.Helper()

	original, err := os.Getwd()
	require.NoError(t, err)

	err = os.Chdir(dir)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = os.Chdir(original)
	})
}

//go:build e2e

package framework

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertExitCode asserts the expected exit code.
func AssertExitCode(t *testing.T, r *Result, expected int) {
	t.Helper()
	if r.Err != nil {
		t.Fatalf("Command did not run: %v", r.Err)
	}
	if r.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStdout: %s\nStderr: %s",
			expected, r.ExitCode, r.Stdout, r.Stderr)
	}
}

// AssertStdoutContains asserts that stdout contains the expected substring.
func AssertStdoutContains(t *testing.T, r *Result, expected string) {
	t.Helper()
	if !r.Contains(expected) {
		t.Errorf("Expected stdout to contain %q, but got:\n%s", expected, r.Stdout)
	}
}

// AssertStderrContains asserts that stderr contains the expected substring.
func AssertStderrContains(t *testing.T, r *Result, expected string) {
	t.Helper()
	if !r.StderrContains(expected) {
		t.Errorf("Expected stderr to contain %q, but got:\n%s", expected, r.Stderr)
	}
}

// AssertStderrNotContains asserts that stderr does not contain the substring.
func AssertStderrNotContains(t *testing.T, r *Result, unexpected string) {
	t.Helper()
	if r.StderrContains(unexpected) {
		t.Errorf("Expected stderr to NOT contain %q, but got:\n%s", unexpected, r.Stderr)
	}
}

// AssertFileContains asserts that a file in the package directory contains
// the expected content.
func AssertFileContains(t *testing.T, env *Environment, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(env.PackageDir(), path))
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	if !strings.Contains(string(content), expected) {
		t.Errorf("Expected file %s to contain %q, but got:\n%s", path, expected, string(content))
	}
}

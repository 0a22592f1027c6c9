//go:build e2e

// Package framework provides the E2E test infrastructure for nodeops.
package framework

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// Environment is an isolated directory tree with a built nodeops binary, a
// fake npm and a package directory to run it in.
type Environment struct {
	t          *testing.T
	rootDir    string
	packageDir string
	homeDir    string
	binaryPath string
	npmPath    string
}

var (
	buildOnce  sync.Once
	binaryPath string
	buildErr   error
)

// fakeNpm reports version 10.2.0, echoes its arguments, prints one warning
// on stderr, optionally sleeps for $FAKE_NPM_SLEEP seconds and exits with
// $FAKE_NPM_EXIT.
const fakeNpm = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "10.2.0"
  exit 0
fi
echo "args: $*"
echo "npm WARN deprecated left-pad@1.3.0" >&2
if [ -n "$FAKE_NPM_SLEEP" ]; then
  exec sleep "$FAKE_NPM_SLEEP"
fi
exit ${FAKE_NPM_EXIT:-0}
`

// findProjectRoot locates the project root directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary builds the nodeops binary once per test run.
func buildBinary(t *testing.T) (string, error) {
	buildOnce.Do(func() {
		root, err := findProjectRoot()
		if err != nil {
			buildErr = err
			return
		}

		binaryPath = filepath.Join(os.TempDir(), "nodeops-e2e-test")
		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/nodeops")
		cmd.Dir = root

		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			buildErr = err
			t.Logf("Build stderr: %s", stderr.String())
		}
	})

	return binaryPath, buildErr
}

// NewEnvironment creates a new isolated test environment.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("E2E scenarios use a POSIX shell script as npm")
	}

	binary, err := buildBinary(t)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	rootDir := t.TempDir()
	env := &Environment{
		t:          t,
		rootDir:    rootDir,
		packageDir: filepath.Join(rootDir, "package"),
		homeDir:    filepath.Join(rootDir, "home"),
		binaryPath: binary,
		npmPath:    filepath.Join(rootDir, "bin", "npm"),
	}

	for _, dir := range []string{env.packageDir, env.homeDir, filepath.Dir(env.npmPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(env.npmPath, []byte(fakeNpm), 0o755); err != nil {
		t.Fatalf("Failed to write fake npm: %v", err)
	}

	return env
}

// PackageDir returns the directory operations run in.
func (e *Environment) PackageDir() string {
	return e.packageDir
}

// HomeDir returns the path to the simulated home directory.
func (e *Environment) HomeDir() string {
	return e.homeDir
}

// NpmPath returns the path of the fake npm.
func (e *Environment) NpmPath() string {
	return e.npmPath
}

// BinaryPath returns the path to the built binary.
func (e *Environment) BinaryPath() string {
	return e.binaryPath
}

// WriteFile writes content to a file relative to the package directory.
func (e *Environment) WriteFile(path, content string) {
	e.t.Helper()

	fullPath := filepath.Join(e.packageDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// WriteConfig writes nodeops.yaml into the package directory.
func (e *Environment) WriteConfig(content string) string {
	e.t.Helper()
	e.WriteFile("nodeops.yaml", content)
	return filepath.Join(e.packageDir, "nodeops.yaml")
}

// ReadFile reads a file relative to the package directory.
func (e *Environment) ReadFile(path string) string {
	e.t.Helper()

	content, err := os.ReadFile(filepath.Join(e.packageDir, path))
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

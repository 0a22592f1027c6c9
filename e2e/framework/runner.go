//go:build e2e

package framework

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"
)

// Result represents the result of running a command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Success returns true if the command exited with code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// Contains checks if stdout contains the given substring.
func (r *Result) Contains(s string) bool {
	return strings.Contains(r.Stdout, s)
}

// StderrContains checks if stderr contains the given substring.
func (r *Result) StderrContains(s string) bool {
	return strings.Contains(r.Stderr, s)
}

// Runner executes nodeops commands in a test environment.
type Runner struct {
	t    *testing.T
	env  *Environment
	vars []string
}

// NewRunner creates a new command runner.
func NewRunner(t *testing.T, env *Environment) *Runner {
	return &Runner{t: t, env: env}
}

// Setenv adds an environment variable to every following command.
func (r *Runner) Setenv(key, value string) *Runner {
	r.vars = append(r.vars, key+"="+value)
	return r
}

func (r *Runner) command(args ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer) {
	cmd := exec.Command(r.env.BinaryPath(), args...)
	cmd.Dir = r.env.PackageDir()
	cmd.Env = append([]string{
		"HOME=" + r.env.HomeDir(),
		"PATH=" + os.Getenv("PATH"),
		"NPM_PATH=" + r.env.NpmPath(),
	}, r.vars...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	return cmd, &stdout, &stderr
}

// Run executes nodeops with the given arguments.
func (r *Runner) Run(args ...string) *Result {
	r.t.Helper()

	cmd, stdout, stderr := r.command(args...)
	return newResult(cmd.Run(), stdout, stderr)
}

// RunAndInterrupt starts nodeops, sends SIGINT after delay and waits for it
// to exit.
func (r *Runner) RunAndInterrupt(delay time.Duration, args ...string) *Result {
	r.t.Helper()

	cmd, stdout, stderr := r.command(args...)
	if err := cmd.Start(); err != nil {
		return &Result{ExitCode: -1, Err: err}
	}
	time.Sleep(delay)
	_ = cmd.Process.Signal(syscall.SIGINT)
	return newResult(cmd.Wait(), stdout, stderr)
}

func newResult(err error, stdout, stderr *bytes.Buffer) *Result {
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Err = nil // Exit code is not an error
	} else if err != nil {
		result.ExitCode = -1
	}
	return result
}

// Scenario provides a fluent interface for writing BDD-style tests.
type Scenario struct {
	t      *testing.T
	env    *Environment
	runner *Runner
	result *Result
}

// NewScenario creates a new test scenario.
func NewScenario(t *testing.T) *Scenario {
	env := NewEnvironment(t)
	return &Scenario{
		t:      t,
		env:    env,
		runner: NewRunner(t, env),
	}
}

// Given sets up the test preconditions.
func (s *Scenario) Given(description string, setup func(*Environment, *Runner)) *Scenario {
	s.t.Helper()
	s.t.Logf("Given %s", description)
	setup(s.env, s.runner)
	return s
}

// When executes the action under test.
func (s *Scenario) When(description string, action func(*Runner) *Result) *Scenario {
	s.t.Helper()
	s.t.Logf("When %s", description)
	s.result = action(s.runner)
	return s
}

// Then asserts the expected outcome.
func (s *Scenario) Then(description string, assertion func(*testing.T, *Result)) *Scenario {
	s.t.Helper()
	s.t.Logf("Then %s", description)
	assertion(s.t, s.result)
	return s
}

// And is an alias for Then for chaining assertions.
func (s *Scenario) And(description string, assertion func(*testing.T, *Result)) *Scenario {
	return s.Then(description, assertion)
}

// Environment returns the test environment for direct access.
func (s *Scenario) Environment() *Environment {
	return s.env
}

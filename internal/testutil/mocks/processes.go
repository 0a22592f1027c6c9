package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// ProcessScript describes how a scripted process behaves.
type ProcessScript struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
	// NoExitCode makes ExitCode report false.
	NoExitCode bool
	StartErr   error
	WaitErr    error
	// BlockUntilCancelled makes Wait block until its context is done.
	BlockUntilCancelled bool
}

// ProcessExecutor is a thread-safe scripted ports.ProcessExecutor.
// Scripts are keyed by the exact argument string.
type ProcessExecutor struct {
	mu        sync.RWMutex
	scripts   map[string]ProcessScript
	fallback  *ProcessScript
	env       map[string]string
	createErr error
	calls     []ports.ProcessSpec
	processes []*Process
}

// NewProcessExecutor creates an executor with no scripts.
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{
		scripts: make(map[string]ProcessScript),
		env:     make(map[string]string),
	}
}

// AddScript registers the behavior for processes launched with arguments.
func (m *ProcessExecutor) AddScript(arguments string, script ProcessScript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[arguments] = script
}

// SetDefault registers the behavior for unmatched argument strings.
func (m *ProcessExecutor) SetDefault(script ProcessScript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &script
}

// SetEnv sets an environment variable visible through GetEnvironmentVariable.
func (m *ProcessExecutor) SetEnv(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.env[name] = value
}

// SetCreateError makes CreateProcess fail.
func (m *ProcessExecutor) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// Calls returns every spec passed to CreateProcess.
func (m *ProcessExecutor) Calls() []ports.ProcessSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.ProcessSpec, len(m.calls))
	copy(out, m.calls)
	return out
}

// Processes returns every process created so far.
func (m *ProcessExecutor) Processes() []*Process {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Process, len(m.processes))
	copy(out, m.processes)
	return out
}

// CreateProcess returns a scripted process for spec.
func (m *ProcessExecutor) CreateProcess(spec ports.ProcessSpec) (ports.Process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, spec)
	if m.createErr != nil {
		return nil, m.createErr
	}

	script, ok := m.scripts[spec.Arguments]
	if !ok {
		if m.fallback == nil {
			return nil, fmt.Errorf("no mock script for: %s %s", spec.FileName, spec.Arguments)
		}
		script = *m.fallback
	}

	p := &Process{spec: spec, script: script}
	m.processes = append(m.processes, p)
	return p, nil
}

// GetEnvironmentVariable returns a value set with SetEnv.
func (m *ProcessExecutor) GetEnvironmentVariable(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.env[name], nil
}

// Process is a scripted ports.Process.
type Process struct {
	mu      sync.Mutex
	spec    ports.ProcessSpec
	script  ProcessScript
	started bool
	exited  bool
	killed  bool
	closed  bool
}

// Start marks the process as started.
func (p *Process) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errors.New("process already started")
	}
	if p.script.StartErr != nil {
		return p.script.StartErr
	}
	p.started = true
	return nil
}

// Wait delivers scripted output and returns.
func (p *Process) Wait(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return errors.New("process not started")
	}
	p.mu.Unlock()

	for _, line := range p.script.Stdout {
		if p.spec.OnStdout != nil {
			p.spec.OnStdout(line)
		}
	}
	for _, line := range p.script.Stderr {
		if p.spec.OnStderr != nil {
			p.spec.OnStderr(line)
		}
	}

	if p.script.BlockUntilCancelled {
		<-ctx.Done()
		p.mu.Lock()
		p.killed = true
		p.mu.Unlock()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		p.mu.Lock()
		p.killed = true
		p.mu.Unlock()
		return err
	}
	if p.script.WaitErr != nil {
		return p.script.WaitErr
	}

	p.mu.Lock()
	p.exited = true
	p.mu.Unlock()
	return nil
}

// ExitCode returns the scripted exit code once the process has exited.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exited || p.script.NoExitCode {
		return 0, false
	}
	return p.script.ExitCode, true
}

// Close marks the process closed.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Killed reports whether the process was stopped by cancellation.
func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// Closed reports whether Close was called.
func (p *Process) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Spec returns the spec the process was created with.
func (p *Process) Spec() ports.ProcessSpec {
	return p.spec
}

// Ensure ProcessExecutor implements ports.ProcessExecutor.
var _ ports.ProcessExecutor = (*ProcessExecutor)(nil)

// Package process launches processes on the local execution agent.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// waitDelay bounds how long Wait keeps draining output after the process
// exits, for when a grandchild inherited the pipes.
const waitDelay = 5 * time.Second

// LocalExecutor runs processes on the machine running nodeops.
type LocalExecutor struct{}

// NewLocalExecutor creates a new LocalExecutor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{}
}

// CreateProcess prepares spec for launch. The argument string is split with
// POSIX shell rules.
func (e *LocalExecutor) CreateProcess(spec ports.ProcessSpec) (ports.Process, error) {
	args, err := shellquote.Split(spec.Arguments)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments %q: %w", spec.Arguments, err)
	}
	return &LocalProcess{spec: spec, args: args}, nil
}

// GetEnvironmentVariable returns the value of name in the current environment.
func (e *LocalExecutor) GetEnvironmentVariable(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return os.Getenv(name), nil
}

// LocalProcess is a process launched by LocalExecutor.
type LocalProcess struct {
	spec ports.ProcessSpec
	args []string

	cmd      *exec.Cmd
	startCtx context.Context
	output   *Output

	mu       sync.Mutex
	waited   bool
	exitCode int
	exited   bool
}

// Start launches the process. Cancelling ctx kills it.
func (p *LocalProcess) Start(ctx context.Context) error {
	if p.cmd != nil {
		return errors.New("process already started")
	}

	cmd := exec.CommandContext(ctx, p.spec.FileName, p.args...)
	cmd.Dir = p.spec.WorkingDirectory
	cmd.WaitDelay = waitDelay

	output := NewOutput(p.spec.OnStdout, p.spec.OnStderr)
	cmd.Stdout = output.Stdout
	cmd.Stderr = output.Stderr

	if err := cmd.Start(); err != nil {
		_ = output.Close()
		return err
	}

	p.cmd = cmd
	p.startCtx = ctx
	p.output = output
	return nil
}

// Wait blocks until the process exits and its output is drained.
func (p *LocalProcess) Wait(ctx context.Context) error {
	if p.cmd == nil {
		return errors.New("process not started")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = p.cmd.Process.Kill()
	})
	defer stop()

	waitErr := p.wait()
	readErr := p.output.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.startCtx.Err(); err != nil {
		return err
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return waitErr
	}
	if readErr != nil {
		return fmt.Errorf("reading process output: %w", readErr)
	}
	return nil
}

// wait reaps the process once and closes the output pipes.
func (p *LocalProcess) wait() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.waited {
		return nil
	}
	p.waited = true

	err := p.cmd.Wait()
	_ = p.output.Close()

	if state := p.cmd.ProcessState; state != nil && state.ExitCode() >= 0 {
		p.exitCode = state.ExitCode()
		p.exited = true
	}
	return err
}

// ExitCode returns the exit code. A process killed by a signal has none.
func (p *LocalProcess) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.exited
}

// Close kills the process if it is still running and releases its pipes.
func (p *LocalProcess) Close() error {
	if p.cmd == nil {
		return nil
	}

	p.mu.Lock()
	waited := p.waited
	p.mu.Unlock()
	if !waited {
		_ = p.cmd.Process.Kill()
		_ = p.wait()
	}
	return nil
}

// Ensure LocalExecutor implements ports.ProcessExecutor.
var _ ports.ProcessExecutor = (*LocalExecutor)(nil)

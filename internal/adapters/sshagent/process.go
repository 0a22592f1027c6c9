package sshagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"al.essio.dev/pkg/shellescape"
	"golang.org/x/crypto/ssh"

	"github.com/felixgeelhaar/nodeops/internal/adapters/process"
	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// CreateProcess prepares spec for launch on the remote host. The argument
// string is passed to the remote shell unchanged.
func (a *Agent) CreateProcess(spec ports.ProcessSpec) (ports.Process, error) {
	return &RemoteProcess{client: a.client, spec: spec}, nil
}

// RemoteProcess is a process running in its own SSH session.
type RemoteProcess struct {
	client *ssh.Client
	spec   ports.ProcessSpec

	session *ssh.Session
	output  *process.Output
	done    chan error

	mu       sync.Mutex
	finished bool
	exitCode int
	exited   bool
}

// CommandLine returns the shell command run for spec.
func CommandLine(spec ports.ProcessSpec) string {
	line := "exec " + shellescape.Quote(spec.FileName)
	if spec.Arguments != "" {
		line += " " + spec.Arguments
	}
	if spec.WorkingDirectory != "" {
		line = "cd " + shellescape.Quote(spec.WorkingDirectory) + " && " + line
	}
	return line
}

// Start opens a session and launches the process.
func (p *RemoteProcess) Start(ctx context.Context) error {
	if p.session != nil {
		return errors.New("process already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := p.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	output := process.NewOutput(p.spec.OnStdout, p.spec.OnStderr)
	session.Stdout = output.Stdout
	session.Stderr = output.Stderr

	if err := session.Start(CommandLine(p.spec)); err != nil {
		_ = output.Close()
		_ = session.Close()
		return err
	}

	p.session = session
	p.output = output
	p.done = make(chan error, 1)
	go func() {
		p.done <- session.Wait()
	}()
	return nil
}

// Wait blocks until the remote process exits and its output is drained.
// Cancelling ctx signals the process and tears down the session.
func (p *RemoteProcess) Wait(ctx context.Context) error {
	if p.session == nil {
		return errors.New("process not started")
	}

	select {
	case <-ctx.Done():
		_ = p.session.Signal(ssh.SIGKILL)
		_ = p.session.Close()
		<-p.done
		_ = p.output.Close()
		p.finish()
		return ctx.Err()
	case err := <-p.done:
		readErr := p.output.Close()
		p.finish()
		if err := p.record(err); err != nil {
			return err
		}
		if readErr != nil {
			return fmt.Errorf("reading process output: %w", readErr)
		}
		return nil
	}
}

func (p *RemoteProcess) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

// record stores the exit status carried by err. A session that ends without
// an exit status leaves the exit code unreported.
func (p *RemoteProcess) record(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var exitErr *ssh.ExitError
	var missing *ssh.ExitMissingError
	switch {
	case err == nil:
		p.exitCode, p.exited = 0, true
	case errors.As(err, &exitErr):
		p.exitCode, p.exited = exitErr.ExitStatus(), true
	case errors.As(err, &missing):
	default:
		return err
	}
	return nil
}

// ExitCode returns the exit status reported by the remote host.
func (p *RemoteProcess) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.exited
}

// Close releases the session.
func (p *RemoteProcess) Close() error {
	if p.session == nil {
		return nil
	}
	err := p.session.Close()

	p.mu.Lock()
	finished := p.finished
	p.mu.Unlock()
	if !finished {
		<-p.done
		_ = p.output.Close()
		p.finish()
	}

	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

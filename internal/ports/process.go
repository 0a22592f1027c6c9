package ports

import "context"

// ProcessSpec describes a process to launch on an execution agent.
type ProcessSpec struct {
	FileName string
	// Arguments is the complete argument string, quoted the way a shell would expect.
	Arguments        string
	WorkingDirectory string

	// OnStdout and OnStderr receive output one line at a time, without the
	// trailing newline. Implementations never call them concurrently, and all
	// lines have been delivered by the time Wait returns.
	OnStdout func(line string)
	OnStderr func(line string)
}

// Process is a single launched process.
type Process interface {
	// Start launches the process. Cancelling ctx while the process runs kills it.
	Start(ctx context.Context) error
	// Wait blocks until the process exits or ctx is cancelled. On cancellation
	// the process is killed and ctx.Err() is returned.
	Wait(ctx context.Context) error
	// ExitCode returns the exit code, and false if the process never reported one.
	ExitCode() (int, bool)
	// Close releases any resources still held by the process.
	Close() error
}

// ProcessExecutor launches processes on an execution agent.
type ProcessExecutor interface {
	CreateProcess(spec ProcessSpec) (Process, error)
	// GetEnvironmentVariable returns the value of name on the agent, or "" if unset.
	GetEnvironmentVariable(ctx context.Context, name string) (string, error)
}

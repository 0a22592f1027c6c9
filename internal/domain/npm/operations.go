package npm

import (
	"context"
	"strings"
)

const commandRequired = "Command is required."

// Install runs `npm install`.
func (r *Runner) Install(ctx context.Context, opts Options, additionalArgs string) (Result, error) {
	return r.Execute(ctx, opts, "install", additionalArgs)
}

// Build runs the package's build script.
func (r *Runner) Build(ctx context.Context, opts Options, additionalArgs string) (Result, error) {
	return r.Execute(ctx, opts, "run build", additionalArgs)
}

// Run runs the package script named command.
func (r *Runner) Run(ctx context.Context, opts Options, command, additionalArgs string) (Result, error) {
	if strings.TrimSpace(command) == "" {
		r.logger.Error(ctx, commandRequired)
		return Result{State: StateFailed}, nil
	}
	return r.Execute(ctx, opts, "run", joinArgs(command, additionalArgs))
}

// Exec runs an arbitrary npm command such as "ci" or "audit".
func (r *Runner) Exec(ctx context.Context, opts Options, command, args string) (Result, error) {
	if strings.TrimSpace(command) == "" {
		r.logger.Error(ctx, commandRequired)
		return Result{State: StateFailed}, nil
	}
	return r.Execute(ctx, opts, strings.TrimSpace(command), args)
}

// Publish runs `npm publish`.
func (r *Runner) Publish(ctx context.Context, opts Options, additionalArgs string) (Result, error) {
	return r.Execute(ctx, opts, "publish", additionalArgs)
}

package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nodeops/internal/domain/execution"
	"github.com/felixgeelhaar/nodeops/internal/domain/exitcode"
	"github.com/felixgeelhaar/nodeops/internal/domain/npmrc"
	"github.com/felixgeelhaar/nodeops/internal/domain/registry"
	"github.com/felixgeelhaar/nodeops/internal/ports"
)

const verboseArgument = "--loglevel verbose"

// Result describes a finished npm invocation.
type Result struct {
	RunID string
	// Launched is false when the invocation stopped before npm was started.
	Launched bool
	Success  bool
	ExitCode int
	// ExitCodeReported is false when the agent could not report an exit code.
	ExitCodeReported bool
	// ConfigFile is the path of the generated .npmrc, if any.
	ConfigFile string
	State      State
}

// Runner executes npm commands on one execution agent.
type Runner struct {
	exec     *execution.Context
	resolver *registry.Resolver
	locator  *Locator
	logger   ports.Logger
	newRunID func() string
}

// NewRunner creates a Runner.
func NewRunner(ec *execution.Context, resolver *registry.Resolver, logger ports.Logger) *Runner {
	if resolver == nil {
		resolver = registry.NewResolver(nil)
	}
	return &Runner{
		exec:     ec,
		resolver: resolver,
		locator:  NewLocator(ec),
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Locator returns the locator used to find npm.
func (r *Runner) Locator() *Locator {
	return r.locator
}

// Execute runs `npm <command> <commandArgs>` with opts.
//
// Configuration problems, unresolvable package sources and exit codes that
// fail the success policy are logged and reported as an unsuccessful Result
// with a nil error. A missing npm executable is an *ExecutionFailure.
// Cancellation returns the context's error.
func (r *Runner) Execute(ctx context.Context, opts Options, command, commandArgs string) (Result, error) {
	result := Result{RunID: r.newRunID(), State: StateIdle}
	log := r.logger.With(ports.F("run", result.RunID))

	lc, err := newLifecycle()
	if err != nil {
		return result, fmt.Errorf("failed to build invocation lifecycle: %w", err)
	}
	defer lc.stop()

	finish := func(event string) Result {
		lc.send(event)
		result.State = lc.state()
		return result
	}

	lc.send(EventPrepare)
	log.Info(ctx, "Executing npm "+command)

	npmPath, err := r.locator.Locate(ctx, opts.ToolPath)
	if err != nil {
		return r.abort(ctx, log, finish, err)
	}

	sourceDir := r.exec.ResolvePath(opts.SourceDirectory)
	if err := r.exec.Agent.Files.CreateDirectory(ctx, sourceDir); err != nil {
		return r.abort(ctx, log, finish, fmt.Errorf("failed to create %s: %w", sourceDir, err))
	}

	configArg, configFile, err := r.configArgument(ctx, log, opts, npmPath, sourceDir)
	if err != nil {
		var resolveErr *registry.ResolveError
		if errors.As(err, &resolveErr) {
			log.Error(ctx, resolveErr.Error())
			return finish(EventFail), nil
		}
		return r.abort(ctx, log, finish, err)
	}
	result.ConfigFile = configFile

	if opts.Verbose {
		commandArgs = joinArgs(commandArgs, verboseArgument)
	}
	arguments := joinArgs(command, commandArgs, configArg)
	if opts.Verbose {
		log.Debug(ctx, "Executing "+npmPath+" "+arguments)
	}

	proc, err := r.exec.Agent.Processes.CreateProcess(ports.ProcessSpec{
		FileName:         npmPath,
		Arguments:        arguments,
		WorkingDirectory: sourceDir,
		OnStdout: func(line string) {
			log.Debug(ctx, line)
		},
		OnStderr: func(line string) {
			if strings.TrimSpace(line) == "" {
				return
			}
			level, text := ClassifyStderr(line, opts.Verbose)
			ports.Log(ctx, log, level, text)
		},
	})
	if err != nil {
		return r.abort(ctx, log, finish, fmt.Errorf("failed to create npm process: %w", err))
	}
	defer func() { _ = proc.Close() }()

	lc.send(EventLaunch)
	if err := proc.Start(ctx); err != nil {
		return r.abort(ctx, log, finish, fmt.Errorf("failed to start npm: %w", err))
	}
	result.Launched = true

	if err := proc.Wait(ctx); err != nil {
		return r.abort(ctx, log, finish, fmt.Errorf("npm did not complete: %w", err))
	}

	result.ExitCode, result.ExitCodeReported = proc.ExitCode()
	result.Success = r.evaluate(ctx, log, opts.SuccessExitCode, result.ExitCode)
	if !result.Success {
		return finish(EventFail), nil
	}
	return finish(EventExit), nil
}

// abort ends the invocation with err, reporting cancellation as the bare
// context error.
func (r *Runner) abort(ctx context.Context, log ports.Logger, finish func(string) Result, err error) (Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug(ctx, "npm invocation cancelled")
		return finish(EventCancel), ctxErr
	}
	return finish(EventFail), err
}

// configArgument returns the --userconfig argument for the run and the path
// of the .npmrc it generated, if any.
func (r *Runner) configArgument(ctx context.Context, log ports.Logger, opts Options, npmPath, sourceDir string) (string, string, error) {
	id := registry.ParseSourceID(opts.PackageSource)
	if id.IsZero() {
		if strings.TrimSpace(opts.ConfigFilePath) == "" {
			return "", "", nil
		}
		return npmrc.UserConfigArgument(opts.ConfigFilePath), "", nil
	}

	source, err := r.resolver.Resolve(ctx, id)
	if err != nil {
		return "", "", err
	}

	version, err := r.toolVersion(ctx, npmPath, sourceDir)
	if err != nil {
		return "", "", err
	}
	v, ok := npmrc.ParseToolVersion(version)
	format := npmrc.FormatFor(v)
	if ok {
		log.Debug(ctx, "Using npm "+v.String(), ports.F("format", format.String()))
	} else {
		log.Debug(ctx, "Could not parse npm version", ports.F("output", version), ports.F("format", format.String()))
	}

	content := npmrc.Generate(format, npmrc.Options{
		Source:                     source,
		Scopes:                     opts.Scopes,
		AllowSelfSignedCertificate: opts.AllowSelfSignedCertificate,
	})

	path := execution.JoinPath(r.exec.Separator(), sourceDir, npmrc.FileName)
	if err := npmrc.NewWriter(r.exec.Agent.Files).Write(ctx, path, content); err != nil {
		return "", "", err
	}
	return npmrc.UserConfigArgument(path), path, nil
}

// toolVersion runs `npm --version` and returns its combined, trimmed output.
func (r *Runner) toolVersion(ctx context.Context, npmPath, dir string) (string, error) {
	var out strings.Builder
	collect := func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	}

	proc, err := r.exec.Agent.Processes.CreateProcess(ports.ProcessSpec{
		FileName:         npmPath,
		Arguments:        "--version",
		WorkingDirectory: dir,
		OnStdout:         collect,
		OnStderr:         collect,
	})
	if err != nil {
		return "", fmt.Errorf("failed to query npm version: %w", err)
	}
	defer func() { _ = proc.Close() }()

	if err := proc.Start(ctx); err != nil {
		return "", fmt.Errorf("failed to query npm version: %w", err)
	}
	if err := proc.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to query npm version: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// evaluate applies the success exit code policy. An empty or unparsable
// policy accepts every exit code.
func (r *Runner) evaluate(ctx context.Context, log ports.Logger, policy string, code int) bool {
	comparator, ok := exitcode.Parse(policy)
	if !ok {
		log.Debug(ctx, fmt.Sprintf("Script exited with code: %d", code))
		return true
	}

	if comparator.Evaluate(code) {
		log.Info(ctx, fmt.Sprintf("Script exited with code: %d (success)", code))
		return true
	}
	log.Error(ctx, fmt.Sprintf("Script exited with code: %d (failure)", code))
	return false
}

func joinArgs(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

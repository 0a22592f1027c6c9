package npm

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/nodeops/internal/domain/execution"
)

const notFoundMessage = "Could not find npm and $NpmPath configuration variable is not set."

// Locator finds the npm executable on an execution agent.
type Locator struct {
	exec *execution.Context
}

// NewLocator creates a Locator for the agent behind ec.
func NewLocator(ec *execution.Context) *Locator {
	return &Locator{exec: ec}
}

// Locate returns the npm path. An explicit toolPath is resolved against the
// working directory and returned without probing; otherwise the first
// existing candidate wins.
func (l *Locator) Locate(ctx context.Context, toolPath string) (string, error) {
	if strings.TrimSpace(toolPath) != "" {
		return l.exec.ResolvePath(toolPath), nil
	}

	candidates, err := l.Candidates(ctx)
	if err != nil {
		return "", err
	}

	files := l.exec.Agent.Files
	for _, candidate := range candidates {
		exists, err := files.FileExists(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("failed to probe %s: %w", candidate, err)
		}
		if exists {
			return candidate, nil
		}
	}

	return "", &ExecutionFailure{Message: notFoundMessage, Err: ErrNpmNotFound}
}

// Candidates returns the probe list in order.
func (l *Locator) Candidates(ctx context.Context) ([]string, error) {
	sep := l.exec.Separator()
	if sep == '/' {
		return []string{"/usr/lib/npm", "/usr/lib/node_modules/npm"}, nil
	}

	procs := l.exec.Agent.Processes
	appData, err := procs.GetEnvironmentVariable(ctx, "AppData")
	if err != nil {
		return nil, fmt.Errorf("failed to read AppData: %w", err)
	}
	programFiles, err := procs.GetEnvironmentVariable(ctx, "ProgramFiles")
	if err != nil {
		return nil, fmt.Errorf("failed to read ProgramFiles: %w", err)
	}

	dirs := [][]string{
		{appData, "npm"},
		{appData, "npm", "node_modules"},
		{appData, "npm", "node_modules", "npm", "bin"},
		{programFiles, "nodejs"},
		{programFiles, "nodejs", "node_modules"},
		{programFiles, "nodejs", "node_modules", "npm", "bin"},
	}

	candidates := make([]string, 0, len(dirs))
	for _, d := range dirs {
		elems := append(append([]string{}, d[1:]...), "npm.cmd")
		candidates = append(candidates, execution.JoinPath(sep, d[0], elems...))
	}
	return candidates, nil
}

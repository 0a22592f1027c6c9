// Package execution describes where an operation runs: the agent it talks to
// and how paths are resolved in that agent's convention.
package execution

import (
	"path"
	"strings"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// Agent bundles the capability sets of one execution agent.
type Agent struct {
	Files     ports.FileOperations
	Processes ports.ProcessExecutor
}

// Context is the per-operation execution context.
type Context struct {
	Agent            Agent
	WorkingDirectory string
}

// NewContext creates a Context running in workingDirectory on agent.
func NewContext(agent Agent, workingDirectory string) *Context {
	return &Context{Agent: agent, WorkingDirectory: workingDirectory}
}

// Separator returns the agent's directory separator.
func (c *Context) Separator() rune {
	if c.Agent.Files == nil {
		return '/'
	}
	return c.Agent.Files.DirectorySeparator()
}

// ResolvePath resolves p against the working directory. A blank p resolves
// to the working directory itself; absolute paths are returned unchanged.
func (c *Context) ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	sep := c.Separator()
	if p == "" {
		return c.WorkingDirectory
	}
	if IsAbsolute(sep, p) || c.WorkingDirectory == "" {
		return p
	}
	return JoinPath(sep, c.WorkingDirectory, p)
}

// JoinPath joins path elements using sep.
func JoinPath(sep rune, base string, elems ...string) string {
	if sep == '/' {
		return path.Join(append([]string{base}, elems...)...)
	}

	s := string(sep)
	out := strings.ReplaceAll(base, "/", s)
	for _, e := range elems {
		e = strings.Trim(strings.ReplaceAll(e, "/", s), s)
		if e == "" {
			continue
		}
		if out == "" {
			out = e
			continue
		}
		out = strings.TrimRight(out, s) + s + e
	}
	return out
}

// IsAbsolute reports whether p is absolute under the given separator convention.
func IsAbsolute(sep rune, p string) bool {
	if sep == '/' {
		return strings.HasPrefix(p, "/")
	}
	if strings.HasPrefix(p, `\`) || strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && isLetter(p[0]) && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

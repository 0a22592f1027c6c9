// Package ports defines the capability sets an execution agent offers to the
// npm operations: file access, process execution and package source lookup.
package ports

import (
	"context"
	"io"
)

// FileOperations provides file access on an execution agent.
// The agent may be the local machine or a remote host; paths are always in
// the agent's own convention.
type FileOperations interface {
	// DirectorySeparator returns '/' for POSIX agents and '\\' for Windows agents.
	DirectorySeparator() rune
	CreateDirectory(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	DeleteFile(ctx context.Context, path string) error
	// WriteAllText replaces the file at path with text encoded as UTF-8.
	WriteAllText(ctx context.Context, path, text string) error
	OpenFile(ctx context.Context, path string) (io.ReadCloser, error)
}

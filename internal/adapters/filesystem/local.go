// Package filesystem provides the file operations of the local execution agent.
package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// LocalFiles implements ports.FileOperations on the machine running nodeops.
type LocalFiles struct{}

// NewLocalFiles creates a new LocalFiles.
func NewLocalFiles() *LocalFiles {
	return &LocalFiles{}
}

// DirectorySeparator returns the host's path separator.
func (l *LocalFiles) DirectorySeparator() rune {
	return os.PathSeparator
}

// CreateDirectory creates path and any missing parents.
func (l *LocalFiles) CreateDirectory(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, 0o755)
}

// FileExists reports whether path is an existing regular file.
// Directories do not count.
func (l *LocalFiles) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// DeleteFile removes path.
func (l *LocalFiles) DeleteFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(path)
}

// WriteAllText replaces path with text.
func (l *LocalFiles) WriteAllText(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// OpenFile opens path for reading.
func (l *LocalFiles) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Ensure LocalFiles implements ports.FileOperations.
var _ ports.FileOperations = (*LocalFiles)(nil)

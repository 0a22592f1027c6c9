package npmrc

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// Writer places generated config files on an execution agent.
type Writer struct {
	files ports.FileOperations
}

// NewWriter creates a Writer using files.
func NewWriter(files ports.FileOperations) *Writer {
	return &Writer{files: files}
}

// Write replaces the file at path with content. An existing file is deleted
// first; its settings are not merged.
func (w *Writer) Write(ctx context.Context, path, content string) error {
	exists, err := w.files.FileExists(ctx, path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if exists {
		if err := w.files.DeleteFile(ctx, path); err != nil {
			return fmt.Errorf("deleting stale %s: %w", path, err)
		}
	}
	if err := w.files.WriteAllText(ctx, path, content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Package mocks provides test doubles for the execution agent ports.
package mocks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// FileOperations is a thread-safe in-memory ports.FileOperations.
type FileOperations struct {
	mu        sync.RWMutex
	separator rune
	files     map[string]string
	dirs      map[string]bool
	deleted   []string
	errors    map[string]error
}

// NewFileOperations creates an empty POSIX-style FileOperations mock.
func NewFileOperations() *FileOperations {
	return NewFileOperationsWithSeparator('/')
}

// NewFileOperationsWithSeparator creates an empty mock reporting sep as its
// directory separator.
func NewFileOperationsWithSeparator(sep rune) *FileOperations {
	return &FileOperations{
		separator: sep,
		files:     make(map[string]string),
		dirs:      make(map[string]bool),
		errors:    make(map[string]error),
	}
}

// AddFile adds a file to the mock.
func (m *FileOperations) AddFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// FailOn makes every operation on path return err.
func (m *FileOperations) FailOn(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path] = err
}

// Content returns the content of path and whether it exists.
func (m *FileOperations) Content(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	return content, ok
}

// HasDir reports whether CreateDirectory was called for path.
func (m *FileOperations) HasDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path]
}

// Deleted returns the paths removed by DeleteFile, in order.
func (m *FileOperations) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// Paths returns all file paths, sorted.
func (m *FileOperations) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// DirectorySeparator returns the configured separator.
func (m *FileOperations) DirectorySeparator() rune {
	return m.separator
}

// CreateDirectory records path as a directory.
func (m *FileOperations) CreateDirectory(ctx context.Context, path string) error {
	if err := m.check(ctx, path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

// FileExists reports whether a file was added or written at path.
func (m *FileOperations) FileExists(ctx context.Context, path string) (bool, error) {
	if err := m.check(ctx, path); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path]
	return ok, nil
}

// DeleteFile removes path.
func (m *FileOperations) DeleteFile(ctx context.Context, path string) error {
	if err := m.check(ctx, path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	m.deleted = append(m.deleted, path)
	return nil
}

// WriteAllText stores text at path.
func (m *FileOperations) WriteAllText(ctx context.Context, path, text string) error {
	if err := m.check(ctx, path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = text
	return nil
}

// OpenFile returns a reader over the content of path.
func (m *FileOperations) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := m.check(ctx, path); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m *FileOperations) check(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errors[path]
}

// Ensure FileOperations implements ports.FileOperations.
var _ ports.FileOperations = (*FileOperations)(nil)

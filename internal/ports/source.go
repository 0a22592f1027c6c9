package ports

import (
	"context"
	"errors"
)

// ErrSourceNotFound is returned by SourceLookup when no source has the requested name.
var ErrSourceNotFound = errors.New("package source not found")

// SourceTypeNPM is the source type accepted by npm operations.
const SourceTypeNPM = "npm"

// RegistrySource is a named package source as stored by a SourceLookup.
type RegistrySource struct {
	Name     string
	Type     string
	URL      string
	UserName string
	Password string
	APIKey   string
}

// SourceLookup resolves symbolic package source names.
type SourceLookup interface {
	FindSource(ctx context.Context, name string) (RegistrySource, error)
}

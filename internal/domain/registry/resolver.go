package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// ResolveErrorKind categorizes a resolution failure.
type ResolveErrorKind int

const (
	// KindNotFound means the lookup has no source with the given name.
	KindNotFound ResolveErrorKind = iota + 1
	// KindWrongType means the source exists but is not an npm source.
	KindWrongType
)

// ResolveError is returned when a package source cannot be used by npm operations.
// It is a recoverable error: the operation logs it and stops.
type ResolveError struct {
	Kind       ResolveErrorKind
	Source     string
	SourceType string
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case KindWrongType:
		return fmt.Sprintf("Package source %q is a %s source; it must be a npm source for use with this operation.", e.Source, e.SourceType)
	default:
		return fmt.Sprintf("Package source %q not found.", e.Source)
	}
}

// Resolver turns SourceIDs into Sources.
type Resolver struct {
	lookup ports.SourceLookup
}

// NewResolver creates a Resolver backed by lookup. lookup may be nil, in
// which case only literal URLs resolve.
func NewResolver(lookup ports.SourceLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns the Source for id.
func (r *Resolver) Resolve(ctx context.Context, id SourceID) (Source, error) {
	if id.IsURL() {
		return Source{ID: id, RegistryURL: id.URL()}, nil
	}

	if r.lookup == nil {
		return Source{}, &ResolveError{Kind: KindNotFound, Source: id.String()}
	}

	found, err := r.lookup.FindSource(ctx, id.Name())
	if err != nil {
		if errors.Is(err, ports.ErrSourceNotFound) {
			return Source{}, &ResolveError{Kind: KindNotFound, Source: id.String()}
		}
		return Source{}, fmt.Errorf("looking up package source %q: %w", id.String(), err)
	}

	if !strings.EqualFold(found.Type, ports.SourceTypeNPM) {
		return Source{}, &ResolveError{Kind: KindWrongType, Source: id.String(), SourceType: found.Type}
	}

	return Source{
		ID:          id,
		RegistryURL: found.URL,
		UserName:    found.UserName,
		Password:    found.Password,
		APIKey:      found.APIKey,
	}, nil
}

package catalog

import (
	"context"

	"listing-workers/internal/common/errors"
	"listing-workers/internal/listing"
)

// Set resolves named catalogs for workers whose jobs may omit inline
// listings. The empty name selects the default catalog.
type Set struct {
	sources     map[string]Source
	defaultName string
}

func NewSet(defaultName string) *Set {
	return &Set{sources: map[string]Source{}, defaultName: defaultName}
}

// Add registers src under name and returns the set.
func (s *Set) Add(name string, src Source) *Set {
	s.sources[name] = src
	return s
}

// Resolve returns inline when it is non-nil, otherwise the listings of the
// named catalog.
func (s *Set) Resolve(ctx context.Context, inline []listing.Listing, name string) ([]listing.Listing, error) {
	if inline != nil {
		return inline, nil
	}
	if s == nil {
		return nil, errors.NewInvalidListingPayloadError("job carries no listings and no catalog is configured")
	}
	if name == "" {
		name = s.defaultName
	}
	if name == "" {
		return nil, errors.NewInvalidListingPayloadError("job carries no listings and no catalog is configured")
	}

	src, ok := s.sources[name]
	if !ok {
		return nil, errors.NewCatalogNotFoundError("catalog", name)
	}
	return src.Load(ctx)
}

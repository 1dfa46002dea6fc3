package catalog

import (
	"context"
	"os"

	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/markup"
)

const sourceMarkup = "markup"

// MarkupSource reads the cards of a static listings page.
type MarkupSource struct {
	path      string
	selectors markup.Selectors
	logger    logger.Logger
}

func NewMarkupSource(path string, sel markup.Selectors, log logger.Logger) *MarkupSource {
	return &MarkupSource{path: path, selectors: sel, logger: log}
}

func (s *MarkupSource) Load(ctx context.Context) ([]listing.Listing, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewCatalogNotFoundError(sourceMarkup, s.path)
		}
		return nil, sourceError(ctx, sourceMarkup, err)
	}
	defer f.Close()

	page, err := markup.Load(f, s.selectors)
	if err != nil {
		return nil, sourceError(ctx, sourceMarkup, err)
	}
	for _, w := range page.Warnings() {
		s.logger.Warn("listing card normalized", map[string]interface{}{"page": s.path, "warning": w})
	}
	return page.Listings(), nil
}

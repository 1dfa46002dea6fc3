package listing

import (
	"context"
	"fmt"

	"listing-workers/internal/common/logger"
)

// Renderer applies an evaluation to the presentation layer. It is the only
// effectful step of the pipeline.
type Renderer interface {
	Render(ctx context.Context, result VisibilityResult) error
	ResetInputs(ctx context.Context, inputs FilterInputs) error
}

// Pipeline runs criteria construction, evaluation and rendering for one
// input event. It keeps no state between events besides the read-only
// listing collection.
type Pipeline struct {
	listings []Listing
	renderer Renderer
	logger   logger.Logger
}

func NewPipeline(listings []Listing, renderer Renderer, log logger.Logger) *Pipeline {
	return &Pipeline{
		listings: listings,
		renderer: renderer,
		logger:   log,
	}
}

// Listings returns the collection the pipeline evaluates.
func (p *Pipeline) Listings() []Listing {
	return p.listings
}

// OnInputChange rebuilds the criteria from inputs, evaluates every listing and
// renders the result.
func (p *Pipeline) OnInputChange(ctx context.Context, inputs FilterInputs) (VisibilityResult, error) {
	return p.run(ctx, NewCriteria(inputs))
}

// Reset writes the default inputs back and renders every listing visible.
func (p *Pipeline) Reset(ctx context.Context) (VisibilityResult, error) {
	if err := p.renderer.ResetInputs(ctx, DefaultInputs()); err != nil {
		return VisibilityResult{}, fmt.Errorf("reset inputs: %w", err)
	}
	return p.run(ctx, Clear())
}

func (p *Pipeline) run(ctx context.Context, c FilterCriteria) (VisibilityResult, error) {
	result := Evaluate(p.listings, c)

	p.logger.Debug("filter evaluated", map[string]interface{}{
		"searchTerm":   c.SearchTerm,
		"location":     c.Location,
		"type":         c.Type,
		"visibleCount": result.VisibleCount,
		"total":        len(p.listings),
	})

	if err := p.renderer.Render(ctx, result); err != nil {
		return result, fmt.Errorf("render: %w", err)
	}
	return result, nil
}

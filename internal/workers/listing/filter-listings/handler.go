package filterlistings

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"listing-workers/internal/common/camunda"
	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/metrics"
	"listing-workers/internal/common/observability"
	"listing-workers/internal/common/validation"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/catalog"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "filter-listings"

type Handler struct {
	config   *Config
	catalogs *catalog.Set
	logger   logger.Logger
	reporter *camunda.Reporter
}

func NewHandler(config *Config, catalogs *catalog.Set, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		catalogs: catalogs,
		logger:   log,
		reporter: camunda.NewReporter(TaskType, obs, log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.Decode(job.Variables)
	if err != nil {
		h.reporter.Fail(ctx, client, job, start, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.reporter.Fail(ctx, client, job, start, err)
		return
	}
	h.reporter.Complete(ctx, client, job, start, output)
}

// Decode validates the job variables against the input schema and decodes them.
func (h *Handler) Decode(variables string) (*Input, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, errors.NewParseError(err)
	}

	result, err := validation.ValidateInput(doc, h.config.InputSchema)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidListingPayloadError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	listings, err := h.catalogs.Resolve(ctx, input.Listings, input.Catalog)
	if err != nil {
		return nil, err
	}

	criteria := listing.Clear()
	switch {
	case input.Criteria != nil:
		criteria = *input.Criteria
	case input.RawInputs != nil:
		criteria = listing.NewCriteria(listing.InputsFromValues(input.RawInputs))
	}

	_, span := observability.StartSpan(ctx, TaskType+".evaluate",
		attribute.Int("listings.total", len(listings)),
		attribute.String("criteria.location", criteria.Location),
		attribute.String("criteria.type", criteria.Type),
	)
	started := time.Now()
	result := listing.Evaluate(listings, criteria)
	span.SetAttributes(attribute.Int("listings.visible", result.VisibleCount))
	span.End()

	metrics.ObserveEvaluation(result.VisibleCount, len(listings))
	h.logger.Info("filter evaluated", map[string]interface{}{
		"visibleCount": result.VisibleCount,
		"total":        len(listings),
		"durationMs":   time.Since(started).Milliseconds(),
	})

	return &Output{
		EvaluationID: uuid.NewString(),
		Criteria:     criteria,
		Visible:      nonNil(result.Visible),
		VisibleCount: result.VisibleCount,
		NoResults:    result.NoResults(),
		VisibleIDs:   visibleIDs(listings, result),
		Total:        len(listings),
	}, nil
}

// visibleIDs lists the ids of the visible listings; a listing without an id
// is reported by its position.
func visibleIDs(listings []listing.Listing, result listing.VisibilityResult) []string {
	ids := make([]string, 0, result.VisibleCount)
	for i, visible := range result.Visible {
		if !visible {
			continue
		}
		if id := listings[i].ID; id != "" {
			ids = append(ids, id)
		} else {
			ids = append(ids, strconv.Itoa(i))
		}
	}
	return ids
}

func nonNil(v []bool) []bool {
	if v == nil {
		return []bool{}
	}
	return v
}

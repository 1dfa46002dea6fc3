package clearfilters

import (
	"context"
	"encoding/json"
	"time"

	"listing-workers/internal/common/camunda"
	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/metrics"
	"listing-workers/internal/common/observability"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/catalog"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "clear-filters"

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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.reporter.Fail(ctx, client, job, start, errors.NewParseError(err))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.reporter.Fail(ctx, client, job, start, err)
		return
	}
	h.reporter.Complete(ctx, client, job, start, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	listings, err := h.catalogs.Resolve(ctx, input.Listings, input.Catalog)
	if err != nil {
		return nil, err
	}

	criteria := listing.Clear()
	result := listing.Evaluate(listings, criteria)
	metrics.ObserveEvaluation(result.VisibleCount, len(listings))

	h.logger.Info("filters cleared", map[string]interface{}{
		"visibleCount": result.VisibleCount,
		"total":        len(listings),
	})

	return &Output{
		Criteria:     criteria,
		Inputs:       listing.DefaultInputs(),
		Visible:      result.Visible,
		VisibleCount: result.VisibleCount,
		NoResults:    result.NoResults(),
	}, nil
}

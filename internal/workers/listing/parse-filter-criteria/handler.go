package parsefiltercriteria

import (
	"context"
	"encoding/json"
	"time"

	"listing-workers/internal/common/camunda"
	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/observability"
	"listing-workers/internal/listing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-filter-criteria"

type Handler struct {
	config   *Config
	logger   logger.Logger
	reporter *camunda.Reporter
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
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

// Execute normalizes the raw form values. Any value is accepted.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	inputs := listing.InputsFromValues(input.RawInputs)
	criteria := listing.NewCriteria(inputs)

	h.logger.Info("criteria parsed", map[string]interface{}{
		"searchTerm": criteria.SearchTerm,
		"location":   criteria.Location,
		"type":       criteria.Type,
		"minPrice":   criteria.MinPrice,
		"maxPrice":   criteria.MaxPrice,
	})

	return &Output{Criteria: criteria, Inputs: inputs}, nil
}

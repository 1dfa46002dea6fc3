package renderlistings

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"listing-workers/internal/common/camunda"
	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/metrics"
	"listing-workers/internal/common/observability"
	"listing-workers/internal/common/validation"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/markup"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "render-listings"

type Handler struct {
	config   *Config
	logger   logger.Logger
	reporter *camunda.Reporter
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if config.Selectors == (markup.Selectors{}) {
		config.Selectors = markup.DefaultSelectors()
	}
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
	if strings.TrimSpace(input.HTML) == "" {
		return nil, errors.NewInvalidListingPayloadError("html is empty")
	}

	page, err := markup.LoadString(input.HTML, h.config.Selectors)
	if err != nil {
		return nil, errors.NewRenderFailedError(err)
	}
	for _, w := range page.Warnings() {
		h.logger.Warn("listing card normalized", map[string]interface{}{"warning": w})
	}

	pipeline := listing.NewPipeline(page.Listings(), page, h.logger)

	var result listing.VisibilityResult
	switch {
	case input.Reset:
		result, err = pipeline.Reset(ctx)
	case input.RawInputs != nil:
		inputs := listing.InputsFromValues(input.RawInputs)
		if err = page.ResetInputs(ctx, inputs); err == nil {
			result, err = pipeline.OnInputChange(ctx, inputs)
		}
	default:
		result, err = pipeline.OnInputChange(ctx, page.Inputs())
	}
	if err != nil {
		return nil, errors.NewRenderFailedError(err)
	}
	metrics.ObserveEvaluation(result.VisibleCount, len(pipeline.Listings()))

	html, err := page.HTML()
	if err != nil {
		return nil, errors.NewRenderFailedError(err)
	}

	warnings := page.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	return &Output{
		HTML:         html,
		Inputs:       page.Inputs(),
		VisibleCount: result.VisibleCount,
		NoResults:    result.NoResults(),
		Warnings:     warnings,
	}, nil
}

package camunda

import (
	"context"
	"time"

	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/metrics"
	"listing-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Reporter finishes jobs of one task type and records the outcome in the
// prometheus collectors and the otel meter.
type Reporter struct {
	taskType   string
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
}

func NewReporter(taskType string, obs *observability.Observability, log logger.Logger) *Reporter {
	return &Reporter{
		taskType:   taskType,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
	}
}

// Complete sends the complete command. A send failure is logged; Zeebe will
// time the job out and hand it to another worker. Commands are sent even when
// ctx has expired.
func (r *Reporter) Complete(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, output interface{}) {
	ctx = context.WithoutCancel(ctx)
	if err := CompleteJob(ctx, client, job, output); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}

	metrics.ObserveJob(r.taskType, start, "")
	r.obs.RecordJobProcessed(ctx, r.taskType, "completed")
	r.obs.RecordJobDuration(ctx, r.taskType, time.Since(start), "completed")

	r.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"durationMs": time.Since(start).Milliseconds(),
	})
}

// Fail hands err to the error handler, which retries or throws a BPMN error.
func (r *Reporter) Fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	ctx = context.WithoutCancel(ctx)
	stdErr := errors.Normalize(err)
	r.errHandler.HandleJobError(ctx, client, job, stdErr)

	metrics.ObserveJob(r.taskType, start, string(stdErr.Code))
	r.obs.RecordJobProcessed(ctx, r.taskType, "failed")
	r.obs.RecordJobDuration(ctx, r.taskType, time.Since(start), "failed")
}

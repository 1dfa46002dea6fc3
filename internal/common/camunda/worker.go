package camunda

import (
	"context"
	"time"

	"listing-workers/internal/common/config"
	"listing-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Workers keeps the open job workers so they can be closed on shutdown.
type Workers struct {
	client zbc.Client
	open   map[string]worker.JobWorker
	logger logger.Logger
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{client: client, open: map[string]worker.JobWorker{}, logger: log}
}

// Start opens a job worker for taskType unless it is disabled.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	w.open[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Count is the number of open workers.
func (w *Workers) Count() int {
	return len(w.open)
}

// Close stops every worker, waiting for in-flight jobs until ctx is done.
func (w *Workers) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		for taskType, jw := range w.open {
			jw.Close()
			jw.AwaitClose()
			w.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("workers did not stop in time", map[string]interface{}{"error": ctx.Err()})
	}
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}

package jobs

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultDispatchRetrySpec re-polls every 15 seconds.
	DefaultDispatchRetrySpec = "*/15 * * * * *"

	// DefaultDispatchBatchSize bounds the orders handled per run.
	DefaultDispatchBatchSize = 50
)

// RedispatchHandler is satisfied by commands.RedispatchOrdersCommandHandler.
type RedispatchHandler interface {
	Handle(ctx context.Context, cmd commands.RedispatchOrdersCommand) (int, error)
}

// DispatchRetryJob periodically re-dispatches ready orders that found no
// driver earlier.
type DispatchRetryJob struct {
	handler   RedispatchHandler
	spec      string
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewDispatchRetryJob creates the job. spec is a six-field cron expression
// with seconds; an empty spec means DefaultDispatchRetrySpec.
func NewDispatchRetryJob(handler RedispatchHandler, spec string, batchSize int, logger *slog.Logger) *DispatchRetryJob {
	if spec == "" {
		spec = DefaultDispatchRetrySpec
	}
	if batchSize < 1 {
		batchSize = DefaultDispatchBatchSize
	}
	return &DispatchRetryJob{
		handler:   handler,
		spec:      spec,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "dispatch_retry_job"),
	}
}

// Start schedules the job.
func (j *DispatchRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch retry job started", "spec", j.spec)
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *DispatchRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispatch retry job stopped")
}

func (j *DispatchRetryJob) run(ctx context.Context) {
	cmd, err := commands.NewRedispatchOrdersCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch retry job misconfigured", "error", err)
		return
	}

	dispatched, err := j.handler.Handle(ctx, cmd)
	switch {
	case errors.Is(err, commands.ErrNothingToRedispatch), errors.Is(err, delivery.ErrNoDriverAvailable):
		// expected while drivers are busy
	case err != nil:
		j.logger.ErrorContext(ctx, "Dispatch retry job failed", "dispatched", dispatched, "error", err)
	case dispatched > 0:
		j.logger.InfoContext(ctx, "Re-dispatched waiting orders", "dispatched", dispatched)
	}
}

package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/delivery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedispatchHandler struct {
	mock.Mock
}

func (m *MockRedispatchHandler) Handle(ctx context.Context, cmd commands.RedispatchOrdersCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

// countingHandler counts error records across derived loggers.
type countingHandler struct {
	slog.Handler
	errors *int
}

func (h countingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		*h.errors++
	}
	return h.Handler.Handle(ctx, r)
}

func (h countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return countingHandler{Handler: h.Handler.WithAttrs(attrs), errors: h.errors}
}

func (h countingHandler) WithGroup(name string) slog.Handler {
	return countingHandler{Handler: h.Handler.WithGroup(name), errors: h.errors}
}

func newCountingLogger() (*slog.Logger, *int) {
	count := new(int)
	return slog.New(countingHandler{Handler: slog.NewTextHandler(io.Discard, nil), errors: count}), count
}

func TestDispatchRetryJob_Run(t *testing.T) {
	tests := []struct {
		name       string
		dispatched int
		err        error
		wantErrors int
	}{
		{name: "dispatched", dispatched: 2},
		{name: "nothing waiting", err: commands.ErrNothingToRedispatch},
		{name: "no driver available", err: delivery.ErrNoDriverAvailable},
		{name: "repository failure", err: errors.New("connection refused"), wantErrors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := new(MockRedispatchHandler)
			handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RedispatchOrdersCommand) bool {
				return cmd.BatchSize() == 10
			})).Return(tt.dispatched, tt.err).Once()

			logger, errorCount := newCountingLogger()
			job := NewDispatchRetryJob(handler, "", 10, logger)

			job.run(context.Background())

			handler.AssertExpectations(t)
			assert.Equal(t, tt.wantErrors, *errorCount)
		})
	}
}

func TestDispatchRetryJob_Defaults(t *testing.T) {
	job := NewDispatchRetryJob(new(MockRedispatchHandler), "", 0, slog.Default())

	assert.Equal(t, DefaultDispatchRetrySpec, job.spec)
	assert.Equal(t, DefaultDispatchBatchSize, job.batchSize)
}

func TestDispatchRetryJob_InvalidSpec(t *testing.T) {
	job := NewDispatchRetryJob(new(MockRedispatchHandler), "every now and then", 1, slog.Default())

	require.Error(t, job.Start())
}

type fakeJob struct {
	startErr error
	started  bool
	stopped  bool
}

func (j *fakeJob) Start() error {
	if j.startErr != nil {
		return j.startErr
	}
	j.started = true
	return nil
}

func (j *fakeJob) Stop() {
	j.stopped = true
}

func TestJobManager(t *testing.T) {
	t.Run("starts and stops every job", func(t *testing.T) {
		first, second := &fakeJob{}, &fakeJob{}
		jm := NewJobManager(first, second)

		require.NoError(t, jm.StartAll())
		assert.True(t, first.started)
		assert.True(t, second.started)

		jm.StopAll()
		assert.True(t, first.stopped)
		assert.True(t, second.stopped)
	})

	t.Run("a failed start stops the jobs already running", func(t *testing.T) {
		first, broken := &fakeJob{}, &fakeJob{startErr: errors.New("bad spec")}
		jm := NewJobManager(first, broken)

		require.Error(t, jm.StartAll())
		assert.True(t, first.stopped)
		assert.False(t, broken.stopped)
	})
}

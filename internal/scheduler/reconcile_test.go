package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingEnqueuer struct {
	calls int32
	err   error
}

func (e *countingEnqueuer) EnqueueReconcileAll(context.Context) (string, error) {
	atomic.AddInt32(&e.calls, 1)
	return "task-1", e.err
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("not a schedule"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	next, err := NextRun("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), next)
}

func TestReconcileScheduler_DisabledDoesNotStart(t *testing.T) {
	s := NewReconcileScheduler(&countingEnqueuer{}, "", false, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestReconcileScheduler_InvalidSchedule(t *testing.T) {
	s := NewReconcileScheduler(&countingEnqueuer{}, "every day", true, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	s := NewReconcileScheduler(&countingEnqueuer{}, DefaultSchedule, true, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	// idempotent
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestReconcileScheduler_RunNow(t *testing.T) {
	e := &countingEnqueuer{}
	s := NewReconcileScheduler(e, DefaultSchedule, true, zap.NewNop())

	s.RunNow(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&e.calls))

	e.err = errors.New("queue closed")
	s.RunNow(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&e.calls))
}

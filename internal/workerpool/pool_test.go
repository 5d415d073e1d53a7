package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/metrics"
)

func newTestPool(t *testing.T, size, queue int) *Pool {
	t.Helper()
	p := New(size, queue, zap.NewNop(), metrics.NewCollector())
	t.Cleanup(func() { p.Shutdown(time.Second) })
	return p
}

func TestSubmit_ReturnsValue(t *testing.T) {
	p := newTestPool(t, 2, 8)

	f := Submit(p, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSubmit_ReturnsError(t *testing.T) {
	p := newTestPool(t, 1, 8)
	boom := errors.New("boom")

	f := Submit(p, func(ctx context.Context) (string, error) {
		return "", boom
	})

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSubmit_RecoversPanic(t *testing.T) {
	p := newTestPool(t, 1, 8)

	f := Submit(p, func(ctx context.Context) (int, error) {
		panic("bad input")
	})
	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")

	// the worker survives
	f2 := Submit(p, func(ctx context.Context) (int, error) { return 1, nil })
	v, err := f2.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSubmit_BoundedParallelism(t *testing.T) {
	p := newTestPool(t, 3, 64)

	var running, peak int32
	futures := make([]*Future[struct{}], 0, 20)
	for i := 0; i < 20; i++ {
		futures = append(futures, Submit(p, func(ctx context.Context) (struct{}, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return struct{}{}, nil
		}))
	}

	for _, f := range futures {
		_, err := f.Await(context.Background())
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestSubmit_Saturated(t *testing.T) {
	p := newTestPool(t, 1, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	blocker := Submit(p, func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 0, nil
	})
	<-started

	queued := Submit(p, func(ctx context.Context) (int, error) { return 1, nil })
	rejected := Submit(p, func(ctx context.Context) (int, error) { return 2, nil })

	_, err := rejected.Await(context.Background())
	assert.ErrorIs(t, err, ErrSaturated)

	close(release)
	_, err = blocker.Await(context.Background())
	require.NoError(t, err)
	v, err := queued.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestShutdown_DrainsInFlight(t *testing.T) {
	p := New(2, 8, zap.NewNop(), nil)

	f := Submit(p, func(ctx context.Context) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "done", nil
	})

	assert.True(t, p.Shutdown(time.Second))

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestShutdown_CancelsAfterGrace(t *testing.T) {
	p := New(1, 8, zap.NewNop(), nil)

	stuck := Submit(p, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	queued := Submit(p, func(ctx context.Context) (int, error) {
		return 7, nil
	})

	assert.False(t, p.Shutdown(20*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := stuck.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = queued.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_AfterShutdown(t *testing.T) {
	p := New(1, 1, zap.NewNop(), nil)
	require.True(t, p.Shutdown(time.Second))

	f := Submit(p, func(ctx context.Context) (int, error) { return 1, nil })
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	// idempotent
	assert.True(t, p.Shutdown(time.Second))
}

func TestFuture_AwaitRespectsContext(t *testing.T) {
	p := newTestPool(t, 1, 1)
	release := make(chan struct{})
	defer close(release)

	f := Submit(p, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmitContext_CallerCancellation(t *testing.T) {
	p := newTestPool(t, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	f := SubmitContext(ctx, p, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	<-started
	cancel()
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmitContext_AlreadyCancelled(t *testing.T) {
	p := newTestPool(t, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	f := SubmitContext(ctx, p, func(ctx context.Context) (int, error) {
		ran.Store(true)
		return 1, nil
	})
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestGo(t *testing.T) {
	f := Go(func() (string, error) { return "combined", nil })
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "combined", v)
}

func TestGo_RecoversPanic(t *testing.T) {
	f := Go(func() (string, error) { panic("boom") })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := f.Await(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task panicked: boom")
}

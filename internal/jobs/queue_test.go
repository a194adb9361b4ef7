package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_ProcessesJobsInOrderWithOneWorker(t *testing.T) {
	q := NewQueue[int](10, 1, nil)

	var mu sync.Mutex
	var seen []int
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, n int) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
		return nil
	}))

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Publish(context.Background(), i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestQueue_HandlerErrorsAndPanicsDoNotStopWorker(t *testing.T) {
	q := NewQueue[string](10, 1, nil)

	var mu sync.Mutex
	var done []string
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, s string) error {
		switch s {
		case "boom":
			panic("kaboom")
		case "err":
			return errors.New("bad job")
		}
		mu.Lock()
		done = append(done, s)
		mu.Unlock()
		return nil
	}))

	for _, s := range []string{"boom", "err", "ok"} {
		require.NoError(t, q.Publish(context.Background(), s))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ok"}, done)
}

func TestQueue_PublishAfterStop(t *testing.T) {
	q := NewQueue[int](1, 1, nil)
	require.NoError(t, q.Stop(context.Background()))

	err := q.Publish(context.Background(), 1)
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.ErrorIs(t, q.Start(context.Background(), func(context.Context, int) error { return nil }), ErrQueueClosed)
}

func TestQueue_StopWhilePublishing(t *testing.T) {
	tests := []struct {
		name    string
		buffer  int
		workers int
	}{
		{name: "unbuffered", buffer: 0, workers: 1},
		{name: "small buffer", buffer: 1, workers: 1},
		{name: "several workers", buffer: 4, workers: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for round := 0; round < 25; round++ {
				q := NewQueue[int](tt.buffer, tt.workers, nil)
				var handled, accepted atomic.Int64
				require.NoError(t, q.Start(context.Background(), func(context.Context, int) error {
					handled.Add(1)
					return nil
				}))

				var publishers sync.WaitGroup
				for p := 0; p < 8; p++ {
					publishers.Add(1)
					go func() {
						defer publishers.Done()
						for i := 0; i < 50; i++ {
							if err := q.Publish(context.Background(), i); err != nil {
								assert.ErrorIs(t, err, ErrQueueClosed)
								return
							}
							accepted.Add(1)
						}
					}()
				}

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				require.NoError(t, q.Stop(ctx))
				cancel()
				publishers.Wait()

				assert.Equal(t, accepted.Load(), handled.Load(), "every accepted job runs")
				assert.ErrorIs(t, q.Publish(context.Background(), 0), ErrQueueClosed)
			}
		})
	}
}

func TestQueue_StartTwice(t *testing.T) {
	q := NewQueue[int](1, 1, nil)
	h := func(context.Context, int) error { return nil }
	require.NoError(t, q.Start(context.Background(), h))
	assert.Error(t, q.Start(context.Background(), h))
	require.NoError(t, q.Stop(context.Background()))
}

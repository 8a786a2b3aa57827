package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_GoRunsTask(t *testing.T) {
	tracker := NewTracker(context.Background(), nil)
	var ran atomic.Bool

	tracker.Go("embed", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	tracker.Shutdown(context.Background())
	assert.True(t, ran.Load())
}

func TestTracker_ShutdownWaitsForInFlightTasks(t *testing.T) {
	tracker := NewTracker(context.Background(), nil)
	started := make(chan struct{})
	var finished atomic.Bool

	tracker.Go("slow", func(ctx context.Context) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	<-started
	tracker.Shutdown(context.Background())
	assert.True(t, finished.Load())
}

func TestTracker_DropsTasksAfterShutdown(t *testing.T) {
	tracker := NewTracker(context.Background(), nil)
	tracker.Shutdown(context.Background())

	var ran atomic.Bool
	tracker.Go("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	time.Sleep(5 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestTracker_PropagatesCancellationOnShutdown(t *testing.T) {
	tracker := NewTracker(context.Background(), nil)
	started := make(chan struct{})
	errCh := make(chan error, 1)

	tracker.Go("cancelable", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		errCh <- ctx.Err()
		return errors.New("canceled")
	})

	<-started
	tracker.Shutdown(context.Background())

	require.Equal(t, context.Canceled, <-errCh)
}

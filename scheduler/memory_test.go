package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnqueueOnce_RunsRegisteredHandler(t *testing.T) {
	s := NewInMemoryScheduler(nil)
	var got atomic.Value
	s.Register("retrieve_payment", func(_ context.Context, args []string) error {
		got.Store(args[0])
		return nil
	})

	require.NoError(t, s.EnqueueOnce(context.Background(), "retrieve_payment", []string{"42"}, true))
	s.Wait()

	require.Equal(t, "42", got.Load())
}

func TestEnqueueOnce_Dedup(t *testing.T) {
	s := NewInMemoryScheduler(nil)
	var runs atomic.Int32
	block := make(chan struct{})
	s.Register("retrieve_payment", func(_ context.Context, _ []string) error {
		<-block
		runs.Add(1)
		return nil
	})

	ctx := context.Background()
	// Delay the first run so the duplicate enqueue sees it pending.
	require.NoError(t, s.ScheduleAt(ctx, time.Now().Add(50*time.Millisecond), "retrieve_payment", []string{"42"}))
	require.NoError(t, s.EnqueueOnce(ctx, "retrieve_payment", []string{"42"}, true))

	pending, err := s.HasPending(ctx, "retrieve_payment", []string{"42"})
	require.NoError(t, err)
	require.True(t, pending)

	close(block)
	s.Wait()
	require.Equal(t, int32(1), runs.Load(), "dedup enqueue must not run the job twice")
}

func TestScheduleAt_DifferentArgsAreIndependent(t *testing.T) {
	s := NewInMemoryScheduler(nil)
	var runs atomic.Int32
	s.Register("retrieve_payment", func(_ context.Context, _ []string) error {
		runs.Add(1)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, s.EnqueueOnce(ctx, "retrieve_payment", []string{"1"}, true))
	require.NoError(t, s.EnqueueOnce(ctx, "retrieve_payment", []string{"2"}, true))
	s.Wait()

	require.Equal(t, int32(2), runs.Load())
}

func TestFiredTimersAreReleased(t *testing.T) {
	s := NewInMemoryScheduler(nil)
	s.Register("retrieve_payment", func(_ context.Context, _ []string) error { return nil })

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, s.EnqueueOnce(ctx, "retrieve_payment", []string{"42"}, false))
	}
	s.Wait()

	s.mu.Lock()
	tracked := len(s.timers)
	s.mu.Unlock()
	require.Zero(t, tracked, "fired timers must not stay tracked")
}

func TestHasPending_FalseAfterRun(t *testing.T) {
	s := NewInMemoryScheduler(nil)
	s.Register("retrieve_payment", func(_ context.Context, _ []string) error { return nil })

	ctx := context.Background()
	require.NoError(t, s.EnqueueOnce(ctx, "retrieve_payment", []string{"42"}, false))
	s.Wait()

	pending, err := s.HasPending(ctx, "retrieve_payment", []string{"42"})
	require.NoError(t, err)
	require.False(t, pending)
}

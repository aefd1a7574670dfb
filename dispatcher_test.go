package swishpay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/swishpay/ledger"
	"github.com/commercekit/swishpay/scheduler"
)

// recordingScheduler captures scheduling calls without running anything.
type recordingScheduler struct {
	version  int
	pending  bool
	enqueued [][]string
	deferred []time.Time
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{version: 2}
}

func (s *recordingScheduler) EnqueueOnce(_ context.Context, job string, args []string, dedup bool) error {
	s.enqueued = append(s.enqueued, append([]string{job}, args...))
	return nil
}

func (s *recordingScheduler) ScheduleAt(_ context.Context, at time.Time, job string, args []string) error {
	s.deferred = append(s.deferred, at)
	s.enqueued = append(s.enqueued, append([]string{job}, args...))
	return nil
}

func (s *recordingScheduler) HasPending(_ context.Context, _ string, _ []string) (bool, error) {
	return s.pending, nil
}

func (s *recordingScheduler) Version() int { return s.version }

var _ scheduler.Scheduler = (*recordingScheduler)(nil)

func pollConfig() *Config {
	cfg := testConfig(ModeProduction)
	cfg.PollForResponse = true
	cfg.ImprovedQueueHandling = true
	return cfg
}

func TestScheduleBackstop(t *testing.T) {
	sched := newRecordingScheduler()
	d := NewDispatcher(pollConfig(), sched, ledger.NewInMemoryStore(), nil)

	before := time.Now()
	require.NoError(t, d.ScheduleBackstop(context.Background(), "42"))

	require.Len(t, sched.deferred, 1)
	delay := sched.deferred[0].Sub(before)
	assert.InDelta(t, (5 * time.Minute).Seconds(), delay.Seconds(), 1.0)
	assert.Equal(t, []string{JobRetrievePayment, "42"}, sched.enqueued[0])
}

func TestRequestPoll_DisabledByConfig(t *testing.T) {
	cfg := pollConfig()
	cfg.PollForResponse = false
	sched := newRecordingScheduler()
	d := NewDispatcher(cfg, sched, ledger.NewInMemoryStore(), nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))
	assert.Empty(t, sched.enqueued)
}

func TestRequestPoll_OldSchedulerVersion(t *testing.T) {
	sched := newRecordingScheduler()
	sched.version = 1
	d := NewDispatcher(pollConfig(), sched, ledger.NewInMemoryStore(), nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))
	assert.Empty(t, sched.enqueued)
}

func TestRequestPoll_Improved_EnqueuesAndSetsFlag(t *testing.T) {
	sched := newRecordingScheduler()
	flags := ledger.NewInMemoryStore()
	d := NewDispatcher(pollConfig(), sched, flags, nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))

	require.Len(t, sched.enqueued, 1)
	assert.Equal(t, []string{JobRetrievePayment, "42"}, sched.enqueued[0])

	_, queued, err := flags.Get(context.Background(), pollFlagKey("42"))
	require.NoError(t, err)
	assert.True(t, queued)
}

func TestRequestPoll_Improved_FlagSuppressesSecondEnqueue(t *testing.T) {
	sched := newRecordingScheduler()
	flags := ledger.NewInMemoryStore()
	d := NewDispatcher(pollConfig(), sched, flags, nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))
	require.NoError(t, d.RequestPoll(context.Background(), "42"))

	assert.Len(t, sched.enqueued, 1, "second request lands on the ledger flag")
}

func TestRequestPoll_Improved_PendingJobSuppresses(t *testing.T) {
	sched := newRecordingScheduler()
	sched.pending = true
	d := NewDispatcher(pollConfig(), sched, ledger.NewInMemoryStore(), nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))
	assert.Empty(t, sched.enqueued)
}

func TestRequestPoll_Improved_DistinctOrdersIndependent(t *testing.T) {
	sched := newRecordingScheduler()
	d := NewDispatcher(pollConfig(), sched, ledger.NewInMemoryStore(), nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))
	require.NoError(t, d.RequestPoll(context.Background(), "43"))
	assert.Len(t, sched.enqueued, 2)
}

func TestRequestPoll_Legacy_SchedulesWithDelay(t *testing.T) {
	cfg := pollConfig()
	cfg.ImprovedQueueHandling = false
	sched := newRecordingScheduler()
	d := NewDispatcher(cfg, sched, ledger.NewInMemoryStore(), nil)

	before := time.Now()
	require.NoError(t, d.RequestPoll(context.Background(), "42"))

	require.Len(t, sched.deferred, 1)
	delay := sched.deferred[0].Sub(before)
	assert.InDelta(t, (10 * time.Second).Seconds(), delay.Seconds(), 1.0)
}

func TestRequestPoll_Legacy_PendingJobSuppresses(t *testing.T) {
	cfg := pollConfig()
	cfg.ImprovedQueueHandling = false
	sched := newRecordingScheduler()
	sched.pending = true
	d := NewDispatcher(cfg, sched, ledger.NewInMemoryStore(), nil)

	require.NoError(t, d.RequestPoll(context.Background(), "42"))
	assert.Empty(t, sched.enqueued)
}

package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// memoryVersion is the capability version reported by InMemoryScheduler.
// It supports dedup-on-enqueue, so it sits above any gating minimum.
const memoryVersion = 2

// InMemoryScheduler runs jobs on goroutines after their delay elapses.
//
// Suitable for single-instance deployments and tests; a multi-process
// deployment should implement Scheduler over a shared queue so that a job
// enqueued by one request can run in another worker.
type InMemoryScheduler struct {
	mu       sync.Mutex
	handlers map[string]JobFunc
	pending  map[string]int
	timers   map[int]*time.Timer
	nextID   int
	log      *slog.Logger
	wg       sync.WaitGroup
}

// NewInMemoryScheduler creates a scheduler with no registered handlers.
func NewInMemoryScheduler(log *slog.Logger) *InMemoryScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryScheduler{
		handlers: make(map[string]JobFunc),
		pending:  make(map[string]int),
		timers:   make(map[int]*time.Timer),
		log:      log,
	}
}

// Register binds a handler to a job name. Jobs enqueued for an unregistered
// name are dropped with a log entry when they fire.
func (s *InMemoryScheduler) Register(job string, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[job] = fn
}

func jobKey(job string, args []string) string {
	return job + "|" + strings.Join(args, ",")
}

// EnqueueOnce queues job for immediate asynchronous execution.
func (s *InMemoryScheduler) EnqueueOnce(ctx context.Context, job string, args []string, dedup bool) error {
	return s.schedule(job, args, 0, dedup)
}

// ScheduleAt queues job for execution at or after the given time.
func (s *InMemoryScheduler) ScheduleAt(ctx context.Context, at time.Time, job string, args []string) error {
	return s.schedule(job, args, time.Until(at), false)
}

// HasPending reports whether a matching job is queued and not yet started.
func (s *InMemoryScheduler) HasPending(_ context.Context, job string, args []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[jobKey(job, args)] > 0, nil
}

// Version reports the backend capability version.
func (s *InMemoryScheduler) Version() int { return memoryVersion }

func (s *InMemoryScheduler) schedule(job string, args []string, delay time.Duration, dedup bool) error {
	key := jobKey(job, args)

	s.mu.Lock()
	if dedup && s.pending[key] > 0 {
		s.mu.Unlock()
		return nil
	}
	s.pending[key]++
	s.mu.Unlock()

	if delay < 0 {
		delay = 0
	}

	s.wg.Add(1)

	// The timer is registered under the same lock its callback takes
	// first, so a zero-delay job cannot fire before it is tracked. Fired
	// timers remove themselves so the map stays bounded by queue depth.
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	t := time.AfterFunc(delay, func() {
		defer s.wg.Done()

		s.mu.Lock()
		delete(s.timers, id)
		s.pending[key]--
		if s.pending[key] <= 0 {
			delete(s.pending, key)
		}
		fn, ok := s.handlers[job]
		s.mu.Unlock()

		if !ok {
			s.log.Warn("no handler registered for job", "job", job)
			return
		}
		if err := fn(context.Background(), args); err != nil {
			s.log.Error("scheduled job failed", "job", job, "args", args, "err", err)
		}
	})
	s.timers[id] = t
	s.mu.Unlock()
	return nil
}

// Wait blocks until all queued jobs have run. Test helper.
func (s *InMemoryScheduler) Wait() {
	s.wg.Wait()
}

// Stop cancels timers that have not fired yet.
func (s *InMemoryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.pending = make(map[string]int)
}

// Ensure InMemoryScheduler implements Scheduler
var _ Scheduler = (*InMemoryScheduler)(nil)

// Package scheduler defines the deferred-job contract the reconciliation
// core uses to run delayed and asynchronous poll retrievals, plus an
// in-memory implementation for single-instance deployments and tests.
package scheduler

import (
	"context"
	"time"
)

// JobFunc executes one scheduled job. args are the enqueue-time arguments
// (for poll jobs, the order id). A returned error is logged by the runner;
// jobs are never retried by the scheduler itself.
type JobFunc func(ctx context.Context, args []string) error

// Scheduler is the deferred-execution contract consumed by the core.
// Implementations back onto whatever job queue the deployment already runs.
type Scheduler interface {
	// EnqueueOnce queues job for immediate asynchronous execution. With
	// dedup set, a job with identical name and args that is already pending
	// is not queued again.
	EnqueueOnce(ctx context.Context, job string, args []string, dedup bool) error

	// ScheduleAt queues job for execution at or after the given time.
	ScheduleAt(ctx context.Context, at time.Time, job string, args []string) error

	// HasPending reports whether a job with this name and args is queued
	// and not yet started.
	HasPending(ctx context.Context, job string, args []string) (bool, error)

	// Version is the backend's capability version. Callers gate features
	// (such as dedup-on-enqueue) on a minimum version.
	Version() int
}

package swishpay

import (
	"context"
	"log/slog"
	"time"

	"github.com/commercekit/swishpay/ledger"
	"github.com/commercekit/swishpay/scheduler"
)

// JobRetrievePayment is the scheduler job that polls the provider for a
// transaction's current state and feeds it through the state machine.
// Args: the order id.
const JobRetrievePayment = "swishpay_retrieve_payment"

// pollFlagKey is the ledger entry marking that a poll is already queued for
// an order. It closes the race between the scheduler pending-query and the
// enqueue when a wait request and an automatic trigger arrive together.
func pollFlagKey(orderID string) string {
	return "retrieve_queued:" + orderID
}

// Dispatcher ensures a transaction eventually reaches a terminal status even
// if no callback ever arrives. It schedules the unconditional backstop poll
// at creation time and opportunistic polls while the shopper's browser is
// waiting.
type Dispatcher struct {
	cfg   *Config
	sched scheduler.Scheduler
	flags ledger.Store
	log   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given scheduler and ledger.
func NewDispatcher(cfg *Config, sched scheduler.Scheduler, flags ledger.Store, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{cfg: cfg, sched: sched, flags: flags, log: log}
}

// ScheduleBackstop queues the fixed-delay poll scheduled unconditionally
// after every payment creation. It is the safety net for lost callbacks;
// nothing later cancels it, the poll is simply a no-op once the order is
// terminal.
func (d *Dispatcher) ScheduleBackstop(ctx context.Context, orderID string) error {
	return d.sched.ScheduleAt(ctx, time.Now().Add(d.cfg.BackstopDelay), JobRetrievePayment, []string{orderID})
}

// RequestPoll opportunistically queues an immediate poll for an order whose
// shopper is actively waiting. It is a best-effort accelerator: when gating
// rejects the request the backstop poll still guarantees reconciliation.
func (d *Dispatcher) RequestPoll(ctx context.Context, orderID string) error {
	if !d.cfg.PollForResponse {
		return nil
	}
	if d.sched.Version() < minSchedulerVersion {
		return nil
	}

	args := []string{orderID}

	if d.cfg.ImprovedQueueHandling {
		pending, err := d.sched.HasPending(ctx, JobRetrievePayment, args)
		if err != nil {
			return err
		}
		if pending {
			return nil
		}
		if _, queued, err := d.flags.Get(ctx, pollFlagKey(orderID)); err != nil {
			return err
		} else if queued {
			return nil
		}

		d.log.Debug("queuing payment for retrieval", "order", orderID)
		if err := d.sched.EnqueueOnce(ctx, JobRetrievePayment, args, true); err != nil {
			return err
		}
		return d.flags.Set(ctx, pollFlagKey(orderID), "1", d.cfg.PollFlagTTL)
	}

	pending, err := d.sched.HasPending(ctx, JobRetrievePayment, args)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}
	d.log.Debug("queuing payment for retrieval", "order", orderID)
	return d.sched.ScheduleAt(ctx, time.Now().Add(d.cfg.LegacyPollDelay), JobRetrievePayment, args)
}

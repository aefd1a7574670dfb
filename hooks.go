package swishpay

import (
	"context"
)

// ============================================================================
// Lifecycle hooks
// ============================================================================

// PaymentCompleteHook runs after a payment reaches PAID and fulfillment has
// been triggered. Hook errors are logged and do not affect the transition.
type PaymentCompleteHook func(ctx context.Context, order OrderRecord, n *Notification) error

// RefundCompleteHook runs after a refund confirmation has been recorded on
// the order. Hook errors are logged and do not affect the transition.
type RefundCompleteHook func(ctx context.Context, order OrderRecord, n *Notification) error

// OnPaymentComplete registers a hook to execute when a payment completes.
func (p *Processor) OnPaymentComplete(hook PaymentCompleteHook) *Processor {
	p.paymentCompleteHooks = append(p.paymentCompleteHooks, hook)
	return p
}

// OnRefundComplete registers a hook to execute when a refund completes.
func (p *Processor) OnRefundComplete(hook RefundCompleteHook) *Processor {
	p.refundCompleteHooks = append(p.refundCompleteHooks, hook)
	return p
}

func (p *Processor) firePaymentComplete(ctx context.Context, order OrderRecord, n *Notification) {
	for _, hook := range p.paymentCompleteHooks {
		if err := hook(ctx, order, n); err != nil {
			p.log.Error("payment-complete hook failed", "order", order.ID(), "err", err)
		}
	}
}

func (p *Processor) fireRefundComplete(ctx context.Context, order OrderRecord, n *Notification) {
	for _, hook := range p.refundCompleteHooks {
		if err := hook(ctx, order, n); err != nil {
			p.log.Error("refund-complete hook failed", "order", order.ID(), "err", err)
		}
	}
}

package swishpay

import (
	"context"
	"fmt"
	"log/slog"
)

// PaymentMethodID is the payment-method identifier this gateway registers
// under in the order subsystem. A notification for an order carrying any
// other method is ignored apart from a one-time audit note.
const PaymentMethodID = "swish"

// Processor is the transaction state machine. Given a notification and the
// order's persisted status it computes the next status and applies the side
// effects to the order record.
//
// Every guard compares against the persisted current status, which makes
// applying the same notification twice a no-op. That is the sole mechanism
// enforcing at-most-once application of each semantic transition: webhook
// delivery and poll retrieval may both run, in any order, for the same
// notification.
type Processor struct {
	cfg *Config
	log *slog.Logger

	paymentCompleteHooks []PaymentCompleteHook
	refundCompleteHooks  []RefundCompleteHook
}

// NewProcessor creates a state machine bound to the merchant configuration.
func NewProcessor(cfg *Config, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{cfg: cfg, log: log}
}

// transactionWord is the audit-note noun, switched in sandbox mode so test
// traffic is recognizable in the order history.
func (p *Processor) transactionWord() string {
	if p.cfg.Mode == ModeSandbox {
		return "Test-transaction"
	}
	return "Transaction"
}

func (p *Processor) paymentWord() string {
	if p.cfg.Mode == ModeSandbox {
		return "Test-payment"
	}
	return "Payment"
}

// Apply runs one notification through the state machine and persists the
// order. It never returns an error for a semantic no-op: duplicates and
// already-terminal orders simply pass through.
func (p *Processor) Apply(ctx context.Context, order OrderRecord, n *Notification) error {
	current := order.Status()

	p.log.Debug("processing notification",
		"order", order.ID(), "status", n.Status, "current", string(current))

	// Late notifications can race a manual order edit that moved the order
	// to another payment method. Record that once and touch nothing else.
	if order.PaymentMethod() != PaymentMethodID {
		p.log.Debug("payment method is no longer swish", "order", order.ID(), "method", order.PaymentMethod())
		if !order.MethodSwitched() {
			order.Note(fmt.Sprintf("Payment method switched from Swish to %s", order.PaymentMethod()))
			order.SetMethodSwitched(true)
			return order.Save()
		}
		return nil
	}

	switch n.Status {
	case "DECLINED":
		if current != StatusDeclined {
			order.SetStatus(StatusDeclined)
			order.Note(fmt.Sprintf("%s declined by user", p.paymentWord()))
			order.UpdateStatus(WorkflowFailed)
		}

	case "ERROR":
		if TransactionStatus(n.ErrorCode) != current {
			p.log.Debug("provider reported error", "order", order.ID(), "code", n.ErrorCode)
			order.SetStatus(TransactionStatus(n.ErrorCode))
			order.Note(n.ErrorCode + " - " + StatusText(n.ErrorCode))
			order.UpdateStatus(WorkflowFailed)
		}

	case "DEBITED":
		if current != StatusDebited {
			order.Note(fmt.Sprintf("Merchant account debited - %s ID: %s", p.transactionWord(), n.ID))
			order.SetStatus(StatusDebited)
		}

	case "PAID":
		if n.Refund() {
			order.Note(fmt.Sprintf("Refund to customer confirmed - %s ID: %s", p.transactionWord(), n.ID))
			order.SetRefundID(refundReference(n))
			p.fireRefundComplete(ctx, order, n)
		} else if order.PaymentReference() == "" && current != StatusPaid {
			order.Note(fmt.Sprintf("Payment confirmed - %s ID: %s", p.transactionWord(), n.ID))
			order.SetStatus(StatusPaid)
			order.SetPaymentReference(n.PaymentReference)
			order.SetMerchantAlias(p.cfg.EffectiveMerchantAlias())
			order.MarkPaid()
			p.firePaymentComplete(ctx, order, n)
		}
	}

	return order.Save()
}

// refundReference picks the provider identifier recorded as the order's
// refund id. Refund notifications carry their own paymentReference; some
// provider versions only set id.
func refundReference(n *Notification) string {
	if n.PaymentReference != "" {
		return n.PaymentReference
	}
	return n.ID
}

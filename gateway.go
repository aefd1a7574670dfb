package swishpay

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/commercekit/swishpay/ledger"
	"github.com/commercekit/swishpay/scheduler"
)

// Gateway wires the provider client, order store, state machine and
// dispatcher into the operations the storefront calls: payment creation,
// refunds, the shopper wait poll, callback handling and manual retrieval.
//
// One Gateway is constructed per process from an explicit Config; all
// coordination between requests goes through the order store and the
// idempotency ledger, never through Gateway state.
type Gateway struct {
	cfg        *Config
	client     ProviderClient
	orders     OrderStore
	dispatcher *Dispatcher
	processor  *Processor
	log        *slog.Logger
}

// NewGateway constructs a gateway. The processor is reachable via
// Processor() for hook registration.
func NewGateway(cfg *Config, client ProviderClient, orders OrderStore, sched scheduler.Scheduler, flags ledger.Store, log *slog.Logger) *Gateway {
	if log == nil {
		log = NewLogger(cfg.Debug)
	}
	return &Gateway{
		cfg:        cfg,
		client:     client,
		orders:     orders,
		dispatcher: NewDispatcher(cfg, sched, flags, log),
		processor:  NewProcessor(cfg, log),
		log:        log,
	}
}

// Processor exposes the state machine for lifecycle-hook registration.
func (g *Gateway) Processor() *Processor { return g.processor }

// Config exposes the gateway settings to transport adapters.
func (g *Gateway) Config() *Config { return g.cfg }

// Registrar binds job names to handlers on a scheduler backend.
type Registrar interface {
	Register(job string, fn scheduler.JobFunc)
}

// RegisterJobs binds the gateway's poll job to the scheduler backend.
func (g *Gateway) RegisterJobs(r Registrar) {
	r.Register(JobRetrievePayment, g.pollJob)
}

// NewInstructionID generates a provider-acceptable correlation id:
// 32 uppercase hex characters, unique per payment attempt.
func NewInstructionID() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// callbackURL addresses the public notification endpoint for one order,
// preserving any query parameters already on the configured URL.
func (g *Gateway) callbackURL(orderID string) string {
	u, err := url.Parse(g.cfg.CallbackURL)
	if err != nil {
		return g.cfg.CallbackURL + "?order_id=" + url.QueryEscape(orderID)
	}
	q := u.Query()
	q.Set("order_id", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}

// ProcessPayment initiates a payment for an order. payerAlias carries the
// shopper's wallet number for e-payments and is empty for app-handoff
// (m-payment) requests, where the returned PaymentRequestToken opens the
// wallet app instead.
//
// Create is never retried here: on failure the error is surfaced and the
// shopper retries the checkout explicitly.
func (g *Gateway) ProcessPayment(ctx context.Context, orderID, payerAlias string) (*CheckoutResult, error) {
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if payerAlias != "" {
		if payerAlias, err = NormalizePayerAlias(payerAlias); err != nil {
			return nil, err
		}
	}

	instructionID := NewInstructionID()
	payeeAlias := g.cfg.EffectiveMerchantAlias()
	callback := g.callbackURL(orderID)

	g.log.Debug("processing payment", "order", orderID, "mode", string(g.cfg.Mode), "id", instructionID)
	order.Note("Transaction ID " + instructionID + " generated")

	payment, err := g.client.Create(ctx, order, payerAlias, payeeAlias, instructionID, callback)
	if err != nil {
		g.log.Error("payment creation failed", "order", orderID, "err", err)
		return nil, err
	}

	order.SetTransactionID(instructionID)
	order.SetTransactionLocation(payment.Location)
	order.SetStatus(StatusWaiting)
	order.Note("Payment " + instructionID + " initiated")
	order.UpdateStatus(WorkflowPending)
	if err := order.Save(); err != nil {
		return nil, err
	}

	if err := g.dispatcher.ScheduleBackstop(ctx, orderID); err != nil {
		g.log.Error("failed to schedule backstop poll", "order", orderID, "err", err)
	}

	g.log.Debug("payment initiated", "order", orderID, "id", instructionID, "callback", callback)
	return &CheckoutResult{
		Redirect:            order.ReturnURL(),
		TransactionID:       instructionID,
		PaymentRequestToken: payment.PaymentRequestToken,
	}, nil
}

// ProcessRefund initiates a merchant-triggered refund against a captured
// payment. The payee alias is the one frozen on the order at charge time,
// so the refund routes to where the funds were collected even if the
// merchant configuration has changed since.
func (g *Gateway) ProcessRefund(ctx context.Context, orderID, amount, reason string) error {
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	paymentReference := order.PaymentReference()
	if paymentReference == "" {
		return &ConfigurationError{Reason: "payment reference required for refund is missing on order " + orderID}
	}

	payeeAlias := order.MerchantAlias()
	if payeeAlias == "" {
		payeeAlias = g.cfg.EffectiveMerchantAlias()
	}
	if sandboxAlias := payeeAlias == TestMerchantAlias; sandboxAlias != (g.cfg.Mode == ModeSandbox) {
		// The charge and the refund would run against different provider
		// environments. Not blocked, but worth an operator's attention.
		g.log.Warn("refund connection mode differs from charge-time alias",
			"order", orderID, "alias", payeeAlias, "mode", string(g.cfg.Mode))
	}

	notification, err := g.client.Refund(ctx, paymentReference, order, payeeAlias, amount, g.callbackURL(orderID), reason)
	if err != nil {
		g.log.Error("refund failed", "order", orderID, "reference", paymentReference, "err", err)
		return err
	}

	g.log.Debug("refund initiated", "order", orderID, "reference", paymentReference)

	// Some provider environments answer with the refund state inline
	// instead of (or in addition to) the asynchronous callback. Both paths
	// converge on the state machine, which makes the duplicate harmless.
	if notification != nil {
		return g.processor.Apply(ctx, order, notification)
	}
	return nil
}

// HandleNotification authenticates an inbound callback body against the
// order record and, if genuine, runs it through the state machine.
//
// Authentication precedes any state mutation: a refund notification must
// carry the order's stored payment reference, any other notification must
// carry the order's transaction id. This correlation check is the protocol's
// sole authenticity mechanism; the ids are provider-issued and unguessable.
func (g *Gateway) HandleNotification(ctx context.Context, orderID string, n *Notification) error {
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if err := g.verifyNotification(order, n); err != nil {
		return err
	}

	if !g.cfg.UseCallback {
		g.log.Debug("ignoring callback, callbacks disabled", "order", orderID)
		return nil
	}

	return g.processor.Apply(ctx, order, n)
}

// VerifyNotification runs only the authenticity check, without applying the
// notification. The callback boundary uses it to reject forgeries before
// acknowledging receipt when processing is deferred off the response path.
func (g *Gateway) VerifyNotification(ctx context.Context, orderID string, n *Notification) error {
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	return g.verifyNotification(order, n)
}

func (g *Gateway) verifyNotification(order OrderRecord, n *Notification) error {
	orderID := order.ID()
	if n.Refund() {
		if ref := order.PaymentReference(); ref != n.OriginalPaymentReference {
			g.log.Warn("refund notification verification failed",
				"order", orderID, "got", n.OriginalPaymentReference, "want", ref)
			return &AuthenticationError{OrderID: orderID, Field: "originalPaymentReference", Got: n.OriginalPaymentReference, Want: ref}
		}
	} else {
		if id := order.TransactionID(); id != n.ID {
			g.log.Warn("notification verification failed", "order", orderID, "got", n.ID, "want", id)
			return &AuthenticationError{OrderID: orderID, Field: "id", Got: n.ID, Want: id}
		}
	}
	return nil
}

// WaitForPayment serves one round of the shopper's wait-page polling. It
// opportunistically queues a provider poll, then answers with the persisted
// status. RedirectURL is set once the order has somewhere to go: the
// order-received page on PAID, the payment retry page on anything else that
// is no longer waiting.
func (g *Gateway) WaitForPayment(ctx context.Context, trackingKey string) *WaitResponse {
	order, err := g.orders.GetByTrackingKey(ctx, trackingKey)
	if err != nil {
		g.log.Warn("wait request for unknown order", "key", trackingKey, "err", err)
		return &WaitResponse{Status: string(StatusError), Message: genericStatusText}
	}

	if err := g.dispatcher.RequestPoll(ctx, order.ID()); err != nil {
		g.log.Error("failed to queue opportunistic poll", "order", order.ID(), "err", err)
	}

	status := order.Status()
	resp := &WaitResponse{Status: string(status), Message: StatusText(string(status))}

	switch status {
	case StatusPaid:
		resp.RedirectURL = order.ReturnURL()
	case StatusWaiting:
		// keep polling
	default:
		resp.RedirectURL = order.CheckoutPaymentURL()
	}

	g.log.Debug("wait for payment", "order", order.ID(), "status", resp.Status)
	return resp
}

// RetrievePayment is the poll path: fetch the transaction's current state
// from the provider and feed it through the state machine. Retrieval
// failures are wrapped as ReconciliationError; the caller logs and moves
// on, relying on the backstop poll or a later callback.
func (g *Gateway) RetrievePayment(ctx context.Context, orderID string) error {
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return &ReconciliationError{OrderID: orderID, Err: err}
	}

	location := order.TransactionLocation()
	if location == "" {
		return &ReconciliationError{OrderID: orderID, Err: &ConfigurationError{Reason: "no transaction location recorded"}}
	}

	n, err := g.client.Retrieve(ctx, location)
	if err != nil {
		return &ReconciliationError{OrderID: orderID, Err: err}
	}

	g.log.Debug("retrieved transaction", "order", orderID, "status", n.Status)
	return g.processor.Apply(ctx, order, n)
}

// pollJob adapts RetrievePayment to the scheduler contract. A failed
// retrieve ends the job without rescheduling: the unconditional backstop
// poll remains the safety net, and hammering the provider with retries is
// deliberately avoided.
func (g *Gateway) pollJob(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return &ConfigurationError{Reason: "poll job enqueued without an order id"}
	}
	if err := g.RetrievePayment(ctx, args[0]); err != nil {
		g.log.Warn("failed to retrieve transaction", "order", args[0], "err", err)
	}
	return nil
}

// RetrieveTransaction is the admin-triggered manual retrieval. Unlike the
// poll path the outcome is annotated on the order either way, so the
// merchant sees that the action ran.
func (g *Gateway) RetrieveTransaction(ctx context.Context, orderID string) error {
	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	n, err := g.client.Retrieve(ctx, order.TransactionLocation())
	if err != nil {
		order.Note("Transaction failed to retrieve from Swish")
		if saveErr := order.Save(); saveErr != nil {
			g.log.Error("failed to save order", "order", orderID, "err", saveErr)
		}
		return err
	}

	if err := g.processor.Apply(ctx, order, n); err != nil {
		return err
	}
	order.Note("Transaction retrieved from Swish")
	return order.Save()
}

package swishpay

import (
	"context"
)

// ============================================================================
// Provider Client (network boundary)
// ============================================================================

// ProviderClient is one connection to the wallet provider. There is one
// implementation per connection mode (production, sandbox, legacy
// certificate); the variant is selected once at configuration-load time and
// all three satisfy this interface.
type ProviderClient interface {
	// Create initiates a payment request. payerAlias is empty for app-handoff
	// (m-payment) requests. Create is NOT idempotent and must not be retried
	// by the caller: a duplicate create risks charging the shopper twice.
	Create(ctx context.Context, order OrderRecord, payerAlias, payeeAlias, correlationID, callbackURL string) (*PaymentResult, error)

	// Retrieve fetches the current state of a transaction by its provider
	// location URL. Idempotent and safe to retry.
	Retrieve(ctx context.Context, location string) (*Notification, error)

	// Refund initiates a refund against a captured payment. Like Create it
	// is not retried on failure.
	Refund(ctx context.Context, paymentReference string, order OrderRecord, payeeAlias, amount, callbackURL, reason string) (*Notification, error)

	// Mode reports which provider environment this client talks to.
	Mode() ConnectionMode
}

// ============================================================================
// Order Record (owned by the store's order subsystem)
// ============================================================================

// OrderRecord is the narrow mutation contract the reconciliation core holds
// on a store order. Implementations persist nothing until Save is called;
// every state-machine branch ends with Save.
//
// No compare-and-set is assumed: concurrent notifications may read the same
// "before" status and both apply the same transition. That race is accepted
// because every downstream effect (notes, MarkPaid) is idempotent at the
// business level.
type OrderRecord interface {
	ID() string
	PaymentMethod() string

	// Amount and Currency of the original charge, formatted for the provider.
	Amount() string
	Currency() string

	Status() TransactionStatus
	SetStatus(TransactionStatus)

	// TransactionID is the client-generated correlation id, set once at
	// creation and read-only afterwards.
	TransactionID() string
	SetTransactionID(string)

	// TransactionLocation is the provider-returned retrieval URL.
	TransactionLocation() string
	SetTransactionLocation(string)

	// PaymentReference is the provider-issued identifier recorded on the
	// first PAID notification; immutable once set. It is the refund
	// correlation key.
	PaymentReference() string
	SetPaymentReference(string)

	// MerchantAlias is the payee number frozen at charge time, so that a
	// configuration change never redirects a historical refund.
	MerchantAlias() string
	SetMerchantAlias(string)

	RefundID() string
	SetRefundID(string)

	// MethodSwitched is the one-time audit marker set when a notification
	// arrives after the order's payment method was changed away from this
	// gateway.
	MethodSwitched() bool
	SetMethodSwitched(bool)

	// Note appends to the order's free-text audit trail.
	Note(text string)

	// MarkPaid triggers downstream fulfillment in the order subsystem.
	// The order subsystem guarantees capture accounting is idempotent.
	MarkPaid()

	// UpdateStatus moves the order through the store's own workflow states.
	UpdateStatus(WorkflowState)

	// ReturnURL is the order-received page; CheckoutPaymentURL is the page
	// where the shopper can retry payment.
	ReturnURL() string
	CheckoutPaymentURL() string

	Save() error
}

// OrderStore looks up order records for the callback and wait endpoints.
type OrderStore interface {
	Get(ctx context.Context, orderID string) (OrderRecord, error)
	// GetByTrackingKey resolves the tracking key embedded in the
	// checkout-pay URL (e.g. "wc_order_abc123") to its order.
	GetByTrackingKey(ctx context.Context, key string) (OrderRecord, error)
}

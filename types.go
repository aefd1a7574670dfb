package swishpay

import (
	"encoding/json"
	"strings"
)

// TransactionStatus is the persisted reconciliation state of one payment
// attempt. The zero value means no transaction has been initiated yet.
//
// WAITING is the sole initial state, set when the payment request is created.
// PAID, DECLINED and provider error codes are terminal for the original
// charge; DEBITED is a non-terminal bookkeeping marker. A provider error code
// (e.g. "RF07") is stored verbatim as the status.
type TransactionStatus string

const (
	StatusUnset    TransactionStatus = ""
	StatusWaiting  TransactionStatus = "WAITING"
	StatusPaid     TransactionStatus = "PAID"
	StatusDeclined TransactionStatus = "DECLINED"
	StatusDebited  TransactionStatus = "DEBITED"
	StatusError    TransactionStatus = "ERROR"
)

// Terminal reports whether no further transition is expected for the
// original charge. Error-code statuses (anything outside the named set)
// are terminal.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case StatusUnset, StatusWaiting, StatusDebited:
		return false
	default:
		return true
	}
}

// ConnectionMode selects which provider environment a client talks to.
// The mode is fixed at configuration-load time and must not change within
// one transaction's lifecycle.
type ConnectionMode string

const (
	ModeProduction ConnectionMode = "production"
	ModeSandbox    ConnectionMode = "sandbox"
	ModeLegacy     ConnectionMode = "legacy"
)

// ParseConnectionMode maps a configuration string to a ConnectionMode,
// defaulting to production for unknown values.
func ParseConnectionMode(s string) ConnectionMode {
	switch ConnectionMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSandbox:
		return ModeSandbox
	case ModeLegacy:
		return ModeLegacy
	default:
		return ModeProduction
	}
}

// TestMerchantAlias is the fixed payee number used by the sandbox
// environment regardless of the configured merchant alias.
const TestMerchantAlias = "1234679304"

// Notification is a status update about a transaction, delivered either by
// the provider's callback or retrieved by a poll. The two channels carry the
// same document and are fully interchangeable.
//
// A refund notification is distinguished by a non-empty
// OriginalPaymentReference pointing back at the payment it reverses.
type Notification struct {
	ID                       string `json:"id"`
	Status                   string `json:"status"`
	PaymentReference         string `json:"paymentReference,omitempty"`
	OriginalPaymentReference string `json:"originalPaymentReference,omitempty"`
	ErrorCode                string `json:"errorCode,omitempty"`
	ErrorMessage             string `json:"errorMessage,omitempty"`
	PayerAlias               string `json:"payerAlias,omitempty"`
	PayeeAlias               string `json:"payeeAlias,omitempty"`

	// Amount is a JSON number on the wire; json.Number keeps the provider's
	// decimal representation intact.
	Amount   json.Number `json:"amount,omitempty"`
	Currency string      `json:"currency,omitempty"`

	Message     string `json:"message,omitempty"`
	DateCreated string `json:"dateCreated,omitempty"`
	DatePaid    string `json:"datePaid,omitempty"`
}

// Refund reports whether the notification confirms a refund rather than
// an original charge.
func (n *Notification) Refund() bool {
	return n.OriginalPaymentReference != ""
}

// PaymentResult is returned by ProviderClient.Create. Location is the
// provider URL from which the transaction's current state can be retrieved.
// PaymentRequestToken is only set for app-handoff (m-payment) requests and
// is embedded in the swish:// URL opened on the shopper's device.
type PaymentResult struct {
	Location            string
	PaymentRequestToken string
}

// WaitResponse is the payload served to the shopper's polling wait page.
// RedirectURL is set once the transaction has left the WAITING state:
// to the order-received page on PAID, back to the payment retry page on
// any other terminal outcome.
type WaitResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// CheckoutResult is what ProcessPayment hands back to the checkout flow.
type CheckoutResult struct {
	Redirect            string
	TransactionID       string
	PaymentRequestToken string
}

// WorkflowState is the order subsystem's coarse order lifecycle state,
// distinct from the provider-level TransactionStatus.
type WorkflowState string

const (
	WorkflowPending WorkflowState = "pending"
	WorkflowFailed  WorkflowState = "failed"
)

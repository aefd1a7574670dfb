package swishpay

import "fmt"

// ProviderError is a transport or business failure reported by the payment
// provider. HTTPStatus is zero for pure transport failures. Code carries the
// provider's machine-readable error code when one was returned.
//
// Creation and refund calls surface ProviderError to the caller and are
// never retried automatically: retrying a payment creation risks a double
// charge, so the shopper or the merchant retries explicitly.
type ProviderError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider: %s: %s", e.Code, e.Message)
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("provider: http %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("provider: %s", e.Message)
}

// NewProviderError creates a provider error with a machine-readable code.
func NewProviderError(status int, code, message string) *ProviderError {
	return &ProviderError{HTTPStatus: status, Code: code, Message: message}
}

// ReconciliationError wraps a retrieve failure during a scheduled poll.
// It is logged and swallowed by the poll job: the unconditional backstop
// poll or a later callback can still complete the transaction.
type ReconciliationError struct {
	OrderID string
	Err     error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation: order %s: %v", e.OrderID, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// AuthenticationError is a correlation mismatch on an inbound notification.
// The callback boundary rejects it with HTTP 403 and applies no state change.
type AuthenticationError struct {
	OrderID string
	Field   string
	Got     string
	Want    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication: order %s: %s mismatch (%q vs %q)", e.OrderID, e.Field, e.Got, e.Want)
}

// ConfigurationError is a precondition failure local to the merchant's own
// data, e.g. a refund attempted on an order with no recorded payment
// reference. It fails fast and is surfaced to the admin.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

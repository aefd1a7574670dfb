package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	swishpay "github.com/commercekit/swishpay"
)

// Client talks to one provider environment. All three connection modes use
// the same wire protocol; they differ in endpoint and transport credentials.
type Client struct {
	mode       swishpay.ConnectionMode
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func newClient(cfg *swishpay.Config, baseURL string, tlsConf *tls.Config, log *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if tlsConf != nil {
		httpClient.Transport = &http.Transport{TLSClientConfig: tlsConf}
	}

	return &Client{
		mode:       cfg.Mode,
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// Mode reports which provider environment this client talks to.
func (c *Client) Mode() swishpay.ConnectionMode { return c.mode }

// paymentRequest is the outbound body for payment creation.
type paymentRequest struct {
	PayeePaymentReference string `json:"payeePaymentReference"`
	CallbackURL           string `json:"callbackUrl"`
	PayerAlias            string `json:"payerAlias,omitempty"`
	PayeeAlias            string `json:"payeeAlias"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Message               string `json:"message,omitempty"`
}

// refundRequest is the outbound body for refund creation. The merchant is
// the paying side of a refund, so the frozen alias travels as payerAlias.
type refundRequest struct {
	OriginalPaymentReference string `json:"originalPaymentReference"`
	PayerPaymentReference    string `json:"payerPaymentReference,omitempty"`
	CallbackURL              string `json:"callbackUrl"`
	PayerAlias               string `json:"payerAlias"`
	Amount                   string `json:"amount"`
	Currency                 string `json:"currency"`
	Message                  string `json:"message,omitempty"`
}

// apiError is one element of the provider's error response array.
type apiError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Create registers a payment request under the caller-generated correlation
// id. The provider answers 201 with a Location header for later retrieval
// and, for app-handoff requests, a PaymentRequestToken header.
func (c *Client) Create(ctx context.Context, order swishpay.OrderRecord, payerAlias, payeeAlias, correlationID, callbackURL string) (*swishpay.PaymentResult, error) {
	body := paymentRequest{
		PayeePaymentReference: order.ID(),
		CallbackURL:           callbackURL,
		PayerAlias:            payerAlias,
		PayeeAlias:            payeeAlias,
		Amount:                order.Amount(),
		Currency:              order.Currency(),
		Message:               "Order " + order.ID(),
	}

	resp, responseBody, err := c.do(ctx, "PUT", "/api/v2/paymentrequests/"+correlationID, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, c.apiErrorFrom(resp, responseBody)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, swishpay.NewProviderError(resp.StatusCode, "", "payment created but no Location header returned")
	}

	return &swishpay.PaymentResult{
		Location:            location,
		PaymentRequestToken: resp.Header.Get("PaymentRequestToken"),
	}, nil
}

// Retrieve fetches the transaction document at its provider location.
func (c *Client) Retrieve(ctx context.Context, location string) (*swishpay.Notification, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create retrieve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiErrorFrom(resp, responseBody)
	}

	var n swishpay.Notification
	if err := json.Unmarshal(responseBody, &n); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return &n, nil
}

// Refund registers a refund against a captured payment. Some environments
// answer with the refund document inline; when only a Location comes back
// the refund is fetched immediately so the caller always sees its state.
func (c *Client) Refund(ctx context.Context, paymentReference string, order swishpay.OrderRecord, payeeAlias, amount, callbackURL, reason string) (*swishpay.Notification, error) {
	body := refundRequest{
		OriginalPaymentReference: paymentReference,
		PayerPaymentReference:    order.ID(),
		CallbackURL:              callbackURL,
		PayerAlias:               payeeAlias,
		Amount:                   amount,
		Currency:                 order.Currency(),
		Message:                  reason,
	}

	resp, responseBody, err := c.do(ctx, "PUT", "/api/v2/refunds/"+swishpay.NewInstructionID(), body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, c.apiErrorFrom(resp, responseBody)
	}

	if len(responseBody) > 0 {
		var n swishpay.Notification
		if err := json.Unmarshal(responseBody, &n); err == nil && n.ID != "" {
			return &n, nil
		}
	}

	if location := resp.Header.Get("Location"); location != "" {
		return c.Retrieve(ctx, location)
	}
	return nil, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, []byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("provider request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp, responseBody, nil
}

// apiErrorFrom converts a non-success provider response to a ProviderError,
// carrying the first machine-readable code from the error array when the
// body has one.
func (c *Client) apiErrorFrom(resp *http.Response, responseBody []byte) error {
	var apiErrors []apiError
	if err := json.Unmarshal(responseBody, &apiErrors); err == nil && len(apiErrors) > 0 {
		return swishpay.NewProviderError(resp.StatusCode, apiErrors[0].ErrorCode, apiErrors[0].ErrorMessage)
	}
	return swishpay.NewProviderError(resp.StatusCode, "", string(responseBody))
}

// legacyTLSConfig loads the merchant's client certificate for the legacy
// direct connection, plus the provider CA bundle when one is configured.
func legacyTLSConfig(certFile, keyFile, caFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}

	conf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", caFile)
		}
		conf.RootCAs = pool
	}

	return conf, nil
}

var _ swishpay.ProviderClient = (*Client)(nil)

// Package orderstore provides order-record backends for the gateway: an
// in-memory store for single-process servers and tests, and a MySQL store
// for deployments with a real order database.
package orderstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	swishpay "github.com/commercekit/swishpay"
)

// Order is an in-memory order record.
type Order struct {
	mu sync.Mutex

	OrderID     string
	TrackingKey string
	Method      string
	Total       string
	Cur         string

	TxStatus   swishpay.TransactionStatus
	TxID       string
	TxLocation string
	PayRef     string
	Alias      string
	Refund     string
	Switched   bool
	Workflow   swishpay.WorkflowState
	PaidAt     *time.Time

	OrderReceivedURL string
	CheckoutPayURL   string

	Notes []string
}

// NewOrder creates an order ready for checkout. The tracking key is derived
// from the order id the way store checkouts embed it in the pay URL.
func NewOrder(id, total, currency string) *Order {
	return &Order{
		OrderID:          id,
		TrackingKey:      "wc_order_" + id,
		Method:           swishpay.PaymentMethodID,
		Total:            total,
		Cur:              currency,
		Workflow:         swishpay.WorkflowPending,
		OrderReceivedURL: "/order-received/" + id,
		CheckoutPayURL:   "/checkout/pay/" + id,
	}
}

func (o *Order) ID() string { return o.OrderID }

func (o *Order) PaymentMethod() string { return o.Method }
func (o *Order) Amount() string        { return o.Total }
func (o *Order) Currency() string      { return o.Cur }

func (o *Order) Status() swishpay.TransactionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.TxStatus
}

func (o *Order) SetStatus(s swishpay.TransactionStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TxStatus = s
}

func (o *Order) TransactionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.TxID
}

func (o *Order) SetTransactionID(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TxID = id
}

func (o *Order) TransactionLocation() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.TxLocation
}

func (o *Order) SetTransactionLocation(l string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TxLocation = l
}

func (o *Order) PaymentReference() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.PayRef
}

func (o *Order) SetPaymentReference(r string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.PayRef = r
}

func (o *Order) MerchantAlias() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Alias
}

func (o *Order) SetMerchantAlias(a string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Alias = a
}

func (o *Order) RefundID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Refund
}

func (o *Order) SetRefundID(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Refund = id
}

func (o *Order) MethodSwitched() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Switched
}

func (o *Order) SetMethodSwitched(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Switched = v
}

func (o *Order) Note(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Notes = append(o.Notes, text)
}

func (o *Order) MarkPaid() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.PaidAt = &now
}

func (o *Order) UpdateStatus(s swishpay.WorkflowState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Workflow = s
}

func (o *Order) ReturnURL() string          { return o.OrderReceivedURL }
func (o *Order) CheckoutPaymentURL() string { return o.CheckoutPayURL }

// Save is a no-op: the order is already the live record.
func (o *Order) Save() error { return nil }

var _ swishpay.OrderRecord = (*Order)(nil)

// MemoryStore holds orders by id and tracking key.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Order
	byKey map[string]*Order
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*Order),
		byKey: make(map[string]*Order),
	}
}

// Add registers an order.
func (s *MemoryStore) Add(o *Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.OrderID] = o
	s.byKey[o.TrackingKey] = o
}

// Get returns the order with the given id.
func (s *MemoryStore) Get(_ context.Context, orderID string) (swishpay.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	return o, nil
}

// GetByTrackingKey resolves the checkout-pay URL key to its order.
func (s *MemoryStore) GetByTrackingKey(_ context.Context, key string) (swishpay.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byKey[key]
	if !ok {
		return nil, fmt.Errorf("no order for key %s", key)
	}
	return o, nil
}

var _ swishpay.OrderStore = (*MemoryStore)(nil)

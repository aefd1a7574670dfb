package orderstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swishpay "github.com/commercekit/swishpay"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	order := NewOrder("42", "100.00", "SEK")
	store.Add(order)

	got, err := store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", got.ID())
	assert.Equal(t, swishpay.PaymentMethodID, got.PaymentMethod())

	byKey, err := store.GetByTrackingKey(context.Background(), "wc_order_42")
	require.NoError(t, err)
	assert.Same(t, got, byKey)

	_, err = store.Get(context.Background(), "missing")
	assert.Error(t, err)
	_, err = store.GetByTrackingKey(context.Background(), "wc_order_missing")
	assert.Error(t, err)
}

func TestOrder_Mutations(t *testing.T) {
	o := NewOrder("42", "100.00", "SEK")

	o.SetStatus(swishpay.StatusWaiting)
	o.SetTransactionID("U")
	o.SetTransactionLocation("L")
	o.Note("Payment U initiated")

	assert.Equal(t, swishpay.StatusWaiting, o.Status())
	assert.Equal(t, "U", o.TransactionID())
	assert.Equal(t, "L", o.TransactionLocation())
	assert.Equal(t, []string{"Payment U initiated"}, o.Notes)

	require.Nil(t, o.PaidAt)
	o.MarkPaid()
	assert.NotNil(t, o.PaidAt)
	require.NoError(t, o.Save())
}

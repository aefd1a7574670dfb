package swishpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Start your Swish app and authorize the payment", StatusText("WAITING"))
	assert.Equal(t, "The payment was declined by the bank", StatusText("RF07"))
	assert.Equal(t, genericStatusText, StatusText("XX99"))
	assert.Equal(t, genericStatusText, StatusText(""))
}

func TestTransactionStatus_Terminal(t *testing.T) {
	assert.False(t, StatusUnset.Terminal())
	assert.False(t, StatusWaiting.Terminal())
	assert.False(t, StatusDebited.Terminal())
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusDeclined.Terminal())
	assert.True(t, TransactionStatus("RF07").Terminal())
}

func TestParseConnectionMode(t *testing.T) {
	assert.Equal(t, ModeSandbox, ParseConnectionMode("Sandbox"))
	assert.Equal(t, ModeLegacy, ParseConnectionMode(" legacy "))
	assert.Equal(t, ModeProduction, ParseConnectionMode("production"))
	assert.Equal(t, ModeProduction, ParseConnectionMode("whatever"))
}

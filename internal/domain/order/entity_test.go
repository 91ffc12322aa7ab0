package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"card", "peer_to_peer", "bank_transfer", "crypto"} {
		method, err := ParsePaymentMethod(raw)
		require.NoError(t, err)
		assert.Equal(t, PaymentMethod(raw), method)
	}

	_, err := ParsePaymentMethod("cheque")
	assert.Error(t, err)

	_, err = ParsePaymentMethod("")
	assert.Error(t, err)
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusPendingBankTransfer, PaymentStatusPaid, true},
		{PaymentStatusPendingBankTransfer, PaymentStatusFailed, true},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusFailed, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
	}

	for _, tc := range cases {
		o := &Order{PaymentStatus: tc.from}
		assert.Equal(t, tc.allowed, o.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAddressComplete(t *testing.T) {
	addr := Address{
		FirstName:    "Ada",
		AddressLine1: "12 Analytical Way",
		City:         "London",
		PostalCode:   "EC1A",
		Country:      "GB",
	}
	assert.True(t, addr.Complete())

	addr.PostalCode = ""
	assert.False(t, addr.Complete())
}

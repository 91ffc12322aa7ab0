package settlement

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

func TestPeerAdapter_OrderNumberIsTheReference(t *testing.T) {
	adapter := NewPeerAdapter("$storefront")

	artifact, err := adapter.Settle(context.Background(), &Request{OrderNumber: 10042, Total: 5000})

	require.NoError(t, err)
	assert.Equal(t, "10042", artifact.Reference)
	assert.Equal(t, "$storefront", artifact.Handle)
	assert.Equal(t, order.PaymentStatusPending, artifact.PaymentStatus)
	assert.Empty(t, artifact.RedirectURL)
}

func TestBankTransferAdapter_PendingBankTransferStatus(t *testing.T) {
	adapter := NewBankTransferAdapter()

	artifact, err := adapter.Settle(context.Background(), &Request{OrderNumber: 10042, Total: 5000})

	require.NoError(t, err)
	assert.Equal(t, "10042", artifact.Reference)
	assert.Equal(t, order.PaymentStatusPendingBankTransfer, artifact.PaymentStatus)
}

func TestCryptoAdapter_BuildsOnRampURL(t *testing.T) {
	adapter := NewCryptoAdapter("https://onramp.example.com/buy")

	artifact, err := adapter.Settle(context.Background(), &Request{
		OrderNumber: 10042,
		Total:       12345,
		Currency:    "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, "10042", artifact.Reference)
	assert.Equal(t, order.PaymentStatusPending, artifact.PaymentStatus)

	parsed, err := url.Parse(artifact.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "onramp.example.com", parsed.Host)
	assert.Equal(t, "123.45", parsed.Query().Get("amount"))
	assert.Equal(t, "USD", parsed.Query().Get("currency"))
	assert.Equal(t, "10042", parsed.Query().Get("partnerOrderId"))
}

func TestCryptoAdapter_PreservesExistingQuery(t *testing.T) {
	adapter := NewCryptoAdapter("https://onramp.example.com/buy?apiKey=pk_test")

	artifact, err := adapter.Settle(context.Background(), &Request{OrderNumber: 1, Total: 100, Currency: "USD"})

	require.NoError(t, err)
	parsed, err := url.Parse(artifact.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "pk_test", parsed.Query().Get("apiKey"))
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	dispatcher := NewDispatcher(&config.Config{})

	_, err := dispatcher.Settle(context.Background(), order.PaymentMethod("cheque"), &Request{})

	assert.Error(t, err)
}

func TestDispatcher_CoversAllPaymentMethods(t *testing.T) {
	dispatcher := NewDispatcher(&config.Config{})

	for _, method := range []order.PaymentMethod{
		order.PaymentMethodCard,
		order.PaymentMethodPeerToPeer,
		order.PaymentMethodBankTransfer,
		order.PaymentMethodCrypto,
	} {
		assert.Contains(t, dispatcher.adapters, method)
	}
}

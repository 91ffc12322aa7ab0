// internal/domain/settlement/crypto.go
package settlement

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

// CryptoAdapter settles via a crypto on-ramp: the customer is sent to a
// constructed on-ramp URL carrying the amount, currency and a partner order
// id equal to the order number. The on-ramp reports the outcome via the
// payment-status webhook.
type CryptoAdapter struct {
	onRampURL string
}

// NewCryptoAdapter creates a crypto on-ramp settlement adapter
func NewCryptoAdapter(onRampURL string) *CryptoAdapter {
	return &CryptoAdapter{onRampURL: onRampURL}
}

// Settle constructs the on-ramp redirect URL
func (a *CryptoAdapter) Settle(_ context.Context, req *Request) (*Artifact, error) {
	base, err := url.Parse(a.onRampURL)
	if err != nil {
		return nil, &Error{Method: order.PaymentMethodCrypto, Err: fmt.Errorf("invalid on-ramp URL: %w", err)}
	}

	partnerOrderID := strconv.FormatInt(req.OrderNumber, 10)

	query := base.Query()
	query.Set("amount", fmt.Sprintf("%.2f", float64(req.Total)/100))
	query.Set("currency", req.Currency)
	query.Set("partnerOrderId", partnerOrderID)
	base.RawQuery = query.Encode()

	return &Artifact{
		Reference:     partnerOrderID,
		RedirectURL:   base.String(),
		PaymentStatus: order.PaymentStatusPending,
	}, nil
}

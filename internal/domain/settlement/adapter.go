// internal/domain/settlement/adapter.go
package settlement

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// LineItem represents a priced line presented to a settlement backend. Cart
// items, add-ons and the processing fee each arrive as distinct entries.
type LineItem struct {
	Name      string `json:"name"`
	Amount    int64  `json:"amount"` // Unit amount in cents
	Quantity  int    `json:"quantity"`
	Recurring bool   `json:"recurring,omitempty"`
	Interval  string `json:"interval,omitempty"`
}

// Request represents a settlement request for an allocated order
type Request struct {
	OrderNumber     int64
	Email           string
	Currency        string
	Total           int64 // Authoritative gross total in cents
	Items           []LineItem
	ShippingName    string
	ShippingAmount  int64
	HasSubscription bool
	TestOrder       bool
}

// Artifact is what a settlement adapter hands back: either a redirect to a
// hosted payment page or a reference the customer pays against
type Artifact struct {
	Reference     string              `json:"reference"`
	RedirectURL   string              `json:"redirect_url,omitempty"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`

	// Handle is the merchant's peer-to-peer payment handle; set only by
	// the peer adapter so the customer knows where to send the payment.
	Handle string `json:"handle,omitempty"`
}

// Error wraps a settlement backend failure. The user sees a generic retry
// message; the wrapped error carries the backend detail for the logs.
type Error struct {
	Method order.PaymentMethod
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("settlement via %s failed: %v", e.Method, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Adapter turns an order plus its authoritative total into a settlement
// artifact. Adapters must not mutate any local state; recording happens
// afterwards in the ledger.
type Adapter interface {
	Settle(ctx context.Context, req *Request) (*Artifact, error)
}

// Dispatcher maps each payment method to its adapter. The table is the
// single place the closed PaymentMethod set is branched on.
type Dispatcher struct {
	adapters map[order.PaymentMethod]Adapter
}

// NewDispatcher wires the adapter table from configuration
func NewDispatcher(cfg *config.Config) *Dispatcher {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	return &Dispatcher{
		adapters: map[order.PaymentMethod]Adapter{
			order.PaymentMethodCard:         NewCardAdapter(cfg, httpClient),
			order.PaymentMethodPeerToPeer:   NewPeerAdapter(cfg.Payments.PeerHandle),
			order.PaymentMethodBankTransfer: NewBankTransferAdapter(),
			order.PaymentMethodCrypto:       NewCryptoAdapter(cfg.Payments.CryptoOnRampURL),
		},
	}
}

// Settle dispatches to the adapter for the order's payment method
func (d *Dispatcher) Settle(ctx context.Context, method order.PaymentMethod, req *Request) (*Artifact, error) {
	adapter, ok := d.adapters[method]
	if !ok {
		return nil, &Error{Method: method, Err: fmt.Errorf("no adapter registered")}
	}

	artifact, err := adapter.Settle(ctx, req)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, &Error{Method: method, Err: err}
	}
	return artifact, nil
}

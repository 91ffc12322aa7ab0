// internal/domain/settlement/reference.go
package settlement

import (
	"context"
	"strconv"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

// PeerAdapter settles via a peer-to-peer payment request. No external call
// is made: the order number is the payment reference and the customer sends
// the payment to the merchant handle out-of-band.
type PeerAdapter struct {
	handle string
}

// NewPeerAdapter creates a peer-to-peer settlement adapter
func NewPeerAdapter(handle string) *PeerAdapter {
	return &PeerAdapter{handle: handle}
}

// Settle returns the order number as the payment reference; the merchant
// handle rides along separately so the two never need to be parsed apart
func (a *PeerAdapter) Settle(_ context.Context, req *Request) (*Artifact, error) {
	return &Artifact{
		Reference:     strconv.FormatInt(req.OrderNumber, 10),
		Handle:        a.handle,
		PaymentStatus: order.PaymentStatusPending,
	}, nil
}

// BankTransferAdapter settles via bank transfer: the order is recorded as
// pending_bank_transfer and the order number doubles as the transfer
// reference
type BankTransferAdapter struct{}

// NewBankTransferAdapter creates a bank-transfer settlement adapter
func NewBankTransferAdapter() *BankTransferAdapter {
	return &BankTransferAdapter{}
}

// Settle returns the order number as the transfer reference
func (a *BankTransferAdapter) Settle(_ context.Context, req *Request) (*Artifact, error) {
	return &Artifact{
		Reference:     strconv.FormatInt(req.OrderNumber, 10),
		PaymentStatus: order.PaymentStatusPendingBankTransfer,
	}, nil
}

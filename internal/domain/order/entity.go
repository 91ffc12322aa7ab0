// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PaymentMethod represents the settlement path chosen for an order. It is a
// closed set; every dispatch site goes through ParsePaymentMethod and the
// settlement dispatch table rather than comparing raw strings.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodPeerToPeer   PaymentMethod = "peer_to_peer"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCrypto       PaymentMethod = "crypto"
)

// ParsePaymentMethod converts a raw string into a PaymentMethod
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentMethodCard, PaymentMethodPeerToPeer, PaymentMethodBankTransfer, PaymentMethodCrypto:
		return PaymentMethod(raw), nil
	default:
		return "", fmt.Errorf("unknown payment method: %q", raw)
	}
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusPendingBankTransfer PaymentStatus = "pending_bank_transfer"
	PaymentStatusPaid                PaymentStatus = "paid"
	PaymentStatusFailed              PaymentStatus = "failed"
	PaymentStatusRefunded            PaymentStatus = "refunded"
)

// Order represents the persisted order record. Created once per checkout
// attempt at orchestration time, mutated only by payment-status transitions,
// never deleted.
type Order struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	OrderNumber int64 `gorm:"uniqueIndex;not null" json:"order_number"`

	// Settlement
	PaymentMethod       PaymentMethod `gorm:"not null;size:30" json:"payment_method"`
	PaymentStatus       PaymentStatus `gorm:"not null;default:'pending'" json:"payment_status"`
	SettlementReference string        `gorm:"size:255" json:"settlement_reference"`

	// Customer contact snapshot
	Email string `gorm:"not null;size:255;index" json:"email"`
	Name  string `gorm:"size:200" json:"name"`
	Phone string `gorm:"size:30" json:"phone"`

	// Address snapshots
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	// Financial information, in cents
	SubtotalAmount  int64 `gorm:"not null" json:"subtotal_amount"`
	DiscountAmount  int64 `gorm:"default:0" json:"discount_amount"`
	AffiliateAmount int64 `gorm:"default:0" json:"affiliate_amount"`
	CreditUsed      int64 `gorm:"default:0" json:"credit_used"`
	AddOnAmount     int64 `gorm:"default:0" json:"add_on_amount"`
	ShippingAmount  int64 `gorm:"default:0" json:"shipping_amount"`
	ProcessingFee   int64 `gorm:"default:0" json:"processing_fee"`
	TotalAmount     int64 `gorm:"not null" json:"total_amount"`

	// Applied codes (snapshot strings; ledger rows carry the authoritative ids)
	DiscountCode  string `gorm:"size:50" json:"discount_code"`
	AffiliateCode string `gorm:"size:50" json:"affiliate_code"`

	ShippingMethod string `gorm:"size:50" json:"shipping_method"`
	ReferralSource string `gorm:"size:255" json:"referral_source"`
	Currency       string `gorm:"size:3;default:'USD'" json:"currency"`

	TestOrder bool                   `gorm:"default:false" json:"test_order"`
	Metadata  map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []Item         `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	PaymentEvents []PaymentEvent `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payment_events,omitempty"`
}

// Item represents an order line item snapshot
type Item struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	VariantID    *uint     `gorm:"index" json:"variant_id,omitempty"`
	Name         string    `gorm:"size:255" json:"name"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Price        int64     `gorm:"not null" json:"price"`       // Unit price in cents
	TotalPrice   int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	AddOn        bool      `gorm:"default:false" json:"add_on"`
	Subscription bool      `gorm:"default:false" json:"subscription"`
	Interval     string    `gorm:"size:20" json:"billing_interval,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentEvent tracks payment-status transitions on an order
type PaymentEvent struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	OrderID   uint          `gorm:"not null;index" json:"order_id"`
	From      PaymentStatus `gorm:"size:30" json:"from"`
	To        PaymentStatus `gorm:"not null;size:30" json:"to"`
	Note      string        `gorm:"type:text" json:"note"`
	CreatedAt time.Time     `json:"created_at"`
}

// Address represents a normalized shipping/billing address snapshot
// (embedded in Order)
type Address struct {
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:2" json:"country"` // ISO 2-letter code
}

// Complete reports whether the required address fields are all present
func (a *Address) Complete() bool {
	return a.FirstName != "" &&
		a.AddressLine1 != "" &&
		a.City != "" &&
		a.PostalCode != "" &&
		a.Country != ""
}

// TableName overrides
func (Order) TableName() string        { return "orders" }
func (Item) TableName() string         { return "order_items" }
func (PaymentEvent) TableName() string { return "payment_events" }

// GetFormattedTotal returns total amount as dollars
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CanTransitionTo reports whether a payment-status transition is allowed
func (o *Order) CanTransitionTo(to PaymentStatus) bool {
	transitions := map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:             {PaymentStatusPaid, PaymentStatusFailed},
		PaymentStatusPendingBankTransfer: {PaymentStatusPaid, PaymentStatusFailed},
		PaymentStatusPaid:                {PaymentStatusRefunded},
	}
	for _, allowed := range transitions[o.PaymentStatus] {
		if allowed == to {
			return true
		}
	}
	return false
}

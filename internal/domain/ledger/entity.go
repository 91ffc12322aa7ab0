// internal/domain/ledger/entity.go
package ledger

import (
	"time"
)

// CodeUsage records one use of a discount, affiliate or SMS code, keyed by
// the order that consumed it. The code resolution service counts these rows
// to enforce per-customer caps.
type CodeUsage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderNumber   int64     `gorm:"not null;index" json:"order_number"`
	CodeType      string    `gorm:"not null;size:20;index:idx_code_usage_lookup" json:"code_type"`
	CodeID        uint      `gorm:"not null;index:idx_code_usage_lookup" json:"code_id"`
	Code          string    `gorm:"not null;size:50" json:"code"`
	CustomerEmail string    `gorm:"size:255;index:idx_code_usage_lookup" json:"customer_email"`
	AmountSaved   int64     `gorm:"not null" json:"amount_saved"`
	CreatedAt     time.Time `json:"created_at"`
}

// Commission records the affiliate commission accrued by an order
type Commission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNumber int64     `gorm:"uniqueIndex;not null" json:"order_number"`
	AffiliateID uint      `gorm:"not null;index" json:"affiliate_id"`
	CodeID      uint      `gorm:"not null" json:"code_id"`
	BaseAmount  int64     `gorm:"not null" json:"base_amount"` // Merchandise net the rate applies to
	Rate        float64   `gorm:"not null" json:"rate"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Paid        bool      `gorm:"default:false" json:"paid"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (CodeUsage) TableName() string  { return "code_usages" }
func (Commission) TableName() string { return "commissions" }

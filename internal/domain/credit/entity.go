// internal/domain/credit/entity.go
package credit

import (
	"time"
)

// Balance holds a customer's available store credit in cents
type Balance struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID string    `gorm:"uniqueIndex;not null;size:255" json:"customer_id"`
	Available  int64     `gorm:"not null;default:0" json:"available"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Transaction records a single credit movement. The unique index on
// (customer_id, order_number) makes deductions idempotent per order: a retry
// of the same deduction inserts nothing and the balance is left alone.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  string    `gorm:"not null;size:255;uniqueIndex:idx_credit_tx_order" json:"customer_id"`
	OrderNumber int64     `gorm:"not null;uniqueIndex:idx_credit_tx_order" json:"order_number"`
	Amount      int64     `gorm:"not null" json:"amount"` // Negative for deductions
	Note        string    `gorm:"size:255" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Balance) TableName() string     { return "credit_balances" }
func (Transaction) TableName() string { return "credit_transactions" }

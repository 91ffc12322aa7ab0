// internal/domain/credit/service.go
package credit

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientCredit is returned when a deduction exceeds the available
// balance
var ErrInsufficientCredit = errors.New("insufficient store credit")

// Service handles store-credit balances. Deductions are the only
// cross-request mutation besides order numbering, so they run inside a
// transaction with a guarded decrement: concurrent checkouts can never spend
// the same credit twice.
type Service struct {
	db *gorm.DB
}

// NewService creates a new store-credit service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Available returns the customer's available credit, zero when the customer
// has no balance row
func (s *Service) Available(ctx context.Context, customerID string) (int64, error) {
	var balance Balance
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load credit balance: %w", err)
	}
	return balance.Available, nil
}

// Deduct removes amount from the customer's balance for the given order.
// Idempotent per order number: a repeat call for the same order inserts no
// second transaction and does not touch the balance again. Returns the new
// balance.
func (s *Service) Deduct(ctx context.Context, customerID string, amount, orderNumber int64) (int64, error) {
	if amount <= 0 {
		return s.Available(ctx, customerID)
	}

	var newBalance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The transaction row is the idempotency marker; DoNothing makes the
		// second attempt a no-op we can detect via RowsAffected.
		txRow := Transaction{
			CustomerID:  customerID,
			OrderNumber: orderNumber,
			Amount:      -amount,
			Note:        fmt.Sprintf("order %d", orderNumber),
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&txRow)
		if result.Error != nil {
			return fmt.Errorf("failed to record credit transaction: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			// Already deducted for this order; report the current balance
			var balance Balance
			if err := tx.Where("customer_id = ?", customerID).First(&balance).Error; err != nil {
				return fmt.Errorf("failed to load credit balance: %w", err)
			}
			newBalance = balance.Available
			return nil
		}

		// Guarded decrement: only succeeds when the balance still covers the
		// amount, so concurrent deductions cannot overdraw.
		decrement := tx.Model(&Balance{}).
			Where("customer_id = ? AND available >= ?", customerID, amount).
			Update("available", gorm.Expr("available - ?", amount))
		if decrement.Error != nil {
			return fmt.Errorf("failed to deduct credit: %w", decrement.Error)
		}
		if decrement.RowsAffected == 0 {
			return ErrInsufficientCredit
		}

		var balance Balance
		if err := tx.Where("customer_id = ?", customerID).First(&balance).Error; err != nil {
			return fmt.Errorf("failed to load credit balance: %w", err)
		}
		newBalance = balance.Available
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Grant adds credit to a customer's balance, creating the balance row when
// missing
func (s *Service) Grant(ctx context.Context, customerID string, amount int64, note string) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance := Balance{CustomerID: customerID, Available: 0}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&balance).Error; err != nil {
			return fmt.Errorf("failed to ensure credit balance: %w", err)
		}

		result := tx.Model(&Balance{}).
			Where("customer_id = ?", customerID).
			Update("available", gorm.Expr("available + ?", amount))
		if result.Error != nil {
			return fmt.Errorf("failed to grant credit: %w", result.Error)
		}
		return nil
	})
}

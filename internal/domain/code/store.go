// internal/domain/code/store.go
package code

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Store lookups when no record matches the code
var ErrNotFound = errors.New("code not found")

// Store provides read access to the three code families plus customer usage
// counts. The gorm implementation is used in production; tests substitute an
// in-memory fake.
type Store interface {
	FindSMSCode(ctx context.Context, code string) (*SMSCode, error)
	FindAffiliateCode(ctx context.Context, code string) (*AffiliateCode, error)
	FindDiscount(ctx context.Context, code string) (*Discount, error)
	CustomerUses(ctx context.Context, codeType CodeType, codeID uint, email string) (int, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a database-backed Store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindSMSCode(ctx context.Context, code string) (*SMSCode, error) {
	var sms SMSCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&sms).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up sms code: %w", err)
	}
	return &sms, nil
}

func (s *gormStore) FindAffiliateCode(ctx context.Context, code string) (*AffiliateCode, error) {
	var ac AffiliateCode
	err := s.db.WithContext(ctx).Preload("Affiliate").Where("code = ?", code).First(&ac).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up affiliate code: %w", err)
	}
	return &ac, nil
}

func (s *gormStore) FindDiscount(ctx context.Context, code string) (*Discount, error) {
	var d Discount
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up discount: %w", err)
	}
	return &d, nil
}

// CustomerUses counts usage ledger rows recorded for this code and customer.
// The rows are written by the ledger recorder, keyed by order number.
func (s *gormStore) CustomerUses(ctx context.Context, codeType CodeType, codeID uint, email string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("code_usages").
		Where("code_type = ? AND code_id = ? AND customer_email = ?", codeType, codeID, email).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count code usage: %w", err)
	}
	return int(count), nil
}

// internal/domain/code/service.go
package code

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

// Service resolves user-supplied code strings against the three disjoint
// code families. Resolution has no side effects: usage counters and the
// single-use flag on SMS codes are touched only by the ledger recorder after
// an order is durably recorded.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a new code resolution service
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Resolution represents a typed code validation result. Exactly one of
// Discount/Affiliate is set for valid results; SMS codes resolve to a
// percentage Discount with Type sms and SMSCodeID set.
type Resolution struct {
	Valid     bool                      `json:"is_valid"`
	Type      CodeType                  `json:"type"`
	Reason    string                    `json:"reason,omitempty"` // Human-readable rejection reason
	Discount  *pricing.AppliedDiscount  `json:"discount,omitempty"`
	Affiliate *pricing.AppliedAffiliate `json:"affiliate,omitempty"`

	// Identifiers the ledger recorder needs to mutate usage state later
	DiscountID uint `json:"-"`
	SMSCodeID  uint `json:"-"`
}

// Resolve validates a raw code string against the code families in fixed,
// short-circuiting order: unused unexpired SMS code, then active affiliate
// code with an active parent affiliate, then active discount within its
// validity window. email is optional; per-customer caps are enforced only
// when it is present.
func (s *Service) Resolve(ctx context.Context, raw string, subtotal int64, email string) (*Resolution, error) {
	codeStr := strings.ToUpper(strings.TrimSpace(raw))
	if codeStr == "" {
		return rejected("Please enter a code"), nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	now := s.now()

	// 1. SMS code
	sms, err := s.store.FindSMSCode(ctx, codeStr)
	switch {
	case err == nil:
		return s.resolveSMS(sms, now), nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	// 2. Affiliate code
	ac, err := s.store.FindAffiliateCode(ctx, codeStr)
	switch {
	case err == nil:
		return s.resolveAffiliate(ctx, ac, subtotal, email, now)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	// 3. Promotional discount
	d, err := s.store.FindDiscount(ctx, codeStr)
	switch {
	case err == nil:
		return s.resolveDiscount(ctx, d, subtotal, email, now)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	return rejected("Invalid code"), nil
}

func (s *Service) resolveSMS(sms *SMSCode, now time.Time) *Resolution {
	if sms.Used {
		return rejected("This code has already been used")
	}
	if now.After(sms.ExpiresAt) {
		return rejected("This code has expired")
	}

	return &Resolution{
		Valid: true,
		Type:  CodeTypeSMS,
		Discount: &pricing.AppliedDiscount{
			Code:  sms.Code,
			Type:  pricing.DiscountTypePercentage,
			Value: sms.Percent,
		},
		SMSCodeID: sms.ID,
	}
}

func (s *Service) resolveAffiliate(ctx context.Context, ac *AffiliateCode, subtotal int64, email string, now time.Time) (*Resolution, error) {
	if !ac.Active || !ac.Affiliate.Active {
		return rejected("Invalid code"), nil
	}
	if !withinWindow(ac.ValidFrom, ac.ValidUntil, now) {
		return rejected("This code has expired"), nil
	}
	if reason, err := s.checkLimits(ctx, CodeTypeAffiliate, ac.ID, subtotal, email,
		ac.MinPurchase, ac.MaxUses, ac.Uses, ac.MaxUsesPerCustomer); err != nil || reason != "" {
		if err != nil {
			return nil, err
		}
		return rejected(reason), nil
	}

	return &Resolution{
		Valid: true,
		Type:  CodeTypeAffiliate,
		Affiliate: &pricing.AppliedAffiliate{
			AffiliateID:    ac.AffiliateID,
			CodeID:         ac.ID,
			Code:           ac.Code,
			Percent:        ac.Percent,
			CommissionRate: ac.Affiliate.CommissionRate,
		},
	}, nil
}

func (s *Service) resolveDiscount(ctx context.Context, d *Discount, subtotal int64, email string, now time.Time) (*Resolution, error) {
	if !d.Active {
		return rejected("Invalid code"), nil
	}
	if !withinWindow(d.ValidFrom, d.ValidUntil, now) {
		return rejected("This code has expired"), nil
	}
	if reason, err := s.checkLimits(ctx, CodeTypeDiscount, d.ID, subtotal, email,
		d.MinPurchase, d.MaxUses, d.Uses, d.MaxUsesPerCustomer); err != nil || reason != "" {
		if err != nil {
			return nil, err
		}
		return rejected(reason), nil
	}

	return &Resolution{
		Valid: true,
		Type:  CodeTypeDiscount,
		Discount: &pricing.AppliedDiscount{
			Code:  d.Code,
			Type:  pricing.DiscountType(d.Type),
			Value: d.Value,
		},
		DiscountID: d.ID,
	}, nil
}

// checkLimits enforces minimum purchase, the global usage cap, and the
// per-customer cap (when an email is present). Returns a rejection reason or
// "" when all limits pass.
func (s *Service) checkLimits(ctx context.Context, codeType CodeType, codeID uint, subtotal int64, email string, minPurchase int64, maxUses, uses, maxPerCustomer int) (string, error) {
	if minPurchase > 0 && subtotal < minPurchase {
		return fmt.Sprintf("This code requires a minimum purchase of $%.2f", float64(minPurchase)/100), nil
	}
	if maxUses > 0 && uses >= maxUses {
		return "This code has reached its usage limit", nil
	}
	if maxPerCustomer > 0 && email != "" {
		customerUses, err := s.store.CustomerUses(ctx, codeType, codeID, email)
		if err != nil {
			return "", err
		}
		if customerUses >= maxPerCustomer {
			return "You have already used this code", nil
		}
	}
	return "", nil
}

func rejected(reason string) *Resolution {
	return &Resolution{
		Valid:  false,
		Type:   CodeTypeInvalid,
		Reason: reason,
	}
}

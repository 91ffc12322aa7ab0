// internal/domain/ledger/recorder.go
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/code"
	"github.com/your-org/storefront-backend/internal/domain/credit"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Usage carries everything the recorder must mutate after an order is
// durably persisted: code usage state, affiliate commission, store credit.
// None of it is touched before the order row exists, so an abandoned or
// failed checkout consumes nothing.
type Usage struct {
	Discount        *code.Resolution // Promotional or SMS code, if applied
	Affiliate       *code.Resolution // Affiliate incentive, if applied
	DiscountAmount  int64
	AffiliateAmount int64
	CreditUsed      int64
	CustomerEmail   string
}

// Result reports what the recorder accomplished. Warnings are post-persist
// failures: the order stands, but a ledger entry or credit deduction needs
// manual reconciliation.
type Result struct {
	Warnings []string
}

// Recorder persists orders and the dependent ledger entries. A failure to
// persist the order itself is an error; failures after the order exists are
// logged with full context and surfaced as warnings, never silently dropped
// and never a rollback of the placed order.
type Recorder struct {
	db     *gorm.DB
	credit *credit.Service
	logger *logrus.Logger
}

// NewRecorder creates a new ledger recorder
func NewRecorder(db *gorm.DB, creditService *credit.Service, logger *logrus.Logger) *Recorder {
	return &Recorder{
		db:     db,
		credit: creditService,
		logger: logger,
	}
}

// Record persists the order snapshot with its items in one transaction, then
// applies the usage side effects keyed by the order number
func (r *Recorder) Record(ctx context.Context, o *order.Order, usage *Usage) (*Result, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to persist order %d: %w", o.OrderNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if usage != nil {
		r.recordUsage(ctx, o, usage, result)
	}
	return result, nil
}

func (r *Recorder) recordUsage(ctx context.Context, o *order.Order, usage *Usage, result *Result) {
	// The two code families stack, so each slot gets its own ledger entry.
	for _, res := range []*code.Resolution{usage.Discount, usage.Affiliate} {
		if res == nil || !res.Valid {
			continue
		}
		switch res.Type {
		case code.CodeTypeDiscount:
			r.recordDiscountUse(ctx, o, res, usage, result)
		case code.CodeTypeSMS:
			r.recordSMSUse(ctx, o, res, usage, result)
		case code.CodeTypeAffiliate:
			r.recordAffiliateUse(ctx, o, res, usage, result)
		}
	}

	if usage.CreditUsed > 0 {
		if _, err := r.credit.Deduct(ctx, usage.CustomerEmail, usage.CreditUsed, o.OrderNumber); err != nil {
			r.warn(o, result, err, logrus.Fields{
				"customer": usage.CustomerEmail,
				"amount":   usage.CreditUsed,
			}, "store credit deduction failed")
		}
	}
}

func (r *Recorder) recordDiscountUse(ctx context.Context, o *order.Order, res *code.Resolution, usage *Usage, result *Result) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&code.Discount{}).
			Where("id = ?", res.DiscountID).
			Update("uses", gorm.Expr("uses + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment discount uses: %w", err)
		}
		return tx.Create(&CodeUsage{
			OrderNumber:   o.OrderNumber,
			CodeType:      string(code.CodeTypeDiscount),
			CodeID:        res.DiscountID,
			Code:          res.Discount.Code,
			CustomerEmail: usage.CustomerEmail,
			AmountSaved:   usage.DiscountAmount,
		}).Error
	})
	if err != nil {
		r.warn(o, result, err, logrus.Fields{"code": res.Discount.Code}, "discount usage recording failed")
	}
}

func (r *Recorder) recordSMSUse(ctx context.Context, o *order.Order, res *code.Resolution, usage *Usage, result *Result) {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Single-use: the code is burned here and only here, after the
		// order is durably recorded.
		mark := tx.Model(&code.SMSCode{}).
			Where("id = ? AND used = ?", res.SMSCodeID, false).
			Updates(map[string]interface{}{
				"used":         true,
				"used_at":      now,
				"order_number": o.OrderNumber,
			})
		if mark.Error != nil {
			return fmt.Errorf("failed to mark sms code used: %w", mark.Error)
		}
		if mark.RowsAffected == 0 {
			return fmt.Errorf("sms code %d already consumed", res.SMSCodeID)
		}
		return tx.Create(&CodeUsage{
			OrderNumber:   o.OrderNumber,
			CodeType:      string(code.CodeTypeSMS),
			CodeID:        res.SMSCodeID,
			Code:          res.Discount.Code,
			CustomerEmail: usage.CustomerEmail,
			AmountSaved:   usage.DiscountAmount,
		}).Error
	})
	if err != nil {
		r.warn(o, result, err, logrus.Fields{"code": res.Discount.Code}, "sms code consumption failed")
	}
}

func (r *Recorder) recordAffiliateUse(ctx context.Context, o *order.Order, res *code.Resolution, usage *Usage, result *Result) {
	aff := res.Affiliate
	base := o.SubtotalAmount - usage.DiscountAmount - usage.AffiliateAmount
	if base < 0 {
		base = 0
	}
	amount := int64(math.Round(float64(base) * aff.CommissionRate / 100))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&code.AffiliateCode{}).
			Where("id = ?", aff.CodeID).
			Update("uses", gorm.Expr("uses + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment affiliate code uses: %w", err)
		}
		if err := tx.Create(&CodeUsage{
			OrderNumber:   o.OrderNumber,
			CodeType:      string(code.CodeTypeAffiliate),
			CodeID:        aff.CodeID,
			Code:          aff.Code,
			CustomerEmail: usage.CustomerEmail,
			AmountSaved:   usage.AffiliateAmount,
		}).Error; err != nil {
			return fmt.Errorf("failed to record affiliate usage: %w", err)
		}
		return tx.Create(&Commission{
			OrderNumber: o.OrderNumber,
			AffiliateID: aff.AffiliateID,
			CodeID:      aff.CodeID,
			BaseAmount:  base,
			Rate:        aff.CommissionRate,
			Amount:      amount,
		}).Error
	})
	if err != nil {
		r.warn(o, result, err, logrus.Fields{
			"code":         aff.Code,
			"affiliate_id": aff.AffiliateID,
		}, "affiliate commission recording failed")
	}
}

// warn logs a post-persist recording failure with full context and appends a
// reconciliation warning to the result
func (r *Recorder) warn(o *order.Order, result *Result, err error, fields logrus.Fields, msg string) {
	fields["order_number"] = o.OrderNumber
	fields["error"] = err.Error()
	r.logger.WithFields(fields).Error(msg + "; order stands, flagged for reconciliation")
	result.Warnings = append(result.Warnings, fmt.Sprintf("%s for order %d", msg, o.OrderNumber))
}

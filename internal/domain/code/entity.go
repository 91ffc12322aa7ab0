// internal/domain/code/entity.go
package code

import (
	"time"

	"gorm.io/gorm"
)

// CodeType identifies which of the three disjoint code families a
// user-supplied code resolved to
type CodeType string

const (
	CodeTypeSMS       CodeType = "sms"
	CodeTypeAffiliate CodeType = "affiliate"
	CodeTypeDiscount  CodeType = "discount"
	CodeTypeInvalid   CodeType = "invalid"
)

// Discount represents a merchant-defined promotional code. Created by admin
// tooling, read-only here; the usage counter is mutated only by the ledger
// recorder after an order is durably recorded.
type Discount struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Code               string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Type               string         `gorm:"not null;size:20" json:"type"` // percentage, fixed
	Value              float64        `gorm:"not null" json:"value"`        // Percentage points, or cents for fixed
	Active             bool           `gorm:"default:true" json:"active"`
	ValidFrom          *time.Time     `json:"valid_from,omitempty"`
	ValidUntil         *time.Time     `json:"valid_until,omitempty"`
	MinPurchase        int64          `gorm:"default:0" json:"min_purchase"` // In cents
	MaxUses            int            `gorm:"default:0" json:"max_uses"`     // 0 = unlimited
	MaxUsesPerCustomer int            `gorm:"default:0" json:"max_uses_per_customer"`
	Uses               int            `gorm:"default:0" json:"uses"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// Affiliate represents a referring partner
type Affiliate struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"not null;size:100" json:"name"`
	Email          string         `gorm:"size:255" json:"email"`
	CommissionRate float64        `gorm:"not null" json:"commission_rate"` // Percentage points
	Active         bool           `gorm:"default:true" json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// AffiliateCode represents a code tied to an affiliate: it discounts the
// customer by Percent and accrues commission to the affiliate
type AffiliateCode struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	AffiliateID        uint           `gorm:"not null;index" json:"affiliate_id"`
	Code               string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Percent            float64        `gorm:"not null" json:"percent"` // Customer discount percentage
	Active             bool           `gorm:"default:true" json:"active"`
	ValidFrom          *time.Time     `json:"valid_from,omitempty"`
	ValidUntil         *time.Time     `json:"valid_until,omitempty"`
	MinPurchase        int64          `gorm:"default:0" json:"min_purchase"`
	MaxUses            int            `gorm:"default:0" json:"max_uses"`
	MaxUsesPerCustomer int            `gorm:"default:0" json:"max_uses_per_customer"`
	Uses               int            `gorm:"default:0" json:"uses"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
}

// SMSCode represents a single-use, time-limited discount code distributed
// out-of-band. It is marked used only after an order is durably recorded,
// never at validation time, so an abandoned checkout does not burn it.
type SMSCode struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Phone       string     `gorm:"size:20" json:"phone"`
	Percent     float64    `gorm:"not null" json:"percent"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	Used        bool       `gorm:"default:false" json:"used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	OrderNumber *int64     `gorm:"index" json:"order_number,omitempty"` // Set when consumed
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName overrides
func (Discount) TableName() string      { return "discounts" }
func (Affiliate) TableName() string     { return "affiliates" }
func (AffiliateCode) TableName() string { return "affiliate_codes" }
func (SMSCode) TableName() string       { return "sms_codes" }

// withinWindow reports whether now falls inside an optional validity window
func withinWindow(from, until *time.Time, now time.Time) bool {
	if from != nil && now.Before(*from) {
		return false
	}
	if until != nil && now.After(*until) {
		return false
	}
	return true
}

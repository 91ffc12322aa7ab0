// internal/domain/shipping/entity.go
package shipping

import (
	"time"
)

// Method represents a shipping method row. An empty Regions list marks the
// method as the international fallback, offered only when no region-scoped
// method matches. A ProductGated method is additionally offered only when the
// cart contains at least one of its EligibleProducts. FreeThreshold of 0
// means the method price is never waived.
type Method struct {
	ID               string    `gorm:"primaryKey;size:50" json:"id"`
	Name             string    `gorm:"not null;size:100" json:"name"`
	Description      string    `gorm:"size:255" json:"description"`
	Price            int64     `gorm:"not null" json:"price"` // In cents
	FreeThreshold    int64     `gorm:"default:0" json:"free_threshold"`
	Regions          []string  `gorm:"serializer:json" json:"regions"`
	ProductGated     bool      `gorm:"default:false" json:"product_gated"`
	EligibleProducts []uint    `gorm:"serializer:json" json:"eligible_products,omitempty"`
	SpeedUpgrade     bool      `gorm:"default:false" json:"speed_upgrade"`
	Active           bool      `gorm:"default:true" json:"active"`
	SortOrder        int       `gorm:"default:0" json:"sort_order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Method) TableName() string {
	return "shipping_methods"
}

// EffectiveFreeThreshold returns the order amount at which the method's
// price is waived. Delivery-speed upgrades are always charged, whatever
// their row says.
func (m *Method) EffectiveFreeThreshold() int64 {
	if m.SpeedUpgrade {
		return 0
	}
	return m.FreeThreshold
}

// ServesRegion reports whether the method's region list contains the region
func (m *Method) ServesRegion(region string) bool {
	for _, r := range m.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// ServesProducts reports whether at least one cart product is in the
// method's eligible-product set. Always true for non-gated methods.
func (m *Method) ServesProducts(productIDs []uint) bool {
	if !m.ProductGated {
		return true
	}
	eligible := make(map[uint]bool, len(m.EligibleProducts))
	for _, id := range m.EligibleProducts {
		eligible[id] = true
	}
	for _, id := range productIDs {
		if eligible[id] {
			return true
		}
	}
	return false
}

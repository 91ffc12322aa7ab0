// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

// Cart represents a client session's cart. The client owns it; the Redis
// copy is a replica refreshed on every mutation and is never treated as the
// authoritative source of a total.
type Cart struct {
	SessionID string    `json:"session_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Item represents a cart line item. Price is the unit price in cents as
// captured when the item was added; the catalog itself lives outside this
// service.
type Item struct {
	ProductID    uint      `json:"product_id"`
	VariantID    *uint     `json:"variant_id,omitempty"`
	Quantity     int       `json:"quantity"`
	Price        int64     `json:"price"`
	BulkVariant  bool      `json:"bulk_variant,omitempty"`
	Subscription bool      `json:"subscription,omitempty"`
	Interval     string    `json:"billing_interval,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// PricingItems converts cart items into calculator inputs
func (c *Cart) PricingItems() []pricing.Item {
	items := make([]pricing.Item, len(c.Items))
	for i, item := range c.Items {
		items[i] = pricing.Item{
			ProductID:    item.ProductID,
			VariantID:    item.VariantID,
			Quantity:     item.Quantity,
			Price:        item.Price,
			BulkVariant:  item.BulkVariant,
			Subscription: item.Subscription,
			Interval:     item.Interval,
		}
	}
	return items
}

// ProductIDs returns the distinct product ids in the cart
func (c *Cart) ProductIDs() []uint {
	seen := make(map[uint]bool, len(c.Items))
	var ids []uint
	for _, item := range c.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// HasSubscription reports whether any cart item is a subscription
func (c *Cart) HasSubscription() bool {
	for _, item := range c.Items {
		if item.Subscription {
			return true
		}
	}
	return false
}

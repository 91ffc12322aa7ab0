// internal/domain/pricing/calculator.go
package pricing

// The calculator is the single authority on cart totals. The cart preview
// endpoints and the checkout orchestrator both call Calculate with the same
// inputs, so the client-visible total and the persisted total cannot drift.

// DiscountType represents how a promotional discount is computed
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Item represents a priced cart line item
type Item struct {
	ProductID    uint   `json:"product_id"`
	VariantID    *uint  `json:"variant_id,omitempty"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"` // Unit price in cents
	BulkVariant  bool   `json:"bulk_variant,omitempty"`
	Subscription bool   `json:"subscription,omitempty"`
	Interval     string `json:"billing_interval,omitempty"` // e.g. "month", only for subscriptions
}

// AppliedDiscount represents the one promotional discount applied to a cart
type AppliedDiscount struct {
	Code  string       `json:"code"`
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"` // Percentage points, or cents for fixed
}

// AppliedAffiliate represents the one affiliate incentive applied to a cart.
// Percent discounts the customer; CommissionRate accrues to the affiliate and
// does not affect the total.
type AppliedAffiliate struct {
	AffiliateID    uint    `json:"affiliate_id"`
	CodeID         uint    `json:"code_id"`
	Code           string  `json:"code"`
	Percent        float64 `json:"percent"`
	CommissionRate float64 `json:"commission_rate"`
}

// AddOn represents an optional non-discountable add-on line item, priced at
// full value after discounts and credit
type AddOn struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Selected bool   `json:"selected"`
}

// Shipping represents the selected shipping method's pricing terms.
// FreeThreshold of 0 means the method is never waived.
type Shipping struct {
	MethodID      string `json:"method_id"`
	Price         int64  `json:"price"`
	FreeThreshold int64  `json:"free_threshold"`
}

// Input represents everything that can affect a cart total
type Input struct {
	Items           []Item            `json:"items"`
	Discount        *AppliedDiscount  `json:"discount,omitempty"`
	Affiliate       *AppliedAffiliate `json:"affiliate,omitempty"`
	AvailableCredit int64             `json:"available_credit"`
	UseCredit       bool              `json:"use_credit"`
	AddOns          []AddOn           `json:"add_ons,omitempty"`
	Shipping        *Shipping         `json:"shipping,omitempty"`
}

// Quote represents the full pricing breakdown. Every amount is non-negative.
type Quote struct {
	Subtotal        int64 `json:"subtotal"`
	DiscountAmount  int64 `json:"discount_amount"`
	AfterDiscount   int64 `json:"after_discount"`
	AffiliateAmount int64 `json:"affiliate_amount"`
	AfterAffiliate  int64 `json:"after_affiliate"`
	CreditUsed      int64 `json:"credit_used"`
	AfterCredit     int64 `json:"after_credit"`
	AddOnTotal      int64 `json:"add_on_total"`
	BeforeShipping  int64 `json:"before_shipping"`
	ShippingCost    int64 `json:"shipping_cost"`
	Total           int64 `json:"total"`
}

// Calculate folds items, at most one discount, at most one affiliate
// incentive, store credit, add-ons and shipping into a single total. The
// computation order is fixed and not commutative:
//
//	subtotal -> discount -> affiliate -> store credit -> add-ons -> shipping
//
// All intermediate amounts are clamped at zero.
func Calculate(in Input) Quote {
	var q Quote

	for _, item := range in.Items {
		q.Subtotal += item.Price * int64(item.Quantity)
	}

	q.DiscountAmount = DiscountAmount(in.Discount, q.Subtotal)
	q.AfterDiscount = clamp(q.Subtotal - q.DiscountAmount)

	q.AffiliateAmount = AffiliateAmount(in.Affiliate, q.AfterDiscount)
	q.AfterAffiliate = clamp(q.AfterDiscount - q.AffiliateAmount)

	if in.UseCredit {
		q.CreditUsed = min64(in.AvailableCredit, q.AfterAffiliate)
	}
	q.AfterCredit = clamp(q.AfterAffiliate - q.CreditUsed)

	for _, addOn := range in.AddOns {
		if addOn.Selected {
			q.AddOnTotal += addOn.Price
		}
	}
	q.BeforeShipping = q.AfterCredit + q.AddOnTotal

	q.ShippingCost = ShippingCost(in.Shipping, q.BeforeShipping)
	q.Total = q.BeforeShipping + q.ShippingCost

	return q
}

// DiscountAmount computes the amount saved by a promotional discount against
// a subtotal. The result never exceeds the subtotal.
func DiscountAmount(d *AppliedDiscount, subtotal int64) int64 {
	if d == nil || subtotal <= 0 {
		return 0
	}

	var amount int64
	switch d.Type {
	case DiscountTypePercentage:
		amount = int64(float64(subtotal) * d.Value / 100)
	case DiscountTypeFixed:
		amount = int64(d.Value)
	default:
		return 0
	}

	if amount < 0 {
		return 0
	}
	return min64(amount, subtotal)
}

// AffiliateAmount computes the customer-facing amount saved by an affiliate
// incentive against the post-discount amount.
func AffiliateAmount(a *AppliedAffiliate, afterDiscount int64) int64 {
	if a == nil || afterDiscount <= 0 {
		return 0
	}

	amount := int64(float64(afterDiscount) * a.Percent / 100)
	if amount < 0 {
		return 0
	}
	return min64(amount, afterDiscount)
}

// ShippingCost returns the shipping cost for the selected method, waiving it
// when the method's free-shipping threshold is met by the pre-shipping amount.
func ShippingCost(s *Shipping, beforeShipping int64) int64 {
	if s == nil {
		return 0
	}
	if s.FreeThreshold > 0 && beforeShipping >= s.FreeThreshold {
		return 0
	}
	return s.Price
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

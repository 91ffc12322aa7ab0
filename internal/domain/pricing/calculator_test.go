package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_PercentageDiscountWithShipping(t *testing.T) {
	q := Calculate(Input{
		Items:    []Item{{ProductID: 1, Quantity: 2, Price: 5000}},
		Discount: &AppliedDiscount{Code: "SAVE10", Type: DiscountTypePercentage, Value: 10},
		Shipping: &Shipping{MethodID: "domestic-standard", Price: 1500, FreeThreshold: 25000},
	})

	assert.Equal(t, int64(10000), q.Subtotal)
	assert.Equal(t, int64(1000), q.DiscountAmount)
	assert.Equal(t, int64(9000), q.AfterDiscount)
	assert.Equal(t, int64(1500), q.ShippingCost)
	assert.Equal(t, int64(10500), q.Total)
}

func TestCalculate_FreeShippingThresholdMet(t *testing.T) {
	q := Calculate(Input{
		Items:    []Item{{ProductID: 1, Quantity: 3, Price: 10000}},
		Discount: &AppliedDiscount{Code: "SAVE10", Type: DiscountTypePercentage, Value: 10},
		Shipping: &Shipping{MethodID: "domestic-standard", Price: 1500, FreeThreshold: 25000},
	})

	assert.Equal(t, int64(30000), q.Subtotal)
	assert.Equal(t, int64(27000), q.BeforeShipping)
	assert.Equal(t, int64(0), q.ShippingCost)
	assert.Equal(t, int64(27000), q.Total)
}

func TestCalculate_ThresholdComparesPostReductionAmount(t *testing.T) {
	// Subtotal clears the threshold but the discounted amount does not, so
	// shipping is charged.
	q := Calculate(Input{
		Items:    []Item{{ProductID: 1, Quantity: 1, Price: 26000}},
		Discount: &AppliedDiscount{Code: "SAVE10", Type: DiscountTypePercentage, Value: 10},
		Shipping: &Shipping{MethodID: "domestic-standard", Price: 1500, FreeThreshold: 25000},
	})

	assert.Equal(t, int64(23400), q.BeforeShipping)
	assert.Equal(t, int64(1500), q.ShippingCost)
}

func TestCalculate_CreditAfterDiscount(t *testing.T) {
	q := Calculate(Input{
		Items:           []Item{{ProductID: 1, Quantity: 1, Price: 5000}},
		Discount:        &AppliedDiscount{Code: "SMS20", Type: DiscountTypePercentage, Value: 20},
		AvailableCredit: 1000,
		UseCredit:       true,
	})

	assert.Equal(t, int64(1000), q.DiscountAmount)
	assert.Equal(t, int64(1000), q.CreditUsed)
	assert.Equal(t, int64(3000), q.Total)
}

func TestCalculate_CreditCappedAtRemainingAmount(t *testing.T) {
	q := Calculate(Input{
		Items:           []Item{{ProductID: 1, Quantity: 1, Price: 2000}},
		AvailableCredit: 5000,
		UseCredit:       true,
	})

	assert.Equal(t, int64(2000), q.CreditUsed)
	assert.Equal(t, int64(0), q.Total)
}

func TestCalculate_CreditIgnoredWhenNotRequested(t *testing.T) {
	q := Calculate(Input{
		Items:           []Item{{ProductID: 1, Quantity: 1, Price: 2000}},
		AvailableCredit: 5000,
	})

	assert.Equal(t, int64(0), q.CreditUsed)
	assert.Equal(t, int64(2000), q.Total)
}

func TestCalculate_AddOnsNotDiscounted(t *testing.T) {
	// Add-ons enter after discounts and credit, at full price.
	q := Calculate(Input{
		Items:    []Item{{ProductID: 1, Quantity: 1, Price: 10000}},
		Discount: &AppliedDiscount{Code: "HALF", Type: DiscountTypePercentage, Value: 50},
		AddOns: []AddOn{
			{ID: "gift-wrap", Name: "Gift Wrap", Price: 500, Selected: true},
			{ID: "card", Name: "Greeting Card", Price: 300, Selected: false},
		},
	})

	assert.Equal(t, int64(500), q.AddOnTotal)
	assert.Equal(t, int64(5500), q.Total)
}

func TestCalculate_AddOnsCountTowardFreeShipping(t *testing.T) {
	q := Calculate(Input{
		Items:    []Item{{ProductID: 1, Quantity: 1, Price: 24800}},
		AddOns:   []AddOn{{ID: "gift-wrap", Name: "Gift Wrap", Price: 200, Selected: true}},
		Shipping: &Shipping{MethodID: "domestic-standard", Price: 1500, FreeThreshold: 25000},
	})

	assert.Equal(t, int64(25000), q.BeforeShipping)
	assert.Equal(t, int64(0), q.ShippingCost)
}

func TestCalculate_OneCentBelowFreeShippingThreshold(t *testing.T) {
	q := Calculate(Input{
		Items:    []Item{{ProductID: 1, Quantity: 1, Price: 24999}},
		Shipping: &Shipping{MethodID: "domestic-standard", Price: 1500, FreeThreshold: 25000},
	})

	assert.Equal(t, int64(24999), q.BeforeShipping)
	assert.Equal(t, int64(1500), q.ShippingCost)
	assert.Equal(t, int64(26499), q.Total)
}

func TestCalculate_AffiliateAppliesAfterDiscount(t *testing.T) {
	q := Calculate(Input{
		Items:     []Item{{ProductID: 1, Quantity: 1, Price: 10000}},
		Discount:  &AppliedDiscount{Code: "SAVE10", Type: DiscountTypePercentage, Value: 10},
		Affiliate: &AppliedAffiliate{AffiliateID: 1, Code: "PARTNER15", Percent: 15, CommissionRate: 15},
	})

	assert.Equal(t, int64(1000), q.DiscountAmount)
	// 15% of the post-discount 9000, not of the subtotal
	assert.Equal(t, int64(1350), q.AffiliateAmount)
	assert.Equal(t, int64(7650), q.Total)
}

func TestCalculate_EmptyCart(t *testing.T) {
	q := Calculate(Input{})

	assert.Equal(t, int64(0), q.Subtotal)
	assert.Equal(t, int64(0), q.Total)
}

func TestDiscountAmount_FixedCappedAtSubtotal(t *testing.T) {
	amount := DiscountAmount(&AppliedDiscount{Code: "BIG", Type: DiscountTypeFixed, Value: 5000}, 3000)
	assert.Equal(t, int64(3000), amount)
}

func TestDiscountAmount_NegativeValueIgnored(t *testing.T) {
	amount := DiscountAmount(&AppliedDiscount{Code: "BAD", Type: DiscountTypeFixed, Value: -100}, 3000)
	assert.Equal(t, int64(0), amount)
}

func TestDiscountAmount_UnknownTypeIgnored(t *testing.T) {
	amount := DiscountAmount(&AppliedDiscount{Code: "ODD", Type: "bogus", Value: 10}, 3000)
	assert.Equal(t, int64(0), amount)
}

func TestShippingCost_ZeroThresholdNeverWaived(t *testing.T) {
	s := &Shipping{MethodID: "domestic-express", Price: 4000, FreeThreshold: 0}

	assert.Equal(t, int64(4000), ShippingCost(s, 1_000_000))
}

func TestShippingCost_ExactThresholdBoundary(t *testing.T) {
	s := &Shipping{MethodID: "domestic-standard", Price: 1500, FreeThreshold: 25000}

	assert.Equal(t, int64(0), ShippingCost(s, 25000))
	assert.Equal(t, int64(1500), ShippingCost(s, 24999))
}

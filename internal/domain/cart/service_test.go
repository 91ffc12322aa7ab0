package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuantity_Bounds(t *testing.T) {
	assert.Error(t, ValidateQuantity(0, false))
	assert.Error(t, ValidateQuantity(-1, false))
	assert.NoError(t, ValidateQuantity(1, false))
	assert.NoError(t, ValidateQuantity(MaxQuantity, false))
	assert.Error(t, ValidateQuantity(MaxQuantity+1, false))
}

func TestValidateQuantity_BulkVariant(t *testing.T) {
	assert.Error(t, ValidateQuantity(BulkMinimum-1, true))
	assert.NoError(t, ValidateQuantity(BulkMinimum, true))
	// Bulk variants are exempt from the per-line maximum
	assert.NoError(t, ValidateQuantity(500, true))
}

func TestCart_ProductIDsDeduplicated(t *testing.T) {
	variant := uint(3)
	c := &Cart{Items: []Item{
		{ProductID: 1, Quantity: 1, Price: 100},
		{ProductID: 1, VariantID: &variant, Quantity: 1, Price: 120},
		{ProductID: 2, Quantity: 1, Price: 200},
	}}

	assert.Equal(t, []uint{1, 2}, c.ProductIDs())
}

func TestCart_HasSubscription(t *testing.T) {
	c := &Cart{Items: []Item{{ProductID: 1, Quantity: 1, Price: 100}}}
	assert.False(t, c.HasSubscription())

	c.Items = append(c.Items, Item{ProductID: 2, Quantity: 1, Price: 900, Subscription: true, Interval: "month"})
	assert.True(t, c.HasSubscription())
}

func TestCart_PricingItems(t *testing.T) {
	c := &Cart{Items: []Item{
		{ProductID: 1, Quantity: 2, Price: 5000, BulkVariant: false},
	}}

	items := c.PricingItems()
	assert.Len(t, items, 1)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(5000), items[0].Price)
}

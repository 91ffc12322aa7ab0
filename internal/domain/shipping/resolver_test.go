package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMethods() []Method {
	return []Method{
		{
			ID:            "domestic-standard",
			Name:          "Standard Shipping",
			Price:         1500,
			FreeThreshold: 25000,
			Regions:       []string{"US"},
			Active:        true,
			SortOrder:     1,
		},
		{
			ID:           "domestic-express",
			Name:         "Express Shipping",
			Price:        4000,
			Regions:      []string{"US"},
			SpeedUpgrade: true,
			Active:       true,
			SortOrder:    2,
		},
		{
			ID:            "international",
			Name:          "International Shipping",
			Price:         4500,
			FreeThreshold: 50000,
			Regions:       []string{},
			Active:        true,
			SortOrder:     3,
		},
		{
			ID:               "freight",
			Name:             "Freight",
			Price:            12000,
			Regions:          []string{"US"},
			ProductGated:     true,
			EligibleProducts: []uint{42},
			Active:           true,
			SortOrder:        4,
		},
	}
}

func methodIDs(methods []Method) []string {
	ids := make([]string, 0, len(methods))
	for _, m := range methods {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestEligibleMethods_RegionalBeatsFallback(t *testing.T) {
	eligible := EligibleMethods(testMethods(), "US", []uint{1})

	assert.Equal(t, []string{"domestic-standard", "domestic-express"}, methodIDs(eligible))
}

func TestEligibleMethods_FallbackWhenNoRegionalMatch(t *testing.T) {
	eligible := EligibleMethods(testMethods(), "DE", []uint{1})

	assert.Equal(t, []string{"international"}, methodIDs(eligible))
}

func TestEligibleMethods_ProductGatedRequiresMatchingCart(t *testing.T) {
	withGated := EligibleMethods(testMethods(), "US", []uint{1, 42})
	assert.Contains(t, methodIDs(withGated), "freight")

	withoutGated := EligibleMethods(testMethods(), "US", []uint{1})
	assert.NotContains(t, methodIDs(withoutGated), "freight")
}

func TestEligibleMethods_EmptyCatalog(t *testing.T) {
	assert.Empty(t, EligibleMethods(nil, "US", nil))
}

func TestReselect_KeepsEligibleSelection(t *testing.T) {
	eligible := EligibleMethods(testMethods(), "US", nil)

	selected := Reselect("domestic-express", eligible)
	require.NotNil(t, selected)
	assert.Equal(t, "domestic-express", selected.ID)
}

func TestReselect_ReplacesIneligibleSelection(t *testing.T) {
	// Region changed to DE, so the US selection is gone and the fallback is
	// the only choice left.
	eligible := EligibleMethods(testMethods(), "DE", nil)

	selected := Reselect("domestic-standard", eligible)
	require.NotNil(t, selected)
	assert.Equal(t, "international", selected.ID)
}

func TestReselect_DefaultPrefersRegionalWithThreshold(t *testing.T) {
	eligible := EligibleMethods(testMethods(), "US", nil)

	selected := Reselect("", eligible)
	require.NotNil(t, selected)
	assert.Equal(t, "domestic-standard", selected.ID)
}

func TestReselect_NilWhenNothingEligible(t *testing.T) {
	assert.Nil(t, Reselect("domestic-standard", nil))
}

func TestEffectiveFreeThreshold_SpeedUpgradeNeverWaived(t *testing.T) {
	upgrade := Method{ID: "domestic-express", Price: 4000, FreeThreshold: 25000, SpeedUpgrade: true}
	standard := Method{ID: "domestic-standard", Price: 1500, FreeThreshold: 25000}

	assert.Equal(t, int64(0), upgrade.EffectiveFreeThreshold())
	assert.Equal(t, int64(25000), standard.EffectiveFreeThreshold())
}

func TestServesRegion(t *testing.T) {
	m := Method{Regions: []string{"US", "CA"}}

	assert.True(t, m.ServesRegion("CA"))
	assert.False(t, m.ServesRegion("DE"))
}

package code

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements Store for testing
type fakeStore struct {
	smsCodes       map[string]*SMSCode
	affiliateCodes map[string]*AffiliateCode
	discounts      map[string]*Discount
	customerUses   map[string]int // keyed by email
}

func (f *fakeStore) FindSMSCode(_ context.Context, codeStr string) (*SMSCode, error) {
	if sms, ok := f.smsCodes[codeStr]; ok {
		return sms, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) FindAffiliateCode(_ context.Context, codeStr string) (*AffiliateCode, error) {
	if ac, ok := f.affiliateCodes[codeStr]; ok {
		return ac, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) FindDiscount(_ context.Context, codeStr string) (*Discount, error) {
	if d, ok := f.discounts[codeStr]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) CustomerUses(_ context.Context, _ CodeType, _ uint, email string) (int, error) {
	return f.customerUses[email], nil
}

func newTestService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestResolve_EmptyCode(t *testing.T) {
	svc := newTestService(&fakeStore{}, testNow)

	res, err := svc.Resolve(context.Background(), "   ", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, CodeTypeInvalid, res.Type)
}

func TestResolve_UnknownCode(t *testing.T) {
	svc := newTestService(&fakeStore{}, testNow)

	res, err := svc.Resolve(context.Background(), "NOPE", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Invalid code", res.Reason)
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	store := &fakeStore{
		discounts: map[string]*Discount{
			"SAVE10": {ID: 1, Code: "SAVE10", Type: "percentage", Value: 10, Active: true},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "  save10 ", 10000, "")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, CodeTypeDiscount, res.Type)
}

func TestResolve_SMSCodeWinsOverOtherFamilies(t *testing.T) {
	// The same string exists in all three families; SMS resolves first.
	store := &fakeStore{
		smsCodes: map[string]*SMSCode{
			"STACK": {ID: 7, Code: "STACK", Percent: 20, ExpiresAt: testNow.Add(time.Hour)},
		},
		affiliateCodes: map[string]*AffiliateCode{
			"STACK": {ID: 3, Code: "STACK", Percent: 15, Active: true, Affiliate: Affiliate{Active: true}},
		},
		discounts: map[string]*Discount{
			"STACK": {ID: 1, Code: "STACK", Type: "percentage", Value: 10, Active: true},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "STACK", 10000, "")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, CodeTypeSMS, res.Type)
	require.NotNil(t, res.Discount)
	assert.Equal(t, float64(20), res.Discount.Value)
	assert.Equal(t, uint(7), res.SMSCodeID)
}

func TestResolve_UsedSMSCode(t *testing.T) {
	store := &fakeStore{
		smsCodes: map[string]*SMSCode{
			"SMS20": {ID: 7, Code: "SMS20", Percent: 20, Used: true, ExpiresAt: testNow.Add(time.Hour)},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "SMS20", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This code has already been used", res.Reason)
}

func TestResolve_ExpiredSMSCode(t *testing.T) {
	store := &fakeStore{
		smsCodes: map[string]*SMSCode{
			"SMS20": {ID: 7, Code: "SMS20", Percent: 20, ExpiresAt: testNow.Add(-time.Minute)},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "SMS20", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This code has expired", res.Reason)
}

func TestResolve_AffiliateWinsOverDiscount(t *testing.T) {
	store := &fakeStore{
		affiliateCodes: map[string]*AffiliateCode{
			"PARTNER15": {
				ID: 3, AffiliateID: 9, Code: "PARTNER15", Percent: 15, Active: true,
				Affiliate: Affiliate{ID: 9, Active: true, CommissionRate: 12},
			},
		},
		discounts: map[string]*Discount{
			"PARTNER15": {ID: 1, Code: "PARTNER15", Type: "percentage", Value: 5, Active: true},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "PARTNER15", 10000, "")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, CodeTypeAffiliate, res.Type)
	require.NotNil(t, res.Affiliate)
	assert.Equal(t, uint(9), res.Affiliate.AffiliateID)
	assert.Equal(t, float64(12), res.Affiliate.CommissionRate)
	assert.Nil(t, res.Discount)
}

func TestResolve_AffiliateWithInactiveParent(t *testing.T) {
	store := &fakeStore{
		affiliateCodes: map[string]*AffiliateCode{
			"PARTNER15": {
				ID: 3, Code: "PARTNER15", Percent: 15, Active: true,
				Affiliate: Affiliate{Active: false},
			},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "PARTNER15", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Invalid code", res.Reason)
}

func TestResolve_MinimumPurchaseNotMet(t *testing.T) {
	store := &fakeStore{
		discounts: map[string]*Discount{
			"SAVE20": {ID: 1, Code: "SAVE20", Type: "fixed", Value: 2000, Active: true, MinPurchase: 10000},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "SAVE20", 9999, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This code requires a minimum purchase of $100.00", res.Reason)
}

func TestResolve_GlobalUsageCapReached(t *testing.T) {
	store := &fakeStore{
		discounts: map[string]*Discount{
			"SAVE10": {ID: 1, Code: "SAVE10", Type: "percentage", Value: 10, Active: true, MaxUses: 100, Uses: 100},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "SAVE10", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This code has reached its usage limit", res.Reason)
}

func TestResolve_PerCustomerCapRequiresEmail(t *testing.T) {
	store := &fakeStore{
		discounts: map[string]*Discount{
			"SAVE10": {ID: 1, Code: "SAVE10", Type: "percentage", Value: 10, Active: true, MaxUsesPerCustomer: 1},
		},
		customerUses: map[string]int{"buyer@example.com": 1},
	}
	svc := newTestService(store, testNow)

	// Without an email the per-customer cap cannot be checked and the code
	// passes; checkout enforces it again with the email present.
	res, err := svc.Resolve(context.Background(), "SAVE10", 10000, "")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = svc.Resolve(context.Background(), "SAVE10", 10000, "Buyer@Example.com")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "You have already used this code", res.Reason)
}

func TestResolve_DiscountValidityWindow(t *testing.T) {
	past := testNow.Add(-48 * time.Hour)
	earlier := testNow.Add(-24 * time.Hour)
	store := &fakeStore{
		discounts: map[string]*Discount{
			"OLD": {ID: 1, Code: "OLD", Type: "percentage", Value: 10, Active: true, ValidFrom: &past, ValidUntil: &earlier},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "OLD", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This code has expired", res.Reason)
}

func TestResolve_InactiveDiscount(t *testing.T) {
	store := &fakeStore{
		discounts: map[string]*Discount{
			"GONE": {ID: 1, Code: "GONE", Type: "percentage", Value: 10, Active: false},
		},
	}
	svc := newTestService(store, testNow)

	res, err := svc.Resolve(context.Background(), "GONE", 10000, "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
}

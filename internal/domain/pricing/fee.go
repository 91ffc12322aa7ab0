// internal/domain/pricing/fee.go
package pricing

import "math"

// FeeModel represents a settlement backend's fee terms: a percentage of the
// gross plus a flat amount in cents.
type FeeModel struct {
	Rate float64 `json:"rate"`
	Flat int64   `json:"flat"`
}

// GrossForNet returns the gross amount to charge so that the merchant nets
// exactly net after the backend deducts its percentage-plus-flat fee, along
// with the resulting surcharge. Rounded to the nearest cent. A non-positive
// net means nothing is charged, so no fee applies.
//
//	gross = (net + flat) / (1 - rate)
func GrossForNet(net int64, m FeeModel) (gross, fee int64) {
	if net <= 0 {
		return 0, 0
	}
	if m.Rate <= 0 && m.Flat <= 0 {
		return net, 0
	}

	gross = int64(math.Round(float64(net+m.Flat) / (1 - m.Rate)))
	return gross, gross - net
}

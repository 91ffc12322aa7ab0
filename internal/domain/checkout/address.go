// internal/domain/checkout/address.go
package checkout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Historical clients submit addresses in three shapes: flat fields, fields
// nested under an "address" object, and that object nested once more. This
// is the single place the shapes are recognized; everything downstream sees
// only the normalized order.Address.

// ParseAddress normalizes a raw address payload into an order.Address
func ParseAddress(raw json.RawMessage) (order.Address, error) {
	var addr order.Address
	if len(raw) == 0 {
		return addr, fmt.Errorf("address payload is empty")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return addr, fmt.Errorf("failed to parse address payload: %w", err)
	}

	normalizeAddress(payload, &addr)
	return addr, nil
}

// normalizeAddress folds one payload level into addr, descending through up
// to two levels of "address" nesting. Fields found at an outer level are
// kept unless an inner level overrides them.
func normalizeAddress(payload map[string]interface{}, addr *order.Address) {
	applyAddressFields(payload, addr)

	nested := payload
	for depth := 0; depth < 2; depth++ {
		inner, ok := nested["address"].(map[string]interface{})
		if !ok {
			break
		}
		applyAddressFields(inner, addr)
		nested = inner
	}
}

func applyAddressFields(fields map[string]interface{}, addr *order.Address) {
	if v := stringField(fields, "first_name", "firstName"); v != "" {
		addr.FirstName = v
	}
	if v := stringField(fields, "last_name", "lastName"); v != "" {
		addr.LastName = v
	}
	// Some historical payloads carry a single combined name
	if addr.FirstName == "" {
		if full := stringField(fields, "name", "full_name"); full != "" {
			first, last := splitName(full)
			addr.FirstName = first
			if addr.LastName == "" {
				addr.LastName = last
			}
		}
	}
	if v := stringField(fields, "address_line1", "address1", "line1", "street"); v != "" {
		addr.AddressLine1 = v
	}
	if v := stringField(fields, "address_line2", "address2", "line2"); v != "" {
		addr.AddressLine2 = v
	}
	if v := stringField(fields, "city", "town"); v != "" {
		addr.City = v
	}
	if v := stringField(fields, "state", "province", "region"); v != "" {
		addr.State = v
	}
	if v := stringField(fields, "postal_code", "postalCode", "zip", "zip_code"); v != "" {
		addr.PostalCode = v
	}
	if v := stringField(fields, "country", "country_code"); v != "" {
		addr.Country = strings.ToUpper(v)
	}
}

func stringField(fields map[string]interface{}, names ...string) string {
	for _, name := range names {
		if v, ok := fields[name].(string); ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

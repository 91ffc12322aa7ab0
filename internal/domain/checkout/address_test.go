package checkout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress_FlatShape(t *testing.T) {
	raw := json.RawMessage(`{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"address_line1": "12 Analytical Way",
		"city": "London",
		"state": "LDN",
		"postal_code": "EC1A",
		"country": "gb"
	}`)

	addr, err := ParseAddress(raw)

	require.NoError(t, err)
	assert.Equal(t, "Ada", addr.FirstName)
	assert.Equal(t, "Lovelace", addr.LastName)
	assert.Equal(t, "12 Analytical Way", addr.AddressLine1)
	assert.Equal(t, "GB", addr.Country)
	assert.True(t, addr.Complete())
}

func TestParseAddress_NestedShape(t *testing.T) {
	raw := json.RawMessage(`{
		"name": "Ada Lovelace",
		"address": {
			"line1": "12 Analytical Way",
			"city": "London",
			"zip": "EC1A",
			"country": "GB"
		}
	}`)

	addr, err := ParseAddress(raw)

	require.NoError(t, err)
	assert.Equal(t, "Ada", addr.FirstName)
	assert.Equal(t, "Lovelace", addr.LastName)
	assert.Equal(t, "12 Analytical Way", addr.AddressLine1)
	assert.Equal(t, "EC1A", addr.PostalCode)
	assert.True(t, addr.Complete())
}

func TestParseAddress_DoubleNestedShape(t *testing.T) {
	raw := json.RawMessage(`{
		"address": {
			"address": {
				"first_name": "Ada",
				"street": "12 Analytical Way",
				"city": "London",
				"zip_code": "EC1A",
				"country": "GB"
			}
		}
	}`)

	addr, err := ParseAddress(raw)

	require.NoError(t, err)
	assert.Equal(t, "Ada", addr.FirstName)
	assert.Equal(t, "12 Analytical Way", addr.AddressLine1)
	assert.True(t, addr.Complete())
}

func TestParseAddress_InnerLevelOverridesOuter(t *testing.T) {
	raw := json.RawMessage(`{
		"city": "Paris",
		"address": {
			"city": "London"
		}
	}`)

	addr, err := ParseAddress(raw)

	require.NoError(t, err)
	assert.Equal(t, "London", addr.City)
}

func TestParseAddress_EmptyPayload(t *testing.T) {
	_, err := ParseAddress(nil)
	assert.Error(t, err)
}

func TestParseAddress_MalformedJSON(t *testing.T) {
	_, err := ParseAddress(json.RawMessage(`{"city": `))
	assert.Error(t, err)
}

func TestParseAddress_SingleWordName(t *testing.T) {
	raw := json.RawMessage(`{"name": "Prince", "address_line1": "1 Way", "city": "X", "postal_code": "1", "country": "US"}`)

	addr, err := ParseAddress(raw)

	require.NoError(t, err)
	assert.Equal(t, "Prince", addr.FirstName)
	assert.Equal(t, "", addr.LastName)
}

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressRoundTripThroughDriverValue(t *testing.T) {
	addr := Address{
		Recipient:  "Sari",
		Phone:      "0812000000",
		Line1:      "Jl. Merdeka 10",
		City:       "Bandung",
		Province:   "Jawa Barat",
		PostalCode: "40111",
	}

	value, err := addr.Value()
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, decoded.Scan([]byte(value.(string))))
	require.Equal(t, "Bandung", decoded.City)
	require.Equal(t, "ID", decoded.Country)
}

func TestAddressValueRequiresLine1(t *testing.T) {
	_, err := Address{City: "Bandung"}.Value()
	require.Error(t, err)
}

func TestAddressScanNil(t *testing.T) {
	addr := Address{City: "stale"}
	require.NoError(t, addr.Scan(nil))
	require.Empty(t, addr.City)
}

package enums

import "fmt"

// CommissionStatus tracks a commission payout. Paid and cancelled are terminal.
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

var validCommissionStatuses = []CommissionStatus{
	CommissionStatusPending,
	CommissionStatusPaid,
	CommissionStatusCancelled,
}

// String implements fmt.Stringer.
func (s CommissionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CommissionStatus.
func (s CommissionStatus) IsValid() bool {
	for _, candidate := range validCommissionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCommissionStatus converts raw input into a CommissionStatus.
func ParseCommissionStatus(value string) (CommissionStatus, error) {
	for _, candidate := range validCommissionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid commission status %q", value)
}

// CommissionType records whether the earner is an affiliate or a plain reseller.
type CommissionType string

const (
	CommissionTypeReseller  CommissionType = "reseller"
	CommissionTypeAffiliate CommissionType = "affiliate"
)

// String implements fmt.Stringer.
func (t CommissionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CommissionType.
func (t CommissionType) IsValid() bool {
	return t == CommissionTypeReseller || t == CommissionTypeAffiliate
}

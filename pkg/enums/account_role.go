package enums

import "fmt"

// AccountRole gates which API surfaces an account may use.
type AccountRole string

const (
	AccountRoleBuyer    AccountRole = "buyer"
	AccountRoleReseller AccountRole = "reseller"
	AccountRoleCashier  AccountRole = "cashier"
	AccountRoleAdmin    AccountRole = "admin"
)

var validAccountRoles = []AccountRole{
	AccountRoleBuyer,
	AccountRoleReseller,
	AccountRoleCashier,
	AccountRoleAdmin,
}

func (r AccountRole) String() string {
	return string(r)
}

func (r AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}

package enums

// PosSessionStatus marks whether a cashier drawer is open.
type PosSessionStatus string

const (
	PosSessionStatusOpen   PosSessionStatus = "open"
	PosSessionStatusClosed PosSessionStatus = "closed"
)

func (s PosSessionStatus) String() string {
	return string(s)
}

func (s PosSessionStatus) IsValid() bool {
	return s == PosSessionStatusOpen || s == PosSessionStatusClosed
}

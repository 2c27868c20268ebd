package valueobject

import "fmt"

// HomeOwnership is an immutable value object for the applicant's housing status.
type HomeOwnership struct {
	value string
}

var (
	HomeOwnershipRent     = HomeOwnership{value: "RENT"}
	HomeOwnershipMortgage = HomeOwnership{value: "MORTGAGE"}
	HomeOwnershipOwn      = HomeOwnership{value: "OWN"}
)

// HomeOwnershipFromString parses the wire representation. Matching is case-sensitive.
func HomeOwnershipFromString(s string) (HomeOwnership, error) {
	switch s {
	case "RENT":
		return HomeOwnershipRent, nil
	case "MORTGAGE":
		return HomeOwnershipMortgage, nil
	case "OWN":
		return HomeOwnershipOwn, nil
	default:
		return HomeOwnership{}, fmt.Errorf("invalid home ownership: %q", s)
	}
}

// String returns the string representation.
func (h HomeOwnership) String() string {
	return h.value
}

// IsRenting reports whether the applicant rents their home.
func (h HomeOwnership) IsRenting() bool {
	return h.value == HomeOwnershipRent.value
}

// IsZero returns true if the HomeOwnership has not been set.
func (h HomeOwnership) IsZero() bool {
	return h.value == ""
}

// Equal checks equality with another HomeOwnership.
func (h HomeOwnership) Equal(other HomeOwnership) bool {
	return h.value == other.value
}

package enums

import "fmt"

// SalonRole distinguishes the salon owner from invited stylists.
type SalonRole string

const (
	SalonRoleOwner   SalonRole = "owner"
	SalonRoleStylist SalonRole = "stylist"
)

var validSalonRoles = []SalonRole{SalonRoleOwner, SalonRoleStylist}

// String implements fmt.Stringer.
func (r SalonRole) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r SalonRole) IsValid() bool {
	for _, candidate := range validSalonRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseSalonRole converts raw input into a SalonRole.
func ParseSalonRole(value string) (SalonRole, error) {
	for _, candidate := range validSalonRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid salon role %q", value)
}

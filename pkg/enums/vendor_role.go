package enums

import "fmt"

// VendorRole records whether a vendor makes products, sells them to us, or both.
type VendorRole string

const (
	VendorRoleManufacturer VendorRole = "manufacturer"
	VendorRoleSupplier     VendorRole = "supplier"
	VendorRoleBoth         VendorRole = "both"
)

var validVendorRoles = []VendorRole{
	VendorRoleManufacturer,
	VendorRoleSupplier,
	VendorRoleBoth,
}

// String implements fmt.Stringer.
func (r VendorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known VendorRole.
func (r VendorRole) IsValid() bool {
	for _, candidate := range validVendorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanSupply reports whether material orders may be placed with the vendor.
func (r VendorRole) CanSupply() bool {
	return r == VendorRoleSupplier || r == VendorRoleBoth
}

// ParseVendorRole converts raw input into a VendorRole.
func ParseVendorRole(value string) (VendorRole, error) {
	for _, candidate := range validVendorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor role %q", value)
}

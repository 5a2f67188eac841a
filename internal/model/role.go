package model

// Role codes. Roles are a fixed enumeration carried on the user row; access
// rights derive from the role code plus the user's zone list.
const (
	RoleSuperAdmin     = "SUPER_ADMIN"
	RoleLocationAdmin  = "LOCATION_ADMIN"
	RoleShopOwner      = "SHOP_OWNER"
	RoleVendor         = "VENDOR"
	RoleCompanyManager = "COMPANY_MANAGER"
)

var validRoles = map[string]bool{
	RoleSuperAdmin:     true,
	RoleLocationAdmin:  true,
	RoleShopOwner:      true,
	RoleVendor:         true,
	RoleCompanyManager: true,
}

func ValidRole(code string) bool { return validRoles[code] }

// Package policy centralizes role/zone authorization decisions so route
// handlers and services evaluate access the same way instead of
// re-implementing the checks per endpoint.
package policy

import "lilium-backend/internal/model"

// ZoneScope returns the zones a caller is restricted to. A nil result means
// unrestricted (all zones). SUPER_ADMIN always sees everything; everyone else
// is confined to their assigned zone list.
func ZoneScope(role string, zones model.ZoneList) model.ZoneList {
	if role == model.RoleSuperAdmin {
		return nil
	}
	return zones
}

// InScope reports whether an entity available in entityZones is visible to a
// caller with the given scope. An entity with no zones is available
// everywhere.
func InScope(scope model.ZoneList, entityZones model.ZoneList) bool {
	if scope == nil {
		return true
	}
	return scope.Overlaps(entityZones)
}

// CanManageCompany reports whether the role may create or edit companies.
func CanManageCompany(role string) bool {
	return role == model.RoleSuperAdmin || role == model.RoleLocationAdmin
}

// CanManageStock reports whether the role may mutate inventory.
func CanManageStock(role string) bool {
	switch role {
	case model.RoleSuperAdmin, model.RoleLocationAdmin, model.RoleVendor, model.RoleCompanyManager:
		return true
	}
	return false
}

package policy

import (
	"testing"

	"lilium-backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestZoneScope(t *testing.T) {
	zones := model.ZoneList{model.ZoneKarkh}

	assert.Nil(t, ZoneScope(model.RoleSuperAdmin, zones), "super admin is never zone-restricted")
	assert.Equal(t, zones, ZoneScope(model.RoleLocationAdmin, zones))
	assert.Equal(t, zones, ZoneScope(model.RoleVendor, zones))
}

func TestInScope(t *testing.T) {
	karkh := model.ZoneList{model.ZoneKarkh}
	rusafa := model.ZoneList{model.ZoneRusafa}
	both := model.ZoneList{model.ZoneKarkh, model.ZoneRusafa}

	assert.True(t, InScope(nil, karkh), "nil scope sees everything")
	assert.True(t, InScope(karkh, nil), "entity with no zones is available everywhere")
	assert.True(t, InScope(karkh, karkh))
	assert.True(t, InScope(karkh, both))
	assert.False(t, InScope(karkh, rusafa))
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, CanManageCompany(model.RoleSuperAdmin))
	assert.True(t, CanManageCompany(model.RoleLocationAdmin))
	assert.False(t, CanManageCompany(model.RoleVendor))
	assert.False(t, CanManageCompany(model.RoleShopOwner))

	assert.True(t, CanManageStock(model.RoleVendor))
	assert.True(t, CanManageStock(model.RoleCompanyManager))
	assert.False(t, CanManageStock(model.RoleShopOwner))
}

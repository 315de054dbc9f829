package services

import (
	"errors"
	"testing"

	"mosaic/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 内存数据库，每个测试独立
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Module{},
		&models.ModuleAuthorization{},
	))
	return db
}

func seedModule(t *testing.T, db *gorm.DB, code, name string, active bool) *models.Module {
	t.Helper()

	module := &models.Module{
		Code:     code,
		Name:     name,
		Version:  "1.0.0",
		Category: "test",
		IsActive: active,
	}
	require.NoError(t, db.Create(module).Error)
	return module
}

func TestIsEnabled_NoRecordMeansDenied(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	enabled, err := service.IsEnabled("inventory-items", 1)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestUpsert_EnableStampsOperatorAndTime(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	auth, err := service.Upsert("inventory-items", "库存物料", 1, true, 42, "admin")
	require.NoError(t, err)

	assert.True(t, auth.Enabled)
	require.NotNil(t, auth.EnabledBy)
	assert.Equal(t, uint(42), *auth.EnabledBy)
	require.NotNil(t, auth.EnabledAt)

	enabled, err := service.IsEnabled("inventory-items", 1)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestUpsert_DisableClearsStamps(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	_, err := service.Upsert("inventory-items", "库存物料", 1, true, 42, "admin")
	require.NoError(t, err)

	auth, err := service.Upsert("inventory-items", "库存物料", 1, false, 42, "admin")
	require.NoError(t, err)

	assert.False(t, auth.Enabled)
	assert.Nil(t, auth.EnabledBy)
	assert.Nil(t, auth.EnabledAt)

	// 停用已停用的模块应当幂等
	auth, err = service.Upsert("inventory-items", "库存物料", 1, false, 42, "admin")
	require.NoError(t, err)
	assert.False(t, auth.Enabled)
	assert.Nil(t, auth.EnabledBy)
	assert.Nil(t, auth.EnabledAt)
}

func TestUpsert_SingleRowPerModuleAndTenant(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	// 反复开关只应维护同一条记录
	for i := 0; i < 10; i++ {
		_, err := service.Upsert("warehouses", "仓库管理", 7, i%2 == 0, 1, "admin")
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.ModuleAuthorization{}).
		Where("module_code = ? AND tenant_id = ?", "warehouses", 7).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_TenantIsolation(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	_, err := service.Upsert("inventory-items", "库存物料", 1, true, 1, "admin")
	require.NoError(t, err)

	enabled, err := service.IsEnabled("inventory-items", 2)
	require.NoError(t, err)
	assert.False(t, enabled, "另一个租户不应继承授权")
}

func TestToggleByCode_UnknownModule(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	_, err := service.ToggleByCode("no-such-module", 1, true, 1, "admin")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestToggleByCode_UsesRegistryName(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	seedModule(t, db, "reports", "报表中心", true)

	auth, err := service.ToggleByCode("reports", 3, true, 9, "tenant-admin")
	require.NoError(t, err)
	assert.Equal(t, "报表中心", auth.ModuleName)
	assert.Equal(t, uint(3), auth.TenantID)
	assert.True(t, auth.Enabled)
}

func TestListRegisteredModules_DefaultDenyAndActiveOnly(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	seedModule(t, db, "inventory-items", "库存物料", true)
	seedModule(t, db, "warehouses", "仓库管理", true)
	seedModule(t, db, "legacy-module", "已下线模块", false)

	_, err := service.Upsert("inventory-items", "库存物料", 1, true, 1, "admin")
	require.NoError(t, err)

	rows, err := service.ListRegisteredModules(1)
	require.NoError(t, err)
	require.Len(t, rows, 2, "下线模块不应出现在列表中")

	byCode := make(map[string]bool, len(rows))
	for _, row := range rows {
		byCode[row.ModuleCode] = row.IsAuthorized
	}
	assert.True(t, byCode["inventory-items"])
	assert.False(t, byCode["warehouses"], "从未开通的模块应标记为未授权")
}

func TestListRegisteredModules_OtherTenantToggleInvisible(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	seedModule(t, db, "suppliers", "供应商管理", true)

	_, err := service.Upsert("suppliers", "供应商管理", 1, true, 1, "admin")
	require.NoError(t, err)

	rows, err := service.ListRegisteredModules(2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsAuthorized)
}

func TestGetWithPage_ScopedToTenant(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	_, err := service.Upsert("inventory-items", "库存物料", 1, true, 1, "admin")
	require.NoError(t, err)
	_, err = service.Upsert("warehouses", "仓库管理", 1, false, 1, "admin")
	require.NoError(t, err)
	_, err = service.Upsert("inventory-items", "库存物料", 2, true, 1, "admin")
	require.NoError(t, err)

	auths, total, err := service.GetWithPage(1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, auths, 2)
	for _, auth := range auths {
		assert.Equal(t, uint(1), auth.TenantID)
	}
}

func TestGetByID_TenantScoped(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleAuthorizationService(db, nil)

	auth, err := service.Upsert("inventory-items", "库存物料", 1, true, 1, "admin")
	require.NoError(t, err)

	_, err = service.GetByID(auth.ID, 2)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "跨租户按ID访问应当404")

	found, err := service.GetByID(auth.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "inventory-items", found.ModuleCode)
}

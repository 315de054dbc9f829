package services

import (
	"errors"
	"testing"

	"mosaic/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func validParams() *ModuleParams {
	return &ModuleParams{
		Code:     "inventory-items",
		Name:     "库存物料",
		Version:  "1.0.0",
		Category: "inventory",
	}
}

func TestRegistryCreate_Valid(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	params := validParams()
	params.Metadata = map[string]interface{}{"icon": "box"}

	module, err := service.Create(params)
	require.NoError(t, err)
	assert.Equal(t, "inventory-items", module.Code)
	assert.True(t, module.IsActive)
	assert.NotEmpty(t, module.Metadata)
}

func TestRegistryCreate_DuplicateCodeLeavesExistingUntouched(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	_, err := service.Create(validParams())
	require.NoError(t, err)

	dup := validParams()
	dup.Name = "冒名顶替"
	dup.Version = "9.9.9"
	_, err = service.Create(dup)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// 已有记录不应被覆盖
	existing, err := service.GetByCode("inventory-items")
	require.NoError(t, err)
	assert.Equal(t, "库存物料", existing.Name)
	assert.Equal(t, "1.0.0", existing.Version)
}

func TestRegistryCreate_InvalidCode(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	for _, code := range []string{"Bad_Code", "-leading", "trailing-", "x", "有中文"} {
		params := validParams()
		params.Code = code
		_, err := service.Create(params)
		assert.True(t, errors.Is(err, ErrInvalidModuleCode), "code=%s", code)
	}
}

func TestRegistryCreate_InvalidVersion(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	params := validParams()
	params.Version = "banana"

	_, err := service.Create(params)
	require.Error(t, err)

	var validationErrs validator.ValidationErrors
	assert.True(t, errors.As(err, &validationErrs))
}

func TestRegistryUpdate_CodeImmutable(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	module, err := service.Create(validParams())
	require.NoError(t, err)

	params := validParams()
	params.Code = "renamed-module"
	_, err = service.Update(module.ID, params)
	assert.True(t, errors.Is(err, ErrModuleCodeImmutable))

	// 不带code的更新应当通过
	params = validParams()
	params.Code = ""
	params.Name = "库存物料v2"
	params.Version = "1.1.0"
	updated, err := service.Update(module.ID, params)
	require.NoError(t, err)
	assert.Equal(t, "inventory-items", updated.Code)
	assert.Equal(t, "库存物料v2", updated.Name)
	assert.Equal(t, "1.1.0", updated.Version)
}

func TestRegistryUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	_, err := service.Update(999, validParams())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRegistryDeactivate(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	module, err := service.Create(validParams())
	require.NoError(t, err)

	deactivated, err := service.Deactivate(module.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	// 注册表不做物理删除，记录仍可按code取到
	found, err := service.GetByCode("inventory-items")
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestRegistryGetWithFiltersAndPage(t *testing.T) {
	db := newTestDB(t)
	service := NewModuleRegistryService(db)

	seeds := []struct {
		code, name, category string
	}{
		{"inventory-items", "库存物料", "inventory"},
		{"warehouses", "仓库管理", "inventory"},
		{"reports", "报表中心", "platform"},
	}
	for _, s := range seeds {
		params := validParams()
		params.Code = s.code
		params.Name = s.name
		params.Category = s.category
		_, err := service.Create(params)
		require.NoError(t, err)
	}

	// 全量
	modules, total, err := service.GetWithFiltersAndPage("", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, modules, 3)

	// 按分类
	_, total, err = service.GetWithFiltersAndPage("inventory", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 关键词匹配code
	modules, total, err = service.GetWithFiltersAndPage("", "warehouse", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "warehouses", modules[0].Code)

	// 分页
	modules, total, err = service.GetWithFiltersAndPage("", "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, modules, 1)
}

func TestIsValidModuleCode(t *testing.T) {
	valid := []string{"ab", "inventory-items", "a1-b2", "warehouses"}
	for _, code := range valid {
		assert.True(t, isValidModuleCode(code), "code=%s", code)
	}

	invalid := []string{"", "a", "-ab", "ab-", "AB", "a_b", "a b"}
	for _, code := range invalid {
		assert.False(t, isValidModuleCode(code), "code=%s", code)
	}
}

func TestRegistrySeedCatalogCodesAreValid(t *testing.T) {
	for _, code := range []string{
		models.ModuleInventoryItems,
		models.ModuleWarehouses,
		models.ModuleMasterData,
		models.ModuleSuppliers,
		models.ModuleWorkflows,
		models.ModuleReports,
	} {
		assert.True(t, isValidModuleCode(code), "code=%s", code)
	}
}

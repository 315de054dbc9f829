package main

import (
	"fmt"

	"mosaic/internal/database"
	"mosaic/internal/models"
	"mosaic/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据。只建租户、管理员和模块注册表，
// 不预置任何授权记录——新租户对所有模块默认无权。
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认租户
	if err := createDefaultTenant(db); err != nil {
		return fmt.Errorf("创建默认租户失败: %v", err)
	}

	// 2. 创建默认管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	// 3. 初始化模块注册表
	if err := initializeModuleRegistry(db); err != nil {
		return fmt.Errorf("初始化模块注册表失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultTenant 创建默认租户
func createDefaultTenant(db *gorm.DB) error {
	var count int64
	db.Model(&models.Tenant{}).Where("code = ?", "default").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return nil
	}

	tenant := &models.Tenant{
		Name:   "默认租户",
		Code:   "default",
		Status: models.TenantStatusActive,
	}

	if err := db.Create(tenant).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认租户创建成功")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("管理员用户已存在，跳过创建")
		return nil
	}

	// 获取默认租户
	var tenant models.Tenant
	if err := db.Where("code = ?", "default").First(&tenant).Error; err != nil {
		return fmt.Errorf("获取默认租户失败: %v", err)
	}

	user := &models.User{
		TenantID:        tenant.ID,
		Username:        "admin",
		Email:           "admin@mosaic.local",
		Name:            "平台管理员",
		Status:          models.UserStatusActive,
		IsPlatformAdmin: true,
		IsTenantAdmin:   true,
	}

	// TODO: 首次登录后强制修改默认密码
	if err := user.SetPassword("Admin@2025"); err != nil {
		return fmt.Errorf("设置密码失败: %v", err)
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认管理员创建成功（用户名: admin）")
	return nil
}

// initializeModuleRegistry 初始化内置模块注册表
func initializeModuleRegistry(db *gorm.DB) error {
	builtinModules := []models.Module{
		{Code: models.ModuleInventoryItems, Name: "库存物料", Description: "物料主档与库存数量管理", Version: "1.0.0", Category: "inventory", IsActive: true},
		{Code: models.ModuleWarehouses, Name: "仓库管理", Description: "仓库与库位管理", Version: "1.0.0", Category: "inventory", IsActive: true},
		{Code: models.ModuleMasterData, Name: "主数据", Description: "客户、物料等主数据维护", Version: "1.0.0", Category: "foundation", IsActive: true},
		{Code: models.ModuleSuppliers, Name: "供应商管理", Description: "供应商档案与资质管理", Version: "1.0.0", Category: "procurement", IsActive: true},
		{Code: models.ModuleWorkflows, Name: "审批流", Description: "单据审批流程配置与执行", Version: "1.0.0", Category: "platform", IsActive: true},
		{Code: models.ModuleReports, Name: "报表中心", Description: "经营分析报表", Version: "1.0.0", Category: "platform", IsActive: true},
	}

	created := 0
	for _, m := range builtinModules {
		var count int64
		db.Model(&models.Module{}).Where("module_code = ?", m.Code).Count(&count)
		if count > 0 {
			continue
		}

		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("创建模块 %s 失败: %v", m.Code, err)
		}
		created++
	}

	if created > 0 {
		logger.GetLogger().Infof("模块注册表初始化完成，新增 %d 个内置模块", created)
	} else {
		logger.GetLogger().Info("模块注册表已初始化，跳过")
	}
	return nil
}

package database

import (
	"mosaic/internal/models"
	"mosaic/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		// 模块注册表与租户授权
		&models.Module{},
		&models.ModuleAuthorization{},
		// 业务模块
		&models.InventoryItem{},
		&models.Warehouse{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}

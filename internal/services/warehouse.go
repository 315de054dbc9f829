package services

import (
	"fmt"

	"mosaic/internal/models"

	"gorm.io/gorm"
)

// WarehouseService 仓库服务（warehouses模块，租户隔离）
type WarehouseService struct {
	db *gorm.DB
}

func NewWarehouseService(db *gorm.DB) *WarehouseService {
	return &WarehouseService{db: db}
}

// GetWithPage 分页获取当前租户的仓库
func (s *WarehouseService) GetWithPage(tenantID uint, keyword string, page, limit int) ([]*models.Warehouse, int64, error) {
	var warehouses []*models.Warehouse
	var total int64

	query := s.db.Model(&models.Warehouse{}).Where("tenant_id = ?", tenantID)

	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&warehouses).Error
	if err != nil {
		return nil, 0, err
	}

	return warehouses, total, nil
}

// GetByID 获取仓库（租户隔离）
func (s *WarehouseService) GetByID(id, tenantID uint) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&warehouse).Error
	return &warehouse, err
}

// Create 创建仓库，代码在租户内唯一
func (s *WarehouseService) Create(tenantID uint, code, name, address string) (*models.Warehouse, error) {
	var count int64
	s.db.Model(&models.Warehouse{}).Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	warehouse := &models.Warehouse{
		TenantID: tenantID,
		Code:     code,
		Name:     name,
		Address:  address,
		Status:   "active",
	}

	err := s.db.Create(warehouse).Error
	return warehouse, err
}

// Update 更新仓库
func (s *WarehouseService) Update(id, tenantID uint, name, address string) (*models.Warehouse, error) {
	warehouse, err := s.GetByID(id, tenantID)
	if err != nil {
		return nil, err
	}

	warehouse.Name = name
	warehouse.Address = address

	err = s.db.Save(warehouse).Error
	return warehouse, err
}

// Delete 删除仓库
func (s *WarehouseService) Delete(id, tenantID uint) error {
	return s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Warehouse{}).Error
}

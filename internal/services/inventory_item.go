package services

import (
	"fmt"

	"mosaic/internal/models"

	"gorm.io/gorm"
)

// InventoryItemService 库存物料服务（inventory-items模块，租户隔离）
type InventoryItemService struct {
	db *gorm.DB
}

func NewInventoryItemService(db *gorm.DB) *InventoryItemService {
	return &InventoryItemService{db: db}
}

// GetWithPage 分页获取当前租户的物料
func (s *InventoryItemService) GetWithPage(tenantID uint, keyword string, page, limit int) ([]*models.InventoryItem, int64, error) {
	var items []*models.InventoryItem
	var total int64

	query := s.db.Model(&models.InventoryItem{}).Where("tenant_id = ?", tenantID)

	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR sku LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// GetByID 获取物料（租户隔离）
func (s *InventoryItemService) GetByID(id, tenantID uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&item).Error
	return &item, err
}

// Create 创建物料，SKU在租户内唯一
func (s *InventoryItemService) Create(tenantID uint, sku, name, unit string, quantity float64) (*models.InventoryItem, error) {
	var count int64
	s.db.Model(&models.InventoryItem{}).Where("tenant_id = ? AND sku = ?", tenantID, sku).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	item := &models.InventoryItem{
		TenantID: tenantID,
		SKU:      sku,
		Name:     name,
		Unit:     unit,
		Quantity: quantity,
		Status:   "active",
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}

	err := s.db.Create(item).Error
	return item, err
}

// Update 更新物料
func (s *InventoryItemService) Update(id, tenantID uint, name, unit string, quantity float64) (*models.InventoryItem, error) {
	item, err := s.GetByID(id, tenantID)
	if err != nil {
		return nil, err
	}

	item.Name = name
	if unit != "" {
		item.Unit = unit
	}
	item.Quantity = quantity

	err = s.db.Save(item).Error
	return item, err
}

// Delete 删除物料
func (s *InventoryItemService) Delete(id, tenantID uint) error {
	return s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.InventoryItem{}).Error
}

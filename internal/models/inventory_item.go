package models

// InventoryItem 库存物料模型，属于inventory-items模块
type InventoryItem struct {
	BaseModel
	TenantID uint    `json:"tenant_id" gorm:"not null;uniqueIndex:idx_item_tenant_sku"`
	SKU      string  `json:"sku" gorm:"size:100;not null;uniqueIndex:idx_item_tenant_sku"`
	Name     string  `json:"name" gorm:"size:100;not null"`
	Unit     string  `json:"unit" gorm:"size:20;default:'pcs'"`
	Quantity float64 `json:"quantity" gorm:"default:0"`
	Status   string  `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (i *InventoryItem) TableName() string {
	return "inventory_items"
}

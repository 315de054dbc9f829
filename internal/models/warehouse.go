package models

// Warehouse 仓库模型，属于warehouses模块
type Warehouse struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_warehouse_tenant_code"`
	Code     string `json:"code" gorm:"size:50;not null;uniqueIndex:idx_warehouse_tenant_code"`
	Name     string `json:"name" gorm:"size:100;not null"`
	Address  string `json:"address" gorm:"size:255"`
	Status   string `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (w *Warehouse) TableName() string {
	return "warehouses"
}

package models

import "gorm.io/datatypes"

// Module 模块注册表条目。code是全局唯一的模块标识（slug），创建后不可变；
// 模块只通过is_active下线，不做物理删除。
type Module struct {
	BaseModel
	Code        string         `json:"module_code" gorm:"column:module_code;uniqueIndex;size:100;not null"`
	Name        string         `json:"module_name" gorm:"column:module_name;size:100;not null"`
	Description string         `json:"description" gorm:"size:255"`
	Version     string         `json:"version" gorm:"size:20;not null"` // 语义化版本
	Category    string         `json:"category" gorm:"size:50;not null"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	RepoURL     string         `json:"repo_url" gorm:"size:255"`
	DocsURL     string         `json:"docs_url" gorm:"size:255"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"` // 附加链接等扩展信息
}

// TableName 表名
func (m *Module) TableName() string {
	return "modules"
}

// 内置模块代码常量
const (
	ModuleInventoryItems = "inventory-items"
	ModuleWarehouses     = "warehouses"
	ModuleMasterData     = "master-data"
	ModuleSuppliers      = "suppliers"
	ModuleWorkflows      = "workflows"
	ModuleReports        = "reports"
)

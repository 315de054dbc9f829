package models

import "time"

// ModuleAuthorization 租户模块授权记录。(module_code, tenant_id)是自然键，
// 唯一索引保证并发开关下不会产生重复行。没有记录等同于未授权（默认拒绝）。
type ModuleAuthorization struct {
	BaseModel
	ModuleCode string     `json:"module_code" gorm:"size:100;not null;uniqueIndex:idx_module_tenant"`
	ModuleName string     `json:"module_name" gorm:"size:100;not null"` // 冗余存储，展示用
	TenantID   uint       `json:"tenant_id" gorm:"not null;uniqueIndex:idx_module_tenant"`
	Enabled    bool       `json:"enabled" gorm:"not null;default:false"`
	EnabledBy  *uint      `json:"enabled_by"` // 启用人，停用时清空
	EnabledAt  *time.Time `json:"enabled_at"` // 启用时间，停用时清空

	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

// TableName 表名
func (a *ModuleAuthorization) TableName() string {
	return "module_authorizations"
}

// RegisteredModule 注册模块与当前租户授权状态的联合视图（LEFT JOIN结果）
type RegisteredModule struct {
	ModuleCode   string `json:"module_code"`
	ModuleName   string `json:"module_name"`
	Description  string `json:"description"`
	Version      string `json:"version"`
	Category     string `json:"category"`
	IsAuthorized bool   `json:"is_authorized"`
}

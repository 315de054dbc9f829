package services

import (
	"fmt"
	"unicode/utf8"

	"mosaic/internal/models"

	"gorm.io/gorm"
)

type TenantService struct {
	db *gorm.DB
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{db: db}
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *TenantService) GetWithFiltersAndPage(status, keyword string, page, limit int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})

	// 添加过滤条件
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Create 创建租户
func (s *TenantService) Create(name, code string) (*models.Tenant, error) {
	// 验证参数
	if err := s.ValidateCreateParams(name, code); err != nil {
		return nil, err
	}

	// 检查代码是否重复
	var count int64
	s.db.Model(&models.Tenant{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	tenant := &models.Tenant{
		Name:   name,
		Code:   code,
		Status: models.TenantStatusActive,
	}

	err := s.db.Create(tenant).Error
	return tenant, err
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	return &tenant, err
}

// Update 更新租户
func (s *TenantService) Update(id uint, name, status string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if err != nil {
		return nil, err
	}

	if !s.ValidateName(name) {
		return nil, fmt.Errorf("租户名称长度必须在2-50个字符之间")
	}
	if !s.IsValidStatus(status) {
		return nil, fmt.Errorf("状态只能是 active 或 inactive")
	}

	tenant.Name = name
	tenant.Status = status

	err = s.db.Save(&tenant).Error
	return &tenant, err
}

// Activate 激活租户
func (s *TenantService) Activate(id uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusActive)
}

// Deactivate 停用租户
func (s *TenantService) Deactivate(id uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusInactive)
}

func (s *TenantService) setStatus(id uint, status string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if err != nil {
		return nil, err
	}

	tenant.Status = status
	err = s.db.Save(&tenant).Error
	return &tenant, err
}

// IsValidStatus 检查租户状态是否有效
func (s *TenantService) IsValidStatus(status string) bool {
	switch status {
	case models.TenantStatusActive, models.TenantStatusInactive:
		return true
	default:
		return false
	}
}

// IsActive 检查租户是否激活
func (s *TenantService) IsActive(tenant *models.Tenant) bool {
	return tenant.Status == models.TenantStatusActive
}

// ========== 验证相关方法 ==========

// ValidateName 验证租户名称长度（按字符数而非字节数）
func (s *TenantService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// ValidateCode 验证租户代码
func (s *TenantService) ValidateCode(code string) bool {
	if len(code) < 2 || len(code) > 20 {
		return false
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// ValidateCreateParams 验证创建参数
func (s *TenantService) ValidateCreateParams(name, code string) error {
	if !s.ValidateName(name) {
		return fmt.Errorf("租户名称长度必须在2-50个字符之间")
	}
	if !s.ValidateCode(code) {
		return fmt.Errorf("租户代码长度必须在2-20个字符之间，且只能包含字母和数字")
	}
	return nil
}

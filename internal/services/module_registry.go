package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"mosaic/internal/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 注册表校验错误
var (
	ErrModuleCodeImmutable = errors.New("模块代码创建后不可修改")
	ErrInvalidModuleCode   = errors.New("模块代码只能包含小写字母、数字和连字符，长度2-100")
)

type ModuleRegistryService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// ModuleParams 创建/更新模块的参数
type ModuleParams struct {
	Code        string                 `json:"module_code" validate:"required"`
	Name        string                 `json:"module_name" validate:"required,max=100"`
	Description string                 `json:"description" validate:"max=255"`
	Version     string                 `json:"version" validate:"required,semver"`
	Category    string                 `json:"category" validate:"required,max=50"`
	IsActive    *bool                  `json:"is_active"`
	RepoURL     string                 `json:"repo_url" validate:"omitempty,url"`
	DocsURL     string                 `json:"docs_url" validate:"omitempty,url"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func NewModuleRegistryService(db *gorm.DB) *ModuleRegistryService {
	return &ModuleRegistryService{
		db:       db,
		validate: validator.New(),
	}
}

// GetWithFiltersAndPage 分页查询注册表（按创建时间降序）
func (s *ModuleRegistryService) GetWithFiltersAndPage(category, keyword string, page, limit int) ([]*models.Module, int64, error) {
	var modules []*models.Module
	var total int64

	query := s.db.Model(&models.Module{})

	if category != "" {
		query = query.Where("category = ?", category)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("module_name LIKE ? OR module_code LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&modules).Error
	if err != nil {
		return nil, 0, err
	}

	return modules, total, nil
}

// GetByID 根据ID获取模块
func (s *ModuleRegistryService) GetByID(id uint) (*models.Module, error) {
	var module models.Module
	err := s.db.First(&module, id).Error
	return &module, err
}

// GetByCode 根据模块代码获取模块
func (s *ModuleRegistryService) GetByCode(code string) (*models.Module, error) {
	var module models.Module
	err := s.db.Where("module_code = ?", code).First(&module).Error
	return &module, err
}

// Create 创建模块（安装/种子步骤调用），代码重复返回gorm.ErrDuplicatedKey
func (s *ModuleRegistryService) Create(params *ModuleParams) (*models.Module, error) {
	if err := s.validateParams(params); err != nil {
		return nil, err
	}

	// 检查代码是否重复
	var count int64
	s.db.Model(&models.Module{}).Where("module_code = ?", params.Code).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	module := &models.Module{
		Code:        params.Code,
		Name:        params.Name,
		Description: params.Description,
		Version:     params.Version,
		Category:    params.Category,
		IsActive:    true,
		RepoURL:     params.RepoURL,
		DocsURL:     params.DocsURL,
	}
	if params.IsActive != nil {
		module.IsActive = *params.IsActive
	}
	if params.Metadata != nil {
		meta, err := toJSON(params.Metadata)
		if err != nil {
			return nil, err
		}
		module.Metadata = meta
	}

	err := s.db.Create(module).Error
	return module, err
}

// Update 全量更新模块，代码不可变
func (s *ModuleRegistryService) Update(id uint, params *ModuleParams) (*models.Module, error) {
	var module models.Module
	if err := s.db.First(&module, id).Error; err != nil {
		return nil, err
	}

	// 模块代码创建后不可变
	if params.Code != "" && params.Code != module.Code {
		return nil, ErrModuleCodeImmutable
	}
	params.Code = module.Code
	if err := s.validateParams(params); err != nil {
		return nil, err
	}

	module.Name = params.Name
	module.Description = params.Description
	module.Version = params.Version
	module.Category = params.Category
	module.RepoURL = params.RepoURL
	module.DocsURL = params.DocsURL
	if params.IsActive != nil {
		module.IsActive = *params.IsActive
	}
	if params.Metadata != nil {
		meta, err := toJSON(params.Metadata)
		if err != nil {
			return nil, err
		}
		module.Metadata = meta
	}

	err := s.db.Save(&module).Error
	return &module, err
}

// Deactivate 下线模块（注册表不做物理删除）
func (s *ModuleRegistryService) Deactivate(id uint) (*models.Module, error) {
	var module models.Module
	if err := s.db.First(&module, id).Error; err != nil {
		return nil, err
	}

	module.IsActive = false
	err := s.db.Save(&module).Error
	return &module, err
}

// validateParams 校验模块参数
func (s *ModuleRegistryService) validateParams(params *ModuleParams) error {
	if !isValidModuleCode(params.Code) {
		return ErrInvalidModuleCode
	}
	return s.validate.Struct(params)
}

// isValidModuleCode 模块代码必须是小写slug
func isValidModuleCode(code string) bool {
	if len(code) < 2 || len(code) > 100 {
		return false
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	return code[0] != '-' && code[len(code)-1] != '-'
}

// toJSON map转datatypes.JSON
func toJSON(m map[string]interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("序列化metadata失败: %v", err)
	}
	return datatypes.JSON(data), nil
}

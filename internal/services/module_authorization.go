package services

import (
	"errors"
	"time"

	"mosaic/internal/models"
	"mosaic/pkg/events"
	"mosaic/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModuleAuthorizationService 租户模块授权服务
type ModuleAuthorizationService struct {
	db  *gorm.DB
	bus *events.RedisBus // 可为nil（如测试环境），事件发布失败不影响主流程
}

func NewModuleAuthorizationService(db *gorm.DB, bus *events.RedisBus) *ModuleAuthorizationService {
	return &ModuleAuthorizationService{
		db:  db,
		bus: bus,
	}
}

// GetWithPage 分页获取当前租户的授权记录
func (s *ModuleAuthorizationService) GetWithPage(tenantID uint, page, limit int) ([]*models.ModuleAuthorization, int64, error) {
	var auths []*models.ModuleAuthorization
	var total int64

	query := s.db.Model(&models.ModuleAuthorization{}).Where("tenant_id = ?", tenantID)

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&auths).Error
	if err != nil {
		return nil, 0, err
	}

	return auths, total, nil
}

// GetByID 获取单条授权记录（租户隔离）
func (s *ModuleAuthorizationService) GetByID(id, tenantID uint) (*models.ModuleAuthorization, error) {
	var auth models.ModuleAuthorization
	err := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&auth).Error
	return &auth, err
}

// ListRegisteredModules 列出注册表中的激活模块及当前租户的授权状态。
// 注册表为左表，没有授权记录的模块is_authorized=false（默认拒绝）。
func (s *ModuleAuthorizationService) ListRegisteredModules(tenantID uint) ([]*models.RegisteredModule, error) {
	var rows []*models.RegisteredModule
	err := s.db.Table("modules").
		Select("modules.module_code, modules.module_name, modules.description, modules.version, modules.category, COALESCE(module_authorizations.enabled, false) AS is_authorized").
		Joins("LEFT JOIN module_authorizations ON module_authorizations.module_code = modules.module_code AND module_authorizations.tenant_id = ?", tenantID).
		Where("modules.is_active = ?", true).
		Order("modules.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// Upsert 按(module_code, tenant_id)自然键原子写入授权状态。
// 启用时记录操作人和时间，停用时清空两者。并发开关依赖唯一索引上的
// ON CONFLICT，不做先查后写。
func (s *ModuleAuthorizationService) Upsert(moduleCode, moduleName string, tenantID uint, enabled bool, operatorID uint, operator string) (*models.ModuleAuthorization, error) {
	auth := &models.ModuleAuthorization{
		ModuleCode: moduleCode,
		ModuleName: moduleName,
		TenantID:   tenantID,
		Enabled:    enabled,
	}
	if enabled {
		now := time.Now()
		auth.EnabledBy = &operatorID
		auth.EnabledAt = &now
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "module_code"}, {Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"module_name", "enabled", "enabled_by", "enabled_at", "updated_at"}),
	}).Create(auth).Error
	if err != nil {
		return nil, err
	}

	// 冲突更新时Create返回的ID不可靠，按自然键取回当前记录
	var current models.ModuleAuthorization
	if err := s.db.Where("module_code = ? AND tenant_id = ?", moduleCode, tenantID).First(&current).Error; err != nil {
		return nil, err
	}

	s.publishToggleEvent(&current, operatorID, operator)
	return &current, nil
}

// ToggleByCode 按模块代码开关授权（隐式当前租户），模块名取自注册表
func (s *ModuleAuthorizationService) ToggleByCode(moduleCode string, tenantID uint, enabled bool, operatorID uint, operator string) (*models.ModuleAuthorization, error) {
	var module models.Module
	if err := s.db.Where("module_code = ?", moduleCode).First(&module).Error; err != nil {
		return nil, err
	}

	return s.Upsert(module.Code, module.Name, tenantID, enabled, operatorID, operator)
}

// IsEnabled 网关查询：模块对租户是否已授权。没有记录视同未授权。
func (s *ModuleAuthorizationService) IsEnabled(moduleCode string, tenantID uint) (bool, error) {
	var auth models.ModuleAuthorization
	err := s.db.Where("module_code = ? AND tenant_id = ?", moduleCode, tenantID).First(&auth).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return auth.Enabled, nil
}

// publishToggleEvent 发布授权变更事件，失败只记日志
func (s *ModuleAuthorizationService) publishToggleEvent(auth *models.ModuleAuthorization, operatorID uint, operator string) {
	if s.bus == nil {
		return
	}

	eventType := events.EventModuleDisabled
	if auth.Enabled {
		eventType = events.EventModuleEnabled
	}

	event := &events.ModuleEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		TenantID:   auth.TenantID,
		ModuleCode: auth.ModuleCode,
		ModuleName: auth.ModuleName,
		OperatorID: operatorID,
		Operator:   operator,
		OccurredAt: time.Now().Unix(),
	}

	if err := s.bus.PublishModuleEvent(event); err != nil {
		logger.GetLogger().Warnf("发布模块授权事件失败: %v", err)
	}
}

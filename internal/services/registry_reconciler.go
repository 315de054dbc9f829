package services

import (
	"fmt"

	"mosaic/internal/models"
	"mosaic/pkg/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RegistryReconciler 注册表对账调度器。定期扫描授权表中引用了
// 已下线或已不存在模块的记录并告警。只做观测，不改写授权数据——
// 默认拒绝语义下这些记录不构成越权，但说明注册表和授权表脱节了。
type RegistryReconciler struct {
	db       *gorm.DB
	cron     *cron.Cron
	cronSpec string
	running  bool
}

// orphanAuthorization 对账结果行
type orphanAuthorization struct {
	ModuleCode string
	TenantID   uint
	Enabled    bool
}

// NewRegistryReconciler 创建对账调度器
func NewRegistryReconciler(db *gorm.DB, cronSpec string) *RegistryReconciler {
	if cronSpec == "" {
		cronSpec = "@hourly"
	}
	return &RegistryReconciler{
		db:       db,
		cron:     cron.New(),
		cronSpec: cronSpec,
	}
}

// Start 启动调度器
func (r *RegistryReconciler) Start() error {
	if r.running {
		return fmt.Errorf("对账调度器已经在运行")
	}

	_, err := r.cron.AddFunc(r.cronSpec, func() {
		if err := r.Reconcile(); err != nil {
			logger.GetLogger().Errorf("注册表对账失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("无效的cron表达式 %s: %v", r.cronSpec, err)
	}

	r.cron.Start()
	r.running = true

	logger.GetLogger().Infof("注册表对账调度器启动成功，表达式: %s", r.cronSpec)
	return nil
}

// Stop 停止调度器
func (r *RegistryReconciler) Stop() {
	if !r.running {
		return
	}

	r.cron.Stop()
	r.running = false
	logger.GetLogger().Info("注册表对账调度器已停止")
}

// Reconcile 执行一轮对账
func (r *RegistryReconciler) Reconcile() error {
	orphans, err := r.FindOrphans()
	if err != nil {
		return err
	}

	for _, o := range orphans {
		logger.GetLogger().Warnf("授权记录引用了已下线或不存在的模块: module_code=%s tenant_id=%d enabled=%v",
			o.ModuleCode, o.TenantID, o.Enabled)
	}

	if len(orphans) == 0 {
		logger.GetLogger().Debug("注册表对账完成，无孤儿授权记录")
	} else {
		logger.GetLogger().Warnf("注册表对账完成，发现 %d 条孤儿授权记录", len(orphans))
	}

	return nil
}

// FindOrphans 找出模块已下线或不在注册表中的授权记录
func (r *RegistryReconciler) FindOrphans() ([]orphanAuthorization, error) {
	var orphans []orphanAuthorization
	err := r.db.Model(&models.ModuleAuthorization{}).
		Select("module_authorizations.module_code, module_authorizations.tenant_id, module_authorizations.enabled").
		Joins("LEFT JOIN modules ON modules.module_code = module_authorizations.module_code").
		Where("modules.id IS NULL OR modules.is_active = ?", false).
		Scan(&orphans).Error
	return orphans, err
}

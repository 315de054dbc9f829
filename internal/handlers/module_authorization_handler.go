package handlers

import (
	"errors"
	"strconv"

	"mosaic/internal/services"
	"mosaic/pkg/pagination"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpsertAuthorizationRequest 授权写入请求。module_code、module_name和enabled
// 都是必填项，缺失或类型错误在进存储层之前就400。
type UpsertAuthorizationRequest struct {
	ModuleCode string `json:"module_code" binding:"required"`
	ModuleName string `json:"module_name" binding:"required"`
	Enabled    *bool  `json:"enabled" binding:"required"`
}

// ToggleAuthorizationRequest 按模块代码开关的请求体
type ToggleAuthorizationRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type ModuleAuthorizationHandler struct {
	service *services.ModuleAuthorizationService
}

func NewModuleAuthorizationHandler(service *services.ModuleAuthorizationService) *ModuleAuthorizationHandler {
	return &ModuleAuthorizationHandler{
		service: service,
	}
}

// GetAll 分页获取当前租户的授权记录
func (h *ModuleAuthorizationHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	tenantID := c.GetUint("current_tenant_id")

	auths, total, err := h.service.GetWithPage(tenantID, pageParams.Page, pageParams.Limit)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.Limit, total)
	response.SuccessWithPage(c, auths, pageInfo)
}

// GetRegisteredModules 获取注册模块及当前租户的授权状态
func (h *ModuleAuthorizationHandler) GetRegisteredModules(c *gin.Context) {
	tenantID := c.GetUint("current_tenant_id")

	modules, err := h.service.ListRegisteredModules(tenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, modules)
}

// GetByID 获取单条授权记录
func (h *ModuleAuthorizationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	auth, err := h.service.GetByID(uint(id), tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "授权记录不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, auth)
}

// Upsert 按(module_code, tenant_id)写入授权状态
func (h *ModuleAuthorizationHandler) Upsert(c *gin.Context) {
	var req UpsertAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: module_code、module_name和enabled为必填项")
		return
	}

	tenantID := c.GetUint("current_tenant_id")
	operatorID := c.GetUint("user_id")
	operator := c.GetString("username")

	auth, err := h.service.Upsert(req.ModuleCode, req.ModuleName, tenantID, *req.Enabled, operatorID, operator)
	if err != nil {
		response.ServerError(c, "保存失败")
		return
	}

	response.Created(c, auth)
}

// Toggle 按模块代码开关授权（隐式当前租户）
func (h *ModuleAuthorizationHandler) Toggle(c *gin.Context) {
	moduleCode := c.Param("module_code")
	if moduleCode == "" {
		response.BadRequest(c, "模块代码不能为空")
		return
	}

	var req ToggleAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: enabled为必填项")
		return
	}

	tenantID := c.GetUint("current_tenant_id")
	operatorID := c.GetUint("user_id")
	operator := c.GetString("username")

	auth, err := h.service.ToggleByCode(moduleCode, tenantID, *req.Enabled, operatorID, operator)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "模块不存在")
			return
		}
		response.ServerError(c, "保存失败")
		return
	}

	response.Success(c, auth)
}

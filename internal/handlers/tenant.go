package handlers

import (
	"errors"
	"strconv"
	"strings"

	"mosaic/internal/services"
	"mosaic/pkg/pagination"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateTenantRequest 请求结构体
type CreateTenantRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type UpdateTenantRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type TenantHandler struct {
	service *services.TenantService
}

func NewTenantHandler(service *services.TenantService) *TenantHandler {
	return &TenantHandler{
		service: service,
	}
}

// Create 创建租户
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.Create(req.Name, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "租户代码已存在")
			return
		}

		// 验证错误 -> 400
		errMsg := err.Error()
		if strings.Contains(errMsg, "租户名称长度") || strings.Contains(errMsg, "租户代码长度") {
			response.BadRequest(c, errMsg)
			return
		}

		response.ServerError(c, "创建失败")
		return
	}

	response.Created(c, tenant)
}

// GetByID 获取租户
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, tenant)
}

// GetAll 分页获取租户列表
func (h *TenantHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	// 支持按状态筛选、关键词搜索
	status := c.Query("status")
	keyword := c.Query("keyword")

	tenants, total, err := h.service.GetWithFiltersAndPage(status, keyword, pageParams.Page, pageParams.Limit)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.Limit, total)
	response.SuccessWithPage(c, tenants, pageInfo)
}

// Update 更新租户
func (h *TenantHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.Update(uint(id), req.Name, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}

		errMsg := err.Error()
		if strings.Contains(errMsg, "租户名称长度") || strings.Contains(errMsg, "状态只能") {
			response.BadRequest(c, errMsg)
			return
		}

		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, tenant)
}

// Activate 激活租户
func (h *TenantHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.Activate(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.ServerError(c, "激活失败")
		return
	}

	response.SuccessWithMessage(c, "租户激活成功", tenant)
}

// Deactivate 停用租户
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.Deactivate(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.ServerError(c, "停用失败")
		return
	}

	response.SuccessWithMessage(c, "租户停用成功", tenant)
}

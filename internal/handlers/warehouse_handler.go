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

type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

type UpdateWarehouseRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

type WarehouseHandler struct {
	service *services.WarehouseService
}

func NewWarehouseHandler(service *services.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{
		service: service,
	}
}

// GetAll 分页获取仓库列表
func (h *WarehouseHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	tenantID := c.GetUint("current_tenant_id")
	keyword := c.Query("keyword")

	warehouses, total, err := h.service.GetWithPage(tenantID, keyword, pageParams.Page, pageParams.Limit)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.Limit, total)
	response.SuccessWithPage(c, warehouses, pageInfo)
}

// GetByID 获取仓库
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	warehouse, err := h.service.GetByID(uint(id), tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "仓库不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, warehouse)
}

// Create 创建仓库
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	warehouse, err := h.service.Create(tenantID, req.Code, req.Name, req.Address)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "仓库代码已存在")
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Created(c, warehouse)
}

// Update 更新仓库
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	warehouse, err := h.service.Update(uint(id), tenantID, req.Name, req.Address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "仓库不存在")
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, warehouse)
}

// Delete 删除仓库
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	if err := h.service.Delete(uint(id), tenantID); err != nil {
		response.ServerError(c, "删除失败")
		return
	}

	response.Success(c, nil)
}

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

type CreateInventoryItemRequest struct {
	SKU      string  `json:"sku" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

type UpdateInventoryItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

type InventoryItemHandler struct {
	service *services.InventoryItemService
}

func NewInventoryItemHandler(service *services.InventoryItemService) *InventoryItemHandler {
	return &InventoryItemHandler{
		service: service,
	}
}

// GetAll 分页获取物料列表
func (h *InventoryItemHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	tenantID := c.GetUint("current_tenant_id")
	keyword := c.Query("keyword")

	items, total, err := h.service.GetWithPage(tenantID, keyword, pageParams.Page, pageParams.Limit)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.Limit, total)
	response.SuccessWithPage(c, items, pageInfo)
}

// GetByID 获取物料
func (h *InventoryItemHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	item, err := h.service.GetByID(uint(id), tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "物料不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, item)
}

// Create 创建物料
func (h *InventoryItemHandler) Create(c *gin.Context) {
	var req CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	item, err := h.service.Create(tenantID, req.SKU, req.Name, req.Unit, req.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "SKU已存在")
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Created(c, item)
}

// Update 更新物料
func (h *InventoryItemHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := c.GetUint("current_tenant_id")

	item, err := h.service.Update(uint(id), tenantID, req.Name, req.Unit, req.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "物料不存在")
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, item)
}

// Delete 删除物料
func (h *InventoryItemHandler) Delete(c *gin.Context) {
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

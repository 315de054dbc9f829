package handlers

import (
	"errors"
	"strconv"

	"mosaic/internal/services"
	"mosaic/pkg/pagination"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ModuleRegistryHandler struct {
	service *services.ModuleRegistryService
}

func NewModuleRegistryHandler(service *services.ModuleRegistryService) *ModuleRegistryHandler {
	return &ModuleRegistryHandler{
		service: service,
	}
}

// GetAll 分页获取注册表（支持category和keyword筛选）
func (h *ModuleRegistryHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	category := c.Query("category")
	keyword := c.Query("keyword")

	modules, total, err := h.service.GetWithFiltersAndPage(category, keyword, pageParams.Page, pageParams.Limit)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.Limit, total)
	response.SuccessWithPage(c, modules, pageInfo)
}

// GetByID 获取单个模块
func (h *ModuleRegistryHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	module, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "模块不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, module)
}

// Create 注册新模块，代码重复返回409且不改动已有记录
func (h *ModuleRegistryHandler) Create(c *gin.Context) {
	var params services.ModuleParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	module, err := h.service.Create(&params)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Conflict(c, "模块代码已存在")
			return
		}
		if isRegistryValidationError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "创建失败")
		return
	}

	response.Created(c, module)
}

// Update 全量更新模块
func (h *ModuleRegistryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var params services.ModuleParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	module, err := h.service.Update(uint(id), &params)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "模块不存在")
			return
		}
		if isRegistryValidationError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "更新失败")
		return
	}

	response.Success(c, module)
}

// Deactivate 下线模块
func (h *ModuleRegistryHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	module, err := h.service.Deactivate(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "模块不存在")
			return
		}
		response.ServerError(c, "下线失败")
		return
	}

	response.SuccessWithMessage(c, "模块已下线", module)
}

// isRegistryValidationError 区分校验错误和系统错误
func isRegistryValidationError(err error) bool {
	if errors.Is(err, services.ErrModuleCodeImmutable) || errors.Is(err, services.ErrInvalidModuleCode) {
		return true
	}
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

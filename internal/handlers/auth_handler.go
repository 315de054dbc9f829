package handlers

import (
	"errors"
	"strings"
	"time"

	"mosaic/internal/services"
	"mosaic/pkg/jwt"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	userService   *services.UserService
	tenantService *services.TenantService
	jwtManager    *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, tenantService *services.TenantService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		tenantService: tenantService,
		jwtManager:    jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	TenantID        uint   `json:"tenant_id"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
	IsTenantAdmin   bool   `json:"is_tenant_admin"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 检查用户状态
	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(
		user.ID,
		user.TenantID,
		user.Username,
		user.IsPlatformAdmin,
		user.IsTenantAdmin,
	)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间，失败不影响登录流程
	_ = h.userService.UpdateLastLogin(user.ID)

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:              user.ID,
			Username:        user.Username,
			Email:           user.Email,
			Name:            user.Name,
			TenantID:        user.TenantID,
			IsPlatformAdmin: user.IsPlatformAdmin,
			IsTenantAdmin:   user.IsTenantAdmin,
		},
	}

	response.Success(c, resp)
}

// Logout 用户登出。Token到期自动失效，前端应删除本地token并失效模块授权快照。
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		// 没有有效token也算登出成功
		response.Success(c, gin.H{"message": "登出成功"})
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		response.Success(c, gin.H{"message": "登出成功"})
		return
	}

	response.Success(c, gin.H{
		"message":     "登出成功",
		"user_id":     claims.UserID,
		"username":    claims.Username,
		"logout_time": time.Now(),
	})
}

// RefreshToken 刷新Token，保持当前租户
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "缺少认证头")
		return
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	newToken, err := h.jwtManager.RefreshToken(tokenString)
	if err != nil {
		response.Unauthorized(c, "Token无效")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()
	response.Success(c, gin.H{
		"token":      newToken,
		"expires_at": expiresAt,
	})
}

// Me 获取当前用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.Unauthorized(c, "用户不存在")
		return
	}

	response.Success(c, gin.H{
		"user":              user,
		"current_tenant_id": c.GetUint("current_tenant_id"),
	})
}

// SwitchTenant 平台管理员切换当前操作租户。签发新token后，
// 客户端应失效本地模块授权快照并用新token重新拉取。
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, "请先登录")
		return
	}
	jwtClaims := claims.(*jwt.JWTClaims)

	if !jwtClaims.IsPlatformAdmin {
		response.Forbidden(c, "仅平台管理员可以切换租户")
		return
	}

	var req SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	// 目标租户必须存在且激活
	tenant, err := h.tenantService.GetByID(req.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	if !h.tenantService.IsActive(tenant) {
		response.BadRequest(c, "租户已停用")
		return
	}

	token, err := h.jwtManager.GenerateTokenWithTenant(
		jwtClaims.UserID,
		jwtClaims.TenantID,
		tenant.ID,
		jwtClaims.Username,
		jwtClaims.IsPlatformAdmin,
		jwtClaims.IsTenantAdmin,
	)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token":             token,
		"current_tenant_id": tenant.ID,
	})
}

package middleware

import (
	"strings"

	"mosaic/internal/models"
	"mosaic/internal/services"
	"mosaic/pkg/jwt"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证与模块授权中间件
type AuthMiddleware struct {
	userService       *services.UserService
	moduleAuthService *services.ModuleAuthorizationService
	jwtManager        *jwt.JWTManager
}

func NewAuthMiddleware(userService *services.UserService, moduleAuthService *services.ModuleAuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		userService:       userService,
		moduleAuthService: moduleAuthService,
		jwtManager:        jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 要求携带有效的Bearer令牌
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取用户信息
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		// 检查用户状态
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("current_tenant_id", claims.CurrentTenantID)
		c.Set("username", claims.Username)
		c.Set("is_platform_admin", claims.IsPlatformAdmin)
		c.Set("is_tenant_admin", claims.IsTenantAdmin)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireModule 模块授权网关。模块级API必须全部挂在这个中间件之后，
// 没有按路由豁免的口子。每个请求都实时查库：没有授权记录或enabled=false
// 一律403，业务逻辑不会被触达。平台管理员也不豁免——网关只看租户状态。
func (m *AuthMiddleware) RequireModule(moduleCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, exists := c.Get("current_tenant_id")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		enabled, err := m.moduleAuthService.IsEnabled(moduleCode, tenantID.(uint))
		if err != nil {
			response.ServerError(c, "模块授权检查失败")
			c.Abort()
			return
		}

		if !enabled {
			response.Forbidden(c, "模块未授权："+moduleCode)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePlatformAdmin 要求平台管理员
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if !user.(*models.User).IsPlatformAdmin {
			response.Forbidden(c, "需要平台管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireTenantAdmin 要求租户管理员（平台管理员视同租户管理员）
func (m *AuthMiddleware) RequireTenantAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		userObj := user.(*models.User)
		if !userObj.IsPlatformAdmin && !userObj.IsTenantAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

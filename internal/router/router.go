package router

import (
	"mosaic/internal/database"
	"mosaic/internal/handlers"
	"mosaic/internal/middleware"
	"mosaic/internal/models"
	"mosaic/internal/services"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	db := database.GetDB()
	bus := database.GetEventBus()

	userService := services.NewUserService(db)
	tenantService := services.NewTenantService(db)
	moduleAuthService := services.NewModuleAuthorizationService(db, bus)
	registryService := services.NewModuleRegistryService(db)

	auth := middleware.NewAuthMiddleware(userService, moduleAuthService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(userService, tenantService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/refresh", authHandler.RefreshToken)

			// 获取当前用户完整信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)

			// 租户切换（仅平台管理员）
			authGroup.POST("/switch-tenant", auth.RequireLogin(), authHandler.SwitchTenant)
		}

		// 租户路由（平台管理员）
		tenantHandler := handlers.NewTenantHandler(tenantService)
		tenants := api.Group("/tenants")
		{
			tenants.POST("", auth.RequireLogin(), auth.RequirePlatformAdmin(), tenantHandler.Create)
			tenants.GET("", auth.RequireLogin(), auth.RequirePlatformAdmin(), tenantHandler.GetAll)
			tenants.GET("/:id", auth.RequireLogin(), auth.RequirePlatformAdmin(), tenantHandler.GetByID)
			tenants.PUT("/:id", auth.RequireLogin(), auth.RequirePlatformAdmin(), tenantHandler.Update)

			tenants.POST("/:id/activate", auth.RequireLogin(), auth.RequirePlatformAdmin(), tenantHandler.Activate)
			tenants.POST("/:id/deactivate", auth.RequireLogin(), auth.RequirePlatformAdmin(), tenantHandler.Deactivate)
		}

		// 模块授权管理（租户管理员）
		moduleAuthHandler := handlers.NewModuleAuthorizationHandler(moduleAuthService)
		moduleAuths := api.Group("/module-authorizations")
		{
			moduleAuths.GET("", auth.RequireLogin(), auth.RequireTenantAdmin(), moduleAuthHandler.GetAll)
			moduleAuths.GET("/registered-modules", auth.RequireLogin(), moduleAuthHandler.GetRegisteredModules)
			moduleAuths.GET("/:id", auth.RequireLogin(), auth.RequireTenantAdmin(), moduleAuthHandler.GetByID)
			moduleAuths.POST("", auth.RequireLogin(), auth.RequireTenantAdmin(), moduleAuthHandler.Upsert)
			moduleAuths.PATCH("/toggle/:module_code", auth.RequireLogin(), auth.RequireTenantAdmin(), moduleAuthHandler.Toggle)
		}

		// 模块注册表（平台管理员）
		registryHandler := handlers.NewModuleRegistryHandler(registryService)
		registry := api.Group("/system/module-registry")
		{
			registry.GET("", auth.RequireLogin(), auth.RequirePlatformAdmin(), registryHandler.GetAll)
			registry.GET("/:id", auth.RequireLogin(), auth.RequirePlatformAdmin(), registryHandler.GetByID)
			registry.POST("", auth.RequireLogin(), auth.RequirePlatformAdmin(), registryHandler.Create)
			registry.PUT("/:id", auth.RequireLogin(), auth.RequirePlatformAdmin(), registryHandler.Update)
			registry.POST("/:id/deactivate", auth.RequireLogin(), auth.RequirePlatformAdmin(), registryHandler.Deactivate)
		}

		// 库存物料（inventory-items模块，整组挂模块授权网关）
		itemHandler := handlers.NewInventoryItemHandler(services.NewInventoryItemService(db))
		items := api.Group("/inventory/items", auth.RequireLogin(), auth.RequireModule(models.ModuleInventoryItems))
		{
			items.GET("", itemHandler.GetAll)
			items.GET("/:id", itemHandler.GetByID)
			items.POST("", itemHandler.Create)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)
		}

		// 仓库（warehouses模块，整组挂模块授权网关）
		warehouseHandler := handlers.NewWarehouseHandler(services.NewWarehouseService(db))
		warehouses := api.Group("/warehouses", auth.RequireLogin(), auth.RequireModule(models.ModuleWarehouses))
		{
			warehouses.GET("", warehouseHandler.GetAll)
			warehouses.GET("/:id", warehouseHandler.GetByID)
			warehouses.POST("", warehouseHandler.Create)
			warehouses.PUT("/:id", warehouseHandler.Update)
			warehouses.DELETE("/:id", warehouseHandler.Delete)
		}

		// 模块授权事件（WebSocket推送 + 近期事件查询）
		wsHandler := handlers.NewWebSocketHandler(bus)
		api.GET("/ws/module-authorizations", wsHandler.ModuleEvents)
		api.GET("/module-authorizations/events/recent", auth.RequireLogin(), auth.RequireTenantAdmin(), wsHandler.RecentEvents)
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// ping 连通性检查
func ping(c *gin.Context) {
	response.Success(c, gin.H{"message": "pong"})
}

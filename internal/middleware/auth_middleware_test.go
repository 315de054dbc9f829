package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mosaic/internal/models"
	"mosaic/internal/services"
	"mosaic/pkg/jwt"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Module{},
		&models.ModuleAuthorization{},
	))
	return db
}

// newGateRouter 构造一个带登录态注入和模块网关的测试路由
func newGateRouter(t *testing.T, db *gorm.DB, moduleCode string, tenantID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := NewAuthMiddleware(services.NewUserService(db), services.NewModuleAuthorizationService(db, nil))

	router := gin.New()
	router.GET("/gated",
		func(c *gin.Context) {
			c.Set("current_tenant_id", tenantID)
			c.Next()
		},
		auth.RequireModule(moduleCode),
		func(c *gin.Context) {
			response.Success(c, gin.H{"reached": true})
		})
	return router
}

func TestRequireModule_NoRecordDenied(t *testing.T) {
	db := newTestDB(t)
	router := newGateRouter(t, db, "inventory-items", 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireModule_DisabledDenied(t *testing.T) {
	db := newTestDB(t)

	authService := services.NewModuleAuthorizationService(db, nil)
	_, err := authService.Upsert("inventory-items", "库存物料", 1, true, 1, "admin")
	require.NoError(t, err)
	_, err = authService.Upsert("inventory-items", "库存物料", 1, false, 1, "admin")
	require.NoError(t, err)

	router := newGateRouter(t, db, "inventory-items", 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireModule_EnabledPasses(t *testing.T) {
	db := newTestDB(t)

	authService := services.NewModuleAuthorizationService(db, nil)
	_, err := authService.Upsert("inventory-items", "库存物料", 1, true, 1, "admin")
	require.NoError(t, err)

	router := newGateRouter(t, db, "inventory-items", 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireModule_OtherTenantAuthorizationDoesNotLeak(t *testing.T) {
	db := newTestDB(t)

	authService := services.NewModuleAuthorizationService(db, nil)
	_, err := authService.Upsert("inventory-items", "库存物料", 2, true, 1, "admin")
	require.NoError(t, err)

	// 请求方是租户1
	router := newGateRouter(t, db, "inventory-items", 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireModule_MissingLoginContext(t *testing.T) {
	db := newTestDB(t)
	gin.SetMode(gin.TestMode)

	auth := NewAuthMiddleware(services.NewUserService(db), services.NewModuleAuthorizationService(db, nil))

	router := gin.New()
	router.GET("/gated", auth.RequireModule("inventory-items"), func(c *gin.Context) {
		response.Success(c, nil)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLogin_ValidToken(t *testing.T) {
	db := newTestDB(t)
	gin.SetMode(gin.TestMode)

	userService := services.NewUserService(db)
	user, err := userService.Create("admin", "admin@mosaic.local", "管理员", "Admin@2025", 1, true, true)
	require.NoError(t, err)

	token, err := jwt.GetJWTManager().GenerateToken(user.ID, 1, "admin", true, true)
	require.NoError(t, err)

	auth := NewAuthMiddleware(userService, services.NewModuleAuthorizationService(db, nil))

	var gotTenantID uint
	router := gin.New()
	router.GET("/me", auth.RequireLogin(), func(c *gin.Context) {
		gotTenantID = c.GetUint("current_tenant_id")
		response.Success(c, nil)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1), gotTenantID)
}

func TestRequireLogin_RejectsBadToken(t *testing.T) {
	db := newTestDB(t)
	gin.SetMode(gin.TestMode)

	auth := NewAuthMiddleware(services.NewUserService(db), services.NewModuleAuthorizationService(db, nil))

	router := gin.New()
	router.GET("/me", auth.RequireLogin(), func(c *gin.Context) {
		response.Success(c, nil)
	})

	cases := map[string]string{
		"无认证头":     "",
		"非Bearer格式": "Basic abc",
		"伪造token":   "Bearer not-a-jwt",
	}
	for name, header := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestRequireLogin_InactiveUserRejected(t *testing.T) {
	db := newTestDB(t)
	gin.SetMode(gin.TestMode)

	userService := services.NewUserService(db)
	user, err := userService.Create("locked", "locked@mosaic.local", "被禁用", "Admin@2025", 1, false, false)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("status", models.UserStatusLocked).Error)

	token, err := jwt.GetJWTManager().GenerateToken(user.ID, 1, "locked", false, false)
	require.NoError(t, err)

	auth := NewAuthMiddleware(userService, services.NewModuleAuthorizationService(db, nil))

	router := gin.New()
	router.GET("/me", auth.RequireLogin(), func(c *gin.Context) {
		response.Success(c, nil)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

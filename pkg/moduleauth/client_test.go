package moduleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSnapshotServer 模拟registered-modules接口
func newSnapshotServer(t *testing.T, lastToken *string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/module-authorizations/registered-modules" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if lastToken != nil {
			*lastToken = r.Header.Get("Authorization")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": 200,
			"message": "success",
			"data": [
				{"module_code": "inventory-items", "module_name": "库存物料", "version": "1.0.0", "category": "inventory", "is_authorized": true},
				{"module_code": "warehouses", "module_name": "仓库管理", "version": "1.0.0", "category": "inventory", "is_authorized": false}
			]
		}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAuthorized_NotReadyBeforeLoad(t *testing.T) {
	client := NewClient("http://unused", "token")

	authorized, ready := client.Authorized("inventory-items")
	assert.False(t, ready, "未加载快照时应返回未就绪")
	assert.False(t, authorized)
}

func TestLoad_BuildsSnapshot(t *testing.T) {
	server := newSnapshotServer(t, nil)
	client := NewClient(server.URL, "token")

	require.NoError(t, client.Load(context.Background()))

	authorized, ready := client.Authorized("inventory-items")
	assert.True(t, ready)
	assert.True(t, authorized)

	authorized, ready = client.Authorized("warehouses")
	assert.True(t, ready)
	assert.False(t, authorized)

	// 快照里没有的模块视同未授权
	authorized, ready = client.Authorized("no-such-module")
	assert.True(t, ready)
	assert.False(t, authorized)
}

func TestLoad_SendsBearerToken(t *testing.T) {
	var lastToken string
	server := newSnapshotServer(t, &lastToken)
	client := NewClient(server.URL, "my-jwt")

	require.NoError(t, client.Load(context.Background()))
	assert.Equal(t, "Bearer my-jwt", lastToken)
}

func TestLoad_ServerErrorKeepsNotReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "expired")
	require.Error(t, client.Load(context.Background()))

	_, ready := client.Authorized("inventory-items")
	assert.False(t, ready)
}

func TestInvalidate_ResetsSnapshot(t *testing.T) {
	server := newSnapshotServer(t, nil)
	client := NewClient(server.URL, "token")

	require.NoError(t, client.Load(context.Background()))
	client.Invalidate()

	_, ready := client.Authorized("inventory-items")
	assert.False(t, ready, "失效后应回到未就绪状态")
}

func TestSetToken_InvalidatesAndUsesNewToken(t *testing.T) {
	var lastToken string
	server := newSnapshotServer(t, &lastToken)
	client := NewClient(server.URL, "old-token")

	require.NoError(t, client.Load(context.Background()))

	client.SetToken("new-token")
	_, ready := client.Authorized("inventory-items")
	assert.False(t, ready, "换令牌后旧快照应失效")

	require.NoError(t, client.Load(context.Background()))
	assert.Equal(t, "Bearer new-token", lastToken)

	authorized, ready := client.Authorized("inventory-items")
	assert.True(t, ready)
	assert.True(t, authorized)
}

package moduleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client 客户端模块授权守卫。登录后拉取一次当前租户的模块授权快照，
// 之后用 Authorized 判断是否渲染某个模块的界面。只是体验优化，
// 服务端网关才是安全边界。
type Client struct {
	baseURL string
	token   string
	client  *http.Client

	mu       sync.RWMutex
	snapshot map[string]bool
	loaded   bool
}

// registeredModule 注册模块及当前租户的授权状态
type registeredModule struct {
	ModuleCode   string `json:"module_code"`
	ModuleName   string `json:"module_name"`
	Description  string `json:"description"`
	Version      string `json:"version"`
	Category     string `json:"category"`
	IsAuthorized bool   `json:"is_authorized"`
}

// listResponse 标准返回格式
type listResponse struct {
	Code    int                `json:"code"`
	Message string             `json:"message"`
	Data    []registeredModule `json:"data"`
}

// NewClient 创建客户端守卫
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Load 拉取当前租户的模块授权快照（每个会话拉取一次）
func (c *Client) Load(ctx context.Context) error {
	url := c.baseURL + "/api/v1/module-authorizations/registered-modules"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %v", err)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("拉取模块授权快照失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("拉取模块授权快照失败: HTTP %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("解析模块授权快照失败: %v", err)
	}

	snapshot := make(map[string]bool, len(body.Data))
	for _, m := range body.Data {
		snapshot[m.ModuleCode] = m.IsAuthorized
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.loaded = true
	c.mu.Unlock()

	return nil
}

// Authorized 判断模块是否已授权。ready=false 表示快照还没加载，
// 调用方应渲染中性的加载状态而不是直接拒绝。
func (c *Client) Authorized(moduleCode string) (authorized, ready bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return false, false
	}
	// 快照里没有的模块视同未授权
	return c.snapshot[moduleCode], true
}

// Invalidate 失效快照（切换租户或登出时调用）
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.loaded = false
	c.mu.Unlock()
}

// SetToken 更新令牌并失效快照（切换租户后用新令牌重新加载）
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.snapshot = nil
	c.loaded = false
	c.mu.Unlock()
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 模块授权事件类型
const (
	EventModuleEnabled  = "module.enabled"
	EventModuleDisabled = "module.disabled"
)

// ModuleEvent 模块授权变更事件
type ModuleEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	TenantID   uint   `json:"tenant_id"`
	ModuleCode string `json:"module_code"`
	ModuleName string `json:"module_name"`
	OperatorID uint   `json:"operator_id"` // 操作人ID
	Operator   string `json:"operator"`    // 操作人用户名
	OccurredAt int64  `json:"occurred_at"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// RedisBus 基于Redis的事件总线：发布到租户频道，同时保留一份近期事件列表
type RedisBus struct {
	client *redis.Client
	prefix string
}

// 每个租户保留的近期事件条数
const historyLimit = 100

// NewRedisBus 创建事件总线实例
func NewRedisBus(config *Config) *RedisBus {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "mosaic:events"
	}

	return &RedisBus{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (b *RedisBus) Close() error {
	return b.client.Close()
}

// Ping 测试Redis连接
func (b *RedisBus) Ping() error {
	ctx := context.Background()
	return b.client.Ping(ctx).Err()
}

// GetClient 获取底层Redis客户端（用于订阅）
func (b *RedisBus) GetClient() *redis.Client {
	return b.client
}

// ChannelForTenant 租户事件频道名
func (b *RedisBus) ChannelForTenant(tenantID uint) string {
	return fmt.Sprintf("%s:tenant:%d", b.prefix, tenantID)
}

// historyKey 租户近期事件列表键名
func (b *RedisBus) historyKey(tenantID uint) string {
	return fmt.Sprintf("%s:history:%d", b.prefix, tenantID)
}

// PublishModuleEvent 发布模块授权变更事件
func (b *RedisBus) PublishModuleEvent(event *ModuleEvent) error {
	ctx := context.Background()

	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %v", err)
	}

	// 发布到租户频道（在线的控制台会收到推送）
	if err := b.client.Publish(ctx, b.ChannelForTenant(event.TenantID), data).Err(); err != nil {
		return fmt.Errorf("发布事件失败: %v", err)
	}

	// 记录到近期事件列表（左侧入列，裁剪长度）
	historyKey := b.historyKey(event.TenantID)
	if err := b.client.LPush(ctx, historyKey, data).Err(); err != nil {
		return fmt.Errorf("记录事件失败: %v", err)
	}
	b.client.LTrim(ctx, historyKey, 0, historyLimit-1)
	b.client.Expire(ctx, historyKey, 7*24*time.Hour)

	return nil
}

// Subscribe 订阅租户的事件频道
func (b *RedisBus) Subscribe(ctx context.Context, tenantID uint) *redis.PubSub {
	return b.client.Subscribe(ctx, b.ChannelForTenant(tenantID))
}

// RecentEvents 读取租户近期事件
func (b *RedisBus) RecentEvents(tenantID uint, count int64) ([]*ModuleEvent, error) {
	ctx := context.Background()

	if count <= 0 || count > historyLimit {
		count = historyLimit
	}

	items, err := b.client.LRange(ctx, b.historyKey(tenantID), 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取事件列表失败: %v", err)
	}

	events := make([]*ModuleEvent, 0, len(items))
	for _, item := range items {
		var event ModuleEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, &event)
	}

	return events, nil
}

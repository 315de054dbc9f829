package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mosaic/pkg/config"
	"mosaic/pkg/events"
	"mosaic/pkg/jwt"
	"mosaic/pkg/logger"
	"mosaic/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler 模块授权事件推送。控制台连上后能实时收到本租户的
// 模块开关事件，用来刷新会话内的授权快照。纯体验优化，服务端网关
// 仍然每个请求实时查库。
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	bus        *events.RedisBus
	log        *logrus.Logger
	jwtManager *jwt.JWTManager
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(bus *events.RedisBus) *WebSocketHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 同源请求Origin为空，允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		bus:        bus,
		log:        logger.GetLogger(),
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// ModuleEvents 模块授权事件的WebSocket连接
func (h *WebSocketHandler) ModuleEvents(c *gin.Context) {
	// 从查询参数获取token（WebSocket不支持自定义header）
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌"})
		return
	}

	// 升级为WebSocket连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	h.log.WithFields(logrus.Fields{
		"conn_id":   connID,
		"user_id":   claims.UserID,
		"tenant_id": claims.CurrentTenantID,
	}).Info("WebSocket connection established")

	h.handleEventConnection(conn, claims, connID)
}

// handleEventConnection 订阅租户事件频道并转发给客户端
func (h *WebSocketHandler) handleEventConnection(conn *websocket.Conn, claims *jwt.JWTClaims, connID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 订阅当前租户的事件频道
	pubsub := h.bus.Subscribe(ctx, claims.CurrentTenantID)
	defer pubsub.Close()

	// 等待订阅成功
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.WithError(err).Error("Failed to subscribe to event channel")
		return
	}

	// 处理客户端消息（主要是ping/pong）
	go h.readPump(conn, cancel)

	ch := pubsub.Channel()

	const writeTimeout = 10 * time.Second

	// 心跳ticker - 每60秒发送一次ping
	pingTicker := time.NewTicker(60 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.WithField("conn_id", connID).WithError(err).Error("Failed to send ping")
				return
			}

		case msg := <-ch:
			if msg == nil {
				continue
			}

			var event events.ModuleEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.WithError(err).Error("Failed to parse module event")
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(&event); err != nil {
				h.log.WithField("conn_id", connID).WithError(err).Error("Failed to send event to client")
				return
			}
		}
	}
}

// readPump 处理客户端消息
func (h *WebSocketHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	pongWait := 300 * time.Second
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Error("WebSocket unexpected close")
			}
			break
		}
	}
}

// RecentEvents 读取当前租户近期的模块授权事件（HTTP接口，供断线补偿）
func (h *WebSocketHandler) RecentEvents(c *gin.Context) {
	tenantID := c.GetUint("current_tenant_id")

	recent, err := h.bus.RecentEvents(tenantID, 50)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, recent)
}

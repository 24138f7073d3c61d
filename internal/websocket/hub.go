package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/monitoring"
)

// upgraderFactory 创建带有 Origin 验证的 WebSocket 升级器
func upgraderFactory(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			for _, origin := range allowedOrigins {
				if origin == "*" {
					return true
				}
			}

			requestOrigin := r.Header.Get("Origin")
			if requestOrigin == "" {
				// 没有 Origin 视为同源请求
				return true
			}

			for _, origin := range allowedOrigins {
				if requestOrigin == origin {
					return true
				}
			}
			return false
		},
	}
}

// MessageType 定义 WebSocket 消息类型
type MessageType string

const (
	MessageTypeLetterCreated MessageType = "letter_created"
	MessageTypeLetterRead    MessageType = "letter_read"
	MessageTypePing          MessageType = "ping"
	MessageTypePong          MessageType = "pong"
	MessageTypeSubscribe     MessageType = "subscribe"
	MessageTypeUnsubscribe   MessageType = "unsubscribe"
	MessageTypeSubscribed    MessageType = "subscribed"
	MessageTypeError         MessageType = "error"
)

// Message 定义 WebSocket 消息结构。
// CSOID 为 0 表示面向全部组织的频道。
type Message struct {
	Type      MessageType     `json:"type"`
	CSOID     int64           `json:"csoId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Client 代表一个 WebSocket 客户端连接
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *zap.Logger

	// 认证信息
	StaffID int64
	Role    string

	channels map[int64]bool // 订阅的组织频道
	mu       sync.RWMutex
}

// Hub 管理全部 WebSocket 连接，按组织频道分发信函事件
type Hub struct {
	clients  map[string]*Client
	channels map[int64]map[string]*Client // csoID -> clientID -> Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *channelMessage

	mu             sync.RWMutex
	log            *zap.Logger
	allowedOrigins []string
	tokens         *jwt.Manager
}

type channelMessage struct {
	csoID int64 // 0 表示发给所有客户端
	msg   *Message
}

// NewHub 创建 WebSocket Hub
func NewHub(allowedOrigins []string, tokens *jwt.Manager, log *zap.Logger) *Hub {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return &Hub{
		clients:        make(map[string]*Client),
		channels:       make(map[int64]map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *channelMessage, 256),
		log:            log,
		allowedOrigins: allowedOrigins,
		tokens:         tokens,
	}
}

// Run 启动 Hub，ctx 取消时关闭全部连接
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("websocket hub stopped")
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			monitoring.WebsocketClients.Inc()
			h.log.Info("client registered", zap.String("id", client.ID), zap.Int64("staff_id", client.StaffID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for csoID := range client.channels {
					if clients, exists := h.channels[csoID]; exists {
						delete(clients, client.ID)
						if len(clients) == 0 {
							delete(h.channels, csoID)
						}
					}
				}
				delete(h.clients, client.ID)
				close(client.send)
				monitoring.WebsocketClients.Dec()
				h.log.Info("client unregistered", zap.String("id", client.ID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.dispatch(msg)

		case <-ticker.C:
			h.pingAllClients()
		}
	}
}

// LetterCreatedData 新信函通知数据
type LetterCreatedData struct {
	LetterID  int64  `json:"letterId"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Type      string `json:"type"`
	SendToAll bool   `json:"sendToAll"`
	CreatedAt string `json:"createdAt"`
}

// PublishLetterCreated 推送新信函事件。
// 广播信函发给所有客户端，定向信函只发给收件组织的频道。
func (h *Hub) PublishLetterCreated(letter *domain.Letter, recipientIDs []int64) {
	data, err := json.Marshal(LetterCreatedData{
		LetterID:  letter.ID,
		Title:     letter.Title,
		Summary:   letter.Summary,
		Type:      letter.Type,
		SendToAll: letter.SendToAll,
		CreatedAt: letter.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		h.log.Error("failed to marshal letter created data", zap.Error(err))
		return
	}

	if letter.SendToAll {
		h.enqueue(&channelMessage{csoID: 0, msg: &Message{
			Type:      MessageTypeLetterCreated,
			Data:      data,
			Timestamp: time.Now(),
		}})
		return
	}

	for _, csoID := range recipientIDs {
		h.enqueue(&channelMessage{csoID: csoID, msg: &Message{
			Type:      MessageTypeLetterCreated,
			CSOID:     csoID,
			Data:      data,
			Timestamp: time.Now(),
		}})
	}
}

// LetterReadData 已读回执通知数据
type LetterReadData struct {
	LetterID int64  `json:"letterId"`
	CSOID    int64  `json:"csoId"`
	ReadAt   string `json:"readAt"`
}

// PublishLetterRead 推送已读回执事件
func (h *Hub) PublishLetterRead(letterID, csoID int64) {
	data, err := json.Marshal(LetterReadData{
		LetterID: letterID,
		CSOID:    csoID,
		ReadAt:   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.log.Error("failed to marshal letter read data", zap.Error(err))
		return
	}

	h.enqueue(&channelMessage{csoID: csoID, msg: &Message{
		Type:      MessageTypeLetterRead,
		CSOID:     csoID,
		Data:      data,
		Timestamp: time.Now(),
	}})
}

func (h *Hub) enqueue(msg *channelMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast queue full, dropping event", zap.Int64("cso_id", msg.csoID))
	}
}

// dispatch 把消息发给目标频道的客户端，csoID 为 0 时发给全部客户端
func (h *Hub) dispatch(cm *channelMessage) {
	data, err := json.Marshal(cm.msg)
	if err != nil {
		h.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if cm.csoID == 0 {
		for _, client := range h.clients {
			client.trySend(data)
		}
		return
	}

	for _, client := range h.channels[cm.csoID] {
		client.trySend(data)
	}
}

func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("client channel blocked, skipping", zap.String("client_id", c.ID))
	}
}

func (h *Hub) pingAllClients() {
	msg := &Message{Type: MessageTypePing, Timestamp: time.Now()}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.trySend(data)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[string]*Client)
	h.channels = make(map[int64]map[string]*Client)
}

// authenticateClient 认证客户端，要求有效的员工令牌
func (h *Hub) authenticateClient(c *gin.Context) (*Client, error) {
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
	}
	if token == "" {
		return nil, errors.New("missing authentication token")
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &Client{
		ID:       uuid.New().String(),
		StaffID:  claims.StaffID,
		Role:     claims.Role,
		channels: make(map[int64]bool),
		log:      h.log,
	}, nil
}

// HandleWebSocket 处理 WebSocket 连接
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := upgraderFactory(hub.allowedOrigins)

	return func(c *gin.Context) {
		client, err := hub.authenticateClient(c)
		if err != nil {
			hub.log.Warn("websocket authentication failed",
				zap.Error(err), zap.String("remote_addr", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Error("failed to upgrade connection",
				zap.Error(err),
				zap.String("origin", c.Request.Header.Get("Origin")),
				zap.String("remote_addr", c.ClientIP()))
			return
		}

		client.conn = conn
		client.hub = hub
		client.send = make(chan []byte, 256)

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump 处理客户端消息
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("websocket error", zap.Error(err))
			}
			break
		}
		c.handleMessage(&msg)
	}
}

// writePump 发送消息给客户端
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.subscribeChannel(msg.CSOID)
	case MessageTypeUnsubscribe:
		c.unsubscribeChannel(msg.CSOID)
	case MessageTypePong:
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	default:
		c.log.Warn("unknown message type", zap.String("type", string(msg.Type)))
	}
}

// subscribeChannel 订阅某组织的信函事件频道
func (c *Client) subscribeChannel(csoID int64) {
	if csoID <= 0 {
		c.sendError("csoId is required")
		return
	}

	c.mu.Lock()
	c.channels[csoID] = true
	c.mu.Unlock()

	c.hub.mu.Lock()
	if c.hub.channels[csoID] == nil {
		c.hub.channels[csoID] = make(map[string]*Client)
	}
	c.hub.channels[csoID][c.ID] = c
	c.hub.mu.Unlock()

	c.log.Info("subscribed to channel",
		zap.String("client_id", c.ID), zap.Int64("cso_id", csoID))

	c.sendMessage(&Message{
		Type:      MessageTypeSubscribed,
		CSOID:     csoID,
		Timestamp: time.Now(),
	})
}

func (c *Client) unsubscribeChannel(csoID int64) {
	c.mu.Lock()
	delete(c.channels, csoID)
	c.mu.Unlock()

	c.hub.mu.Lock()
	if clients, exists := c.hub.channels[csoID]; exists {
		delete(clients, c.ID)
		if len(clients) == 0 {
			delete(c.hub.channels, csoID)
		}
	}
	c.hub.mu.Unlock()

	c.log.Info("unsubscribed from channel",
		zap.String("client_id", c.ID), zap.Int64("cso_id", csoID))
}

func (c *Client) sendError(errMsg string) {
	c.sendMessage(&Message{
		Type:      MessageTypeError,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
}

func (c *Client) sendMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("failed to marshal message", zap.Error(err))
		return
	}
	c.trySend(data)
}

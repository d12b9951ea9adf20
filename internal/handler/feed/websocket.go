package feed

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	feedService "github.com/zhouzirui/movies/backend/internal/service/feed"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// Subscriber 提供变更事件订阅
type Subscriber interface {
	Subscribe() (<-chan feedService.Event, func())
}

// WebSocketHandler 通过 WebSocket 推送 movie 变更
type WebSocketHandler struct {
	events   Subscriber
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(events Subscriber) *WebSocketHandler {
	return &WebSocketHandler{
		events: events,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/movies", h.handleWebSocket)
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	log.Printf("[websocket] new connection from %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.readLoop(conn, cancel)
	go h.pingLoop(ctx, conn)

	if err := h.send(conn, outgoingMessage{Type: "connected", Timestamp: time.Now().Unix()}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[websocket] closing connection from %s", r.RemoteAddr)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			msg := outgoingMessage{
				Type:      string(evt.Type),
				Data:      evt.Movie,
				Timestamp: evt.Timestamp,
			}
			if err := h.send(conn, msg); err != nil {
				return
			}
		}
	}
}

// readLoop 持续读取客户端帧以处理控制消息，客户端发来的数据直接丢弃
func (h *WebSocketHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msg.Type, err)
		return err
	}
	return nil
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

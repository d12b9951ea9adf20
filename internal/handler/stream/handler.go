package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	feedService "github.com/zhouzirui/movies/backend/internal/service/feed"
	"github.com/zhouzirui/movies/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Subscriber 提供变更事件订阅
type Subscriber interface {
	Subscribe() (<-chan feedService.Event, func())
}

// Handler 通过 Server-Sent Events 推送 movie 变更
type Handler struct {
	events    Subscriber
	heartbeat time.Duration
}

// New 创建 SSE 处理器
func New(events Subscriber) *Handler {
	return &Handler{events: events, heartbeat: defaultHeartbeat}
}

// RegisterRoutes 注册 SSE 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/movies", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	log.Printf("[sse] opening movie stream for %s", r.RemoteAddr)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	if err := utils.SendSSEEvent(w, flusher, "status", map[string]any{
		"message": "stream established",
	}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing movie stream for %s", r.RemoteAddr)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(evt.Type), evt); err != nil {
				log.Printf("[sse] write failed: %v", err)
				return
			}
		case t := <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat "+t.UTC().Format(time.RFC3339)); err != nil {
				return
			}
		}
	}
}

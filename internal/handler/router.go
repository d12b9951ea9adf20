package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/movies/backend/internal/handler/feed"
	"github.com/zhouzirui/movies/backend/internal/handler/movie"
	"github.com/zhouzirui/movies/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/movies/backend/internal/middleware"
	catalogService "github.com/zhouzirui/movies/backend/internal/service/catalog"
	feedService "github.com/zhouzirui/movies/backend/internal/service/feed"
	"github.com/zhouzirui/movies/backend/pkg/utils"
)

const greeting = "Hola desde el backend"

// NewRouter wires HTTP routes to core services. events may be nil to disable the
// change feeds.
func NewRouter(catalogSvc *catalogService.Service, events *feedService.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, http.StatusOK, greeting)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	movie.New(catalogSvc).RegisterRoutes(r)

	if events != nil {
		feed.NewWebSocketHandler(events).RegisterRoutes(r)
		stream.New(events).RegisterRoutes(r)
	}

	return r
}

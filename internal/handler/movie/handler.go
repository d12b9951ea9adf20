package movie

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/movies/backend/internal/middleware"
	"github.com/zhouzirui/movies/backend/internal/service/catalog"
	"github.com/zhouzirui/movies/backend/internal/validator"
	"github.com/zhouzirui/movies/backend/pkg/utils"
)

const (
	msgNotFound = "Movie not found"
	msgDeleted  = "Movie deleted"

	maxBodyBytes = 1 << 20
)

// Handler movie CRUD 的 HTTP 处理器
type Handler struct {
	catalog *catalog.Service
}

// New 创建 movie 处理器
func New(svc *catalog.Service) *Handler {
	return &Handler{catalog: svc}
}

// RegisterRoutes 注册 movie 相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/movies", h.handleList)
	r.Post("/movies", h.handleCreate)
	r.Options("/movies", middleware.Preflight)

	r.Get("/movies/{id}", h.handleGet)
	r.Patch("/movies/{id}", h.handleUpdate)
	r.Delete("/movies/{id}", h.handleDelete)
	r.Options("/movies/{id}", middleware.Preflight)
}

// handleList 按 genre / title 过滤或列出全部
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if genre := query.Get("genre"); genre != "" {
		utils.RespondJSON(w, http.StatusOK, h.catalog.FilterByGenre(ctx, genre))
		return
	}

	if title := query.Get("title"); title != "" {
		m, err := h.catalog.FindByTitle(ctx, title)
		if err != nil {
			utils.RespondJSON(w, http.StatusOK, nil)
			return
		}
		utils.RespondJSON(w, http.StatusOK, m)
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.catalog.List(ctx))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	created, err := h.catalog.Create(r.Context(), body)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	log.Printf("[movies] created movie %s (%s)", created.ID, created.Title)
	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.catalog.Update(r.Context(), id, body)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	log.Printf("[movies] updated movie %s", id)
	utils.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	log.Printf("[movies] deleted movie %s", id)
	utils.RespondMessage(w, http.StatusOK, msgDeleted)
}

// respondServiceError 将 service 层错误映射为 HTTP 响应
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var verr *validator.Error
	switch {
	case errors.As(err, &verr):
		respondViolations(w, verr.Violations)
	case errors.Is(err, catalog.ErrMovieNotFound):
		utils.RespondMessage(w, http.StatusNotFound, msgNotFound)
	default:
		log.Printf("[movies] unexpected error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondViolations 以 400 返回全部校验错误
func respondViolations(w http.ResponseWriter, violations []validator.Violation) {
	if violations == nil {
		violations = []validator.Violation{}
	}
	utils.RespondJSON(w, http.StatusBadRequest, map[string][]validator.Violation{"error": violations})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return body, true
}

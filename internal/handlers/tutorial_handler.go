package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codeverse/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TutorialService is the interface that wraps methods for tutorial content resolution.
type TutorialService interface {
	// Method List retrieve all tutorials together with the store that answered.
	//
	// The database is preferred, the mirror file is read when the database is unavailable or the query fails.
	List(ctx context.Context) ([]models.Tutorial, models.Source, error)
	// Method Get retrieve a tutorial by its id.
	//
	// An error wrapping ErrNotFound is returned if neither store has the tutorial.
	Get(ctx context.Context, id string) (*models.Tutorial, error)
	// Method Create store a new tutorial in the mirror and, when available, in the database.
	//
	// An error wrapping ErrValidation is returned if the request is invalid.
	Create(ctx context.Context, req *models.CreateTutorialRequest) (*models.Tutorial, error)
	// Method Update apply a partial update to a tutorial, creating it if the id is unknown.
	Update(ctx context.Context, id string, req *models.UpdateTutorialRequest) (*models.Tutorial, error)
	// Method Delete remove a tutorial from every store that has it.
	Delete(ctx context.Context, id string) error
	// Method Sync replace the mirror with the database content and return the number of tutorials written.
	//
	// An error wrapping ErrUnavailable is returned if the database cannot be reached.
	Sync(ctx context.Context) (int, error)
	// Method Health report the availability of both stores.
	Health(ctx context.Context) models.HealthStatus
}

// TutorialHandler handles HTTP requests for the tutorials API
type TutorialHandler struct {
	BaseHandler
	service TutorialService
}

// NewTutorialHandler creates a new tutorial handler
func NewTutorialHandler(svc TutorialService, logger *zap.Logger) *TutorialHandler {
	return &TutorialHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all tutorial handler routes
func (h *TutorialHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Route("/tutorials", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Post("/sync", h.Sync)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /api/v1/tutorials
// @Summary List tutorials
// @Description Get every tutorial. The source field tells whether the database or the local mirror answered.
// @Tags tutorials
// @Produce json
// @Success 200 {object} models.TutorialListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tutorials [get]
func (h *TutorialHandler) List(w http.ResponseWriter, r *http.Request) {
	tutorials, source, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list tutorials", zap.Error(err))
		h.respondError(w, r, http.StatusInternalServerError, "failed to get tutorials")
		return
	}

	h.respondJSON(w, http.StatusOK, models.TutorialListResponse{
		Success: true,
		Count:   len(tutorials),
		Source:  source,
		Data:    tutorials,
	})
}

// Get handles GET /api/v1/tutorials/{id}
// @Summary Get tutorial
// @Description Get a tutorial with its content by id
// @Tags tutorials
// @Produce json
// @Param id path string true "Tutorial ID"
// @Success 200 {object} models.TutorialResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tutorials/{id} [get]
func (h *TutorialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tutorial, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("failed to get tutorial", zap.String("id", id), zap.Error(err))
		}
		h.respondServiceError(w, r, err, "failed to get tutorial")
		return
	}

	h.respondJSON(w, http.StatusOK, models.TutorialResponse{Success: true, Data: tutorial})
}

// Create handles POST /api/v1/tutorials
// @Summary Create tutorial
// @Description Create a tutorial. It is always written to the local mirror and to the database when it is reachable.
// @Tags tutorials
// @Accept json
// @Produce json
// @Param request body models.CreateTutorialRequest true "Tutorial"
// @Success 201 {object} models.TutorialResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tutorials [post]
func (h *TutorialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTutorialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	tutorial, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create tutorial", zap.Error(err))
		h.respondServiceError(w, r, err, "failed to create tutorial")
		return
	}

	h.respondJSON(w, http.StatusCreated, models.TutorialResponse{
		Success: true,
		Message: "tutorial created",
		Data:    tutorial,
	})
}

// Update handles PUT /api/v1/tutorials/{id}
// @Summary Update tutorial
// @Description Partially update a tutorial. Omitted fields keep their value, an unknown id is created.
// @Tags tutorials
// @Accept json
// @Produce json
// @Param id path string true "Tutorial ID"
// @Param request body models.UpdateTutorialRequest true "Fields to update"
// @Success 200 {object} models.TutorialResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tutorials/{id} [put]
func (h *TutorialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateTutorialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	tutorial, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update tutorial", zap.String("id", id), zap.Error(err))
		h.respondServiceError(w, r, err, "failed to save tutorial")
		return
	}

	h.respondJSON(w, http.StatusOK, models.TutorialResponse{
		Success: true,
		Message: "tutorial saved",
		Data:    tutorial,
	})
}

// Delete handles DELETE /api/v1/tutorials/{id}
// @Summary Delete tutorial
// @Description Delete a tutorial from the database and the local mirror
// @Tags tutorials
// @Produce json
// @Param id path string true "Tutorial ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tutorials/{id} [delete]
func (h *TutorialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("failed to delete tutorial", zap.String("id", id), zap.Error(err))
		}
		h.respondServiceError(w, r, err, "failed to delete tutorial")
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "tutorial deleted"})
}

// Sync handles POST /api/v1/tutorials/sync
// @Summary Sync mirror
// @Description Replace the local mirror file with the content of the database
// @Tags tutorials
// @Produce json
// @Success 200 {object} models.SyncResponse
// @Failure 503 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tutorials/sync [post]
func (h *TutorialHandler) Sync(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Sync(r.Context())
	if err != nil {
		h.logger.Warn("failed to sync tutorials", zap.Error(err))
		h.respondServiceError(w, r, err, "failed to sync tutorials")
		return
	}

	h.respondJSON(w, http.StatusOK, models.SyncResponse{
		Success: true,
		Message: "mirror synchronized",
		Data:    models.SyncResult{Count: count},
	})
}

// Health handles GET /api/v1/health
// @Summary Health check
// @Description Report the availability of the database and the local mirror
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Router /health [get]
func (h *TutorialHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Health(r.Context()))
}

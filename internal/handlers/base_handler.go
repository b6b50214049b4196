package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codeverse/backend/internal/middleware"
	"github.com/codeverse/backend/internal/models"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{
		Success:   false,
		Error:     message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

// respondServiceError maps a service error to its status code and sends it.
// Validation messages are passed through, everything else gets the generic message.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		h.respondJSON(w, http.StatusNotFound, models.ErrorResponse{
			Success:   false,
			Error:     "tutorial not found",
			Message:   "tutorial not found",
			RequestID: middleware.GetRequestID(r.Context()),
		})
	case errors.Is(err, models.ErrValidation):
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnavailable):
		h.respondError(w, r, http.StatusServiceUnavailable, "database unavailable")
	default:
		h.respondError(w, r, http.StatusInternalServerError, message)
	}
}

// NotFound answers requests for unknown routes
func (h *BaseHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, "route not found")
}

// MethodNotAllowed answers requests with a method the route does not serve
func (h *BaseHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// NewBaseHandler creates a handler for the router-level fallbacks
func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{logger: logger}
}

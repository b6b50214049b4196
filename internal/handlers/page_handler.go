package handlers

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/codeverse/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// TutorialReader is the interface that wraps the read methods used by the HTML pages.
type TutorialReader interface {
	// Method List retrieve all tutorials together with the store that answered.
	List(ctx context.Context) ([]models.Tutorial, models.Source, error)
	// Method Get retrieve a tutorial by its id, an error wrapping ErrNotFound if there is none.
	Get(ctx context.Context, id string) (*models.Tutorial, error)
}

// pageData is the data handed to every page template
type pageData struct {
	Title     string
	Source    models.Source
	Tutorials []models.Tutorial
	Tutorial  *models.Tutorial
}

// PageHandler renders the HTML pages
type PageHandler struct {
	BaseHandler
	service   TutorialReader
	templates *template.Template
}

// NewPageHandler creates a new page handler and parses the embedded templates
func NewPageHandler(svc TutorialReader, logger *zap.Logger) (*PageHandler, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		// Tutorial content is authored HTML
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
		templates:   tmpl,
	}, nil
}

// RegisterRoutes registers all page handler routes
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/tutorials", h.List)
	r.Get("/tutorials/{id}", h.Detail)
	r.Get("/admin/editor", h.Editor)
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/tutorials", http.StatusFound)
}

// List handles GET /tutorials
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	tutorials, source, err := h.service.List(r.Context())
	if err != nil {
		// The page still renders, just empty
		h.logger.Error("failed to list tutorials for page", zap.Error(err))
	}

	h.render(w, http.StatusOK, "tutorials.html", pageData{
		Title:     "Tutorials",
		Source:    source,
		Tutorials: tutorials,
	})
}

// Detail handles GET /tutorials/{id}
func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tutorial, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("failed to get tutorial for page", zap.String("id", id), zap.Error(err))
		}
		h.render(w, http.StatusNotFound, "not_found.html", pageData{Title: "Not found"})
		return
	}

	h.render(w, http.StatusOK, "tutorial_detail.html", pageData{
		Title:    tutorial.Title,
		Tutorial: tutorial,
	})
}

// Editor handles GET /admin/editor
func (h *PageHandler) Editor(w http.ResponseWriter, r *http.Request) {
	tutorials, source, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list tutorials for editor", zap.Error(err))
	}

	h.render(w, http.StatusOK, "admin_editor.html", pageData{
		Title:     "Editor",
		Source:    source,
		Tutorials: tutorials,
	})
}

// render executes a template into a buffer so a failing template never sends a half written page
func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write page", zap.Error(err))
	}
}

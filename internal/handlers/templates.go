package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"postcraft/internal/carousel"
)

// ListTemplates handles GET /api/templates, optionally filtered by
// ?category=.
func (a *API) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list := carousel.Templates()
	if c := r.URL.Query().Get("category"); c != "" {
		list = carousel.GetTemplatesByCategory(carousel.Category(c))
	}
	if list == nil {
		list = []carousel.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": list})
}

// GetTemplate handles GET /api/templates/{id}.
func (a *API) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := carousel.GetTemplateByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

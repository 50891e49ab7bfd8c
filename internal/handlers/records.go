// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"postcraft/internal/markdown"
	"postcraft/internal/middleware"
	"postcraft/internal/models"
)

// recentResultsLimit caps GET /api/results/recent.
const recentResultsLimit = 20

// SaveResult handles POST /api/results. The newsletter is rendered to
// sanitized HTML once, at save time.
func (a *API) SaveResult(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())

	var in models.Result
	if !decodeJSON(w, r, &in, maxBodyBytes) {
		return
	}
	if msg := validateResult(&in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	in.OwnerID = owner
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = "Generated Content"
	}
	if in.Newsletter != "" {
		html, err := markdown.ToHTML(in.Newsletter)
		if err != nil {
			a.logger.Warn("render newsletter html failed", "error", err)
		}
		in.NewsletterHTML = html
	}

	saved, err := a.results.Create(r.Context(), &in)
	if err != nil {
		a.fail(w, r, err, "Failed to save data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": saved.ID.String()})
}

// GetResult handles GET /api/results?id=. Results are addressable by id
// alone so they can be shared.
func (a *API) GetResult(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	res, err := a.results.FindByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "Failed to retrieve data")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecentResults handles GET /api/results/recent.
func (a *API) RecentResults(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	list, err := a.results.ListByOwner(r.Context(), owner, recentResultsLimit)
	if err != nil {
		a.fail(w, r, err, "Failed to retrieve data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": list})
}

type memoryRequest struct {
	Text string `json:"text"`
}

// AddMemory handles POST /api/memory.
func (a *API) AddMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	if msg := validateMemory(req.Text); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	if err := a.memories.Add(r.Context(), owner, strings.TrimSpace(req.Text)); err != nil {
		a.fail(w, r, err, "Failed to save memory")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// ListMemories handles GET /api/memory.
func (a *API) ListMemories(w http.ResponseWriter, r *http.Request) {
	list, err := a.memories.List(r.Context(), middleware.OwnerFromCtx(r.Context()))
	if err != nil {
		a.fail(w, r, err, "Failed to load memories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memories": list})
}

// DeleteMemories handles DELETE /api/memory.
func (a *API) DeleteMemories(w http.ResponseWriter, r *http.Request) {
	n, err := a.memories.DeleteAll(r.Context(), middleware.OwnerFromCtx(r.Context()))
	if err != nil {
		a.fail(w, r, err, "Failed to delete memories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type promptRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// moderate answers 422 and returns false when text fails moderation.
// A moderation outage does not block saving.
func (a *API) moderate(w http.ResponseWriter, r *http.Request, text string) bool {
	if a.moderator == nil {
		return true
	}
	res, err := a.moderator.CheckPrompt(r.Context(), text)
	if err != nil {
		a.logger.Warn("prompt moderation unavailable, allowing", "error", err)
		return true
	}
	if !res.Safe {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "Prompt was flagged by content moderation",
			Details: strings.Join(res.Categories, ", "),
		})
		return false
	}
	return true
}

// CreatePrompt handles POST /api/prompts.
func (a *API) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	if msg := validatePrompt(req.Title, req.Text, true); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.moderate(w, r, req.Text) {
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	p, err := a.prompts.Create(r.Context(), owner, strings.TrimSpace(req.Title), strings.TrimSpace(req.Text))
	if err != nil {
		a.fail(w, r, err, "Failed to save prompt")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePrompt handles PUT /api/prompts/{id}. Only the text changes.
func (a *API) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var req promptRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	if msg := validatePrompt("", req.Text, false); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.moderate(w, r, req.Text) {
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	if err := a.prompts.UpdateText(r.Context(), id, owner, strings.TrimSpace(req.Text)); err != nil {
		a.fail(w, r, err, "Failed to update prompt")
		return
	}
	p, err := a.prompts.FindByID(r.Context(), id, owner)
	if err != nil {
		a.fail(w, r, err, "Failed to update prompt")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListPrompts handles GET /api/prompts.
func (a *API) ListPrompts(w http.ResponseWriter, r *http.Request) {
	list, err := a.prompts.List(r.Context(), middleware.OwnerFromCtx(r.Context()))
	if err != nil {
		a.fail(w, r, err, "Failed to load prompts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": list})
}

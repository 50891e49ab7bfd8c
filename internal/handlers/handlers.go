// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the postcraft API.
// Handlers are grouped by concern (generation, records, templates, export)
// and receive their dependencies through the API struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"postcraft/internal/ai"
	"postcraft/internal/carousel"
	"postcraft/internal/export"
	"postcraft/internal/fetch"
	"postcraft/internal/generate"
	"postcraft/internal/models"
	"postcraft/internal/prompt"
	"postcraft/internal/store"
)

// Request body limits.
const (
	maxBodyBytes       = 1 << 20
	maxExportBodyBytes = 16 << 20
)

// Generator runs the generation flows. *generate.Service satisfies it.
type Generator interface {
	Convert(ctx context.Context, req generate.ConvertRequest) (*generate.Conversion, error)
	Regenerate(ctx context.Context, kind prompt.Kind, originalURL string) (*generate.Regeneration, error)
	Carousel(ctx context.Context, req generate.CarouselRequest) (*generate.CarouselResult, error)
	Image(ctx context.Context, description string, kind prompt.Kind) (string, error)
}

// ResultStore persists conversion results. *store.ResultStore satisfies it.
type ResultStore interface {
	Create(ctx context.Context, r *models.Result) (*models.Result, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Result, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Result, error)
}

// MemoryStore persists style samples. *store.MemoryStore satisfies it.
type MemoryStore interface {
	Add(ctx context.Context, ownerID, text string) error
	List(ctx context.Context, ownerID string) ([]string, error)
	DeleteAll(ctx context.Context, ownerID string) (int64, error)
}

// PromptStore persists reusable prompts. *store.PromptStore satisfies it.
type PromptStore interface {
	Create(ctx context.Context, ownerID, title, text string) (*models.Prompt, error)
	UpdateText(ctx context.Context, id uuid.UUID, ownerID, text string) error
	FindByID(ctx context.Context, id uuid.UUID, ownerID string) (*models.Prompt, error)
	List(ctx context.Context, ownerID string) ([]models.Prompt, error)
}

// PromptChecker screens prompt text. *ai.Registry satisfies it.
type PromptChecker interface {
	CheckPrompt(ctx context.Context, text string) (*ai.ModerationResult, error)
}

// Exporter packages slides into a downloadable artifact. *export.Exporter
// satisfies it.
type Exporter interface {
	Export(ctx context.Context, slides []carousel.Slide, kind string, f export.Format) (*export.Artifact, error)
}

// ExportUploader stores an artifact and returns a download URL.
// *storage.Client satisfies it.
type ExportUploader interface {
	PutExport(ctx context.Context, filename string, data []byte, contentType string, expires time.Duration) (string, error)
}

// API groups all API handlers and their dependencies.
type API struct {
	gen       Generator
	results   ResultStore
	memories  MemoryStore
	prompts   PromptStore
	moderator PromptChecker
	exporter  Exporter
	uploads   ExportUploader
	sessions  SessionStore
	exportTTL time.Duration
	logger    *slog.Logger
}

// Deps lists the collaborators of an API. Moderator, Uploads and Sessions
// may be nil.
type Deps struct {
	Generator Generator
	Results   ResultStore
	Memories  MemoryStore
	Prompts   PromptStore
	Moderator PromptChecker
	Exporter  Exporter
	Uploads   ExportUploader
	Sessions  SessionStore
	// ExportTTL is the lifetime of presigned export links; zero means the
	// uploader's default.
	ExportTTL time.Duration
	Logger    *slog.Logger
}

// NewAPI creates the API handler group.
func NewAPI(d Deps) *API {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		gen:       d.Generator,
		results:   d.Results,
		memories:  d.Memories,
		prompts:   d.Prompts,
		moderator: d.Moderator,
		exporter:  d.Exporter,
		uploads:   d.Uploads,
		sessions:  d.Sessions,
		exportTTL: d.ExportTTL,
		logger:    logger,
	}
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	Details     string `json:"details,omitempty"`
	RawResponse string `json:"rawResponse,omitempty"`
	Category    string `json:"category,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into dst. It answers 400 itself and
// returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) bool {
	body := http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "Request body is required")
		default:
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
		}
		return false
	}
	return true
}

// fail maps a flow error onto a status and a JSON body. fallback is the
// message used for unclassified failures.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		inputErr   *generate.InputError
		parseErr   *carousel.ParseError
		invalidErr *carousel.ValidationError
		timeoutErr *fetch.TimeoutError
	)

	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Message)
		return
	case errors.Is(err, generate.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "Template not found")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
		return
	case errors.Is(err, store.ErrPromptExists):
		writeError(w, http.StatusConflict, "A prompt with this title already exists.")
		return
	case errors.As(err, &parseErr):
		a.logger.Error("carousel response unparseable", "error", err, "path", r.URL.Path)
		details := parseErr.Error()
		if parseErr.Err != nil {
			details = parseErr.Err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:       "Failed to parse carousel data from AI response",
			Details:     details,
			RawResponse: parseErr.Raw,
		})
		return
	case errors.As(err, &invalidErr):
		a.logger.Error("carousel response invalid", "error", err, "path", r.URL.Path)
		msg := fmt.Sprintf("Invalid slide %d - missing required fields", invalidErr.Index)
		if invalidErr.Index == 0 {
			msg = fmt.Sprintf("Invalid carousel data structure - expected exactly %d slides", invalidErr.Want)
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, Details: invalidErr.Error()})
		return
	case errors.Is(err, generate.ErrEmptyResponse):
		writeError(w, http.StatusInternalServerError, "No response received from AI service")
		return
	case errors.As(err, &timeoutErr):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{
			Error:   "Timed out reading the URL",
			Details: timeoutErr.Error(),
		})
		return
	case errors.Is(err, generate.ErrURLUnreadable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, ai.ErrImageUnsupported):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "Image generation not available",
			Message: ai.CategoryUnavailable.Remedy(),
		})
		return
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nobody reads the answer.
		a.logger.Info("request canceled", "path", r.URL.Path)
		return
	}

	cat := ai.Classify(err)
	a.logger.Error(fallback, "error", err, "category", cat, "path", r.URL.Path)
	if cat == ai.CategoryGeneric || cat == ai.CategoryAuth {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback, Details: err.Error()})
		return
	}
	writeJSON(w, cat.HTTPStatus(), errorResponse{
		Error:    cat.Message(),
		Message:  cat.Remedy(),
		Details:  err.Error(),
		Category: cat.String(),
	})
}

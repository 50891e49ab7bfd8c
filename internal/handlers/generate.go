package handlers

import (
	"errors"
	"net/http"
	"strings"

	"postcraft/internal/ai"
	"postcraft/internal/generate"
	"postcraft/internal/middleware"
	"postcraft/internal/prompt"
)

// Convert handles POST /api/convert. When the request carries no memories
// the owner's stored samples are used.
func (a *API) Convert(w http.ResponseWriter, r *http.Request) {
	var req generate.ConvertRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	if err := req.Validate(); err != nil {
		a.fail(w, r, err, "Failed to generate content")
		return
	}

	if req.Memories == nil && a.memories != nil {
		if owner := middleware.OwnerFromCtx(r.Context()); owner != "" {
			stored, err := a.memories.List(r.Context(), owner)
			if err != nil {
				a.logger.Warn("load memories failed, converting without them", "error", err, "owner", owner)
			}
			req.Memories = stored
		}
	}

	out, err := a.gen.Convert(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Failed to generate content")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type regenerateRequest struct {
	Type        prompt.Kind `json:"type"`
	OriginalURL string      `json:"originalUrl"`
}

// Regenerate handles POST /api/regenerate.
func (a *API) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	out, err := a.gen.Regenerate(r.Context(), req.Type, req.OriginalURL)
	if err != nil {
		a.fail(w, r, err, "Failed to regenerate content")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GenerateCarousel handles POST /api/generate-carousel.
func (a *API) GenerateCarousel(w http.ResponseWriter, r *http.Request) {
	var req generate.CarouselRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	out, err := a.gen.Carousel(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, "Failed to generate carousel")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type imageRequest struct {
	Prompt string      `json:"prompt"`
	Type   prompt.Kind `json:"type"`
}

type imageResponse struct {
	Success  bool    `json:"success"`
	ImageURL *string `json:"imageUrl"`
	Message  string  `json:"message"`
}

// GenerateImage handles POST /api/generate-image. A model that answers
// without an image is not an error: the response reports success false.
func (a *API) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	if !req.Type.Valid() {
		req.Type = prompt.KindSocial
	}

	u, err := a.gen.Image(r.Context(), strings.TrimSpace(req.Prompt), req.Type)
	switch {
	case errors.Is(err, ai.ErrNoImageData):
		writeJSON(w, http.StatusOK, imageResponse{Message: "No image data received from the AI service"})
		return
	case err != nil && ai.Classify(err) == ai.CategoryAuth:
		a.logger.Error("image generation rejected credentials", "error", err)
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   "Authentication failed",
			Message: ai.CategoryAuth.Remedy(),
			Details: err.Error(),
		})
		return
	case err != nil:
		a.fail(w, r, err, "Failed to generate image")
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{Success: true, ImageURL: &u, Message: "Image generated successfully!"})
}

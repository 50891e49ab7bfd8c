package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"postcraft/internal/carousel"
	"postcraft/internal/export"
	"postcraft/internal/prompt"
)

type exportRequest struct {
	Slides []carousel.Slide `json:"slides"`
	Type   prompt.Kind      `json:"type"`
	Format export.Format    `json:"format"`
}

type exportResponse struct {
	URL      string          `json:"url"`
	Filename string          `json:"filename"`
	Failures []exportFailure `json:"failures"`
}

type exportFailure struct {
	Slide int    `json:"slide"`
	Error string `json:"error"`
}

// ExportCarousel handles POST /api/carousel/export. Slides render one at a
// time; a slide that fails becomes a placeholder page (pdf) or is left out
// (zip). With object storage configured the artifact is uploaded and a
// presigned URL returned, otherwise it is sent as an attachment.
func (a *API) ExportCarousel(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decodeJSON(w, r, &req, maxExportBodyBytes) {
		return
	}
	switch {
	case len(req.Slides) == 0:
		writeError(w, http.StatusBadRequest, "Slides are required")
		return
	case len(req.Slides) > maxExportSlides:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Too many slides (max %d)", maxExportSlides))
		return
	case !req.Format.Valid():
		writeError(w, http.StatusBadRequest, "Invalid format. Must be 'pdf' or 'zip'")
		return
	}
	if !req.Type.Valid() {
		req.Type = prompt.KindSocial
	}

	art, err := a.exporter.Export(r.Context(), req.Slides, string(req.Type), req.Format)
	if err != nil {
		a.fail(w, r, err, "Failed to export carousel")
		return
	}

	failures := make([]exportFailure, 0, len(art.Failures))
	for _, f := range art.Failures {
		failures = append(failures, exportFailure{Slide: f.Slide, Error: f.Err.Error()})
	}

	if a.uploads != nil {
		u, err := a.uploads.PutExport(r.Context(), art.Filename, art.Data, art.ContentType, a.exportTTL)
		if err == nil {
			writeJSON(w, http.StatusOK, exportResponse{URL: u, Filename: art.Filename, Failures: failures})
			return
		}
		a.logger.Warn("export upload failed, sending attachment", "error", err, "file", art.Filename)
	}

	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	if len(failures) > 0 {
		nums := make([]string, len(failures))
		for i, f := range failures {
			nums[i] = strconv.Itoa(f.Slide)
		}
		h.Set("X-Failed-Slides", strings.Join(nums, ","))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

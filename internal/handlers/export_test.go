package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"strings"
	"testing"
	"time"

	"postcraft/internal/carousel"
	"postcraft/internal/export"
)

type rasterFunc func(context.Context, carousel.Slide) (image.Image, error)

func (f rasterFunc) Rasterize(ctx context.Context, s carousel.Slide) (image.Image, error) {
	return f(ctx, s)
}

// gradientRaster fails slide 2 and draws a gradient for the rest.
var gradientRaster = rasterFunc(func(_ context.Context, s carousel.Slide) (image.Image, error) {
	if s.SlideNumber == 2 {
		return nil, errors.New("font not loaded")
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 5), 90, 255})
		}
	}
	return img, nil
})

type fakeUploader struct {
	name string
	err  error
}

func (u *fakeUploader) PutExport(_ context.Context, filename string, _ []byte, _ string, _ time.Duration) (string, error) {
	u.name = filename
	if u.err != nil {
		return "", u.err
	}
	return "https://files.example.com/exports/" + filename + "?sig=abc", nil
}

func exportBody(t *testing.T, format string, n int) string {
	t.Helper()
	slides := make([]carousel.Slide, n)
	for i := range slides {
		slides[i] = carousel.Slide{SlideNumber: i + 1, Headline: "h", Content: "c", BackgroundColor: "#ffffff", TextColor: "#111111"}
	}
	b, err := json.Marshal(map[string]any{"slides": slides, "type": "newsletter", "format": format})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func fixedExporter() *export.Exporter {
	return export.New(gradientRaster, export.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
}

func TestExportCarouselAttachment(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Exporter = fixedExporter() })

	rec := do(env.API.ExportCarousel, http.MethodPost, "/api/carousel/export", exportBody(t, "pdf", 3))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q", ct)
	}
	want := `attachment; filename="carousel-newsletter-1700000000000.pdf"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("Content-Disposition: got %q, want %q", cd, want)
	}
	if got := rec.Header().Get("X-Failed-Slides"); got != "2" {
		t.Errorf("X-Failed-Slides: got %q, want 2", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Error("body is not a PDF")
	}
}

func TestExportCarouselUpload(t *testing.T) {
	up := &fakeUploader{}
	env := newTestEnv(t, func(d *Deps) {
		d.Exporter = fixedExporter()
		d.Uploads = up
	})

	rec := do(env.API.ExportCarousel, http.MethodPost, "/api/carousel/export", exportBody(t, "zip", 3))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["filename"] != "carousel-newsletter-1700000000000.zip" || up.name != body["filename"] {
		t.Errorf("filename: got %v, uploaded %q", body["filename"], up.name)
	}
	if u, _ := body["url"].(string); !strings.HasPrefix(u, "https://files.example.com/") {
		t.Errorf("url: got %q", u)
	}
	failures, _ := body["failures"].([]any)
	if len(failures) != 1 {
		t.Fatalf("failures: got %v", failures)
	}
	if f := failures[0].(map[string]any); f["slide"] != float64(2) || f["error"] != "font not loaded" {
		t.Errorf("failure entry: got %v", f)
	}
}

func TestExportCarouselUploadFailureFallsBack(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) {
		d.Exporter = fixedExporter()
		d.Uploads = &fakeUploader{err: errors.New("bucket missing")}
	})

	rec := do(env.API.ExportCarousel, http.MethodPost, "/api/carousel/export", exportBody(t, "zip", 2))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Errorf("want zip attachment, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestExportCarouselBadRequests(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Exporter = fixedExporter() })
	tests := []struct {
		name string
		body string
	}{
		{"no slides", `{"slides":[],"format":"pdf"}`},
		{"bad format", exportBody(t, "pptx", 1)},
		{"too many slides", exportBody(t, "zip", maxExportSlides+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(env.API.ExportCarousel, http.MethodPost, "/api/carousel/export", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
		})
	}
}

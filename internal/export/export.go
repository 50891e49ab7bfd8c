// Package export packages carousel slides into downloadable artifacts: a
// multi-page PDF with one slide per page, or a ZIP archive with one PNG
// per slide. Slides are rasterized one at a time and a slide that fails
// never aborts the batch.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"postcraft/internal/carousel"
)

// Format is an artifact kind.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatZIP Format = "zip"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool { return f == FormatPDF || f == FormatZIP }

// ContentType returns the MIME type of the artifact.
func (f Format) ContentType() string {
	if f == FormatZIP {
		return "application/zip"
	}
	return "application/pdf"
}

// minImageBytes is the smallest PNG accepted as a real rendering.
const minImageBytes = 100

// pageFill is the share of the page a slide may cover.
const pageFill = 0.9

// Rasterizer draws one slide. *imaging.Renderer satisfies it.
type Rasterizer interface {
	Rasterize(ctx context.Context, s carousel.Slide) (image.Image, error)
}

// RenderError records a slide that could not be rendered.
type RenderError struct {
	Slide int // 1-based position in the batch
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render slide %d: %v", e.Slide, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Artifact is a finished export.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	// Failures lists the slides replaced by a placeholder page or left
	// out of the archive.
	Failures []*RenderError
}

// Exporter renders and packages slides.
type Exporter struct {
	raster Rasterizer
	settle time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithSettleDelay waits d after each slide before starting the next.
func WithSettleDelay(d time.Duration) Option { return func(e *Exporter) { e.settle = d } }

// WithClock overrides the time source used for filenames.
func WithClock(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option { return func(e *Exporter) { e.logger = l } }

// New creates an exporter.
func New(r Rasterizer, opts ...Option) *Exporter {
	e := &Exporter{raster: r, now: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Filename returns carousel-<kind>-<unix millis>.<ext>.
func Filename(kind string, f Format, at time.Time) string {
	return fmt.Sprintf("carousel-%s-%d.%s", kind, at.UnixMilli(), f)
}

// Export renders every slide and packages the results in the given format.
// Per-slide failures are collected on the artifact; an error is returned
// only for bad arguments, cancellation or a packaging failure.
func (e *Exporter) Export(ctx context.Context, slides []carousel.Slide, kind string, f Format) (*Artifact, error) {
	if len(slides) == 0 {
		return nil, fmt.Errorf("export: no slides to export")
	}
	if !f.Valid() {
		return nil, fmt.Errorf("export: unsupported format %q", f)
	}

	rendered, failures, err := e.renderAll(ctx, slides)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch f {
	case FormatPDF:
		data, err = buildPDF(rendered, failures)
	case FormatZIP:
		data, err = buildZIP(rendered)
	}
	if err != nil {
		return nil, fmt.Errorf("export: build %s: %w", f, err)
	}

	var list []*RenderError
	for _, fe := range failures {
		if fe != nil {
			list = append(list, fe)
		}
	}
	e.logger.Info("carousel exported",
		"format", f, "slides", len(slides), "failed", len(list), "bytes", len(data))

	return &Artifact{
		Filename:    Filename(kind, f, e.now()),
		ContentType: f.ContentType(),
		Data:        data,
		Failures:    list,
	}, nil
}

// renderAll rasterizes slides sequentially. rendered[i] holds PNG bytes
// or nil; failures[i] is set for every nil entry.
func (e *Exporter) renderAll(ctx context.Context, slides []carousel.Slide) ([][]byte, []*RenderError, error) {
	rendered := make([][]byte, len(slides))
	failures := make([]*RenderError, len(slides))

	for i, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := e.renderOne(ctx, s)
		if err != nil {
			failures[i] = &RenderError{Slide: i + 1, Err: err}
			e.logger.Warn("slide render failed", "slide", i+1, "error", err)
		} else {
			rendered[i] = data
		}

		if e.settle > 0 && i < len(slides)-1 {
			t := time.NewTimer(e.settle)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	return rendered, failures, nil
}

// renderOne rasterizes and encodes one slide, converting a panic in the
// rasterizer into an error.
func (e *Exporter) renderOne(ctx context.Context, s carousel.Slide) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rasterizer panic: %v", r)
		}
	}()

	img, err := e.raster.Rasterize(ctx, s)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty bitmap")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	if buf.Len() < minImageBytes {
		return nil, fmt.Errorf("invalid image data (%d bytes)", buf.Len())
	}
	if err := checkPNG(buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// checkPNG rejects data the PDF writer cannot embed: it must parse as a
// PNG and must not be interlaced.
func checkPNG(data []byte) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid png: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid png: %dx%d", cfg.Width, cfg.Height)
	}
	// IHDR interlace method, after the signature, chunk header and the
	// width, height, depth, color, compression and filter fields.
	if data[28] != 0 {
		return fmt.Errorf("invalid png: interlaced images are not supported")
	}
	return nil
}

func buildPDF(rendered [][]byte, failures []*RenderError) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pageW, pageH := pdf.GetPageSize()
	opts := fpdf.ImageOptions{ImageType: "PNG"}

	for i, data := range rendered {
		pdf.AddPage()
		if data == nil {
			placeholder(pdf, i+1, failures[i], pageW, pageH)
			continue
		}

		name := fmt.Sprintf("slide-%d", i+1)
		info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if pdf.Err() {
			// One unreadable image becomes a placeholder page.
			failures[i] = &RenderError{Slide: i + 1, Err: fmt.Errorf("embed png: %w", pdf.Error())}
			pdf.ClearError()
			placeholder(pdf, i+1, failures[i], pageW, pageH)
			continue
		}
		imgW, imgH := info.Extent()
		ratio := min(pageW/imgW, pageH/imgH) * pageFill
		w, h := imgW*ratio, imgH*ratio
		pdf.ImageOptions(name, (pageW-w)/2, (pageH-h)/2, w, h, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func placeholder(pdf *fpdf.Fpdf, n int, fe *RenderError, pageW, pageH float64) {
	msg := "Unknown error"
	if fe != nil && fe.Err != nil {
		msg = fe.Err.Error()
	}
	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(pageW/2-40, pageH/2, fmt.Sprintf("Error loading slide %d", n))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(pageW/2-60, pageH/2+10, "Error: "+msg)
}

func buildZIP(rendered [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, data := range rendered {
		if data == nil {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   fmt.Sprintf("slide-%d.png", i+1),
			Method: zip.Store,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

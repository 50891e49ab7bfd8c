// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"postcraft/internal/carousel"
	"postcraft/internal/export"
	"postcraft/internal/imaging"
)

var exportCmd = &cobra.Command{
	Use:   "export <slides.json>",
	Short: "Render a slide file to PDF or ZIP",
	Long: `export reads slides from a JSON file (either a bare array or an
object with a "slides" field, as returned by /api/generate-carousel) and
writes carousel-<type>-<millis>.pdf or .zip to the output directory.

Slides that fail to render are reported; the export still completes.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "pdf", "output format: pdf or zip")
	exportCmd.Flags().String("type", "social", "content type used in the file name")
	exportCmd.Flags().StringP("output", "o", ".", "output directory")
	exportCmd.Flags().Float64("scale", imaging.DefaultScale, "render scale")
	exportCmd.Flags().Duration("timeout", 5*time.Minute, "overall export timeout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	kind, _ := cmd.Flags().GetString("type")
	outDir, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetFloat64("scale")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	f := export.Format(format)
	if !f.Valid() {
		return fmt.Errorf("unknown format %q, want pdf or zip", format)
	}

	slides, err := readSlides(args[0])
	if err != nil {
		return err
	}
	if len(slides) == 0 {
		return fmt.Errorf("%s contains no slides", args[0])
	}

	renderer, err := imaging.NewRenderer(scale, imaging.NewLoader(&http.Client{}))
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	art, err := export.New(renderer, export.WithLogger(slog.Default())).Export(ctx, slides, kind, f)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outDir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%d slides, %d bytes)\n", path, len(slides), len(art.Data))
	for _, fe := range art.Failures {
		fmt.Fprintf(out, "  slide %d failed: %v\n", fe.Slide, fe.Err)
	}
	return nil
}

// readSlides accepts a JSON array of slides or an object wrapping one.
func readSlides(path string) ([]carousel.Slide, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw = bytes.TrimSpace(raw)

	var slides []carousel.Slide
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &slides); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return slides, nil
	}

	var wrapped struct {
		Slides []carousel.Slide `json:"slides"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wrapped.Slides, nil
}

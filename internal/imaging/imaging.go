// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging rasterizes carousel slides into bitmaps. Every slide is
// laid out on a fixed 800x600 canvas and drawn at an oversampling factor,
// so the output does not depend on any preview size. Templated slides
// place each element by its percentage rectangle; flat slides draw the
// headline and content as two stacked text blocks.
package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"postcraft/internal/carousel"
)

// Canvas geometry in layout pixels, before oversampling.
const (
	Width   = 800
	Height  = 600
	Padding = 60
)

// DefaultScale is the oversampling factor applied to the canvas.
const DefaultScale = 1.5

// defaultElementFontSize applies to text elements without a font size.
const defaultElementFontSize = 24

// Flat slide text sizes per TextSize, in layout pixels.
var (
	headlineSizes = map[carousel.TextSize]float64{carousel.TextSmall: 24, carousel.TextMedium: 30, carousel.TextLarge: 36}
	bodySizes     = map[carousel.TextSize]float64{carousel.TextSmall: 16, carousel.TextMedium: 20, carousel.TextLarge: 24}
)

type faceKey struct {
	weight carousel.FontWeight
	size   float64
}

// Renderer draws slides. Font faces are cached and are not safe for
// concurrent use, so Rasterize calls are serialized.
type Renderer struct {
	mu     sync.Mutex
	scale  float64
	fonts  map[carousel.FontWeight]*opentype.Font
	faces  map[faceKey]font.Face
	images *Loader
}

// NewRenderer parses the bundled fonts. scale <= 0 means DefaultScale;
// a nil loader reads data URLs only.
func NewRenderer(scale float64, images *Loader) (*Renderer, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	if images == nil {
		images = NewLoader(nil)
	}

	r := &Renderer{
		scale:  scale,
		fonts:  make(map[carousel.FontWeight]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
		images: images,
	}
	sources := map[carousel.FontWeight][]byte{
		carousel.WeightNormal: goregular.TTF,
		carousel.WeightMedium: gomedium.TTF,
		carousel.WeightBold:   gobold.TTF,
	}
	for w, ttf := range sources {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("imaging: parse %s font: %w", w, err)
		}
		r.fonts[w] = f
	}
	return r, nil
}

// Size returns the output bitmap dimensions.
func (r *Renderer) Size() (w, h int) {
	return int(math.Round(Width * r.scale)), int(math.Round(Height * r.scale))
}

// Rasterize draws one slide.
func (r *Renderer) Rasterize(ctx context.Context, s carousel.Slide) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := r.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := s.BackgroundColor
	if bg == "" {
		bg = carousel.DefaultColor
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(carousel.ToRGBA(bg)), image.Point{}, draw.Src)

	if s.BackgroundImage != "" {
		src, err := r.images.Load(ctx, s.BackgroundImage)
		if err != nil {
			return nil, fmt.Errorf("background image: %w", err)
		}
		cover(dst, dst.Bounds(), src)
	}

	if s.Templated() {
		for _, el := range s.Elements {
			if err := r.drawElement(ctx, dst, el); err != nil {
				return nil, fmt.Errorf("element %q: %w", el.ID, err)
			}
		}
		return dst, nil
	}
	r.drawFlat(dst, s)
	return dst, nil
}

// rect converts a percentage rectangle to output pixels.
func (r *Renderer) rect(p carousel.Position) image.Rectangle {
	w, h := r.Size()
	x0 := int(math.Round(p.X / 100 * float64(w)))
	y0 := int(math.Round(p.Y / 100 * float64(h)))
	x1 := int(math.Round((p.X + p.Width) / 100 * float64(w)))
	y1 := int(math.Round((p.Y + p.Height) / 100 * float64(h)))
	return image.Rect(x0, y0, x1, y1)
}

func (r *Renderer) drawElement(ctx context.Context, dst *image.RGBA, el carousel.Element) error {
	box := r.rect(el.Position).Intersect(dst.Bounds())
	if box.Empty() {
		return nil
	}

	switch el.Type {
	case carousel.ElementShape:
		fill := el.Style.BackgroundColor
		if fill == "" {
			fill = "#000000"
		}
		roundRect(dst, box, el.Style.BorderRadius*r.scale, carousel.ToRGBA(fill))
	case carousel.ElementImage:
		if el.Content == "" {
			return nil
		}
		src, err := r.images.Load(ctx, el.Content)
		if err != nil {
			return err
		}
		cover(dst, box, src)
	default:
		size := float64(el.Style.FontSize)
		if size <= 0 {
			size = defaultElementFontSize
		}
		face := r.face(el.Style.FontWeight, size*r.scale)
		lines := wrap(face, el.Content, box.Dx())
		col := el.Style.Color
		if col == "" {
			col = "#000000"
		}
		block := textBlock{face: face, lines: lines, lineHeight: 1.2, align: el.Style.TextAlign, color: carousel.ToRGBA(col)}
		// Text boxes center their content vertically and clip at the box.
		top := box.Min.Y + (box.Dy()-block.height())/2
		block.draw(dst.SubImage(box).(*image.RGBA), box.Min.X, box.Dx(), top)
	}
	return nil
}

func (r *Renderer) drawFlat(dst *image.RGBA, s carousel.Slide) {
	size := s.TextSize
	if !size.Valid() {
		size = carousel.TextMedium
	}
	weight := s.FontWeight
	if weight == "" {
		weight = carousel.WeightBold
	}
	text := s.TextColor
	if text == "" {
		text = "#000000"
	}
	col := carousel.ToRGBA(text)

	headline := s.Headline
	if strings.TrimSpace(headline) == "" {
		headline = "Slide Title"
	}
	body := s.Content
	if strings.TrimSpace(body) == "" {
		body = "Slide content goes here..."
	}

	pad := int(math.Round(Padding * r.scale))
	inner := dst.Bounds().Inset(pad)
	hFace := r.face(weight, headlineSizes[size]*r.scale)
	bFace := r.face(carousel.WeightNormal, bodySizes[size]*r.scale)

	head := textBlock{face: hFace, lines: wrap(hFace, headline, inner.Dx()), lineHeight: 1.2, align: s.TextAlign, color: col}
	content := textBlock{face: bFace, lines: wrap(bFace, body, inner.Dx()), lineHeight: 1.5, align: s.TextAlign, color: col}
	gap := int(math.Round(24 * r.scale))

	total := head.height() + gap + content.height()
	top := inner.Min.Y + (inner.Dy()-total)/2
	head.draw(dst, inner.Min.X, inner.Dx(), top)
	content.draw(dst, inner.Min.X, inner.Dx(), top+head.height()+gap)
}

// face returns a cached face. semibold maps to bold and unknown weights
// to regular, as the bundled family has three weights.
func (r *Renderer) face(w carousel.FontWeight, px float64) font.Face {
	switch w {
	case carousel.WeightSemibold:
		w = carousel.WeightBold
	case carousel.WeightMedium, carousel.WeightBold:
	default:
		w = carousel.WeightNormal
	}
	key := faceKey{w, math.Round(px*4) / 4}
	if f, ok := r.faces[key]; ok {
		return f
	}
	f, err := opentype.NewFace(r.fonts[w], &opentype.FaceOptions{Size: key.size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		// Only fails for a non-positive size, which the callers never pass.
		panic(fmt.Sprintf("imaging: font face %s %.1f: %v", w, key.size, err))
	}
	r.faces[key] = f
	return f
}

type textBlock struct {
	face       font.Face
	lines      []string
	lineHeight float64
	align      carousel.TextAlign
	color      color.Color
}

func (b textBlock) step() int {
	m := b.face.Metrics()
	return int(math.Round(float64(m.Height.Ceil()) * b.lineHeight))
}

func (b textBlock) height() int { return len(b.lines) * b.step() }

// draw renders the lines starting at top, aligned within [left, left+width).
func (b textBlock) draw(dst draw.Image, left, width, top int) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(b.color), Face: b.face}
	m := b.face.Metrics()
	step := b.step()
	// Half-leading keeps the glyphs centered in each line box.
	lead := (step - m.Height.Ceil()) / 2

	for i, line := range b.lines {
		adv := d.MeasureString(line).Ceil()
		x := left
		switch b.align {
		case carousel.AlignRight:
			x = left + width - adv
		case carousel.AlignLeft:
		default:
			x = left + (width-adv)/2
		}
		y := top + i*step + lead + m.Ascent.Ceil()
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
}

// wrap breaks text into lines no wider than width. Explicit newlines are
// kept; a word longer than the width gets a line of its own.
func wrap(face font.Face, text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if font.MeasureString(face, candidate).Ceil() > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// roundRect fills box with c, rounding the corners by radius pixels.
func roundRect(dst *image.RGBA, box image.Rectangle, radius float64, c color.Color) {
	if radius <= 0 {
		draw.Draw(dst, box, image.NewUniform(c), image.Point{}, draw.Over)
		return
	}
	radius = math.Min(radius, math.Min(float64(box.Dx()), float64(box.Dy()))/2)

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	x0, y0 := float32(box.Min.X), float32(box.Min.Y)
	x1, y1 := float32(box.Max.X), float32(box.Max.Y)
	rr := float32(radius)

	z.MoveTo(x0+rr, y0)
	z.LineTo(x1-rr, y0)
	z.QuadTo(x1, y0, x1, y0+rr)
	z.LineTo(x1, y1-rr)
	z.QuadTo(x1, y1, x1-rr, y1)
	z.LineTo(x0+rr, y1)
	z.QuadTo(x0, y1, x0, y1-rr)
	z.LineTo(x0, y0+rr)
	z.QuadTo(x0, y0, x0+rr, y0)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// cover scales src to fill box, preserving aspect ratio and cropping the
// overflow evenly on both sides.
func cover(dst *image.RGBA, box image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Empty() || box.Empty() {
		return
	}
	k := math.Max(float64(box.Dx())/float64(sb.Dx()), float64(box.Dy())/float64(sb.Dy()))
	w := int(math.Ceil(float64(sb.Dx()) * k))
	h := int(math.Ceil(float64(sb.Dy()) * k))
	target := image.Rect(0, 0, w, h).Add(box.Min).Add(image.Pt((box.Dx()-w)/2, (box.Dy()-h)/2))

	clip := dst.SubImage(box).(*image.RGBA)
	draw.CatmullRom.Scale(clip, target, src, sb, draw.Over, nil)
}

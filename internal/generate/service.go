// Package generate runs the per-request generation flows: converting a URL
// or article into a social post and newsletter, regenerating one of them,
// building carousels with a deterministic template fallback, and producing
// images.
package generate

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"postcraft/internal/ai"
	"postcraft/internal/fetch"
	"postcraft/internal/prompt"
)

// Model is the language model the service talks to. *ai.Registry
// satisfies it.
type Model interface {
	GenerateWith(ctx context.Context, systemPrompt, userPrompt string, opts ai.Options) (string, error)
	SupportsURLContext() bool
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// Fetcher reads a page server-side when the model cannot.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Article, error)
}

// ImageStore persists generated images and returns their public URL.
type ImageStore interface {
	PutImage(ctx context.Context, description string, data []byte, contentType string) (string, error)
}

// Service orchestrates generation requests.
type Service struct {
	model      Model
	builder    *prompt.Builder
	fetcher    Fetcher
	images     ImageStore
	slideCount int
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher enables server-side URL reading.
func WithFetcher(f Fetcher) Option { return func(s *Service) { s.fetcher = f } }

// WithImageStore uploads generated images instead of inlining them.
func WithImageStore(st ImageStore) Option { return func(s *Service) { s.images = st } }

// WithSlideCount sets how many slides a carousel has.
func WithSlideCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.slideCount = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// DefaultSlideCount is the carousel length when none is configured.
const DefaultSlideCount = 5

// New creates a service.
func New(model Model, builder *prompt.Builder, opts ...Option) *Service {
	s := &Service{
		model:      model,
		builder:    builder,
		slideCount: DefaultSlideCount,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SlideCount returns the configured carousel length.
func (s *Service) SlideCount() int { return s.slideCount }

// ConvertRequest is the input of Convert.
type ConvertRequest struct {
	Mode         prompt.Mode `json:"mode"`
	URL          string      `json:"url,omitempty"`
	ArticleText  string      `json:"articleText,omitempty"`
	Memories     []string    `json:"memories,omitempty"`
	CustomPrompt string      `json:"customPrompt,omitempty"`
}

// Conversion is the output of Convert.
type Conversion struct {
	Title         string `json:"title"`
	SocialPost    string `json:"socialPost"`
	Newsletter    string `json:"newsletter"`
	OriginalURL   string `json:"originalUrl,omitempty"`
	Summarized    bool   `json:"summarized,omitempty"`
	StyleInferred bool   `json:"styleInferred,omitempty"`
}

// Validate checks a conversion request without calling the model.
func (r ConvertRequest) Validate() error {
	switch r.Mode {
	case prompt.ModeURL:
		if strings.TrimSpace(r.URL) == "" {
			return inputErr("url", "URL is required")
		}
		if !validURL(r.URL) {
			return inputErr("url", "Invalid URL format")
		}
	case prompt.ModeText:
		if strings.TrimSpace(r.ArticleText) == "" {
			return inputErr("articleText", "Article text is required")
		}
	default:
		return inputErr("mode", "Invalid mode. Must be 'url' or 'text'")
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Convert produces a social post and a newsletter. Pre-processing runs
// first; the two main prompts then run concurrently and both must succeed.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*Conversion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	in := prompt.Input{
		Mode:         req.Mode,
		URL:          req.URL,
		ArticleText:  req.ArticleText,
		Memories:     req.Memories,
		CustomPrompt: req.CustomPrompt,
	}
	if req.Mode == prompt.ModeURL {
		in.ArticleText = ""
		text, err := s.readURL(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		in.ArticleText = text
	}

	prepared, err := s.builder.Prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	var social, newsletter string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.call(gctx, prepared.Social())
		if err != nil {
			return fmt.Errorf("generate social post: %w", err)
		}
		social = out
		return nil
	})
	g.Go(func() error {
		out, err := s.call(gctx, prepared.Newsletter())
		if err != nil {
			return fmt.Errorf("generate newsletter: %w", err)
		}
		newsletter = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if social == "" {
		social = "Failed to generate social post"
	}
	if newsletter == "" {
		newsletter = "Failed to generate newsletter"
	}

	c := &Conversion{
		Title:         "Generated Content",
		SocialPost:    social,
		Newsletter:    newsletter,
		Summarized:    prepared.Summarized,
		StyleInferred: prepared.StyleInferred,
	}
	if req.Mode == prompt.ModeURL {
		c.Title = "Generated from URL"
		c.OriginalURL = strings.TrimSpace(req.URL)
	}
	s.logger.Info("content generated",
		"mode", req.Mode, "social_len", len(social), "newsletter_len", len(newsletter),
		"summarized", c.Summarized, "style_inferred", c.StyleInferred)
	return c, nil
}

// Regeneration is the output of Regenerate; only the requested field is set.
type Regeneration struct {
	Title      string `json:"title"`
	SocialPost string `json:"socialPost,omitempty"`
	Newsletter string `json:"newsletter,omitempty"`
}

// Regenerate rebuilds one piece of content from its original URL.
func (s *Service) Regenerate(ctx context.Context, kind prompt.Kind, originalURL string) (*Regeneration, error) {
	if !kind.Valid() {
		return nil, inputErr("type", "Invalid type. Must be 'social' or 'newsletter'")
	}
	if strings.TrimSpace(originalURL) == "" {
		return nil, inputErr("originalUrl", "Cannot regenerate without original source. Please try converting again from the main page.")
	}
	if !validURL(originalURL) {
		return nil, inputErr("originalUrl", "Invalid URL format")
	}

	text, err := s.readURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	out, err := s.call(ctx, prompt.Regenerate(kind, strings.TrimSpace(originalURL), text))
	if err != nil {
		return nil, fmt.Errorf("regenerate %s: %w", kind, err)
	}
	if out == "" {
		return nil, ErrEmptyResponse
	}

	r := &Regeneration{Title: "Regenerated Content"}
	if kind == prompt.KindSocial {
		r.SocialPost = out
	} else {
		r.Newsletter = out
	}
	return r, nil
}

// Image generates an image for the description and returns a URL: a
// public object URL when an image store is configured, a base64 data URL
// otherwise.
func (s *Service) Image(ctx context.Context, description string, kind prompt.Kind) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", inputErr("prompt", "Prompt is required")
	}

	data, contentType, err := s.model.GenerateImage(ctx, prompt.Image(description, kind))
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if s.images != nil {
		u, err := s.images.PutImage(ctx, description, data, contentType)
		if err == nil {
			return u, nil
		}
		s.logger.Warn("image upload failed, returning inline data", "error", err)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// readURL returns page text when the model cannot read URLs itself, or ""
// when it can.
func (s *Service) readURL(ctx context.Context, rawURL string) (string, error) {
	if s.model.SupportsURLContext() {
		return "", nil
	}
	if s.fetcher == nil {
		return "", ErrURLUnreadable
	}
	a, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	s.logger.Debug("fetched page server-side", "url", rawURL, "length", len(a.Text))
	return a.Text, nil
}

func (s *Service) call(ctx context.Context, req prompt.Request) (string, error) {
	out, err := s.model.GenerateWith(ctx, req.System, req.User, req.Options)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

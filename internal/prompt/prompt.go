// Package prompt builds the text payloads sent to the language model for
// social posts, newsletters, summaries, style inference and carousels.
//
// Builder.Prepare performs the two optional pre-processing sub-requests
// (summarizing long input and condensing many style samples into one
// description) before any main prompt is built. Both degrade to the raw
// input on failure.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"postcraft/internal/ai"
)

// Mode selects how the source is handed to the model.
type Mode string

const (
	ModeURL  Mode = "url"
	ModeText Mode = "text"
)

// Kind is the content category a prompt targets.
type Kind string

const (
	KindSocial     Kind = "social"
	KindNewsletter Kind = "newsletter"
)

// Valid reports whether k names a known content kind.
func (k Kind) Valid() bool { return k == KindSocial || k == KindNewsletter }

// Label is the phrase used for k inside prompts.
func (k Kind) Label() string {
	if k == KindSocial {
		return "social media"
	}
	return "newsletter"
}

// Request is one call to the model.
type Request struct {
	System  string
	User    string
	Options ai.Options
}

// Generator is the model call the builder needs for its sub-requests.
// *ai.Registry satisfies it.
type Generator interface {
	GenerateWith(ctx context.Context, systemPrompt, userPrompt string, opts ai.Options) (string, error)
}

// StyleCache stores inferred style descriptions keyed by the sample set.
type StyleCache interface {
	GetStyle(ctx context.Context, samples []string) (string, bool)
	SetStyle(ctx context.Context, samples []string, description string)
}

// Input is a normalized conversion request.
type Input struct {
	Mode Mode
	URL  string
	// ArticleText is the source in text mode. In URL mode it may carry text
	// fetched server-side, in which case the URL is only cited.
	ArticleText  string
	Memories     []string
	CustomPrompt string
}

// Config holds the thresholds that switch on the sub-requests.
type Config struct {
	// SummarizeThreshold is the text length, in characters, above which the
	// source is summarized first.
	SummarizeThreshold int
	// StyleSampleThreshold is the sample count above which samples are
	// condensed into one style description.
	StyleSampleThreshold int
}

// DefaultConfig matches the product defaults.
var DefaultConfig = Config{SummarizeThreshold: 15000, StyleSampleThreshold: 10}

// Builder prepares inputs and constructs prompts.
type Builder struct {
	gen    Generator
	cfg    Config
	styles StyleCache
	logger *slog.Logger
}

// NewBuilder creates a builder. styles may be nil.
func NewBuilder(gen Generator, cfg Config, styles StyleCache) *Builder {
	if cfg.SummarizeThreshold <= 0 {
		cfg.SummarizeThreshold = DefaultConfig.SummarizeThreshold
	}
	if cfg.StyleSampleThreshold <= 0 {
		cfg.StyleSampleThreshold = DefaultConfig.StyleSampleThreshold
	}
	return &Builder{gen: gen, cfg: cfg, styles: styles, logger: slog.Default()}
}

// Prepared is an input after pre-processing, ready for the main prompts.
type Prepared struct {
	Mode   Mode
	URL    string
	Source string // effective article text; empty in pure URL mode
	// Style is the rendered style block inserted into main prompts.
	Style        string
	CustomPrompt string

	Summarized    bool
	StyleInferred bool
}

// Prepare runs the summarization and style-inference sub-requests when the
// thresholds are exceeded. Sub-request failures are logged and the raw
// input is used instead; Prepare itself only fails on context cancellation.
func (b *Builder) Prepare(ctx context.Context, in Input) (Prepared, error) {
	p := Prepared{
		Mode:         in.Mode,
		URL:          strings.TrimSpace(in.URL),
		Source:       strings.TrimSpace(in.ArticleText),
		CustomPrompt: strings.TrimSpace(in.CustomPrompt),
	}

	if p.Source != "" && utf8.RuneCountInString(p.Source) > b.cfg.SummarizeThreshold {
		summary, err := b.run(ctx, Summarize(p.Source))
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return Prepared{}, ctx.Err()
			}
			b.logger.Warn("summarization failed, using full text", "error", err, "length", len(p.Source))
		case summary == "":
			b.logger.Warn("summarization returned nothing, using full text")
		default:
			p.Source = summary
			p.Summarized = true
		}
	}

	memories := cleanSamples(in.Memories)
	p.Style = MemoryBlock(memories)
	if len(memories) > b.cfg.StyleSampleThreshold {
		desc, err := b.inferStyle(ctx, memories)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return Prepared{}, ctx.Err()
			}
			b.logger.Warn("style inference failed, quoting samples", "error", err, "samples", len(memories))
		case desc == "":
			b.logger.Warn("style inference returned nothing, quoting samples")
		default:
			p.Style = StyleBlock(desc)
			p.StyleInferred = true
		}
	}
	return p, nil
}

func (b *Builder) inferStyle(ctx context.Context, samples []string) (string, error) {
	if b.styles != nil {
		if desc, ok := b.styles.GetStyle(ctx, samples); ok {
			return desc, nil
		}
	}
	desc, err := b.run(ctx, InferStyle(samples))
	if err != nil {
		return "", err
	}
	if desc != "" && b.styles != nil {
		b.styles.SetStyle(ctx, samples, desc)
	}
	return desc, nil
}

func (b *Builder) run(ctx context.Context, req Request) (string, error) {
	out, err := b.gen.GenerateWith(ctx, req.System, req.User, req.Options)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func cleanSamples(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MemoryBlock quotes each sample on its own bullet. It is empty when there
// are no samples.
func MemoryBlock(samples []string) string {
	if len(samples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("- Emulate the writing style, tone, and voice from the following examples:\n")
	for _, s := range samples {
		fmt.Fprintf(&sb, "- \"%s\"\n", s)
	}
	return sb.String()
}

// StyleBlock embeds an inferred style description.
func StyleBlock(description string) string {
	return "- Write in the following style, tone, and voice:\n" + description + "\n"
}

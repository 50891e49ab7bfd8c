// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for interacting with multiple
// LLM providers (Gemini, OpenAI, Claude, Mistral). Each provider implements
// the Provider interface, and the Registry selects the active one by name
// and paces outbound calls through a shared rate limiter.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Provider defines the interface that all AI providers must implement.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the generated text.
	// systemPrompt sets the model's behaviour; userPrompt is the user's request.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// Options requests provider-side capabilities for a single call.
type Options struct {
	// URLContext asks the provider to fetch and read URLs named in the prompt.
	URLContext bool
	// ResponseSchema constrains the reply to JSON of the given shape.
	// Providers without structured output ignore it; prompts still ask for JSON.
	ResponseSchema *genai.Schema
}

// OptionsGenerator is implemented by providers that honour Options.
type OptionsGenerator interface {
	GenerateWithOptions(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
	// SupportsURLContext reports whether URLContext requests are honoured.
	SupportsURLContext() bool
}

// ErrURLContextUnsupported is returned when a call asks for URL reading and
// the active provider cannot do it.
var ErrURLContextUnsupported = errors.New("ai: active provider cannot read URLs")

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey     string
	Model      string
	ModelImage string
	BaseURL    string
}

// Registry manages available AI providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	moderator Moderator     // nil if no moderation API is available
	limiter   *rate.Limiter // nil means unlimited
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are skipped.
// OpenAI's moderation endpoint is preferred; Mistral's is the fallback.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "gemini":
			p, err := newGemini(context.Background(), cfg)
			if err != nil {
				slog.Warn("gemini provider disabled", "error", err)
				continue
			}
			r.providers[name] = p
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}

	openaiCfg, hasOpenAI := configs["openai"]
	hasOpenAI = hasOpenAI && openaiCfg.APIKey != ""
	mistralCfg, hasMistral := configs["mistral"]
	hasMistral = hasMistral && mistralCfg.APIKey != ""

	switch {
	case hasOpenAI && hasMistral:
		r.moderator = newFallbackModerator(
			newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL),
			newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL),
		)
	case hasOpenAI:
		r.moderator = newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL)
	case hasMistral:
		r.moderator = newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL)
	}

	return r
}

// SetRateLimit paces every outbound generation call to perSecond requests
// with the given burst. A non-positive rate removes the limit.
func (r *Registry) SetRateLimit(perSecond float64, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if perSecond <= 0 {
		r.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	r.limiter = rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/perSecond)), burst)
}

// wait blocks until the limiter admits one more call or ctx ends.
func (r *Registry) wait(ctx context.Context) error {
	r.mu.RLock()
	l := r.limiter
	r.mu.RUnlock()

	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("ai: rate limiter: %w", err)
	}
	return nil
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return r.GenerateWith(ctx, systemPrompt, userPrompt, Options{})
}

// GenerateWith calls the active provider with capability options. Providers
// that do not implement OptionsGenerator receive a plain Generate call, unless
// URL reading was requested, which fails with ErrURLContextUnsupported.
func (r *Registry) GenerateWith(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	if err := r.wait(ctx); err != nil {
		return "", err
	}

	if og, ok := p.(OptionsGenerator); ok {
		if opts.URLContext && !og.SupportsURLContext() {
			return "", ErrURLContextUnsupported
		}
		return og.GenerateWithOptions(ctx, systemPrompt, userPrompt, opts)
	}
	if opts.URLContext {
		return "", ErrURLContextUnsupported
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// SupportsURLContext reports whether the active provider can read URLs itself.
func (r *Registry) SupportsURLContext() bool {
	p, err := r.Active()
	if err != nil {
		return false
	}
	og, ok := p.(OptionsGenerator)
	return ok && og.SupportsURLContext()
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all providers that have API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a provider in the registry.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// SetModerator replaces the moderator. nil disables moderation.
func (r *Registry) SetModerator(m Moderator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// CheckPrompt runs text through the moderation API. Returns a safe result
// when no moderator is configured.
func (r *Registry) CheckPrompt(ctx context.Context, text string) (*ModerationResult, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return m.CheckSafety(ctx, text)
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}

// ImageGenerator is implemented by providers that can produce images.
type ImageGenerator interface {
	// GenerateImage returns raw image bytes and their MIME type.
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// ErrNoImageData is returned when an image model answers without an image.
var ErrNoImageData = errors.New("ai: no image data in response")

// ErrImageUnsupported is returned when no registered provider makes images.
var ErrImageUnsupported = errors.New("ai: no provider supports image generation")

// imageProvider prefers the active provider and otherwise picks the first
// registered provider, by name, that can produce images.
func (r *Registry) imageProvider() (ImageGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ig, ok := r.providers[r.active].(ImageGenerator); ok {
		return ig, nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ig, ok := r.providers[name].(ImageGenerator); ok {
			return ig, nil
		}
	}
	return nil, ErrImageUnsupported
}

// GenerateImage produces an image with the first capable provider.
func (r *Registry) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	ig, err := r.imageProvider()
	if err != nil {
		return nil, "", err
	}
	if err := r.wait(ctx); err != nil {
		return nil, "", err
	}
	return ig.GenerateImage(ctx, prompt)
}

// SupportsImageGeneration reports whether any registered provider can
// generate images.
func (r *Registry) SupportsImageGeneration() bool {
	_, err := r.imageProvider()
	return err == nil
}

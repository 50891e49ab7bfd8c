// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiProvider uses the Google Gen AI SDK. It is the only provider that
// can read URLs itself (url_context tool) and return schema-bound JSON.
type geminiProvider struct {
	config ProviderConfig
	client *genai.Client
}

func newGemini(ctx context.Context, cfg ProviderConfig) (*geminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiProvider{config: cfg, client: client}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) SupportsURLContext() bool { return true }

// Generate sends a generateContent request using the default model.
func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.GenerateWithOptions(ctx, systemPrompt, userPrompt, Options{})
}

// GenerateWithOptions maps Options onto the request config. The url_context
// tool cannot be combined with a response schema, so URL reads win.
func (p *geminiProvider) GenerateWithOptions(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	gc := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	switch {
	case opts.URLContext:
		gc.Tools = []*genai.Tool{{URLContext: &genai.URLContext{}}}
	case opts.ResponseSchema != nil:
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = opts.ResponseSchema
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, genai.Text(userPrompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: no text in response")
	}
	return text, nil
}

// GenerateImage asks the image model for an IMAGE modality reply and returns
// the first inline image part.
func (p *geminiProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	model := p.config.ModelImage
	if model == "" {
		return nil, "", fmt.Errorf("gemini: image generation requires GEMINI_IMAGE_MODEL to be set")
	}

	gc := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	if err != nil {
		return nil, "", fmt.Errorf("gemini image: %w", err)
	}

	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			contentType := part.InlineData.MIMEType
			if contentType == "" {
				contentType = "image/png"
			}
			return part.InlineData.Data, contentType, nil
		}
	}

	return nil, "", fmt.Errorf("gemini image: %w", ErrNoImageData)
}

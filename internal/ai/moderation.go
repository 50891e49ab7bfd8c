// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// ModerationResult contains the outcome of a safety check.
type ModerationResult struct {
	Safe       bool     // true if the text passes moderation
	Categories []string // flagged category names, sorted (empty when safe)
}

// Moderator checks user-authored prompt text for policy violations before
// it is stored for reuse.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// endpointModerator covers both OpenAI (free) and Mistral (paid) moderation
// endpoints; they differ only in URL, model name and how "flagged" is read.
type endpointModerator struct {
	provider string
	url      string
	model    string
	apiKey   string
	client   *http.Client
}

func newOpenAIModerator(apiKey, baseURL string) *endpointModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &endpointModerator{
		provider: "openai moderation",
		url:      baseURL + "/moderations",
		model:    "omni-moderation-latest",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func newMistralModerator(apiKey, baseURL string) *endpointModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	return &endpointModerator{
		provider: "mistral moderation",
		url:      strings.TrimSuffix(baseURL, "/v1") + "/v1/moderations",
		model:    "mistral-moderation-latest",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *endpointModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var result modResponse
	headers := map[string]string{"Authorization": "Bearer " + m.apiKey}
	body := modRequest{Model: m.model, Input: text}
	if err := postJSON(ctx, m.client, m.provider, m.url, headers, body, &result); err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}

	// Mistral has no top-level "flagged"; any flagged category counts.
	var flagged []string
	for cat, on := range result.Results[0].Categories {
		if on {
			flagged = append(flagged, displayCategory(cat))
		}
	}
	sort.Strings(flagged)

	return &ModerationResult{
		Safe:       len(flagged) == 0 && !result.Results[0].Flagged,
		Categories: flagged,
	}, nil
}

// displayCategory turns "hate/threatening" into "hate (threatening)".
func displayCategory(cat string) string {
	display := strings.ReplaceAll(cat, "/", " (")
	if strings.Contains(cat, "/") {
		display += ")"
	}
	return strings.ReplaceAll(display, "_", " ")
}

// fallbackModerator tries primary and switches to secondary for good once
// primary rejects its credentials (e.g. project-scoped OpenAI keys).
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
	useSecond atomic.Bool
}

func newFallbackModerator(primary, secondary Moderator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	if !f.useSecond.Load() {
		res, err := f.primary.CheckSafety(ctx, text)
		if err == nil {
			return res, nil
		}
		var se *StatusError
		if !errors.As(err, &se) || Classify(err) != CategoryAuth {
			return nil, err
		}
		slog.Warn("primary moderator rejected credentials, switching", "error", err)
		f.useSecond.Store(true)
	}
	return f.secondary.CheckSafety(ctx, text)
}

type modRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type modResponse struct {
	Results []modResult `json:"results"`
}

type modResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}

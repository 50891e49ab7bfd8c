// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// StatusError is returned by the HTTP providers when the upstream API
// answers with a non-2xx status.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Code, e.Body)
}

// Category groups upstream failures by the remedy offered to the user.
type Category int

const (
	CategoryGeneric     Category = iota
	CategoryQuota                // billing quota exhausted; retry later or upgrade
	CategoryRateLimit            // too many requests; wait and retry
	CategoryUnavailable          // model or service not available
	CategoryAuth                 // credentials rejected
)

func (c Category) String() string {
	switch c {
	case CategoryQuota:
		return "quota"
	case CategoryRateLimit:
		return "rate_limit"
	case CategoryUnavailable:
		return "unavailable"
	case CategoryAuth:
		return "auth"
	default:
		return "generic"
	}
}

// HTTPStatus is the status code a handler should answer with.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryQuota, CategoryRateLimit:
		return http.StatusTooManyRequests
	case CategoryUnavailable:
		return http.StatusServiceUnavailable
	case CategoryAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user-facing summary for the category.
func (c Category) Message() string {
	switch c {
	case CategoryQuota:
		return "API quota exceeded"
	case CategoryRateLimit:
		return "Rate limit exceeded"
	case CategoryUnavailable:
		return "AI model not available"
	case CategoryAuth:
		return "AI service authentication failed"
	default:
		return "AI generation failed"
	}
}

// Remedy suggests what the user can do next.
func (c Category) Remedy() string {
	switch c {
	case CategoryQuota:
		return "The AI service quota has been reached. Please try again later."
	case CategoryRateLimit:
		return "Too many requests. Please wait a moment and try again."
	case CategoryUnavailable:
		return "This feature is temporarily unavailable."
	case CategoryAuth:
		return "Check the configured API key."
	default:
		return "Please try again."
	}
}

// Classify maps an upstream error to a Category. Structured status codes
// from the genai SDK and the HTTP providers are consulted first. Message
// substrings are the last resort and are brittle by nature.
func Classify(err error) Category {
	if err == nil {
		return CategoryGeneric
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyCode(apiErr.Code, apiErr.Status+" "+apiErr.Message)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyCode(statusErr.Code, statusErr.Body)
	}

	return classifyMessage(err.Error())
}

func classifyCode(code int, detail string) Category {
	switch code {
	case http.StatusTooManyRequests:
		if strings.Contains(strings.ToLower(detail), "quota") {
			return CategoryQuota
		}
		return CategoryRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return CategoryAuth
	case http.StatusNotFound, http.StatusServiceUnavailable:
		return CategoryUnavailable
	}
	return classifyMessage(detail)
}

func classifyMessage(msg string) Category {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "quota"):
		return CategoryQuota
	case strings.Contains(m, "rate limit"), strings.Contains(m, "429"):
		return CategoryRateLimit
	case strings.Contains(m, "model not found"), strings.Contains(m, "not available"):
		return CategoryUnavailable
	case strings.Contains(m, "401"), strings.Contains(m, "api key"):
		return CategoryAuth
	}
	return CategoryGeneric
}

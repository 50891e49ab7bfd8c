// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns free text such as image prompts into short,
// URL-safe object names.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, whitespace or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.Join(strings.Fields(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Short returns Generate(s) cut to at most max bytes, preferring a word
// boundary. An empty result becomes fallback.
func Short(s string, max int, fallback string) string {
	result := Generate(s)
	if max > 0 && len(result) > max {
		result = result[:max]
		if i := strings.LastIndexByte(result, '-'); i > max/2 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	if result == "" {
		return fallback
	}
	return result
}

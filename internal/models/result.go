// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result is one stored conversion: the generated social post and
// newsletter plus where they came from.
type Result struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        string    `json:"-"`
	Title          string    `json:"title"`
	SocialPost     string    `json:"socialPost"`
	Newsletter     string    `json:"newsletter"`
	NewsletterHTML string    `json:"newsletterHtml,omitempty"`
	OriginalURL    string    `json:"originalUrl,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Empty reports whether the result carries no generated text.
func (r *Result) Empty() bool {
	return strings.TrimSpace(r.SocialPost) == "" && strings.TrimSpace(r.Newsletter) == ""
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxPromptTitleLen bounds a prompt title in characters.
const MaxPromptTitleLen = 120

// Prompt is a reusable instruction block an owner saved under a title.
// Titles are unique per owner.
type Prompt struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"-"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

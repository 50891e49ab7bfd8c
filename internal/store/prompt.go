// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"postcraft/internal/models"
)

// PromptStore handles an owner's saved prompts.
type PromptStore struct {
	db *sql.DB
}

// NewPromptStore creates a new PromptStore.
func NewPromptStore(db *sql.DB) *PromptStore {
	return &PromptStore{db: db}
}

// Create saves a prompt. Returns ErrPromptExists if the owner already has
// one with the same title.
func (s *PromptStore) Create(ctx context.Context, ownerID, title, text string) (*models.Prompt, error) {
	now := time.Now().UTC()
	p := &models.Prompt{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (id, owner_id, title, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.OwnerID, p.Title, p.Text, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrPromptExists
	}
	if err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}
	return p, nil
}

// UpdateText replaces the text of one of the owner's prompts. Returns
// ErrNotFound if the prompt does not exist or belongs to someone else.
func (s *PromptStore) UpdateText(ctx context.Context, id uuid.UUID, ownerID, text string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET text = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
	`, text, time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID retrieves one of the owner's prompts.
func (s *PromptStore) FindByID(ctx context.Context, id uuid.UUID, ownerID string) (*models.Prompt, error) {
	p := &models.Prompt{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, text, created_at, updated_at
		FROM prompts WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(&p.ID, &p.OwnerID, &p.Title, &p.Text, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find prompt: %w", err)
	}
	return p, nil
}

// List returns the owner's prompts ordered by title.
func (s *PromptStore) List(ctx context.Context, ownerID string) ([]models.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, text, created_at, updated_at
		FROM prompts WHERE owner_id = $1
		ORDER BY title
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	items := []models.Prompt{}
	for rows.Next() {
		var p models.Prompt
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Text, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

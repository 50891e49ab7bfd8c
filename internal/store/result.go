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

// ResultStore handles conversion results.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore creates a new ResultStore with the given database connection.
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Create inserts a result and returns it with its generated id and
// creation time filled in.
func (s *ResultStore) Create(ctx context.Context, r *models.Result) (*models.Result, error) {
	out := *r
	out.ID = uuid.New()
	out.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (id, owner_id, title, social_post, newsletter,
		                     newsletter_html, original_url, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, out.ID, out.OwnerID, out.Title, out.SocialPost, out.Newsletter,
		out.NewsletterHTML, out.OriginalURL, out.ImageURL, out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create result: %w", err)
	}
	return &out, nil
}

// FindByID retrieves a result by id. Returns ErrNotFound if it does not exist.
func (s *ResultStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Result, error) {
	r := &models.Result{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, social_post, newsletter,
		       newsletter_html, original_url, image_url, created_at
		FROM results WHERE id = $1
	`, id).Scan(
		&r.ID, &r.OwnerID, &r.Title, &r.SocialPost, &r.Newsletter,
		&r.NewsletterHTML, &r.OriginalURL, &r.ImageURL, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find result by id: %w", err)
	}
	return r, nil
}

// ListByOwner returns the owner's most recent results, newest first.
func (s *ResultStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, social_post, newsletter,
		       newsletter_html, original_url, image_url, created_at
		FROM results
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var items []models.Result
	for rows.Next() {
		var r models.Result
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &r.Title, &r.SocialPost, &r.Newsletter,
			&r.NewsletterHTML, &r.OriginalURL, &r.ImageURL, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

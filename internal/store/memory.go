package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MemoryStore handles an owner's writing samples.
type MemoryStore struct {
	db *sql.DB
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(db *sql.DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// Add appends a sample for the owner.
func (s *MemoryStore) Add(ctx context.Context, ownerID, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (owner_id, text) VALUES ($1, $2)`, ownerID, text)
	if err != nil {
		return fmt.Errorf("add memory: %w", err)
	}
	return nil
}

// List returns the owner's samples in insertion order.
func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM memories WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	texts := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// DeleteAll removes every sample of the owner and reports how many went.
func (s *MemoryStore) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete memories: %w", err)
	}
	return res.RowsAffected()
}

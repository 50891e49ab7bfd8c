package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// StarterPrompt is a reusable instruction block offered to new owners.
type StarterPrompt struct {
	Title string
	Text  string
}

// StarterPrompts are the prompts Seed creates.
var StarterPrompts = []StarterPrompt{
	{
		Title: "Plain and direct",
		Text:  "Write in short sentences. Prefer concrete numbers over adjectives. No rhetorical questions.",
	},
	{
		Title: "Engineering audience",
		Text:  "Assume the reader is a working software engineer. Name the trade-offs explicitly and skip introductory definitions.",
	},
	{
		Title: "Founder voice",
		Text:  "First person, candid, slightly informal. Mention one lesson learned the hard way.",
	},
}

// Seed gives the development owner a starter set of prompts. It only acts
// when that owner has no prompts yet, so it is safe to call on every start.
func Seed(db *sql.DB, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM prompts WHERE owner_id = $1", ownerID).Scan(&count); err != nil {
		return fmt.Errorf("seed check prompts: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping", "owner", ownerID)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range StarterPrompts {
		_, err := tx.Exec(`
			INSERT INTO prompts (id, owner_id, title, text)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (owner_id, title) DO NOTHING
		`, uuid.New(), ownerID, p.Title, p.Text)
		if err != nil {
			return fmt.Errorf("seed insert prompt %q: %w", p.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with starter prompts", "owner", ownerID, "count", len(StarterPrompts))
	return nil
}

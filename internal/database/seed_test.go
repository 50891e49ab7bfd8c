package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestSeedIdempotent(t *testing.T) {
	db := testDB(t)
	if _, err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	owner := "seed-test-" + uuid.NewString()[:8]
	t.Cleanup(func() { db.Exec("DELETE FROM prompts WHERE owner_id = $1", owner) })

	// Seeding twice must not duplicate the starter set.
	if err := Seed(db, owner); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db, owner); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM prompts WHERE owner_id = $1", owner).Scan(&count); err != nil {
		t.Fatalf("count prompts: %v", err)
	}
	if count != len(StarterPrompts) {
		t.Errorf("got %d prompts, want %d", count, len(StarterPrompts))
	}
}

func TestSeedWithoutOwner(t *testing.T) {
	// No owner means nothing to seed and no database access.
	if err := Seed(nil, ""); err != nil {
		t.Errorf("Seed without owner: %v", err)
	}
}

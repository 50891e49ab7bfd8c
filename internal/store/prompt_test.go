// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestPromptStoreCreateDuplicate(t *testing.T) {
	db := testDB(t)
	s := NewPromptStore(db)
	owner := testOwner(t, db)
	ctx := context.Background()

	p, err := s.Create(ctx, owner, "Terse", "Keep it short.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	if _, err := s.Create(ctx, owner, "Terse", "Other text."); !errors.Is(err, ErrPromptExists) {
		t.Errorf("duplicate title: got %v, want ErrPromptExists", err)
	}

	// The same title is fine for a different owner.
	if _, err := s.Create(ctx, testOwner(t, db), "Terse", "Keep it short."); err != nil {
		t.Errorf("other owner: %v", err)
	}
}

func TestPromptStoreUpdateText(t *testing.T) {
	db := testDB(t)
	s := NewPromptStore(db)
	owner := testOwner(t, db)
	ctx := context.Background()

	p, err := s.Create(ctx, owner, "Voice", "v1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateText(ctx, p.ID, owner, "v2"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	found, err := s.FindByID(ctx, p.ID, owner)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Text != "v2" {
		t.Errorf("text: got %q, want v2", found.Text)
	}
	if !found.UpdatedAt.After(found.CreatedAt) && !found.UpdatedAt.Equal(found.CreatedAt) {
		t.Error("updated_at must not precede created_at")
	}

	// Another owner cannot touch it.
	if err := s.UpdateText(ctx, p.ID, "someone-else", "hijack"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign update: got %v, want ErrNotFound", err)
	}
	if _, err := s.FindByID(ctx, p.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign find: got %v, want ErrNotFound", err)
	}
}

func TestPromptStoreList(t *testing.T) {
	db := testDB(t)
	s := NewPromptStore(db)
	owner := testOwner(t, db)
	ctx := context.Background()

	for _, title := range []string{"b", "a", "c"} {
		if _, err := s.Create(ctx, owner, title, "text "+title); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}

	items, err := s.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 || items[0].Title != "a" || items[2].Title != "c" {
		t.Errorf("unexpected order: %+v", items)
	}
}

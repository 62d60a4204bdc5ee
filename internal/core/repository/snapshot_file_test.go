package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vinculo/crm-service/internal/core/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileSnapshotStore(path)
	ctx := context.Background()

	snap := &domain.SessionSnapshot{
		User:          &domain.User{ID: 7, Email: "ana@acme.com", Name: "Ana"},
		Token:         "tok-123",
		Profile:       &domain.Profile{ID: 7, Role: "admin"},
		Authenticated: true,
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot")
	}
	if got.Token != "tok-123" || !got.Authenticated {
		t.Errorf("snapshot fields lost: %+v", got)
	}
	if got.User == nil || got.User.ID != 7 {
		t.Errorf("user lost: %+v", got.User)
	}
	if got.Profile == nil || got.Profile.Role != "admin" {
		t.Errorf("profile lost: %+v", got.Profile)
	}
}

func TestSnapshotLoadAbsentIsNil(t *testing.T) {
	store := NewFileSnapshotStore(filepath.Join(t.TempDir(), "missing.json"))

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent snapshot, got %+v", got)
	}
}

func TestSnapshotClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileSnapshotStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, &domain.SessionSnapshot{Token: "t"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear must succeed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after clear, got %+v", got)
	}
}

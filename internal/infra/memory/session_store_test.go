package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-admin-console/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Save(ctx, domain.Session{ID: "s1", Email: "admin@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "admin@example.com" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSessionStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	_ = store.Save(ctx, domain.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)})
	_ = store.Save(ctx, domain.Session{ID: "edge", ExpiresAt: now})
	_ = store.Save(ctx, domain.Session{ID: "live", ExpiresAt: now.Add(time.Hour)})

	purged, err := store.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 2 {
		t.Fatalf("expected 2 purged, got %d", purged)
	}
	if _, err := store.Get(ctx, "live"); err != nil {
		t.Fatalf("expected live session kept: %v", err)
	}
}

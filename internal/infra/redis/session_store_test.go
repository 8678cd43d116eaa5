package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-admin-console/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)

	session := domain.Session{ID: "s1", Email: "admin@example.com", Role: "admin", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("console:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("console:session:s1"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected key ttl bounded by expiry, got %v", ttl)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "admin@example.com" || got.Role != "admin" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("console:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreKeyExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	_ = store.Save(context.Background(), domain.Session{ID: "s1"})

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone after ttl, got %v", err)
	}
}

func TestSessionStorePurgeExpired(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	now := time.Now()
	_ = store.Save(ctx, domain.Session{ID: "live", ExpiresAt: now.Add(time.Hour)})
	_ = store.Save(ctx, domain.Session{ID: "soon", ExpiresAt: now.Add(10 * time.Minute)})

	purged, err := store.PurgeExpired(ctx, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
	if mr.Exists("console:session:soon") {
		t.Fatalf("expected expired session removed")
	}
	if !mr.Exists("console:session:live") {
		t.Fatalf("expected live session kept")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

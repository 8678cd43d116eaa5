package memory

import (
	"context"
	"testing"

	"quiz-admin-console/internal/domain"
)

func TestAuditLogKeepsNewestFirst(t *testing.T) {
	ctx := context.Background()
	log := NewAuditLog(3)

	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := log.Record(ctx, domainEntry(id)); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	got, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected ring to hold 3 entries, got %d", len(got))
	}
	want := []string{"d", "c", "b"}
	for i, e := range got {
		if e.ResourceID != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], e.ResourceID)
		}
	}
	if got[0].ID != 4 {
		t.Fatalf("expected ids to keep counting, got %d", got[0].ID)
	}

	limited, _ := log.Recent(ctx, 1)
	if len(limited) != 1 || limited[0].ResourceID != "d" {
		t.Fatalf("unexpected limited result %+v", limited)
	}
}

func domainEntry(id string) domain.AuditEntry {
	return domain.AuditEntry{Actor: "admin@example.com", Action: "create", Resource: "quiz", ResourceID: id}
}

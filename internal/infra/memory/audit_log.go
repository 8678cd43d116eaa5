package memory

import (
	"context"
	"sync"
	"time"

	"quiz-admin-console/internal/domain"
)

const defaultAuditCapacity = 500

// AuditLog keeps the most recent audit entries in a fixed-size ring.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	next    int
	full    bool
	lastID  int64
}

func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditLog{entries: make([]domain.AuditEntry, capacity)}
}

func (l *AuditLog) Record(_ context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastID++
	entry.ID = l.lastID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	l.entries[l.next] = entry
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (l *AuditLog) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size := l.next
	if l.full {
		size = len(l.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]domain.AuditEntry, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (l.next - 1 - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-admin-console/internal/domain"
)

const defaultRecentLimit = 50

// AuditLog stores console mutations in the audit_entries table.
type AuditLog struct {
	pool *pgxpool.Pool
}

func NewAuditLog(pool *pgxpool.Pool) *AuditLog {
	return &AuditLog{pool: pool}
}

func (l *AuditLog) Record(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	err := l.pool.QueryRow(ctx,
		`INSERT INTO audit_entries (actor, action, resource, resource_id, created_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		 RETURNING id, created_at`,
		entry.Actor, entry.Action, entry.Resource, entry.ResourceID, nullableTime(entry),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("record audit entry: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (l *AuditLog) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := l.pool.Query(ctx,
		`SELECT id, actor, action, resource, resource_id, created_at
		 FROM audit_entries ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0, limit)
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Resource, &e.ResourceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func nullableTime(entry domain.AuditEntry) interface{} {
	if entry.CreatedAt.IsZero() {
		return nil
	}
	return entry.CreatedAt
}

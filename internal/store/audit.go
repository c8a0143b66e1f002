package store

import (
	"context"
	"fmt"

	"github.com/dgallion1/standgate/internal/model"
)

func (s *Store) InsertAudit(ctx context.Context, entry *model.AuditEntry) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO audit_log (id, actor_id, action, target_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		entry.ID, entry.ActorID, entry.Action, entry.TargetID, entry.Details,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the newest entries up to limit.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, actor_id, action, target_id, details, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action,
			&entry.TargetID, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

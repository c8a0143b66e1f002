package store

import (
	"context"
	"fmt"

	"github.com/dgallion1/standgate/internal/model"
)

// UpsertAssignment binds a target to a standard version, replacing any
// existing binding for that target.
func (s *Store) UpsertAssignment(ctx context.Context, assignment *model.StandardAssignment) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO standard_assignments (target_id, target_type, standard_version_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (target_id, target_type)
		DO UPDATE SET standard_version_id = EXCLUDED.standard_version_id,
		              created_at = now()
		RETURNING created_at`,
		assignment.Target.ID, assignment.Target.Kind, assignment.StandardVersionID,
	).Scan(&assignment.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// AssignmentFor returns the direct assignment for target, or (nil, nil)
// when the target has none.
func (s *Store) AssignmentFor(ctx context.Context, target model.TargetRef) (*model.StandardAssignment, error) {
	assignment := model.StandardAssignment{Target: target}
	err := s.pool.QueryRow(ctx, `
		SELECT standard_version_id, created_at
		FROM standard_assignments
		WHERE target_id = $1 AND target_type = $2`,
		target.ID, target.Kind,
	).Scan(&assignment.StandardVersionID, &assignment.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &assignment, nil
}

func (s *Store) DeleteAssignment(ctx context.Context, target model.TargetRef) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM standard_assignments
		WHERE target_id = $1 AND target_type = $2`,
		target.ID, target.Kind)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment for %s: %w", target, ErrNotFound)
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context) ([]model.StandardAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT target_id, target_type, standard_version_id, created_at
		FROM standard_assignments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.StandardAssignment
	for rows.Next() {
		var assignment model.StandardAssignment
		if err := rows.Scan(&assignment.Target.ID, &assignment.Target.Kind,
			&assignment.StandardVersionID, &assignment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

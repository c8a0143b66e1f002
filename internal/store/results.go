package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/model"
)

func (s *Store) SaveValidationResult(ctx context.Context, result *model.ValidationResult) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO validation_results (id, document_id, standard_version_id, status, report)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		result.ID, result.DocumentID, result.StandardVersionID, result.Status, result.Report,
	).Scan(&result.CreatedAt)
	if err != nil {
		return fmt.Errorf("save validation result: %w", err)
	}
	return nil
}

// LatestResult returns the most recent validation of a document.
func (s *Store) LatestResult(ctx context.Context, documentID uuid.UUID) (*model.ValidationResult, error) {
	var result model.ValidationResult
	err := s.pool.QueryRow(ctx, `
		SELECT id, document_id, standard_version_id, status, report, created_at
		FROM validation_results
		WHERE document_id = $1
		ORDER BY created_at DESC LIMIT 1`, documentID,
	).Scan(&result.ID, &result.DocumentID, &result.StandardVersionID,
		&result.Status, &result.Report, &result.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("validation result for %s: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("get latest result: %w", err)
	}
	return &result, nil
}

// AppendToLatestReport merges entries into the report of a document's
// most recent validation result. Used to attach decision-flow artifacts
// (fixed path, applied action, deviations) to the result they fixed.
func (s *Store) AppendToLatestReport(ctx context.Context, documentID uuid.UUID, entries map[string]any) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE validation_results
		SET report = report || $2
		WHERE id = (
			SELECT id FROM validation_results
			WHERE document_id = $1
			ORDER BY created_at DESC LIMIT 1
		)`, documentID, entries)
	if err != nil {
		return fmt.Errorf("append to latest report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("validation result for %s: %w", documentID, ErrNotFound)
	}
	return nil
}

// ListResults returns a document's validation history, newest first.
func (s *Store) ListResults(ctx context.Context, documentID uuid.UUID) ([]model.ValidationResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, standard_version_id, status, report, created_at
		FROM validation_results
		WHERE document_id = $1
		ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []model.ValidationResult
	for rows.Next() {
		var result model.ValidationResult
		if err := rows.Scan(&result.ID, &result.DocumentID, &result.StandardVersionID,
			&result.Status, &result.Report, &result.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

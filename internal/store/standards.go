package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dgallion1/standgate/internal/model"
)

func (s *Store) CreateStandard(ctx context.Context, std *model.Standard) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO standards (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		std.ID, std.Name, std.Description,
	).Scan(&std.CreatedAt)
	if err != nil {
		return fmt.Errorf("create standard: %w", err)
	}
	return nil
}

func (s *Store) Standard(ctx context.Context, id uuid.UUID) (*model.Standard, error) {
	var std model.Standard
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM standards WHERE id = $1`, id,
	).Scan(&std.ID, &std.Name, &std.Description, &std.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("standard %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get standard: %w", err)
	}
	return &std, nil
}

func (s *Store) ListStandards(ctx context.Context) ([]model.Standard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM standards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	defer rows.Close()

	var standards []model.Standard
	for rows.Next() {
		var std model.Standard
		if err := rows.Scan(&std.ID, &std.Name, &std.Description, &std.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan standard: %w", err)
		}
		standards = append(standards, std)
	}
	return standards, rows.Err()
}

func (s *Store) DeleteStandard(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM standards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete standard: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("standard %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateVersion appends the next version of a standard inside one
// transaction, so version numbers stay gapless and monotonic under
// concurrent writers. The new version becomes the active one.
func (s *Store) CreateVersion(ctx context.Context, version *model.StandardVersion) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin version tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the parent row so concurrent writers serialize on the
	// version counter.
	var standardID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM standards WHERE id = $1 FOR UPDATE`,
		version.StandardID,
	).Scan(&standardID)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("standard %s: %w", version.StandardID, ErrNotFound)
		}
		return fmt.Errorf("lock standard: %w", err)
	}

	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version_number), 0) + 1
		FROM standard_versions WHERE standard_id = $1`, version.StandardID,
	).Scan(&version.VersionNumber)
	if err != nil {
		return fmt.Errorf("next version number: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE standard_versions SET is_active = false
		WHERE standard_id = $1 AND is_active`, version.StandardID); err != nil {
		return fmt.Errorf("deactivate versions: %w", err)
	}

	version.IsActive = true
	err = tx.QueryRow(ctx, `
		INSERT INTO standard_versions (id, standard_id, version_number, rules_json, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING created_at`,
		version.ID, version.StandardID, version.VersionNumber, version.Rules,
	).Scan(&version.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) Version(ctx context.Context, id uuid.UUID) (*model.StandardVersion, error) {
	var version model.StandardVersion
	err := s.pool.QueryRow(ctx, `
		SELECT id, standard_id, version_number, rules_json, is_active, created_at
		FROM standard_versions WHERE id = $1`, id,
	).Scan(&version.ID, &version.StandardID, &version.VersionNumber,
		&version.Rules, &version.IsActive, &version.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("standard version %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get standard version: %w", err)
	}
	return &version, nil
}

// ActiveVersion returns the standard's currently active version.
func (s *Store) ActiveVersion(ctx context.Context, standardID uuid.UUID) (*model.StandardVersion, error) {
	var version model.StandardVersion
	err := s.pool.QueryRow(ctx, `
		SELECT id, standard_id, version_number, rules_json, is_active, created_at
		FROM standard_versions
		WHERE standard_id = $1 AND is_active`, standardID,
	).Scan(&version.ID, &version.StandardID, &version.VersionNumber,
		&version.Rules, &version.IsActive, &version.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("active version of %s: %w", standardID, ErrNotFound)
		}
		return nil, fmt.Errorf("get active version: %w", err)
	}
	return &version, nil
}

func (s *Store) ListVersions(ctx context.Context, standardID uuid.UUID) ([]model.StandardVersion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, standard_id, version_number, rules_json, is_active, created_at
		FROM standard_versions
		WHERE standard_id = $1 ORDER BY version_number DESC`, standardID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []model.StandardVersion
	for rows.Next() {
		var version model.StandardVersion
		if err := rows.Scan(&version.ID, &version.StandardID, &version.VersionNumber,
			&version.Rules, &version.IsActive, &version.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

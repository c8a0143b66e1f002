package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dgallion1/standgate/internal/model"
)

func (s *Store) CreateFolder(ctx context.Context, folder *model.Folder) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO folders (id, name, parent_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		folder.ID, folder.Name, folder.ParentID,
	).Scan(&folder.CreatedAt)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

func (s *Store) Folder(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	var folder model.Folder
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, parent_id, created_at
		FROM folders WHERE id = $1`, id,
	).Scan(&folder.ID, &folder.Name, &folder.ParentID, &folder.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("folder %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &folder, nil
}

// ListFolders returns children of parentID, or roots when parentID is nil.
func (s *Store) ListFolders(ctx context.Context, parentID *uuid.UUID) ([]model.Folder, error) {
	query := `
		SELECT id, name, parent_id, created_at
		FROM folders WHERE parent_id = $1 ORDER BY name`
	args := []any{parentID}
	if parentID == nil {
		query = `
		SELECT id, name, parent_id, created_at
		FROM folders WHERE parent_id IS NULL ORDER BY name`
		args = nil
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var folder model.Folder
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.ParentID, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// DeleteFolder removes a folder. Child folders and contained documents go
// with it via cascade.
func (s *Store) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListDescendantFolders returns folderID plus every folder below it.
func (s *Store) ListDescendantFolders(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		WITH RECURSIVE subtree AS (
			SELECT id FROM folders WHERE id = $1
			UNION ALL
			SELECT f.id FROM folders f
			JOIN subtree s ON f.parent_id = s.id
		)
		SELECT id FROM subtree`, folderID)
	if err != nil {
		return nil, fmt.Errorf("list descendant folders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

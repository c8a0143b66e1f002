package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dgallion1/standgate/internal/model"
)

func (s *Store) CreateDocument(ctx context.Context, doc *model.Document) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, filename, folder_id, content_hash, storage_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		doc.ID, doc.Filename, doc.FolderID, doc.ContentHash, doc.StorageKey,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *Store) Document(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := s.pool.QueryRow(ctx, `
		SELECT id, filename, folder_id, content_hash, storage_key, created_at
		FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Filename, &doc.FolderID, &doc.ContentHash, &doc.StorageKey, &doc.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns documents in folderID, or unfiled documents when
// folderID is nil.
func (s *Store) ListDocuments(ctx context.Context, folderID *uuid.UUID) ([]model.Document, error) {
	query := `
		SELECT id, filename, folder_id, content_hash, storage_key, created_at
		FROM documents WHERE folder_id = $1 ORDER BY filename`
	args := []any{folderID}
	if folderID == nil {
		query = `
		SELECT id, filename, folder_id, content_hash, storage_key, created_at
		FROM documents WHERE folder_id IS NULL ORDER BY filename`
		args = nil
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListDocumentsInFolders returns every document whose folder is in ids.
func (s *Store) ListDocumentsInFolders(ctx context.Context, ids []uuid.UUID) ([]model.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, folder_id, content_hash, storage_key, created_at
		FROM documents WHERE folder_id = ANY($1) ORDER BY filename`, ids)
	if err != nil {
		return nil, fmt.Errorf("list documents in folders: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanDocuments(rows pgx.Rows) ([]model.Document, error) {
	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.FolderID, &doc.ContentHash, &doc.StorageKey, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

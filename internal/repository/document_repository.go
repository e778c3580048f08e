package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// DocumentRepository handles uploaded-document data access.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Create inserts a new document record.
func (r *DocumentRepository) Create(ctx context.Context, d *model.Document) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO documents (folder_id, owner_id, original_name, bucket, object_key, mime, size, status, page_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		d.FolderID, d.OwnerID, d.OriginalName, d.Bucket, d.ObjectKey, d.Mime, d.Size, d.Status, d.PageCount,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	d := &model.Document{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, folder_id, owner_id, original_name, bucket, object_key, mime, size, status, page_count, created_at, updated_at
		 FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.FolderID, &d.OwnerID, &d.OriginalName, &d.Bucket, &d.ObjectKey, &d.Mime, &d.Size, &d.Status, &d.PageCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListByFolder retrieves all documents in a folder, oldest first.
func (r *DocumentRepository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]model.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, folder_id, owner_id, original_name, bucket, object_key, mime, size, status, page_count, created_at, updated_at
		 FROM documents WHERE folder_id = $1 ORDER BY created_at`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.FolderID, &d.OwnerID, &d.OriginalName, &d.Bucket, &d.ObjectKey, &d.Mime, &d.Size, &d.Status, &d.PageCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateStatus records the outcome of a parse pass.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus, pageCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $2, page_count = $3, updated_at = NOW() WHERE id = $1`,
		id, status, pageCount)
	return err
}

// Delete removes a document record; its chunks cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

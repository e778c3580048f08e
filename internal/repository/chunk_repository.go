package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// ChunkRepository handles chunk data access. Chunks are write-once per parse
// pass: a re-parse replaces the whole set for a document atomically.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// ReplaceForDocument deletes a document's chunks and inserts the new set in
// one transaction, so readers never observe a half-replaced document.
func (r *ChunkRepository) ReplaceForDocument(ctx context.Context, documentID uuid.UUID, chunks []model.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO chunks (id, document_id, index, text, start_offset, end_offset, page_from, page_to)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.DocumentID, c.Index, c.Text, c.StartOffset, c.EndOffset, c.PageFrom, c.PageTo)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByDocument retrieves a document's chunks in positional order.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]model.Chunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, index, text, start_offset, end_offset, page_from, page_to, created_at
		 FROM chunks WHERE document_id = $1 ORDER BY index`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

// SampleForFolder draws up to limit random chunks from a folder's parsed
// documents, optionally restricted to specific documents.
func (r *ChunkRepository) SampleForFolder(ctx context.Context, folderID uuid.UUID, documentIDs []uuid.UUID, limit int) ([]model.Chunk, error) {
	query := `SELECT c.id, c.document_id, c.index, c.text, c.start_offset, c.end_offset, c.page_from, c.page_to, c.created_at
		 FROM chunks c JOIN documents d ON d.id = c.document_id
		 WHERE d.folder_id = $1`
	args := []any{folderID}
	if len(documentIDs) > 0 {
		query += ` AND c.document_id = ANY($2) ORDER BY random() LIMIT $3`
		args = append(args, documentIDs, limit)
	} else {
		query += ` ORDER BY random() LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

// CountByDocument returns the number of stored chunks for a document.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

func scanChunks(rows pgx.Rows) ([]model.Chunk, error) {
	var chunks []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &c.StartOffset, &c.EndOffset, &c.PageFrom, &c.PageTo, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

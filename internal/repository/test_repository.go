package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// TestRepository handles generated-test data access. Question payloads are
// stored as a single JSONB document per test.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// Create inserts a new test with its full question payload.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	questionsJSON, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (owner_id, folder_id, file_id, type, title, archived, strategy, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		t.OwnerID, t.FolderID, t.FileID, t.Type, t.Title, t.Archived, t.Strategy, questionsJSON,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetByID retrieves a test including its questions.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	var questionsJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, folder_id, file_id, type, title, archived, strategy, questions, created_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.OwnerID, &t.FolderID, &t.FileID, &t.Type, &t.Title, &t.Archived, &t.Strategy, &questionsJSON, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questionsJSON, &t.Questions); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByFolder retrieves test summaries for a folder, newest first.
// Archived tests are included; the caller filters if it wants active only.
func (r *TestRepository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]model.TestSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, title, file_id, archived, strategy, jsonb_array_length(questions), created_at
		 FROM tests WHERE folder_id = $1 ORDER BY created_at DESC`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.TestSummary
	for rows.Next() {
		var s model.TestSummary
		if err := rows.Scan(&s.ID, &s.Type, &s.Title, &s.FileID, &s.Archived, &s.Strategy, &s.QuestionCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ArchiveActiveByFolder marks every active test in a folder archived and
// returns the ids that were flipped, so callers can drop their cached
// payloads.
func (r *TestRepository) ArchiveActiveByFolder(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE tests SET archived = TRUE WHERE folder_id = $1 AND archived = FALSE
		 RETURNING id`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetArchived flips a single test's archived flag.
func (r *TestRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET archived = $2 WHERE id = $1`, id, archived)
	return err
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// AttemptRepository handles attempt data access. Answer slots are stored as
// one JSONB array per attempt, null entries meaning unanswered.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new in-progress attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	answersJSON, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (owner_id, test_id, status, answers)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.OwnerID, a.TestID, a.Status, answersJSON,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answersJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, test_id, status, answers, score, total, submitted_at, created_at, updated_at
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.OwnerID, &a.TestID, &a.Status, &answersJSON, &a.Score, &a.Total, &a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByTestAndOwner retrieves a user's attempts against a test, newest
// first.
func (r *AttemptRepository) ListByTestAndOwner(ctx context.Context, testID, ownerID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, test_id, status, answers, score, total, submitted_at, created_at, updated_at
		 FROM attempts WHERE test_id = $1 AND owner_id = $2 ORDER BY created_at DESC`, testID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var answersJSON []byte
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.TestID, &a.Status, &answersJSON, &a.Score, &a.Total, &a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// UpdateAnswers overwrites the answer slots of an in-progress attempt.
// The status guard keeps an update racing a submission from mutating
// the frozen attempt; false means the attempt was no longer in progress.
func (r *AttemptRepository) UpdateAnswers(ctx context.Context, id uuid.UUID, answers []any) (bool, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts SET answers = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, answersJSON, model.AttemptStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Submit freezes an attempt with its score. The status guard keeps a
// concurrent double submission from overwriting the first result.
func (r *AttemptRepository) Submit(ctx context.Context, id uuid.UUID, score, total int, submittedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $2, score = $3, total = $4, submitted_at = $5, updated_at = NOW()
		 WHERE id = $1 AND status = $6`,
		id, model.AttemptStatusSubmitted, score, total, submittedAt, model.AttemptStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

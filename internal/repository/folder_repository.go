package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// FolderRepository handles folder data access.
type FolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new FolderRepository.
func NewFolderRepository(pool *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{pool: pool}
}

// Create inserts a new folder.
func (r *FolderRepository) Create(ctx context.Context, f *model.Folder) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO folders (owner_id, name, color, icon)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		f.OwnerID, f.Name, f.Color, f.Icon,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// GetByID retrieves a folder by ID.
func (r *FolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	f := &model.Folder{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, color, icon, created_at, updated_at
		 FROM folders WHERE id = $1`, id,
	).Scan(&f.ID, &f.OwnerID, &f.Name, &f.Color, &f.Icon, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListByOwner retrieves all folders owned by a user, newest first.
func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Folder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, name, color, icon, created_at, updated_at
		 FROM folders WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Color, &f.Icon, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// Rename updates a folder's name.
func (r *FolderRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE folders SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	return err
}

// Delete removes a folder. Documents, chunks, tests and attempts go with it
// via ON DELETE CASCADE.
func (r *FolderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	return err
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// Common resource errors shared by the domain services.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("caller does not own this resource")
)

// FolderRepo is the folder persistence surface the services need.
type FolderRepo interface {
	Create(ctx context.Context, f *model.Folder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Folder, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Folder, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FolderService manages document folders and their ownership rules.
type FolderService struct {
	folders FolderRepo
	log     zerolog.Logger
}

// NewFolderService creates a new FolderService.
func NewFolderService(folders FolderRepo, log zerolog.Logger) *FolderService {
	return &FolderService{
		folders: folders,
		log:     log.With().Str("component", "folder_service").Logger(),
	}
}

// Create makes a new folder owned by the caller.
func (s *FolderService) Create(ctx context.Context, user model.UserCtx, req model.CreateFolderRequest) (*model.Folder, error) {
	ownerID, err := uuid.Parse(user.UserID)
	if err != nil {
		return nil, ErrForbidden
	}

	folder := &model.Folder{
		OwnerID: ownerID,
		Name:    req.Name,
		Color:   req.Color,
		Icon:    req.Icon,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.log.Info().Str("folder_id", folder.ID.String()).Msg("Folder created")
	return folder, nil
}

// List returns the caller's folders.
func (s *FolderService) List(ctx context.Context, user model.UserCtx) ([]model.Folder, error) {
	ownerID, err := uuid.Parse(user.UserID)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.folders.ListByOwner(ctx, ownerID)
}

// Get returns one folder after an ownership check.
func (s *FolderService) Get(ctx context.Context, user model.UserCtx, id uuid.UUID) (*model.Folder, error) {
	return s.getOwned(ctx, user, id)
}

// Rename changes a folder's name after an ownership check.
func (s *FolderService) Rename(ctx context.Context, user model.UserCtx, id uuid.UUID, req model.RenameFolderRequest) (*model.Folder, error) {
	folder, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.folders.Rename(ctx, id, req.Name); err != nil {
		return nil, err
	}
	folder.Name = req.Name
	return folder, nil
}

// Delete removes a folder and everything beneath it.
func (s *FolderService) Delete(ctx context.Context, user model.UserCtx, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, user, id); err != nil {
		return err
	}
	if err := s.folders.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("folder_id", id.String()).Msg("Folder deleted")
	return nil
}

func (s *FolderService) getOwned(ctx context.Context, user model.UserCtx, id uuid.UUID) (*model.Folder, error) {
	folder, err := s.folders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if folder.OwnerID.String() != user.UserID && !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return folder, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/studyvault/studyvault-backend/internal/chunker"
	"github.com/studyvault/studyvault-backend/internal/config"
	"github.com/studyvault/studyvault-backend/internal/extract"
	"github.com/studyvault/studyvault-backend/internal/model"
	"github.com/studyvault/studyvault-backend/internal/storage"
)

// ErrUnsupportedFile is returned for uploads no extractor understands.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ErrParseFailed is returned when extraction of a stored document fails.
// The document row survives with status failed so the upload is not lost.
var ErrParseFailed = errors.New("document could not be parsed")

// DocumentRepo is the document persistence surface the services need.
type DocumentRepo interface {
	Create(ctx context.Context, d *model.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListByFolder(ctx context.Context, folderID uuid.UUID) ([]model.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus, pageCount int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChunkRepo is the chunk persistence surface the services need.
type ChunkRepo interface {
	ReplaceForDocument(ctx context.Context, documentID uuid.UUID, chunks []model.Chunk) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]model.Chunk, error)
	SampleForFolder(ctx context.Context, folderID uuid.UUID, documentIDs []uuid.UUID, limit int) ([]model.Chunk, error)
}

// DocumentService manages uploads, storage and the parse-into-chunks pass.
type DocumentService struct {
	cfg       *config.Config
	folders   FolderRepo
	documents DocumentRepo
	chunks    ChunkRepo
	store     storage.ObjectStore
	log       zerolog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	cfg *config.Config,
	folders FolderRepo,
	documents DocumentRepo,
	chunks ChunkRepo,
	store storage.ObjectStore,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		cfg:       cfg,
		folders:   folders,
		documents: documents,
		chunks:    chunks,
		store:     store,
		log:       log.With().Str("component", "document_service").Logger(),
	}
}

// Upload stores the raw file and records the document, then immediately runs
// a parse pass with default chunking parameters. A failed parse does not
// fail the upload; the document stays with status failed until re-parsed.
func (s *DocumentService) Upload(ctx context.Context, user model.UserCtx, folderID uuid.UUID, filename, mime string, data []byte) (*model.Document, error) {
	folder, err := s.ownedFolder(ctx, user, folderID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("folders/%s/%s/%s", folder.ID, uuid.New(), filename)
	if err := s.store.Upload(ctx, objectKey, data, mime); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &model.Document{
		FolderID:     folder.ID,
		OwnerID:      folder.OwnerID,
		OriginalName: filename,
		Bucket:       s.cfg.MinioBucket,
		ObjectKey:    objectKey,
		Mime:         mime,
		Size:         int64(len(data)),
		Status:       model.DocumentStatusUploaded,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("document_id", doc.ID.String()).
		Str("folder_id", folder.ID.String()).
		Int64("size", doc.Size).
		Msg("Document uploaded")

	if err := s.parse(ctx, doc, filename, mime, data, s.cfg.ChunkSize, s.cfg.ChunkOverlap); err != nil {
		s.log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("Initial parse failed")
	}
	return doc, nil
}

// Reparse re-runs extraction and chunking for a stored document, optionally
// with custom chunking parameters. The previous chunk set is replaced.
func (s *DocumentService) Reparse(ctx context.Context, user model.UserCtx, documentID uuid.UUID, req model.ParseDocumentRequest) (*model.Document, error) {
	doc, err := s.getOwned(ctx, user, documentID)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Download(ctx, doc.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("fetch stored object: %w", err)
	}

	size := s.cfg.ChunkSize
	if req.Size != nil {
		size = *req.Size
	}
	overlap := s.cfg.ChunkOverlap
	if req.Overlap != nil {
		overlap = *req.Overlap
	}

	if err := s.parse(ctx, doc, doc.OriginalName, doc.Mime, data, size, overlap); err != nil {
		return doc, err
	}
	return doc, nil
}

// parse extracts page text, chunks it and swaps in the new chunk set,
// updating the document's status either way.
func (s *DocumentService) parse(ctx context.Context, doc *model.Document, filename, mime string, data []byte, size, overlap int) error {
	pages, err := extract.Extract(filename, mime, data)
	if err != nil {
		doc.Status = model.DocumentStatusFailed
		if uerr := s.documents.UpdateStatus(ctx, doc.ID, model.DocumentStatusFailed, 0); uerr != nil {
			return uerr
		}
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return ErrUnsupportedFile
		}
		return fmt.Errorf("%w: %s", ErrParseFailed, err)
	}

	chunks, err := chunker.Split(doc.ID, pages, size, overlap)
	if err != nil {
		doc.Status = model.DocumentStatusFailed
		if uerr := s.documents.UpdateStatus(ctx, doc.ID, model.DocumentStatusFailed, len(pages)); uerr != nil {
			return uerr
		}
		return fmt.Errorf("%w: %s", ErrParseFailed, err)
	}

	if err := s.chunks.ReplaceForDocument(ctx, doc.ID, chunks); err != nil {
		return err
	}
	if err := s.documents.UpdateStatus(ctx, doc.ID, model.DocumentStatusParsed, len(pages)); err != nil {
		return err
	}

	doc.Status = model.DocumentStatusParsed
	doc.PageCount = len(pages)
	s.log.Info().
		Str("document_id", doc.ID.String()).
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Msg("Document parsed")
	return nil
}

// ListByFolder returns the folder's documents after an ownership check.
func (s *DocumentService) ListByFolder(ctx context.Context, user model.UserCtx, folderID uuid.UUID) ([]model.Document, error) {
	if _, err := s.ownedFolder(ctx, user, folderID); err != nil {
		return nil, err
	}
	return s.documents.ListByFolder(ctx, folderID)
}

// Get returns one document after an ownership check.
func (s *DocumentService) Get(ctx context.Context, user model.UserCtx, id uuid.UUID) (*model.Document, error) {
	return s.getOwned(ctx, user, id)
}

// Chunks returns a document's chunk set in positional order.
func (s *DocumentService) Chunks(ctx context.Context, user model.UserCtx, documentID uuid.UUID) ([]model.Chunk, error) {
	if _, err := s.getOwned(ctx, user, documentID); err != nil {
		return nil, err
	}
	return s.chunks.ListByDocument(ctx, documentID)
}

// Delete removes the stored object and the document record.
func (s *DocumentService) Delete(ctx context.Context, user model.UserCtx, id uuid.UUID) error {
	doc, err := s.getOwned(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, doc.ObjectKey); err != nil {
		s.log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("Failed to remove stored object")
	}
	return s.documents.Delete(ctx, id)
}

// DownloadURL returns a time-limited link to the original upload.
func (s *DocumentService) DownloadURL(ctx context.Context, user model.UserCtx, id uuid.UUID) (string, error) {
	doc, err := s.getOwned(ctx, user, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignedGetURL(ctx, doc.ObjectKey, 15*time.Minute)
}

func (s *DocumentService) ownedFolder(ctx context.Context, user model.UserCtx, folderID uuid.UUID) (*model.Folder, error) {
	folder, err := s.folders.GetByID(ctx, folderID)
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

func (s *DocumentService) getOwned(ctx context.Context, user model.UserCtx, id uuid.UUID) (*model.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.OwnerID.String() != user.UserID && !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return doc, nil
}

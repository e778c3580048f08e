package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyvault/studyvault-backend/internal/config"
	"github.com/studyvault/studyvault-backend/internal/middleware"
	"github.com/studyvault/studyvault-backend/internal/model"
	"github.com/studyvault/studyvault-backend/internal/response"
	"github.com/studyvault/studyvault-backend/internal/service"
	"github.com/studyvault/studyvault-backend/internal/validator"
)

// DocumentHandler handles document upload and parse endpoints.
type DocumentHandler struct {
	cfg             *config.Config
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(cfg *config.Config, documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{cfg: cfg, documentService: documentService}
}

// Upload godoc
// POST /api/v1/folders/:id/documents
// Accepts one multipart file and stores it in the folder.
func (h *DocumentHandler) Upload(c *gin.Context) {
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	doc, err := h.documentService.Upload(
		c.Request.Context(),
		middleware.GetUser(c),
		folderID,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"document": doc})
}

// List godoc
// GET /api/v1/folders/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	docs, err := h.documentService.ListByFolder(c.Request.Context(), middleware.GetUser(c), folderID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}

// Get godoc
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), middleware.GetUser(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc})
}

// Chunks godoc
// GET /api/v1/documents/:id/chunks
func (h *DocumentHandler) Chunks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	chunks, err := h.documentService.Chunks(c.Request.Context(), middleware.GetUser(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chunks": chunks})
}

// Parse godoc
// POST /api/v1/documents/:id/parse
// Re-runs extraction and chunking, optionally with custom parameters.
func (h *DocumentHandler) Parse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.ParseDocumentRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	doc, err := h.documentService.Reparse(c.Request.Context(), middleware.GetUser(c), id, req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc})
}

// Download godoc
// GET /api/v1/documents/:id/download
// Returns a time-limited link to the original upload.
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.documentService.DownloadURL(c.Request.Context(), middleware.GetUser(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// Delete godoc
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), middleware.GetUser(c), id); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyvault/studyvault-backend/internal/middleware"
	"github.com/studyvault/studyvault-backend/internal/model"
	"github.com/studyvault/studyvault-backend/internal/response"
	"github.com/studyvault/studyvault-backend/internal/service"
	"github.com/studyvault/studyvault-backend/internal/validator"
)

// FolderHandler handles folder endpoints.
type FolderHandler struct {
	folderService *service.FolderService
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

// Create godoc
// POST /api/v1/folders
func (h *FolderHandler) Create(c *gin.Context) {
	var req model.CreateFolderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	folder, err := h.folderService.Create(c.Request.Context(), middleware.GetUser(c), req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"folder": folder})
}

// List godoc
// GET /api/v1/folders
func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.folderService.List(c.Request.Context(), middleware.GetUser(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"folders": folders})
}

// Get godoc
// GET /api/v1/folders/:id
func (h *FolderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.Get(c.Request.Context(), middleware.GetUser(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"folder": folder})
}

// Rename godoc
// PATCH /api/v1/folders/:id
func (h *FolderHandler) Rename(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.RenameFolderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	folder, err := h.folderService.Rename(c.Request.Context(), middleware.GetUser(c), id, req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"folder": folder})
}

// Delete godoc
// DELETE /api/v1/folders/:id
func (h *FolderHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.Delete(c.Request.Context(), middleware.GetUser(c), id); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

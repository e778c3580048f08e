package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyvault/studyvault-backend/internal/middleware"
	"github.com/studyvault/studyvault-backend/internal/model"
	"github.com/studyvault/studyvault-backend/internal/response"
	"github.com/studyvault/studyvault-backend/internal/service"
	"github.com/studyvault/studyvault-backend/internal/validator"
)

// TestHandler handles test generation, delivery and attempt endpoints.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// Generate godoc
// POST /api/v1/folders/:id/tests/generate
// Builds one topic test per document plus a folder-wide final test.
func (h *TestHandler) Generate(c *gin.Context) {
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.GenerateFolderTestsRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	ids, err := h.testService.GenerateForFolder(c.Request.Context(), middleware.GetUser(c), folderID, req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"created_test_ids": ids})
}

// ListForFolder godoc
// GET /api/v1/folders/:id/tests?include_archived=true
func (h *TestHandler) ListForFolder(c *gin.Context) {
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))

	tests, err := h.testService.ListTestsForFolder(c.Request.Context(), middleware.GetUser(c), folderID, includeArchived)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/tests/:id
// Returns the redacted test payload, without the answer key.
func (h *TestHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.testService.GetTest(c.Request.Context(), middleware.GetUser(c), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": view})
}

// Update godoc
// PATCH /api/v1/tests/:id
// Flips the archived flag.
func (h *TestHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.SetArchived(c.Request.Context(), middleware.GetUser(c), id, *req.Archived); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// CreateAttempt godoc
// POST /api/v1/tests/:id/attempts
func (h *TestHandler) CreateAttempt(c *gin.Context) {
	testID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attempt, err := h.testService.CreateAttempt(c.Request.Context(), middleware.GetUser(c), testID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"attempt_id": attempt.ID,
		"total":      len(attempt.Answers),
		"status":     attempt.Status,
	})
}

// ListAttempts godoc
// GET /api/v1/tests/:id/attempts
func (h *TestHandler) ListAttempts(c *gin.Context) {
	testID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attempts, err := h.testService.ListAttempts(c.Request.Context(), middleware.GetUser(c), testID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// UpdateAnswers godoc
// PATCH /api/v1/attempts/:id/answers
func (h *TestHandler) UpdateAnswers(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.UpdateAnswers(c.Request.Context(), middleware.GetUser(c), attemptID, req); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

// SubmitAttempt godoc
// POST /api/v1/attempts/:id/submit
func (h *TestHandler) SubmitAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attempt, err := h.testService.SubmitAttempt(c.Request.Context(), middleware.GetUser(c), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"attempt_id":   attempt.ID,
		"score":        attempt.Score,
		"total":        attempt.Total,
		"submitted_at": attempt.SubmittedAt,
	})
}

// GetAttempt godoc
// GET /api/v1/attempts/:id
func (h *TestHandler) GetAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attempt, err := h.testService.GetAttempt(c.Request.Context(), middleware.GetUser(c), attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

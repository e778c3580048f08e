package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studyvault/studyvault-backend/internal/response"
	"github.com/studyvault/studyvault-backend/internal/service"
)

// parseIDParam reads a UUID path parameter, failing the request on bad
// input.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failFromService maps the shared service sentinels onto API error codes.
// Unrecognized errors become a 500.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrTestArchived):
		response.Fail(c, http.StatusConflict, response.ErrTestArchived)
	case errors.Is(err, service.ErrAttemptSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptSubmitted)
	case errors.Is(err, service.ErrNoDocuments):
		response.Fail(c, http.StatusBadRequest, response.ErrNoChunks)
	case errors.Is(err, service.ErrNothingGenerated):
		response.Fail(c, http.StatusBadRequest, response.ErrGenerationFailed)
	case errors.Is(err, service.ErrUnsupportedFile):
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrParseFailed):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrParseFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

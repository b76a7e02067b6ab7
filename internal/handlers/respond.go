package handlers

import (
	"net/http"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// failWithCode answers document and homework requests. Every failure is a
// 400; unexpected ones carry a generic message and are logged.
func failWithCode(c *gin.Context, log *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"code":    kind,
		"message": apperr.MessageOf(err, "ERROR"),
	})
}

// failWithStatus answers post, comment and classroom requests with a status
// derived from the error kind.
func failWithStatus(c *gin.Context, log *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation, apperr.KindNoFile, apperr.KindDuplicateTitle:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	default:
		log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"code":    kind,
		"message": apperr.MessageOf(err, "Internal server error"),
	})
}

// currentUser returns the authenticated user's id set by AuthRequired.
func currentUser(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("Invalid user ID")
	}
	return id, nil
}

// parseID parses a request-supplied id, naming field in the error.
func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid " + field)
	}
	return id, nil
}

// api/util/http_util.go
package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	logger "github.com/afekalocker/ambient/api/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// RespondForError maps the error taxonomy to a transport status. This is
// the single translation point; services never shape HTTP responses.
func RespondForError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ambient_errors.ErrInvalidInput):
		RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ambient_errors.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ambient_errors.ErrForbidden):
		RespondWithError(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, ambient_errors.ErrUnknownRole):
		// configuration invariant violation, never user-facing detail
		RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

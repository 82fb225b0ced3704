package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mcphost/internal/service/host"
	"github.com/mcpjungle/mcphost/pkg/types"
)

// statusForError maps a directory error to its HTTP status and error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, host.ErrToolNotFound):
		return http.StatusNotFound, types.ErrorCodeToolNotFound
	case errors.Is(err, host.ErrServerNotFound):
		return http.StatusNotFound, types.ErrorCodeServerNotFound
	case errors.Is(err, host.ErrRegistration), errors.Is(err, host.ErrValidation):
		return http.StatusBadRequest, types.ErrorCodeInvalidRequest
	default:
		return http.StatusInternalServerError, types.ErrorCodeInternal
	}
}

func respondError(c *gin.Context, err error) {
	status, code := statusForError(err)
	c.JSON(status, types.ErrorResponse{Error: err.Error(), Code: code})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error(), Code: types.ErrorCodeInvalidRequest})
}

func respondNotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, types.ErrorResponse{Error: msg, Code: types.ErrorCodeNotFound})
}

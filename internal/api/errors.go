package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/design-contest/internal/service/contest"
	"github.com/aimd54/design-contest/internal/service/leaderboard"
)

// errorResponse sends a standardized error response.
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

// serviceError maps a service error to its status. Anything unrecognized is an
// opaque 500 and gets logged.
func (h *Handler) serviceError(c *gin.Context, err error, msg string) {
	var bad *contest.BadRequestError
	switch {
	case errors.As(err, &bad):
		errorResponse(c, http.StatusBadRequest, bad.Msg)
	case errors.Is(err, contest.ErrUnauthorized):
		errorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, contest.ErrNotFound), errors.Is(err, leaderboard.ErrHidden):
		errorResponse(c, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg(msg)
		errorResponse(c, http.StatusInternalServerError, msg)
	}
}

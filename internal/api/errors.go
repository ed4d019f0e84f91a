package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
)

// statusFor maps an error kind onto an HTTP status. Expired share links are
// reported as 404 so that clients cannot tell them from unknown tokens.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrExpired):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} with the status matching err. Internal
// errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg("Request failed")
		msg = "Internal server error"
	case http.StatusServiceUnavailable:
		logging.Ctx(c.Request.Context()).Warn().Err(err).Str("route", c.FullPath()).Msg("Dependency unavailable")
		msg = "Service temporarily unavailable"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondBadBody(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
}

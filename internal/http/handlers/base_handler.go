// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"goride/internal/modules/ride"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeSessionError maps machine sentinels to status codes. Guard failures
// are conflicts with the current stage, not malformed requests.
func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrBadRequest), errors.Is(err, ride.ErrUnknownVehicle):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ride.ErrInvalidState), errors.Is(err, ride.ErrNotReady):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ride.ErrClosed):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/ai"
	"shutterplan/internal/compare"
	"shutterplan/internal/service"
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

// errorStatus maps service errors to an HTTP status and a client-safe message.
func errorStatus(err error) (int, string) {
	var cfgErr *ai.ConfigError
	switch {
	case errors.Is(err, ai.ErrModelNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrModelUnavailable), errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, ai.ErrNoMessages), errors.Is(err, compare.ErrNoModels):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "model request timed out"
	case errors.Is(err, ai.ErrUnknownProvider):
		return http.StatusInternalServerError, "model misconfigured"
	default:
		return http.StatusBadGateway, "model request failed"
	}
}

func writeServiceError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	writeError(c, status, msg)
}

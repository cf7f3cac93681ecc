package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pqsaaay/internal/errs"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(c *gin.Context, code int, data any, message string) {
	c.JSON(code, Response{Success: true, Data: data, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Error: message})
}

// fail maps err to a status code. Storage failures are logged and reported
// with a generic message.
func fail(c *gin.Context, op string, err error) {
	code, message := status(err)
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "op", op, "error", err)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, Response{Error: message})
}

func status(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, "Server is busy, please try again"
	}
	code := errs.CodeOf(err)
	if !code.Client() {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch code {
	case errs.NotFound:
		return http.StatusNotFound, errs.MessageOf(err)
	case errs.InvalidOperation:
		return http.StatusConflict, errs.MessageOf(err)
	case errs.Forbidden:
		return http.StatusForbidden, errs.MessageOf(err)
	}
	return http.StatusBadRequest, errs.MessageOf(err)
}

// parseLimit reads the optional limit query parameter; absent means no limit.
func parseLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errs.Validation("limit must be a non-negative integer")
	}
	return n, nil
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/auth"
	"github.com/mamadbah2/hatchlog/internal/engine"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
	"github.com/mamadbah2/hatchlog/internal/service/accounts"
)

// errorResponse is the body of every non-2xx JSON answer.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps service errors to an HTTP status and a short public message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, accounts.ErrValidation), errors.Is(err, engine.ErrInvalidMonth):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, accounts.ErrInvalidActivationCode):
		return http.StatusBadRequest, "invalid activation code"
	case errors.Is(err, accounts.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, accounts.ErrForbidden):
		return http.StatusForbidden, "admin rights required"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// respondError writes the mapped status. Only 5xx are logged as errors, the
// rest are caller mistakes.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, errorResponse{Error: msg})
		return
	}
	logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	resp := errorResponse{Error: msg}
	if status == http.StatusBadRequest {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// badRequest answers a malformed body or parameter.
func badRequest(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: details})
}

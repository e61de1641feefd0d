package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/service/accounts"
)

// AccountService is what the auth routes need from the accounts service.
type AccountService interface {
	Register(ctx context.Context, req accounts.RegisterRequest) (models.User, error)
	Login(ctx context.Context, req accounts.LoginRequest) (accounts.Session, error)
	Restore(ctx context.Context, userID, userAgent string) (models.User, error)
	GenerateActivationCode(ctx context.Context, adminID, email string) (models.ActivationCode, error)
}

type activationCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

// AuthHandler serves registration, login and session restore.
type AuthHandler struct {
	accounts AccountService
	logger   *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc AccountService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{accounts: svc, logger: logger}
}

// Register creates an account from an activation code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req accounts.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.UserAgent = c.Request.UserAgent()

	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req accounts.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.UserAgent = c.Request.UserAgent()

	session, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me restores the session of the token's user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.accounts.Restore(c.Request.Context(), userID(c), c.Request.UserAgent())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// IssueActivationCode lets an admin invite an email address.
func (h *AuthHandler) IssueActivationCode(c *gin.Context) {
	var req activationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	code, err := h.accounts.GenerateActivationCode(c.Request.Context(), userID(c), req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/todolistapi/backend/internal/database/service"
	"github.com/todolistapi/backend/internal/security"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Request/Response DTOs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=256"`
	Password string `json:"password" binding:"required,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=256"`
	Password string `json:"password" binding:"required,max=200"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid registration request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required."})
		return
	}

	token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid login request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	tokens, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// RefreshToken exchanges a refresh token for a new token pair. The token is
// read from the refreshToken query parameter or from the JSON body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := c.Query("refreshToken")
	if token == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("⚠️ [Handler] Invalid refresh request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Refresh token is required."})
			return
		}
		token = req.RefreshToken
	}

	tokens, err := h.service.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout revokes a refresh token. The body is the raw token as a JSON string.
func (h *AuthHandler) Logout(c *gin.Context) {
	var token string
	if err := c.ShouldBindJSON(&token); err != nil || strings.TrimSpace(token) == "" {
		h.logger.Warn("⚠️ [Handler] Invalid logout request")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Refresh token is required."})
		return
	}

	if err := h.service.Revoke(c.Request.Context(), token); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out."})
}

// handleServiceError maps service errors to HTTP responses
func (h *AuthHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered."})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired refresh token."})
	case errors.Is(err, security.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
	}
}

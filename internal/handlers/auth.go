package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/LautaroGarc/dardito/internal/constants"
	"github.com/LautaroGarc/dardito/internal/dto"
	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/middleware"
	"github.com/LautaroGarc/dardito/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges a token for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.Token)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save session"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetCurrentUser returns the authenticated user with their counters.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserStatsDTO(*user))
}

// RegenerateToken replaces the caller's token. The response body is the only
// place the new plaintext ever appears.
func (h *AuthHandler) RegenerateToken(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "Not authenticated")
		return
	}

	token, err := h.authService.RegenerateToken(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	// The old session stays valid; only the token changed.
	c.JSON(http.StatusOK, gin.H{"token": token})
}

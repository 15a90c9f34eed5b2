package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LautaroGarc/dardito/internal/dto"
	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/middleware"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/services"
)

// AdminHandler coordinates user administration HTTP handlers.
type AdminHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *services.UserService, auth *services.AuthService) *AdminHandler {
	return &AdminHandler{userService: users, authService: auth}
}

// ListUsers returns the users visible to the caller.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), user)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// RegisterUser creates a user and returns their one-time plaintext token.
func (h *AdminHandler) RegisterUser(c *gin.Context) {
	type RegisterRequest struct {
		ID       string      `json:"id" binding:"required"`
		Nickname string      `json:"nickname" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
		Team     string      `json:"team"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	token, err := h.authService.RegisterUser(c.Request.Context(), services.RegisterUserInput{
		ID:       req.ID,
		Nickname: req.Nickname,
		Role:     req.Role,
		Team:     req.Team,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// ChangeUserRole sets a user's role.
func (h *AdminHandler) ChangeUserRole(c *gin.Context) {
	type RoleRequest struct {
		Role models.Role `json:"role" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.ChangeRole(c.Request.Context(), user, c.Param("user"), req.Role); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// ChangeUserTeam moves a user to another team.
func (h *AdminHandler) ChangeUserTeam(c *gin.Context) {
	type TeamRequest struct {
		Team string `json:"team" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.ChangeTeam(c.Request.Context(), user, c.Param("user"), req.Team); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team updated"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LautaroGarc/dardito/internal/activity"
	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/middleware"
)

// ActivityHandler exposes the voice session registry to the presence
// adapter. Sessions are keyed by the authenticated caller.
type ActivityHandler struct {
	registry *activity.Registry
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(registry *activity.Registry) *ActivityHandler {
	return &ActivityHandler{registry: registry}
}

// Connect opens a voice session for the caller.
func (h *ActivityHandler) Connect(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}
	h.registry.Connect(user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Session opened"})
}

// Disconnect closes the caller's voice session and credits its duration.
func (h *ActivityHandler) Disconnect(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}
	h.registry.Disconnect(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}

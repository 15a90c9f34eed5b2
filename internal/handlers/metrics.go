package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/middleware"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/services"
)

// MetricsHandler coordinates the metrics HTTP handlers.
type MetricsHandler struct {
	metricsService *services.MetricsService
	taskService    *services.TaskService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metrics *services.MetricsService, tasks *services.TaskService) *MetricsHandler {
	return &MetricsHandler{metricsService: metrics, taskService: tasks}
}

// GetProjectMetrics returns one project's progress snapshot.
func (h *MetricsHandler) GetProjectMetrics(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	metrics, err := h.metricsService.GetProjectMetrics(c.Request.Context(), user, c.Param("team"), c.Param("project"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetTeamMetrics returns the whole-team aggregate.
func (h *MetricsHandler) GetTeamMetrics(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	metrics, err := h.metricsService.GetTeamMetrics(c.Request.Context(), user, c.Param("team"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetGlobalMetrics returns every team's aggregate.
func (h *MetricsHandler) GetGlobalMetrics(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	metrics, err := h.metricsService.GetGlobalMetrics(c.Request.Context(), user)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": metrics})
}

// GetDashboard returns a role-shaped overview: members get their open
// tasks, scrum masters and leaders additionally their team's metrics, and
// cross-team roles the global rollup.
func (h *MetricsHandler) GetDashboard(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}
	ctx := c.Request.Context()

	if user.Role.CrossTeam() {
		teams, err := h.metricsService.GetGlobalMetrics(ctx, user)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": user.Role, "teams": teams})
		return
	}

	tasks, err := h.taskService.TasksForUser(ctx, user, user.Team, user.Nickname)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	payload := gin.H{"role": user.Role, "tasks": tasks}

	if user.Role == models.RoleScrumMaster || user.Role == models.RoleLeader {
		team, err := h.metricsService.GetTeamMetrics(ctx, user, user.Team)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		payload["team"] = team
	}
	c.JSON(http.StatusOK, payload)
}

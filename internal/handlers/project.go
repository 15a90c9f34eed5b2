package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LautaroGarc/dardito/internal/dto"
	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/middleware"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/services"
)

// ProjectHandler coordinates the project lifecycle, backlog and task HTTP
// handlers. All routes are team-scoped: /teams/:team/projects/:project/...
type ProjectHandler struct {
	projectService *services.ProjectService
	backlogService *services.BacklogService
	taskService    *services.TaskService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *services.ProjectService, backlog *services.BacklogService, tasks *services.TaskService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projects,
		backlogService: backlog,
		taskService:    tasks,
	}
}

// InitializeProject sets up the team's project structure.
func (h *ProjectHandler) InitializeProject(c *gin.Context) {
	type InitRequest struct {
		ProjectCount  int `json:"projectCount" binding:"required"`
		GeneralWeeks  int `json:"generalWeeks" binding:"required"`
		DeliveryWeeks int `json:"deliveryWeeks" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.projectService.InitializeProject(c.Request.Context(), user, services.InitializeInput{
		Team:          c.Param("team"),
		ProjectCount:  req.ProjectCount,
		GeneralWeeks:  req.GeneralWeeks,
		DeliveryWeeks: req.DeliveryWeeks,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Project initialized"})
}

// AdvanceSprint closes the current sprint and opens the next one.
func (h *ProjectHandler) AdvanceSprint(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	err := h.projectService.AdvanceSprint(c.Request.Context(), user, c.Param("team"), c.Param("project"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sprint advanced"})
}

// ResetProject tears the team's project structure down.
func (h *ProjectHandler) ResetProject(c *gin.Context) {
	type ResetRequest struct {
		PreserveBacklog bool `json:"preserveBacklog"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.projectService.ResetProject(c.Request.Context(), user, c.Param("team"), req.PreserveBacklog)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project reset"})
}

type backlogItemRequest struct {
	Title              string `json:"title" binding:"required"`
	AsA                string `json:"asA"`
	IWant              string `json:"iWant"`
	SoThat             string `json:"soThat"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	Priority           string `json:"priority"`
	StoryPoints        int    `json:"storyPoints" binding:"required"`
}

func (r backlogItemRequest) toInput() services.ItemInput {
	return services.ItemInput{
		Title:              r.Title,
		AsA:                r.AsA,
		IWant:              r.IWant,
		SoThat:             r.SoThat,
		AcceptanceCriteria: r.AcceptanceCriteria,
		Priority:           r.Priority,
		StoryPoints:        r.StoryPoints,
	}
}

// ListBacklog returns the project's backlog.
func (h *ProjectHandler) ListBacklog(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	items, err := h.backlogService.ListBacklog(c.Request.Context(), user, c.Param("team"), c.Param("project"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backlog": dto.ToBacklogItemDTOs(items)})
}

// CreateBacklogItem adds one user story.
func (h *ProjectHandler) CreateBacklogItem(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req backlogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	id, err := h.backlogService.AddItem(c.Request.Context(), user, c.Param("team"), c.Param("project"), req.toInput())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// BulkImportBacklog creates many user stories atomically.
func (h *ProjectHandler) BulkImportBacklog(c *gin.Context) {
	type BulkRequest struct {
		Items []backlogItemRequest `json:"items" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inputs := make([]services.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, item.toInput())
	}

	ids, err := h.backlogService.BulkImportItems(c.Request.Context(), user, c.Param("team"), c.Param("project"), inputs)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ids": ids})
}

// EditBacklogItem applies a partial edit to a user story.
func (h *ProjectHandler) EditBacklogItem(c *gin.Context) {
	type EditRequest struct {
		Title              *string                  `json:"title"`
		AsA                *string                  `json:"asA"`
		IWant              *string                  `json:"iWant"`
		SoThat             *string                  `json:"soThat"`
		AcceptanceCriteria *string                  `json:"acceptanceCriteria"`
		Priority           *string                  `json:"priority"`
		StoryPoints        *int                     `json:"storyPoints"`
		State              *models.BacklogItemState `json:"state"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.backlogService.EditItem(c.Request.Context(), user, c.Param("team"), c.Param("project"), c.Param("item"),
		services.EditItemInput{
			Title:              req.Title,
			AsA:                req.AsA,
			IWant:              req.IWant,
			SoThat:             req.SoThat,
			AcceptanceCriteria: req.AcceptanceCriteria,
			Priority:           req.Priority,
			StoryPoints:        req.StoryPoints,
			State:              req.State,
		})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backlog item updated"})
}

// SelectSprintBacklog replaces the current sprint's board.
func (h *ProjectHandler) SelectSprintBacklog(c *gin.Context) {
	type SelectRequest struct {
		Items []string `json:"items" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.backlogService.SelectSprintBacklog(c.Request.Context(), user, c.Param("team"), c.Param("project"), req.Items)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sprint backlog selected"})
}

// GetSprint returns a sprint snapshot. ?number= selects a past sprint;
// members only ever see their own tasks.
func (h *ProjectHandler) GetSprint(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	number := 0
	if raw := c.Query("number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierrors.BadRequest(c, "Invalid sprint number")
			return
		}
		number = n
	}

	view, err := h.taskService.GetSprint(c.Request.Context(), user, c.Param("team"), c.Param("project"), number)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateTask creates a task in the current sprint.
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Description   string   `json:"description" binding:"required"`
		Assignees     []string `json:"assignees"`
		Priority      string   `json:"priority"`
		DueDate       string   `json:"dueDate"`
		BacklogItemID string   `json:"backlogItemId"`
		EstimateHours int      `json:"estimateHours"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var dueDate *models.CalendarDate
	if req.DueDate != "" {
		parsed, err := models.ParseCalendarDate(req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due date, want YYYY-MM-DD")
			return
		}
		dueDate = &parsed
	}

	id, err := h.taskService.CreateTask(c.Request.Context(), user, c.Param("team"), c.Param("project"),
		services.CreateTaskInput{
			Description:   req.Description,
			Assignees:     req.Assignees,
			Priority:      req.Priority,
			DueDate:       dueDate,
			BacklogItemID: req.BacklogItemID,
			EstimateHours: req.EstimateHours,
		})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateTaskState transitions a task.
func (h *ProjectHandler) UpdateTaskState(c *gin.Context) {
	type StateRequest struct {
		State   models.TaskState `json:"state" binding:"required"`
		Comment string           `json:"comment"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.taskService.UpdateTaskState(c.Request.Context(), user, c.Param("team"), c.Param("project"), c.Param("task"),
		req.State, req.Comment)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task state updated"})
}

// ReassignTask replaces the task's assignee set.
func (h *ProjectHandler) ReassignTask(c *gin.Context) {
	type AssignRequest struct {
		Assignees []string `json:"assignees"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.taskService.ReassignTask(c.Request.Context(), user, c.Param("team"), c.Param("project"), c.Param("task"),
		req.Assignees)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task reassigned"})
}

// CommentTask appends a comment to the task's activity log.
func (h *ProjectHandler) CommentTask(c *gin.Context) {
	type CommentRequest struct {
		Comment string `json:"comment" binding:"required"`
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.taskService.CommentTask(c.Request.Context(), user, c.Param("team"), c.Param("project"), c.Param("task"),
		req.Comment)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment added"})
}

// ListMyTasks returns every task assigned to the caller across all sprints.
func (h *ProjectHandler) ListMyTasks(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.AbortUnauthorized(c, "")
		return
	}

	tasks, err := h.taskService.TasksForUser(c.Request.Context(), user, user.Team, user.Nickname)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

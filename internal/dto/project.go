package dto

import (
	"time"

	"github.com/LautaroGarc/dardito/internal/models"
)

// BacklogItemDTO represents a backlog item in API responses
type BacklogItemDTO struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	AsA                string                  `json:"asA"`
	IWant              string                  `json:"iWant"`
	SoThat             string                  `json:"soThat"`
	AcceptanceCriteria string                  `json:"acceptanceCriteria,omitempty"`
	Priority           string                  `json:"priority"`
	StoryPoints        int                     `json:"storyPoints"`
	State              models.BacklogItemState `json:"state"`
	CreatedAt          time.Time               `json:"createdAt"`
	CreatedBy          string                  `json:"createdBy"`
}

// TaskDTO represents a sprint task in API responses
type TaskDTO struct {
	ID            string                 `json:"id"`
	Description   string                 `json:"description"`
	Assignees     []string               `json:"assignees"`
	Priority      string                 `json:"priority"`
	DueDate       *models.CalendarDate   `json:"dueDate,omitempty"`
	State         models.TaskState       `json:"state"`
	BacklogItemID string                 `json:"backlogItemId,omitempty"`
	EstimateHours int                    `json:"estimateHours"`
	CreatedAt     time.Time              `json:"createdAt"`
	CreatedBy     string                 `json:"createdBy"`
	Activity      []models.ActivityEntry `json:"activity"`
}

// ToBacklogItemDTO converts a backlog item model.
func ToBacklogItemDTO(item models.BacklogItem) BacklogItemDTO {
	return BacklogItemDTO{
		ID:                 item.ID,
		Title:              item.Title,
		AsA:                item.AsA,
		IWant:              item.IWant,
		SoThat:             item.SoThat,
		AcceptanceCriteria: item.AcceptanceCriteria,
		Priority:           item.Priority,
		StoryPoints:        item.StoryPoints,
		State:              item.State,
		CreatedAt:          item.CreatedAt,
		CreatedBy:          item.CreatedBy,
	}
}

// ToBacklogItemDTOs converts a backlog.
func ToBacklogItemDTOs(items []*models.BacklogItem) []BacklogItemDTO {
	out := make([]BacklogItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ToBacklogItemDTO(*item))
	}
	return out
}

// ToTaskDTO converts a task model.
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:            task.ID,
		Description:   task.Description,
		Assignees:     task.Assignees,
		Priority:      task.Priority,
		DueDate:       task.DueDate,
		State:         task.State,
		BacklogItemID: task.BacklogItemID,
		EstimateHours: task.EstimateHours,
		CreatedAt:     task.CreatedAt,
		CreatedBy:     task.CreatedBy,
		Activity:      task.Activity,
	}
}

// ToTaskDTOs converts a task list.
func ToTaskDTOs(tasks []*models.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, ToTaskDTO(*task))
	}
	return out
}

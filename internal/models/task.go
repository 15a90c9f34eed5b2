package models

import (
	"slices"
	"time"
)

type TaskState string

const (
	TaskTodo       TaskState = "TODO"
	TaskInProgress TaskState = "IN_PROGRESS"
	TaskDone       TaskState = "DONE"
	TaskVerified   TaskState = "VERIFIED"
)

// IsValid reports whether s is a known task state.
func (s TaskState) IsValid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskVerified:
		return true
	}
	return false
}

// Completed reports whether the task counts as finished work.
func (s TaskState) Completed() bool {
	return s == TaskDone || s == TaskVerified
}

// Unassigned is the sentinel assignee. A task's assignee set is never empty
// while its sprint is open; removing the last named assignee leaves this
// sentinel instead.
const Unassigned = "@Unassigned"

// ActivityEntry is one append-only activity log record on a task.
type ActivityEntry struct {
	At      time.Time `json:"at"`
	Actor   string    `json:"actor"`
	Action  string    `json:"action"`
	Comment string    `json:"comment,omitempty"`
}

// Task is a technical unit of work inside a sprint, optionally linked to a
// backlog item.
type Task struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Assignees     []string        `json:"assignees"`
	Priority      string          `json:"priority"`
	DueDate       *CalendarDate   `json:"dueDate,omitempty"`
	State         TaskState       `json:"state"`
	BacklogItemID string          `json:"backlogItemId,omitempty"`
	EstimateHours int             `json:"estimateHours"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	Activity      []ActivityEntry `json:"activity"`
}

// AssignedTo reports whether nickname is a listed assignee.
func (t *Task) AssignedTo(nickname string) bool {
	return slices.Contains(t.Assignees, nickname)
}

// NamedAssignees returns the assignees excluding the @Unassigned sentinel.
func (t *Task) NamedAssignees() []string {
	var named []string
	for _, a := range t.Assignees {
		if a != Unassigned {
			named = append(named, a)
		}
	}
	return named
}

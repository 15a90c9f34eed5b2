package models

import "time"

type BacklogItemState string

const (
	ItemTodo       BacklogItemState = "TODO"
	ItemInSprint   BacklogItemState = "IN_SPRINT"
	ItemInProgress BacklogItemState = "IN_PROGRESS"
	ItemDone       BacklogItemState = "DONE"
)

// IsValid reports whether s is a known backlog item state.
func (s BacklogItemState) IsValid() bool {
	switch s {
	case ItemTodo, ItemInSprint, ItemInProgress, ItemDone:
		return true
	}
	return false
}

// BacklogItem is a user story. Items are created inside an existing project
// and are never deleted, only state-transitioned.
type BacklogItem struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	AsA                string           `json:"asA"`
	IWant              string           `json:"iWant"`
	SoThat             string           `json:"soThat"`
	AcceptanceCriteria string           `json:"acceptanceCriteria"`
	Priority           string           `json:"priority"`
	StoryPoints        int              `json:"storyPoints"`
	State              BacklogItemState `json:"state"`
	CreatedAt          time.Time        `json:"createdAt"`
	CreatedBy          string           `json:"createdBy"`
}

package models

import "time"

// SchemaVersion is the current document schema. Earlier revisions stored
// backlog items and tasks as positional arrays with inconsistent field counts;
// those documents are rejected at read time and must be migrated explicitly.
const SchemaVersion = 2

// Fixed project keys within a team. Every started team has the general-task
// project plus one or two delivery projects.
const (
	ProjectGeneral        = "general"
	ProjectDelivery       = "delivery"
	ProjectDeliverySecond = "delivery2"
)

// ProjectKeys is the fixed iteration order for a team's projects.
var ProjectKeys = []string{ProjectGeneral, ProjectDelivery, ProjectDeliverySecond}

// TeamStats is the cached statistics block. It is convenience data only:
// every field is recomputable from the backlog and sprint state and is
// refreshed by the metrics engine, never edited by hand.
type TeamStats struct {
	TotalStoryPoints     int       `json:"totalStoryPoints"`
	CompletedStoryPoints int       `json:"completedStoryPoints"`
	AverageVelocity      float64   `json:"averageVelocity"`
	VelocityHistory      []float64 `json:"velocityHistory"`
}

type Team struct {
	Started   bool                `json:"started"`
	Projects  map[string]*Project `json:"projects,omitempty"`
	Stats     TeamStats           `json:"stats"`
	LastReset *time.Time          `json:"lastReset,omitempty"`
	ResetBy   string              `json:"resetBy,omitempty"`
}

// Project returns the named project, or nil.
func (t *Team) Project(name string) *Project {
	if t == nil || t.Projects == nil {
		return nil
	}
	return t.Projects[name]
}

type Project struct {
	DurationWeeks int             `json:"durationWeeks"`
	CurrentSprint int             `json:"currentSprint"`
	Backlog       []*BacklogItem  `json:"backlog"`
	Sprints       map[int]*Sprint `json:"sprints"`
}

// Sprint returns the sprint with the given number, or nil.
func (p *Project) Sprint(n int) *Sprint {
	if p == nil || p.Sprints == nil {
		return nil
	}
	return p.Sprints[n]
}

// ActiveSprint returns the project's current sprint. The lifecycle manager
// guarantees the pointer always has a matching entry.
func (p *Project) ActiveSprint() *Sprint {
	return p.Sprint(p.CurrentSprint)
}

// BacklogItemByID returns the backlog item with the given ID, or nil.
func (p *Project) BacklogItemByID(id string) *BacklogItem {
	for _, item := range p.Backlog {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// TeamsDocument is the whole persisted team store: one entry per team.
type TeamsDocument struct {
	SchemaVersion int              `json:"schemaVersion"`
	Teams         map[string]*Team `json:"teams"`
}

// NewTeamsDocument returns an empty document at the current schema version.
func NewTeamsDocument() *TeamsDocument {
	return &TeamsDocument{SchemaVersion: SchemaVersion, Teams: map[string]*Team{}}
}

// Team returns the named team, or nil.
func (d *TeamsDocument) Team(name string) *Team {
	if d == nil || d.Teams == nil {
		return nil
	}
	return d.Teams[name]
}

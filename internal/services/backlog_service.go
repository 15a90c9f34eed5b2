package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/LautaroGarc/dardito/internal/authz"
	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/store"
)

// BacklogService handles product backlog business logic: user story creation
// and editing, bulk import, and sprint backlog selection.
type BacklogService struct {
	mutator *store.Mutator
	clock   clock.Clock
}

// NewBacklogService creates a new BacklogService
func NewBacklogService(mutator *store.Mutator, clk clock.Clock) *BacklogService {
	return &BacklogService{mutator: mutator, clock: clk}
}

// ItemInput represents input for creating a backlog item
type ItemInput struct {
	Title              string
	AsA                string
	IWant              string
	SoThat             string
	AcceptanceCriteria string
	Priority           string
	StoryPoints        int
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.InvalidState("backlog item title is required")
	}
	if in.StoryPoints <= 0 {
		return errors.InvalidState("story points must be positive, got %d", in.StoryPoints)
	}
	return nil
}

// AddItem appends a new user story to the project backlog and returns its ID.
func (s *BacklogService) AddItem(ctx context.Context, actor *models.User, team, project string, in ItemInput) (string, error) {
	ids, err := s.addItems(ctx, actor, team, project, []ItemInput{in})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// BulkImportItems creates all given items atomically: one validation pass,
// one document write. Returns the new IDs in input order.
func (s *BacklogService) BulkImportItems(ctx context.Context, actor *models.User, team, project string, items []ItemInput) ([]string, error) {
	if len(items) == 0 {
		return nil, errors.InvalidState("at least one backlog item is required")
	}
	return s.addItems(ctx, actor, team, project, items)
}

func (s *BacklogService) addItems(ctx context.Context, actor *models.User, team, project string, items []ItemInput) ([]string, error) {
	if err := authz.Authorize(actor, authz.ActionCreateBacklogItem, authz.Target{Team: team}); err != nil {
		return nil, err
	}
	for i, in := range items {
		if err := in.validate(); err != nil {
			return nil, errors.InvalidState("item %d: %v", i+1, err)
		}
	}

	now := s.clock.Now()
	ids := make([]string, 0, len(items))

	err := s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		ids = ids[:0]
		p := t.Project(project)
		if p == nil {
			return errors.NotFound("team %s has no project %s", team, project)
		}
		for _, in := range items {
			item := &models.BacklogItem{
				ID:                 fmt.Sprintf("HU-%s", uuid.NewString()),
				Title:              strings.TrimSpace(in.Title),
				AsA:                in.AsA,
				IWant:              in.IWant,
				SoThat:             in.SoThat,
				AcceptanceCriteria: in.AcceptanceCriteria,
				Priority:           in.Priority,
				StoryPoints:        in.StoryPoints,
				State:              models.ItemTodo,
				CreatedAt:          now,
				CreatedBy:          actor.Nickname,
			}
			p.Backlog = append(p.Backlog, item)
			ids = append(ids, item.ID)
		}
		refreshTeamStats(t, s.clock.Today())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// EditItemInput represents a partial backlog item edit; nil fields are left
// untouched.
type EditItemInput struct {
	Title              *string
	AsA                *string
	IWant              *string
	SoThat             *string
	AcceptanceCriteria *string
	Priority           *string
	StoryPoints        *int
	State              *models.BacklogItemState
}

// EditItem applies a partial edit to a backlog item. State may only be set
// to TODO or DONE here: IN_SPRINT and IN_PROGRESS are derived from sprint
// selection and task progress, never assigned by hand.
func (s *BacklogService) EditItem(ctx context.Context, actor *models.User, team, project, itemID string, in EditItemInput) error {
	if err := authz.Authorize(actor, authz.ActionEditBacklogItem, authz.Target{Team: team}); err != nil {
		return err
	}
	if in.StoryPoints != nil && *in.StoryPoints <= 0 {
		return errors.InvalidState("story points must be positive, got %d", *in.StoryPoints)
	}
	if in.State != nil {
		if !in.State.IsValid() {
			return errors.InvalidState("unknown backlog item state %q", *in.State)
		}
		if *in.State != models.ItemTodo && *in.State != models.ItemDone {
			return errors.InvalidState("state %s is derived automatically and cannot be set directly", *in.State)
		}
	}

	return s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		p := t.Project(project)
		if p == nil {
			return errors.NotFound("team %s has no project %s", team, project)
		}
		item := p.BacklogItemByID(itemID)
		if item == nil {
			return errors.NotFound("project %s has no backlog item %s", project, itemID)
		}

		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return errors.InvalidState("backlog item title is required")
			}
			item.Title = strings.TrimSpace(*in.Title)
		}
		if in.AsA != nil {
			item.AsA = *in.AsA
		}
		if in.IWant != nil {
			item.IWant = *in.IWant
		}
		if in.SoThat != nil {
			item.SoThat = *in.SoThat
		}
		if in.AcceptanceCriteria != nil {
			item.AcceptanceCriteria = *in.AcceptanceCriteria
		}
		if in.Priority != nil {
			item.Priority = *in.Priority
		}
		if in.StoryPoints != nil {
			item.StoryPoints = *in.StoryPoints
		}
		if in.State != nil {
			item.State = *in.State
		}

		refreshTeamStats(t, s.clock.Today())
		return nil
	})
}

// SelectSprintBacklog replaces the current sprint's board with the given
// item set, fixes the planned burndown line from their story points, and
// re-derives item states: newly selected items move to IN_SPRINT, deselected
// ones fall back to TODO.
func (s *BacklogService) SelectSprintBacklog(ctx context.Context, actor *models.User, team, project string, itemIDs []string) error {
	if err := authz.Authorize(actor, authz.ActionSelectSprintBacklog, authz.Target{Team: team}); err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return errors.InvalidState("at least one backlog item is required")
	}

	return s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		p := t.Project(project)
		if p == nil {
			return errors.NotFound("team %s has no project %s", team, project)
		}
		sprint := p.ActiveSprint()
		if sprint == nil {
			return errors.NotFound("project %s has no active sprint", project)
		}

		selected := make(map[string]bool, len(itemIDs))
		totalPoints := 0
		for _, id := range itemIDs {
			item := p.BacklogItemByID(id)
			if item == nil {
				return errors.NotFound("project %s has no backlog item %s", project, id)
			}
			if item.State == models.ItemDone {
				return errors.InvalidState("backlog item %s is already done", id)
			}
			if selected[id] {
				return errors.InvalidState("backlog item %s listed twice", id)
			}
			selected[id] = true
			totalPoints += item.StoryPoints
		}

		for _, id := range sprint.ScrumBoard {
			if item := p.BacklogItemByID(id); item != nil && !selected[id] && item.State != models.ItemDone {
				item.State = models.ItemTodo
			}
		}
		for id := range selected {
			if item := p.BacklogItemByID(id); item.State == models.ItemTodo {
				item.State = models.ItemInSprint
			}
		}

		// An item belongs to at most one board. Selecting it here pulls it
		// off any earlier sprint it was left on.
		for n, other := range p.Sprints {
			if n == p.CurrentSprint {
				continue
			}
			other.ScrumBoard = slices.DeleteFunc(other.ScrumBoard, func(id string) bool {
				return selected[id]
			})
		}

		sprint.ScrumBoard = append([]string(nil), itemIDs...)
		sprint.Burndown.Planned = plannedLine(sprint, totalPoints)
		refreshItemProgress(p, sprint)
		refreshTeamStats(t, s.clock.Today())
		return nil
	})
}

// ListBacklog returns the project's backlog items.
func (s *BacklogService) ListBacklog(ctx context.Context, actor *models.User, team, project string) ([]*models.BacklogItem, error) {
	if err := authz.Authorize(actor, authz.ActionReadBacklog, authz.Target{Team: team}); err != nil {
		return nil, err
	}
	doc, err := s.mutator.ReadTeams(ctx)
	if err != nil {
		return nil, err
	}
	t := doc.Team(team)
	if t == nil {
		return nil, errors.NotFound("team %s not found", team)
	}
	p := t.Project(project)
	if p == nil {
		return nil, errors.NotFound("team %s has no project %s", team, project)
	}
	return p.Backlog, nil
}

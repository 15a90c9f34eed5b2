package services

import (
	"context"

	"github.com/LautaroGarc/dardito/internal/authz"
	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/constants"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/store"
)

// ProjectService handles project lifecycle business logic: initialization,
// sprint advancement and reset.
type ProjectService struct {
	mutator *store.Mutator
	clock   clock.Clock
}

// NewProjectService creates a new ProjectService
func NewProjectService(mutator *store.Mutator, clk clock.Clock) *ProjectService {
	return &ProjectService{mutator: mutator, clock: clk}
}

// InitializeInput represents input for initializing a team's projects
type InitializeInput struct {
	Team          string
	ProjectCount  int
	GeneralWeeks  int
	DeliveryWeeks int
}

// InitializeProject creates the team's project structure and opens sprint 1
// of every project starting today. A backlog preserved by an earlier reset is
// carried into the fresh projects unchanged.
func (s *ProjectService) InitializeProject(ctx context.Context, actor *models.User, in InitializeInput) error {
	if err := authz.Authorize(actor, authz.ActionInitializeProject, authz.Target{Team: in.Team}); err != nil {
		return err
	}
	if in.ProjectCount < constants.MinProjects || in.ProjectCount > constants.MaxProjects {
		return errors.InvalidState("project count must be %d or %d, got %d",
			constants.MinProjects, constants.MaxProjects, in.ProjectCount)
	}
	if in.GeneralWeeks < 1 || in.DeliveryWeeks < 1 {
		return errors.InvalidState("sprint duration must be at least one week")
	}

	today := s.clock.Today()

	return s.mutator.UpdateTeams(ctx, func(doc *models.TeamsDocument) error {
		t := doc.Team(in.Team)
		if t != nil && t.Started {
			return errors.Conflict("team %s already has an initialized project", in.Team)
		}
		if t == nil {
			t = &models.Team{}
			doc.Teams[in.Team] = t
		}

		keys := []string{models.ProjectGeneral, models.ProjectDelivery}
		if in.ProjectCount == constants.MaxProjects {
			keys = append(keys, models.ProjectDeliverySecond)
		}

		fresh := make(map[string]*models.Project, len(keys))
		for _, key := range keys {
			weeks := in.DeliveryWeeks
			if key == models.ProjectGeneral {
				weeks = in.GeneralWeeks
			}
			project := &models.Project{
				DurationWeeks: weeks,
				CurrentSprint: 1,
				Backlog:       []*models.BacklogItem{},
				Sprints:       map[int]*models.Sprint{1: models.NewSprint(today, weeks)},
			}
			if prior := t.Project(key); prior != nil && len(prior.Backlog) > 0 {
				project.Backlog = prior.Backlog
			}
			fresh[key] = project
		}

		t.Started = true
		t.Projects = fresh
		refreshTeamStats(t, today)
		return nil
	})
}

// AdvanceSprint closes the current sprint and opens the next one on behalf
// of actor. It refuses while the sprint still has incomplete tasks.
func (s *ProjectService) AdvanceSprint(ctx context.Context, actor *models.User, team, project string) error {
	if err := authz.Authorize(actor, authz.ActionAdvanceSprint, authz.Target{Team: team}); err != nil {
		return err
	}
	return s.advance(ctx, team, project, false, nil)
}

// ForceAdvanceSprint advances regardless of incomplete tasks, but only while
// the current sprint still ends on dueOn. It is the scheduler's entry point
// and performs no authorization; the due-date guard keeps a sweep from
// double-advancing a sprint someone advanced by hand in the meantime.
func (s *ProjectService) ForceAdvanceSprint(ctx context.Context, team, project string, dueOn models.CalendarDate) error {
	return s.advance(ctx, team, project, true, &dueOn)
}

func (s *ProjectService) advance(ctx context.Context, team, project string, force bool, dueOn *models.CalendarDate) error {
	today := s.clock.Today()

	return s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		p := t.Project(project)
		if p == nil {
			return errors.NotFound("team %s has no project %s", team, project)
		}
		current := p.ActiveSprint()
		if current == nil {
			return errors.NotFound("project %s has no active sprint", project)
		}
		if dueOn != nil && !current.EndDate.Equal(*dueOn) {
			return errors.Conflict("sprint %d of %s no longer ends on %s", p.CurrentSprint, project, dueOn)
		}
		if !force {
			if n := current.Incomplete(); n > 0 {
				return errors.Conflict("sprint %d still has %d incomplete tasks", p.CurrentSprint, n)
			}
		}

		// Unfinished items leave the closing board and fall back to TODO:
		// an item sits on at most one board, and the next selection decides
		// where it goes. DONE items stay for the sprint's velocity record.
		board := current.ScrumBoard[:0]
		for _, id := range current.ScrumBoard {
			item := p.BacklogItemByID(id)
			if item == nil {
				continue
			}
			if item.State == models.ItemDone {
				board = append(board, id)
				continue
			}
			item.State = models.ItemTodo
		}
		current.ScrumBoard = board

		next := p.CurrentSprint + 1
		if p.Sprint(next) == nil {
			p.Sprints[next] = models.NewSprint(current.EndDate, p.DurationWeeks)
		}
		p.CurrentSprint = next
		refreshTeamStats(t, today)
		return nil
	})
}

// ResetProject tears the team's project structure down to the pre-init
// state. With preserveBacklog the product backlogs survive for the next
// initialization; everything else (sprints, tasks, boards) is discarded.
func (s *ProjectService) ResetProject(ctx context.Context, actor *models.User, team string, preserveBacklog bool) error {
	if err := authz.Authorize(actor, authz.ActionResetProject, authz.Target{Team: team}); err != nil {
		return err
	}
	now := s.clock.Now()

	return s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		var preserved map[string]*models.Project
		if preserveBacklog {
			preserved = map[string]*models.Project{}
			for _, key := range models.ProjectKeys {
				if p := t.Project(key); p != nil && len(p.Backlog) > 0 {
					// Sprints and boards are discarded, so item states
					// derived from them revert to TODO.
					for _, item := range p.Backlog {
						if item.State == models.ItemInSprint || item.State == models.ItemInProgress {
							item.State = models.ItemTodo
						}
					}
					preserved[key] = &models.Project{Backlog: p.Backlog}
				}
			}
		}

		*t = models.Team{
			Started:   false,
			Projects:  preserved,
			LastReset: &now,
			ResetBy:   actor.Nickname,
		}
		return nil
	})
}

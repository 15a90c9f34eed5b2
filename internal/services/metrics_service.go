package services

import (
	"context"
	"slices"
	"strings"

	"github.com/LautaroGarc/dardito/internal/authz"
	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/store"
)

// MetricsService handles the read side of the metrics engine: project and
// sprint progress, velocity, per-member statistics and the global rollup.
type MetricsService struct {
	mutator *store.Mutator
	clock   clock.Clock
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(mutator *store.Mutator, clk clock.Clock) *MetricsService {
	return &MetricsService{mutator: mutator, clock: clk}
}

// ProjectMetrics is the progress snapshot of one project. Task counts and
// the task percentage cover the current sprint only; the item and story-point
// percentages cover the whole backlog.
type ProjectMetrics struct {
	Project                     string               `json:"project"`
	CurrentSprint               int                  `json:"currentSprint"`
	ItemCompletionPercent       int                  `json:"itemCompletionPercent"`
	StoryPointCompletionPercent int                  `json:"storyPointCompletionPercent"`
	TaskCompletionPercent       int                  `json:"taskCompletionPercent"`
	TotalTasks                  int                  `json:"totalTasks"`
	DoneTasks                   int                  `json:"doneTasks"`
	InProgressTasks             int                  `json:"inProgressTasks"`
	TotalStoryPoints            int                  `json:"totalStoryPoints"`
	DoneStoryPoints             int                  `json:"doneStoryPoints"`
	Burndown                    models.BurndownChart `json:"burndownChart"`
}

// MemberMetrics is one member's activity snapshot.
type MemberMetrics struct {
	Nickname       string      `json:"nickname"`
	Role           models.Role `json:"role"`
	TasksAssigned  int         `json:"tasksAssigned"`
	TasksCompleted int         `json:"tasksCompleted"`
	SecondsInCall  int         `json:"secondsInCall"`
	OpenTasks      int         `json:"openTasks"`
}

// TeamMetrics aggregates a whole team.
type TeamMetrics struct {
	Team            string           `json:"team"`
	Started         bool             `json:"started"`
	AverageVelocity float64          `json:"averageVelocity"`
	VelocityHistory []float64        `json:"velocityHistory"`
	Projects        []ProjectMetrics `json:"projects"`
	Members         []MemberMetrics  `json:"members"`
}

// projectMetrics derives the snapshot for one project. Each percentage
// weights in-progress work at half of done work.
func projectMetrics(key string, p *models.Project) ProjectMetrics {
	m := ProjectMetrics{Project: key, CurrentSprint: p.CurrentSprint}

	var doneItems, inProgressItems float64
	var donePoints, inProgressPoints float64
	for _, item := range p.Backlog {
		m.TotalStoryPoints += item.StoryPoints
		switch item.State {
		case models.ItemDone:
			doneItems++
			donePoints += float64(item.StoryPoints)
			m.DoneStoryPoints += item.StoryPoints
		case models.ItemInProgress:
			inProgressItems++
			inProgressPoints += float64(item.StoryPoints)
		}
	}
	m.ItemCompletionPercent = completionPercent(doneItems, inProgressItems, float64(len(p.Backlog)))
	m.StoryPointCompletionPercent = completionPercent(donePoints, inProgressPoints, float64(m.TotalStoryPoints))

	// Closed sprints are history; only the active one counts here.
	if sprint := p.ActiveSprint(); sprint != nil {
		for _, task := range sprint.Tasks {
			m.TotalTasks++
			switch {
			case task.State.Completed():
				m.DoneTasks++
			case task.State == models.TaskInProgress:
				m.InProgressTasks++
			}
		}
		m.Burndown = sprint.Burndown
	}
	m.TaskCompletionPercent = completionPercent(float64(m.DoneTasks), float64(m.InProgressTasks), float64(m.TotalTasks))
	return m
}

// GetProjectMetrics returns the progress snapshot of one project.
func (s *MetricsService) GetProjectMetrics(ctx context.Context, actor *models.User, team, project string) (*ProjectMetrics, error) {
	if err := authz.Authorize(actor, authz.ActionViewTeamMetrics, authz.Target{Team: team}); err != nil {
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
	m := projectMetrics(project, p)
	return &m, nil
}

// GetTeamMetrics returns the whole-team aggregate: per-project progress,
// velocity and per-member statistics.
func (s *MetricsService) GetTeamMetrics(ctx context.Context, actor *models.User, team string) (*TeamMetrics, error) {
	if err := authz.Authorize(actor, authz.ActionViewTeamMetrics, authz.Target{Team: team}); err != nil {
		return nil, err
	}
	teams, err := s.mutator.ReadTeams(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.mutator.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	t := teams.Team(team)
	if t == nil {
		return nil, errors.NotFound("team %s not found", team)
	}
	return s.teamMetrics(team, t, users), nil
}

func (s *MetricsService) teamMetrics(name string, t *models.Team, users *models.UsersDocument) *TeamMetrics {
	m := &TeamMetrics{
		Team:            name,
		Started:         t.Started,
		AverageVelocity: t.Stats.AverageVelocity,
		VelocityHistory: t.Stats.VelocityHistory,
	}

	openByMember := map[string]int{}
	for _, key := range models.ProjectKeys {
		p := t.Project(key)
		if p == nil {
			continue
		}
		m.Projects = append(m.Projects, projectMetrics(key, p))
		if sprint := p.ActiveSprint(); sprint != nil {
			for _, task := range sprint.Tasks {
				if task.State.Completed() {
					continue
				}
				for _, nickname := range task.NamedAssignees() {
					openByMember[nickname]++
				}
			}
		}
	}

	for _, u := range users.TeamMembers(name) {
		m.Members = append(m.Members, MemberMetrics{
			Nickname:       u.Nickname,
			Role:           u.Role,
			TasksAssigned:  u.Stats.TasksAssigned,
			TasksCompleted: u.Stats.TasksCompleted,
			SecondsInCall:  u.Stats.SecondsInCall,
			OpenTasks:      openByMember[u.Nickname],
		})
	}
	slices.SortFunc(m.Members, func(a, b MemberMetrics) int {
		return strings.Compare(a.Nickname, b.Nickname)
	})
	return m
}

// GetGlobalMetrics returns every team's aggregate. Restricted to cross-team
// roles.
func (s *MetricsService) GetGlobalMetrics(ctx context.Context, actor *models.User) ([]*TeamMetrics, error) {
	if err := authz.Authorize(actor, authz.ActionViewGlobalMetrics, authz.Target{}); err != nil {
		return nil, err
	}
	teams, err := s.mutator.ReadTeams(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.mutator.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(teams.Teams))
	for name := range teams.Teams {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]*TeamMetrics, 0, len(names))
	for _, name := range names {
		out = append(out, s.teamMetrics(name, teams.Teams[name], users))
	}
	return out, nil
}

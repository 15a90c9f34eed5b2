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

// TaskService handles sprint task business logic: creation, assignment,
// state transitions and the append-only activity log.
type TaskService struct {
	mutator *store.Mutator
	clock   clock.Clock
}

// NewTaskService creates a new TaskService
func NewTaskService(mutator *store.Mutator, clk clock.Clock) *TaskService {
	return &TaskService{mutator: mutator, clock: clk}
}

// CreateTaskInput represents input for creating a task in the current sprint
type CreateTaskInput struct {
	Description   string
	Assignees     []string
	Priority      string
	DueDate       *models.CalendarDate
	BacklogItemID string
	EstimateHours int
}

// CreateTask creates a task in the project's current sprint and returns its
// ID. Tasks can only ever be created in the active sprint; closed sprints
// are immutable history.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, team, project string, in CreateTaskInput) (string, error) {
	if err := authz.Authorize(actor, authz.ActionCreateTask, authz.Target{Team: team}); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Description) == "" {
		return "", errors.InvalidState("task description is required")
	}
	if in.EstimateHours < 0 {
		return "", errors.InvalidState("estimate hours cannot be negative")
	}

	assignees, err := s.normalizeAssignees(ctx, team, in.Assignees)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	taskID := fmt.Sprintf("T-%s", uuid.NewString())

	err = s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		p := t.Project(project)
		if p == nil {
			return errors.NotFound("team %s has no project %s", team, project)
		}
		sprint := p.ActiveSprint()
		if sprint == nil {
			return errors.NotFound("project %s has no active sprint", project)
		}
		if in.BacklogItemID != "" && p.BacklogItemByID(in.BacklogItemID) == nil {
			return errors.NotFound("project %s has no backlog item %s", project, in.BacklogItemID)
		}

		sprint.Tasks[taskID] = &models.Task{
			ID:            taskID,
			Description:   strings.TrimSpace(in.Description),
			Assignees:     assignees,
			Priority:      in.Priority,
			DueDate:       in.DueDate,
			State:         models.TaskTodo,
			BacklogItemID: in.BacklogItemID,
			EstimateHours: in.EstimateHours,
			CreatedAt:     now,
			CreatedBy:     actor.Nickname,
			Activity: []models.ActivityEntry{{
				At:     now,
				Actor:  actor.Nickname,
				Action: "Task created",
			}},
		}
		refreshBurndown(sprint, s.clock.Today())
		return nil
	})
	if err != nil {
		return "", err
	}

	// The task itself is stored at this point; a counter failure is
	// reported alongside the new ID so the caller can reconcile.
	if err := s.adjustAssignedCounters(ctx, named(assignees), nil); err != nil {
		return taskID, err
	}
	return taskID, nil
}

// UpdateTaskState transitions a task in the current sprint to newState and
// records the change in the task's activity log. Completing a task bumps the
// assignees' counters and refreshes the burndown chart and the linked
// backlog item's derived state.
func (s *TaskService) UpdateTaskState(ctx context.Context, actor *models.User, team, project, taskID string, newState models.TaskState, comment string) error {
	if !newState.IsValid() {
		return errors.InvalidState("unknown task state %q", newState)
	}

	now := s.clock.Now()
	var completedBy []string

	err := s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		completedBy = nil
		p, sprint, task, err := findCurrentTask(t, team, project, taskID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.ActionChangeTaskState, authz.Target{
			Team:      team,
			Task:      task,
			TaskState: newState,
		}); err != nil {
			return err
		}

		prior := task.State
		if prior == newState {
			return errors.InvalidState("task %s is already %s", taskID, newState)
		}
		task.State = newState
		task.Activity = append(task.Activity, models.ActivityEntry{
			At:      now,
			Actor:   actor.Nickname,
			Action:  fmt.Sprintf("State changed from %s to %s", prior, newState),
			Comment: comment,
		})

		if newState == models.TaskDone && !prior.Completed() {
			completedBy = task.NamedAssignees()
		}
		refreshBurndown(sprint, s.clock.Today())
		refreshItemProgress(p, sprint)
		refreshTeamStats(t, s.clock.Today())
		return nil
	})
	if err != nil {
		return err
	}

	if len(completedBy) > 0 {
		return s.adjustCompletedCounters(ctx, completedBy)
	}
	return nil
}

// ReassignTask replaces the task's assignee set. An empty set leaves the
// @Unassigned sentinel; assigned-task counters follow the diff.
func (s *TaskService) ReassignTask(ctx context.Context, actor *models.User, team, project, taskID string, assignees []string) error {
	if err := authz.Authorize(actor, authz.ActionAssignTask, authz.Target{Team: team}); err != nil {
		return err
	}

	next, err := s.normalizeAssignees(ctx, team, assignees)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	var added, removed []string

	err = s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		_, _, task, err := findCurrentTask(t, team, project, taskID)
		if err != nil {
			return err
		}

		prior := task.Assignees
		added, removed = diffAssignees(prior, next)
		if len(added) == 0 && len(removed) == 0 {
			return nil
		}

		task.Assignees = next
		task.Activity = append(task.Activity, models.ActivityEntry{
			At:      now,
			Actor:   actor.Nickname,
			Action:  "Task reassigned",
			Comment: fmt.Sprintf("From %s to %s", strings.Join(prior, ", "), strings.Join(next, ", ")),
		})
		return nil
	})
	if err != nil {
		return err
	}

	return s.adjustAssignedCounters(ctx, named(added), named(removed))
}

// CommentTask appends a comment to the task's activity log.
func (s *TaskService) CommentTask(ctx context.Context, actor *models.User, team, project, taskID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return errors.InvalidState("comment cannot be empty")
	}
	now := s.clock.Now()

	return s.mutator.UpdateTeam(ctx, team, func(doc *models.TeamsDocument, t *models.Team) error {
		_, _, task, err := findCurrentTask(t, team, project, taskID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.ActionCommentTask, authz.Target{Team: team, Task: task}); err != nil {
			return err
		}
		task.Activity = append(task.Activity, models.ActivityEntry{
			At:      now,
			Actor:   actor.Nickname,
			Action:  "Comment",
			Comment: comment,
		})
		return nil
	})
}

// SprintView is a read-only snapshot of one sprint.
type SprintView struct {
	Number     int                  `json:"number"`
	StartDate  models.CalendarDate  `json:"startDate"`
	EndDate    models.CalendarDate  `json:"endDate"`
	ScrumBoard []string             `json:"scrumBoard"`
	Tasks      []*models.Task       `json:"tasks"`
	Burndown   models.BurndownChart `json:"burndownChart"`
}

// GetSprint returns the given sprint (0 means the current one). Members see
// only their own tasks; scrum masters and above see the full board.
func (s *TaskService) GetSprint(ctx context.Context, actor *models.User, team, project string, number int) (*SprintView, error) {
	if err := authz.Authorize(actor, authz.ActionReadSprint, authz.Target{Team: team}); err != nil {
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
	if number == 0 {
		number = p.CurrentSprint
	}
	sprint := p.Sprint(number)
	if sprint == nil {
		return nil, errors.NotFound("project %s has no sprint %d", project, number)
	}

	view := &SprintView{
		Number:     number,
		StartDate:  sprint.StartDate,
		EndDate:    sprint.EndDate,
		ScrumBoard: sprint.ScrumBoard,
		Burndown:   sprint.Burndown,
	}
	for _, task := range sprint.Tasks {
		if actor.Role == models.RoleMember && !task.AssignedTo(actor.Nickname) {
			continue
		}
		view.Tasks = append(view.Tasks, task)
	}
	slices.SortFunc(view.Tasks, func(a, b *models.Task) int {
		return strings.Compare(a.ID, b.ID)
	})
	return view, nil
}

// TasksForUser collects every task across the team's projects and sprints
// that is assigned to the given nickname.
func (s *TaskService) TasksForUser(ctx context.Context, actor *models.User, team, nickname string) ([]*models.Task, error) {
	if err := authz.Authorize(actor, authz.ActionReadTasks, authz.Target{Team: team}); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleMember && nickname != actor.Nickname {
		return nil, errors.PermissionDenied(errors.ReasonInsufficientRole,
			"members may only list their own tasks")
	}

	doc, err := s.mutator.ReadTeams(ctx)
	if err != nil {
		return nil, err
	}
	t := doc.Team(team)
	if t == nil {
		return nil, errors.NotFound("team %s not found", team)
	}

	var tasks []*models.Task
	for _, key := range models.ProjectKeys {
		p := t.Project(key)
		if p == nil {
			continue
		}
		for _, sprint := range p.Sprints {
			for _, task := range sprint.Tasks {
				if task.AssignedTo(nickname) {
					tasks = append(tasks, task)
				}
			}
		}
	}
	slices.SortFunc(tasks, func(a, b *models.Task) int {
		return strings.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

// findCurrentTask resolves a task inside the project's active sprint only.
// Tasks in closed sprints are immutable.
func findCurrentTask(t *models.Team, team, project, taskID string) (*models.Project, *models.Sprint, *models.Task, error) {
	p := t.Project(project)
	if p == nil {
		return nil, nil, nil, errors.NotFound("team %s has no project %s", team, project)
	}
	sprint := p.ActiveSprint()
	if sprint == nil {
		return nil, nil, nil, errors.NotFound("project %s has no active sprint", project)
	}
	task := sprint.Tasks[taskID]
	if task == nil {
		return nil, nil, nil, errors.NotFound("sprint %d has no task %s", p.CurrentSprint, taskID)
	}
	return p, sprint, task, nil
}

// normalizeAssignees dedupes the list, verifies every named assignee belongs
// to the team, and substitutes the @Unassigned sentinel for an empty set.
func (s *TaskService) normalizeAssignees(ctx context.Context, team string, assignees []string) ([]string, error) {
	var cleaned []string
	seen := map[string]bool{}
	for _, a := range assignees {
		a = strings.TrimSpace(a)
		if a == "" || a == models.Unassigned || seen[a] {
			continue
		}
		seen[a] = true
		cleaned = append(cleaned, a)
	}
	if len(cleaned) == 0 {
		return []string{models.Unassigned}, nil
	}

	users, err := s.mutator.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, nickname := range cleaned {
		u := users.FindByNickname(nickname)
		if u == nil || u.Team != team {
			return nil, errors.InvalidState("%s is not a member of team %s", nickname, team)
		}
	}
	return cleaned, nil
}

// diffAssignees returns which names the replacement adds and removes.
func diffAssignees(prior, next []string) (added, removed []string) {
	for _, a := range next {
		if !slices.Contains(prior, a) {
			added = append(added, a)
		}
	}
	for _, a := range prior {
		if !slices.Contains(next, a) {
			removed = append(removed, a)
		}
	}
	return added, removed
}

// named filters the @Unassigned sentinel out of an assignee list.
func named(assignees []string) []string {
	var out []string
	for _, a := range assignees {
		if a != models.Unassigned {
			out = append(out, a)
		}
	}
	return out
}

// adjustAssignedCounters bumps tasksAssigned up for added and down for
// removed. The caller's task mutation has already committed when this runs,
// so a failure here surfaces to the caller instead of drifting silently.
func (s *TaskService) adjustAssignedCounters(ctx context.Context, added, removed []string) error {
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	return s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		for _, nickname := range added {
			if u := doc.FindByNickname(nickname); u != nil {
				u.Stats.TasksAssigned++
			}
		}
		for _, nickname := range removed {
			if u := doc.FindByNickname(nickname); u != nil && u.Stats.TasksAssigned > 0 {
				u.Stats.TasksAssigned--
			}
		}
		return nil
	})
}

func (s *TaskService) adjustCompletedCounters(ctx context.Context, completed []string) error {
	return s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		for _, nickname := range completed {
			if u := doc.FindByNickname(nickname); u != nil {
				u.Stats.TasksCompleted++
			}
		}
		return nil
	})
}

// Package authz is the access control engine: a pure function of
// (user, action, target). It depends only on the value types in models and
// never on the services that call it.
package authz

import (
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
)

type Action string

const (
	ActionInitializeProject   Action = "initialize_project"
	ActionResetProject        Action = "reset_project"
	ActionAdvanceSprint       Action = "advance_sprint"
	ActionCreateBacklogItem   Action = "create_backlog_item"
	ActionEditBacklogItem     Action = "edit_backlog_item"
	ActionSelectSprintBacklog Action = "select_sprint_backlog"
	ActionCreateTask          Action = "create_task"
	ActionAssignTask          Action = "assign_task"
	ActionChangeTaskState     Action = "change_task_state"
	ActionCommentTask         Action = "comment_task"
	ActionReadBacklog         Action = "read_backlog"
	ActionReadSprint          Action = "read_sprint"
	ActionReadTasks           Action = "read_tasks"
	ActionViewTeamMetrics     Action = "view_team_metrics"
	ActionViewGlobalMetrics   Action = "view_global_metrics"
	ActionChangeUserRole      Action = "change_user_role"
	ActionChangeUserTeam      Action = "change_user_team"
)

// Target identifies what an action operates on. Team is required for every
// team-scoped action; Task and TaskState only apply to task-level actions.
type Target struct {
	Team      string
	Task      *models.Task
	TaskState models.TaskState
}

// memberTaskStates are the only states a member or scrum master may set on
// their own tasks. TODO and VERIFIED stay leader-level.
var memberTaskStates = map[models.TaskState]bool{
	models.TaskInProgress: true,
	models.TaskDone:       true,
}

// Authorize evaluates user against the requested action and target. It
// returns nil to allow, or a PERMISSION_DENIED error whose reason
// distinguishes why.
func Authorize(user *models.User, action Action, target Target) error {
	switch action {
	case ActionChangeUserRole, ActionChangeUserTeam, ActionResetProject:
		if user.Role != models.RoleAdmin {
			return errors.PermissionDenied(errors.ReasonInsufficientRole,
				"action %s requires the admin role", action)
		}
		return nil

	case ActionViewGlobalMetrics:
		if !user.Role.CrossTeam() {
			return errors.PermissionDenied(errors.ReasonInsufficientRole,
				"global metrics are restricted to cross-team roles")
		}
		return nil
	}

	crossTeam := user.Role.CrossTeam()
	if !crossTeam && target.Team != user.Team {
		return errors.PermissionDenied(errors.ReasonWrongTeam,
			"user belongs to team %s, not %s", user.Team, target.Team)
	}

	switch action {
	case ActionInitializeProject, ActionAdvanceSprint,
		ActionCreateBacklogItem, ActionEditBacklogItem, ActionSelectSprintBacklog,
		ActionCreateTask, ActionAssignTask:
		if crossTeam || user.Role == models.RoleLeader {
			return nil
		}
		return errors.PermissionDenied(errors.ReasonInsufficientRole,
			"action %s requires the leader role", action)

	case ActionReadBacklog, ActionReadSprint, ActionReadTasks:
		// Every in-team role may read.
		return nil

	case ActionViewTeamMetrics:
		if crossTeam || user.Role == models.RoleLeader || user.Role == models.RoleScrumMaster {
			return nil
		}
		return errors.PermissionDenied(errors.ReasonInsufficientRole,
			"team metrics require scrum master or above")

	case ActionChangeTaskState:
		if crossTeam || user.Role == models.RoleLeader {
			return nil
		}
		if target.Task == nil || !target.Task.AssignedTo(user.Nickname) {
			return errors.PermissionDenied(errors.ReasonNotAssignee,
				"only assignees may change this task")
		}
		if !memberTaskStates[target.TaskState] {
			return errors.PermissionDenied(errors.ReasonInvalidTransition,
				"state %s is not allowed for role %s", target.TaskState, user.Role)
		}
		return nil

	case ActionCommentTask:
		if crossTeam || user.Role == models.RoleLeader {
			return nil
		}
		if target.Task == nil || !target.Task.AssignedTo(user.Nickname) {
			return errors.PermissionDenied(errors.ReasonNotAssignee,
				"only assignees may comment on this task")
		}
		return nil
	}

	return errors.PermissionDenied(errors.ReasonInsufficientRole,
		"unknown action %s", action)
}

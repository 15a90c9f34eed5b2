package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
)

func user(role models.Role, team string) *models.User {
	return &models.User{ID: "u-1", Nickname: "alice", Role: role, Team: team}
}

func TestTeamScopedActions(t *testing.T) {
	target := Target{Team: "alpha"}

	tests := []struct {
		name   string
		user   *models.User
		action Action
		allow  bool
		reason errors.Reason
	}{
		{"leader initializes own team", user(models.RoleLeader, "alpha"), ActionInitializeProject, true, ""},
		{"member cannot initialize", user(models.RoleMember, "alpha"), ActionInitializeProject, false, errors.ReasonInsufficientRole},
		{"scrum master cannot initialize", user(models.RoleScrumMaster, "alpha"), ActionInitializeProject, false, errors.ReasonInsufficientRole},
		{"admin initializes any team", user(models.RoleAdmin, ""), ActionInitializeProject, true, ""},
		{"leader of other team blocked", user(models.RoleLeader, "beta"), ActionInitializeProject, false, errors.ReasonWrongTeam},
		{"member reads own backlog", user(models.RoleMember, "alpha"), ActionReadBacklog, true, ""},
		{"member of other team cannot read", user(models.RoleMember, "beta"), ActionReadBacklog, false, errors.ReasonWrongTeam},
		{"auditor reads any team", user(models.RoleAuditor, ""), ActionReadBacklog, true, ""},
		{"member cannot create tasks", user(models.RoleMember, "alpha"), ActionCreateTask, false, errors.ReasonInsufficientRole},
		{"leader creates tasks", user(models.RoleLeader, "alpha"), ActionCreateTask, true, ""},
		{"member cannot view team metrics", user(models.RoleMember, "alpha"), ActionViewTeamMetrics, false, errors.ReasonInsufficientRole},
		{"scrum master views team metrics", user(models.RoleScrumMaster, "alpha"), ActionViewTeamMetrics, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.action, target)
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, errors.KindPermissionDenied, errors.KindOf(err))
			assert.Equal(t, tt.reason, errors.ReasonOf(err))
		})
	}
}

func TestAdminOnlyActions(t *testing.T) {
	for _, action := range []Action{ActionChangeUserRole, ActionChangeUserTeam, ActionResetProject} {
		assert.NoError(t, Authorize(user(models.RoleAdmin, ""), action, Target{Team: "alpha"}))

		for _, role := range []models.Role{models.RoleMember, models.RoleScrumMaster, models.RoleLeader, models.RoleAuditor} {
			err := Authorize(user(role, "alpha"), action, Target{Team: "alpha"})
			assert.Equal(t, errors.ReasonInsufficientRole, errors.ReasonOf(err), "role %s, action %s", role, action)
		}
	}
}

func TestGlobalMetrics(t *testing.T) {
	assert.NoError(t, Authorize(user(models.RoleAdmin, ""), ActionViewGlobalMetrics, Target{}))
	assert.NoError(t, Authorize(user(models.RoleAuditor, ""), ActionViewGlobalMetrics, Target{}))

	err := Authorize(user(models.RoleLeader, "alpha"), ActionViewGlobalMetrics, Target{})
	assert.Equal(t, errors.ReasonInsufficientRole, errors.ReasonOf(err))
}

func TestTaskStateTransitions(t *testing.T) {
	task := &models.Task{ID: "T-1", Assignees: []string{"alice"}}
	other := &models.Task{ID: "T-2", Assignees: []string{"bob"}}

	member := user(models.RoleMember, "alpha")

	// Members may move their own task to IN_PROGRESS or DONE only.
	for _, state := range []models.TaskState{models.TaskInProgress, models.TaskDone} {
		assert.NoError(t, Authorize(member, ActionChangeTaskState, Target{Team: "alpha", Task: task, TaskState: state}))
	}
	for _, state := range []models.TaskState{models.TaskTodo, models.TaskVerified} {
		err := Authorize(member, ActionChangeTaskState, Target{Team: "alpha", Task: task, TaskState: state})
		assert.Equal(t, errors.ReasonInvalidTransition, errors.ReasonOf(err))
	}

	err := Authorize(member, ActionChangeTaskState, Target{Team: "alpha", Task: other, TaskState: models.TaskDone})
	assert.Equal(t, errors.ReasonNotAssignee, errors.ReasonOf(err))

	// Leaders set any state on any task.
	leader := user(models.RoleLeader, "alpha")
	assert.NoError(t, Authorize(leader, ActionChangeTaskState, Target{Team: "alpha", Task: other, TaskState: models.TaskVerified}))
}

func TestCommenting(t *testing.T) {
	task := &models.Task{ID: "T-1", Assignees: []string{"alice"}}
	other := &models.Task{ID: "T-2", Assignees: []string{"bob"}}

	member := user(models.RoleMember, "alpha")
	assert.NoError(t, Authorize(member, ActionCommentTask, Target{Team: "alpha", Task: task}))

	err := Authorize(member, ActionCommentTask, Target{Team: "alpha", Task: other})
	assert.Equal(t, errors.ReasonNotAssignee, errors.ReasonOf(err))

	assert.NoError(t, Authorize(user(models.RoleLeader, "alpha"), ActionCommentTask, Target{Team: "alpha", Task: other}))
}

package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/LautaroGarc/dardito/internal/constants"
	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
)

// UserServiceTestSuite defines the test suite for UserService
type UserServiceTestSuite struct {
	baseSuite
	projects *ProjectService
	tasks    *TaskService
	users    *UserService
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.baseSuite.SetupTest()
	suite.projects = NewProjectService(suite.mutator, suite.clk)
	suite.tasks = NewTaskService(suite.mutator, suite.clk)
	suite.users = NewUserService(suite.mutator, suite.clk)
}

func (suite *UserServiceTestSuite) TestChangeRoleAdminOnly() {
	err := suite.users.ChangeRole(suite.ctx(), suite.leader, "u-mem", models.RoleScrumMaster)
	suite.Equal(apierrors.KindPermissionDenied, apierrors.KindOf(err))

	err = suite.users.ChangeRole(suite.ctx(), suite.admin, "u-mem", models.RoleScrumMaster)
	suite.Require().NoError(err)
	suite.Equal(models.RoleScrumMaster, suite.readUser("u-mem").Role)
}

func (suite *UserServiceTestSuite) TestChangeRoleRejectsUnknownRole() {
	err := suite.users.ChangeRole(suite.ctx(), suite.admin, "u-mem", models.Role("king"))
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))
}

func (suite *UserServiceTestSuite) TestChangeTeamStripsAssignments() {
	suite.initTeam(suite.projects)

	id, err := suite.tasks.CreateTask(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral,
		CreateTaskInput{Description: "shared work", Assignees: []string{"mem", "mem2"}})
	suite.Require().NoError(err)
	solo, err := suite.tasks.CreateTask(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral,
		CreateTaskInput{Description: "solo work", Assignees: []string{"mem"}})
	suite.Require().NoError(err)

	err = suite.users.ChangeTeam(suite.ctx(), suite.admin, "u-mem", "beta")
	suite.Require().NoError(err)

	moved := suite.readUser("u-mem")
	suite.Equal("beta", moved.Team)
	suite.Equal(models.UserStats{}, moved.Stats)

	sprint := suite.readTeam().Project(models.ProjectGeneral).ActiveSprint()
	shared := sprint.Tasks[id]
	suite.Equal([]string{"mem2"}, shared.Assignees)
	suite.Equal(constants.SystemActor, shared.Activity[len(shared.Activity)-1].Actor)

	abandoned := sprint.Tasks[solo]
	suite.Equal([]string{models.Unassigned}, abandoned.Assignees)
}

func (suite *UserServiceTestSuite) TestListUsersScopedByTeam() {
	users, err := suite.users.ListUsers(suite.ctx(), suite.leader)
	suite.Require().NoError(err)
	for _, u := range users {
		suite.Equal(testTeam, u.Team)
	}

	all, err := suite.users.ListUsers(suite.ctx(), suite.admin)
	suite.Require().NoError(err)
	suite.Greater(len(all), len(users))
}

func (suite *UserServiceTestSuite) TestAddCallSeconds() {
	suite.Require().NoError(suite.users.AddCallSeconds(suite.ctx(), "u-mem", 90))
	suite.Require().NoError(suite.users.AddCallSeconds(suite.ctx(), "u-mem", 30))
	suite.Equal(120, suite.readUser("u-mem").Stats.SecondsInCall)

	err := suite.users.AddCallSeconds(suite.ctx(), "u-mem", 0)
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	apierrors "github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
)

// BacklogServiceTestSuite defines the test suite for BacklogService
type BacklogServiceTestSuite struct {
	baseSuite
	projects *ProjectService
	backlog  *BacklogService
	tasks    *TaskService
}

func (suite *BacklogServiceTestSuite) SetupTest() {
	suite.baseSuite.SetupTest()
	suite.projects = NewProjectService(suite.mutator, suite.clk)
	suite.backlog = NewBacklogService(suite.mutator, suite.clk)
	suite.tasks = NewTaskService(suite.mutator, suite.clk)
	suite.initTeam(suite.projects)
}

func (suite *BacklogServiceTestSuite) addItem(title string, points int) string {
	id, err := suite.backlog.AddItem(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, ItemInput{
		Title:       title,
		AsA:         "team member",
		IWant:       "a feature",
		SoThat:      "work gets tracked",
		StoryPoints: points,
	})
	suite.Require().NoError(err)
	return id
}

func (suite *BacklogServiceTestSuite) itemByID(id string) *models.BacklogItem {
	item := suite.readTeam().Project(models.ProjectGeneral).BacklogItemByID(id)
	suite.Require().NotNil(item)
	return item
}

func (suite *BacklogServiceTestSuite) TestAddItem() {
	id := suite.addItem("first story", 5)

	item := suite.itemByID(id)
	suite.Equal("first story", item.Title)
	suite.Equal(models.ItemTodo, item.State)
	suite.Equal("lead", item.CreatedBy)

	suite.Equal(5, suite.readTeam().Stats.TotalStoryPoints)
}

func (suite *BacklogServiceTestSuite) TestAddItemValidation() {
	_, err := suite.backlog.AddItem(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, ItemInput{
		Title:       "  ",
		StoryPoints: 3,
	})
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))

	_, err = suite.backlog.AddItem(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, ItemInput{
		Title:       "no points",
		StoryPoints: 0,
	})
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))
}

func (suite *BacklogServiceTestSuite) TestBulkImportIsAtomic() {
	items := []ItemInput{
		{Title: "good", StoryPoints: 2},
		{Title: "bad", StoryPoints: 0},
	}
	_, err := suite.backlog.BulkImportItems(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, items)
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))

	backlog, err := suite.backlog.ListBacklog(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral)
	suite.Require().NoError(err)
	suite.Empty(backlog)
}

func (suite *BacklogServiceTestSuite) TestBulkImportKeepsOrder() {
	ids, err := suite.backlog.BulkImportItems(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral,
		[]ItemInput{
			{Title: "one", StoryPoints: 1},
			{Title: "two", StoryPoints: 2},
		})
	suite.Require().NoError(err)
	suite.Require().Len(ids, 2)
	suite.Equal("one", suite.itemByID(ids[0]).Title)
	suite.Equal("two", suite.itemByID(ids[1]).Title)
}

func (suite *BacklogServiceTestSuite) TestEditRequiresLeader() {
	id := suite.addItem("story", 3)

	title := "renamed"
	err := suite.backlog.EditItem(suite.ctx(), suite.scrum, testTeam, models.ProjectGeneral, id,
		EditItemInput{Title: &title})
	suite.Equal(apierrors.KindPermissionDenied, apierrors.KindOf(err))
}

func (suite *BacklogServiceTestSuite) TestEditUpdatesPoints() {
	id := suite.addItem("story", 3)

	points := 8
	err := suite.backlog.EditItem(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, id,
		EditItemInput{StoryPoints: &points})
	suite.Require().NoError(err)

	suite.Equal(8, suite.itemByID(id).StoryPoints)
	suite.Equal(8, suite.readTeam().Stats.TotalStoryPoints)
}

func (suite *BacklogServiceTestSuite) TestManualDoneOnly() {
	id := suite.addItem("story", 3)

	done := models.ItemDone
	err := suite.backlog.EditItem(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, id,
		EditItemInput{State: &done})
	suite.Require().NoError(err)
	suite.Equal(models.ItemDone, suite.itemByID(id).State)
	suite.Equal(3, suite.readTeam().Stats.CompletedStoryPoints)

	inSprint := models.ItemInSprint
	err = suite.backlog.EditItem(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, id,
		EditItemInput{State: &inSprint})
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))
}

func (suite *BacklogServiceTestSuite) TestSelectSprintBacklog() {
	a := suite.addItem("story a", 3)
	b := suite.addItem("story b", 5)

	err := suite.backlog.SelectSprintBacklog(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral,
		[]string{a, b})
	suite.Require().NoError(err)

	team := suite.readTeam()
	sprint := team.Project(models.ProjectGeneral).ActiveSprint()
	suite.Equal([]string{a, b}, sprint.ScrumBoard)
	suite.Equal(models.ItemInSprint, suite.itemByID(a).State)
	suite.Equal(models.ItemInSprint, suite.itemByID(b).State)

	// One-week sprint: planned line decays linearly from 8 points over 7 days.
	planned := sprint.Burndown.Planned
	suite.Require().Len(planned, 8)
	suite.Equal(8.0, planned[0].Work)
	suite.Equal(0.0, planned[7].Work)
}

func (suite *BacklogServiceTestSuite) TestReselectDropsDeselectedToTodo() {
	a := suite.addItem("story a", 3)
	b := suite.addItem("story b", 5)

	suite.Require().NoError(suite.backlog.SelectSprintBacklog(
		suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, []string{a, b}))
	suite.Require().NoError(suite.backlog.SelectSprintBacklog(
		suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, []string{a}))

	suite.Equal(models.ItemInSprint, suite.itemByID(a).State)
	suite.Equal(models.ItemTodo, suite.itemByID(b).State)
}

func (suite *BacklogServiceTestSuite) TestSelectRejectsDoneItem() {
	id := suite.addItem("done story", 3)
	done := models.ItemDone
	suite.Require().NoError(suite.backlog.EditItem(
		suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, id, EditItemInput{State: &done}))

	err := suite.backlog.SelectSprintBacklog(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral,
		[]string{id})
	suite.Equal(apierrors.KindInvalidState, apierrors.KindOf(err))
}

func (suite *BacklogServiceTestSuite) TestTaskProgressDerivesItemState() {
	id := suite.addItem("story", 3)
	suite.Require().NoError(suite.backlog.SelectSprintBacklog(
		suite.ctx(), suite.leader, testTeam, models.ProjectGeneral, []string{id}))

	taskID, err := suite.tasks.CreateTask(suite.ctx(), suite.leader, testTeam, models.ProjectGeneral,
		CreateTaskInput{Description: "linked work", Assignees: []string{"mem"}, BacklogItemID: id})
	suite.Require().NoError(err)
	suite.Equal(models.ItemInSprint, suite.itemByID(id).State)

	suite.Require().NoError(suite.tasks.UpdateTaskState(
		suite.ctx(), suite.member, testTeam, models.ProjectGeneral, taskID, models.TaskInProgress, ""))
	suite.Equal(models.ItemInProgress, suite.itemByID(id).State)

	// Completing the linked tasks never marks the item DONE; that stays an
	// explicit edit.
	suite.Require().NoError(suite.tasks.UpdateTaskState(
		suite.ctx(), suite.member, testTeam, models.ProjectGeneral, taskID, models.TaskDone, ""))
	suite.Equal(models.ItemInProgress, suite.itemByID(id).State)
}

func TestBacklogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BacklogServiceTestSuite))
}

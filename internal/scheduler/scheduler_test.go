package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/services"
	"github.com/LautaroGarc/dardito/internal/store"
)

// SchedulerTestSuite defines the test suite for the daily sprint sweep
type SchedulerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	mutator  *store.Mutator
	clk      *clock.Fixed
	projects *services.ProjectService
	tasks    *services.TaskService
	sweeper  *Scheduler
	leader   *models.User
}

// SetupTest runs before each test
func (suite *SchedulerTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(&store.Document{}))

	suite.mutator = store.NewMutator(store.NewGormStore(suite.db, time.Second))
	suite.clk = clock.NewFixed(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	suite.projects = services.NewProjectService(suite.mutator, suite.clk)
	suite.tasks = services.NewTaskService(suite.mutator, suite.clk)
	suite.sweeper = New(suite.mutator, suite.projects, suite.clk, zap.NewNop())

	suite.leader = &models.User{ID: "u-lead", Nickname: "lead", Role: models.RoleLeader, Team: "alpha"}
	err = suite.mutator.UpdateUsers(context.Background(), func(doc *models.UsersDocument) error {
		doc.Users[suite.leader.ID] = suite.leader
		return nil
	})
	suite.Require().NoError(err)

	err = suite.projects.InitializeProject(context.Background(), suite.leader, services.InitializeInput{
		Team:          "alpha",
		ProjectCount:  2,
		GeneralWeeks:  1,
		DeliveryWeeks: 2,
	})
	suite.Require().NoError(err)
}

// TearDownTest runs after each test
func (suite *SchedulerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *SchedulerTestSuite) currentSprint(project string) int {
	doc, err := suite.mutator.ReadTeams(context.Background())
	suite.Require().NoError(err)
	return doc.Team("alpha").Project(project).CurrentSprint
}

func (suite *SchedulerTestSuite) TestSweepBeforeEndDateDoesNothing() {
	suite.Require().NoError(suite.sweeper.RunOnce(context.Background()))
	suite.Equal(1, suite.currentSprint(models.ProjectGeneral))
	suite.Equal(1, suite.currentSprint(models.ProjectDelivery))
}

func (suite *SchedulerTestSuite) TestSweepAdvancesDueSprintsOnly() {
	// A week on, the one-week general sprint is due; the two-week delivery
	// sprint is not.
	suite.clk.AdvanceDays(7)

	suite.Require().NoError(suite.sweeper.RunOnce(context.Background()))
	suite.Equal(2, suite.currentSprint(models.ProjectGeneral))
	suite.Equal(1, suite.currentSprint(models.ProjectDelivery))
}

func (suite *SchedulerTestSuite) TestSweepForcesPastIncompleteTasks() {
	_, err := suite.tasks.CreateTask(context.Background(), suite.leader, "alpha", models.ProjectGeneral,
		services.CreateTaskInput{Description: "never finished"})
	suite.Require().NoError(err)

	suite.clk.AdvanceDays(7)
	suite.Require().NoError(suite.sweeper.RunOnce(context.Background()))
	suite.Equal(2, suite.currentSprint(models.ProjectGeneral))
}

func (suite *SchedulerTestSuite) TestSweepIsIdempotentPerDay() {
	suite.clk.AdvanceDays(7)

	suite.Require().NoError(suite.sweeper.RunOnce(context.Background()))
	suite.Require().NoError(suite.sweeper.RunOnce(context.Background()))
	suite.Equal(2, suite.currentSprint(models.ProjectGeneral))
}

// staleTeamsStore serves a fixed teams snapshot, standing in for a sweep
// that read the document just before someone advanced a sprint by hand.
type staleTeamsStore struct {
	store.Store
	snapshot *models.TeamsDocument
}

func (s *staleTeamsStore) ReadTeams(context.Context) (*models.TeamsDocument, error) {
	return s.snapshot, nil
}

func (suite *SchedulerTestSuite) TestSweepToleratesConcurrentAdvance() {
	suite.clk.AdvanceDays(7)

	snapshot, err := suite.mutator.ReadTeams(context.Background())
	suite.Require().NoError(err)

	// The leader advances between the sweep's read and its write.
	suite.Require().NoError(suite.projects.AdvanceSprint(
		context.Background(), suite.leader, "alpha", models.ProjectGeneral))

	stale := store.NewMutator(&staleTeamsStore{
		Store:    store.NewGormStore(suite.db, time.Second),
		snapshot: snapshot,
	})
	sweeper := New(stale, suite.projects, suite.clk, zap.NewNop())

	// The sweep sees sprint 1 as due but must not advance again.
	suite.Require().NoError(sweeper.RunOnce(context.Background()))
	suite.Equal(2, suite.currentSprint(models.ProjectGeneral))
}

func (suite *SchedulerTestSuite) TestSweepSkipsUnstartedTeams() {
	err := suite.mutator.UpdateTeams(context.Background(), func(doc *models.TeamsDocument) error {
		doc.Teams["beta"] = &models.Team{}
		return nil
	})
	suite.Require().NoError(err)

	suite.clk.AdvanceDays(7)
	suite.Require().NoError(suite.sweeper.RunOnce(context.Background()))
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

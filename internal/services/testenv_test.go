package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/store"
)

// baseSuite wires an in-memory document store, a fixed clock and a seeded
// roster for the service tests.
type baseSuite struct {
	suite.Suite
	db      *gorm.DB
	mutator *store.Mutator
	clk     *clock.Fixed

	leader  *models.User
	scrum   *models.User
	member  *models.User
	member2 *models.User
	admin   *models.User
	auditor *models.User
	outside *models.User
}

const testTeam = "alpha"

// SetupTest runs before each test
func (suite *baseSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(&store.Document{}))

	suite.mutator = store.NewMutator(store.NewGormStore(suite.db, time.Second))
	suite.clk = clock.NewFixed(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	suite.leader = suite.seedUser("u-lead", "lead", models.RoleLeader, testTeam)
	suite.scrum = suite.seedUser("u-scrum", "scrum", models.RoleScrumMaster, testTeam)
	suite.member = suite.seedUser("u-mem", "mem", models.RoleMember, testTeam)
	suite.member2 = suite.seedUser("u-mem2", "mem2", models.RoleMember, testTeam)
	suite.admin = suite.seedUser("u-boss", "boss", models.RoleAdmin, "")
	suite.auditor = suite.seedUser("u-aud", "aud", models.RoleAuditor, "")
	suite.outside = suite.seedUser("u-out", "out", models.RoleMember, "beta")
}

// TearDownTest runs after each test
func (suite *baseSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *baseSuite) ctx() context.Context {
	return context.Background()
}

func (suite *baseSuite) seedUser(id, nickname string, role models.Role, team string) *models.User {
	user := &models.User{
		ID:           id,
		Nickname:     nickname,
		Role:         role,
		Team:         team,
		TokenHash:    "test-hash",
		LastActivity: suite.clk.Now(),
	}
	err := suite.mutator.UpdateUsers(context.Background(), func(doc *models.UsersDocument) error {
		doc.Users[id] = user
		return nil
	})
	suite.Require().NoError(err)
	return user
}

// initTeam sets up a started team with two one-week projects.
func (suite *baseSuite) initTeam(projects *ProjectService) {
	err := projects.InitializeProject(suite.ctx(), suite.leader, InitializeInput{
		Team:          testTeam,
		ProjectCount:  2,
		GeneralWeeks:  1,
		DeliveryWeeks: 1,
	})
	suite.Require().NoError(err)
}

func (suite *baseSuite) readTeam() *models.Team {
	doc, err := suite.mutator.ReadTeams(suite.ctx())
	suite.Require().NoError(err)
	t := doc.Team(testTeam)
	suite.Require().NotNil(t)
	return t
}

func (suite *baseSuite) readUser(id string) *models.User {
	doc, err := suite.mutator.ReadUsers(suite.ctx())
	suite.Require().NoError(err)
	u := doc.Users[id]
	suite.Require().NotNil(u)
	return u
}

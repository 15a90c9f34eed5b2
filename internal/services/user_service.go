package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/LautaroGarc/dardito/internal/authz"
	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/constants"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/store"
)

// UserService handles user administration business logic: role and team
// changes plus the activity counters fed by the voice tracker.
type UserService struct {
	mutator *store.Mutator
	clock   clock.Clock
}

// NewUserService creates a new UserService
func NewUserService(mutator *store.Mutator, clk clock.Clock) *UserService {
	return &UserService{mutator: mutator, clock: clk}
}

// ChangeRole sets the user's role. Admin only.
func (s *UserService) ChangeRole(ctx context.Context, actor *models.User, userID string, role models.Role) error {
	if err := authz.Authorize(actor, authz.ActionChangeUserRole, authz.Target{}); err != nil {
		return err
	}
	if !role.IsValid() {
		return errors.InvalidState("unknown role %q", role)
	}
	return s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		u := doc.Users[userID]
		if u == nil {
			return errors.NotFound("user %s not found", userID)
		}
		u.Role = role
		return nil
	})
}

// ChangeTeam moves the user to another team. Their open task assignments on
// the old team are stripped: each task keeps its remaining assignees, or the
// @Unassigned sentinel, and gets a SYSTEM activity entry. Admin only.
func (s *UserService) ChangeTeam(ctx context.Context, actor *models.User, userID, team string) error {
	if err := authz.Authorize(actor, authz.ActionChangeUserTeam, authz.Target{}); err != nil {
		return err
	}
	now := s.clock.Now()

	var nickname, oldTeam string
	err := s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		u := doc.Users[userID]
		if u == nil {
			return errors.NotFound("user %s not found", userID)
		}
		nickname = u.Nickname
		oldTeam = u.Team
		u.Team = team
		u.Stats = models.UserStats{}
		u.LastActivity = now
		return nil
	})
	if err != nil {
		return err
	}
	if oldTeam == team || oldTeam == "" {
		return nil
	}

	return s.mutator.UpdateTeams(ctx, func(doc *models.TeamsDocument) error {
		t := doc.Team(oldTeam)
		if t == nil {
			return nil
		}
		for _, key := range models.ProjectKeys {
			p := t.Project(key)
			if p == nil {
				continue
			}
			for _, sprint := range p.Sprints {
				for _, task := range sprint.Tasks {
					if !task.AssignedTo(nickname) {
						continue
					}
					task.Assignees = slices.DeleteFunc(task.Assignees, func(a string) bool {
						return a == nickname
					})
					if len(task.Assignees) == 0 {
						task.Assignees = []string{models.Unassigned}
					}
					task.Activity = append(task.Activity, models.ActivityEntry{
						At:      now,
						Actor:   constants.SystemActor,
						Action:  "Assignee removed",
						Comment: fmt.Sprintf("%s left team %s", nickname, oldTeam),
					})
				}
			}
		}
		return nil
	})
}

// ListUsers returns the users visible to actor: cross-team roles see
// everyone, others only their own team.
func (s *UserService) ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	doc, err := s.mutator.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}

	var users []*models.User
	for _, u := range doc.Users {
		if actor.Role.CrossTeam() || u.Team == actor.Team {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b *models.User) int {
		return strings.Compare(a.Nickname, b.Nickname)
	})
	return users, nil
}

// AddCallSeconds credits voice presence time to the user. Called by the
// activity tracker, so it carries no actor.
func (s *UserService) AddCallSeconds(ctx context.Context, userID string, seconds int) error {
	if seconds <= 0 {
		return errors.InvalidState("seconds must be positive, got %d", seconds)
	}
	now := s.clock.Now()
	return s.mutator.UpdateUsers(ctx, func(doc *models.UsersDocument) error {
		u := doc.Users[userID]
		if u == nil {
			return errors.NotFound("user %s not found", userID)
		}
		u.Stats.SecondsInCall += seconds
		u.LastActivity = now
		return nil
	})
}

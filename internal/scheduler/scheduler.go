// Package scheduler runs the daily sprint sweep: any current sprint whose
// end date is today gets advanced, completed or not.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LautaroGarc/dardito/internal/clock"
	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
	"github.com/LautaroGarc/dardito/internal/services"
	"github.com/LautaroGarc/dardito/internal/store"
)

// Scheduler sweeps every team's projects once a day.
type Scheduler struct {
	mutator  *store.Mutator
	projects *services.ProjectService
	clock    clock.Clock
	logger   *zap.Logger

	// SweepHour is the local hour (0-23) at which the daily sweep fires.
	SweepHour int
}

func New(mutator *store.Mutator, projects *services.ProjectService, clk clock.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		mutator:  mutator,
		projects: projects,
		clock:    clk,
		logger:   logger,
	}
}

// RunOnce performs a single sweep. A sprint is due exactly when its end date
// equals today: advancing moves the next sprint's end date into the future,
// so running the sweep twice on the same day is a no-op.
//
// Failures on one team's project are logged and do not stop the sweep;
// a store outage aborts it, since every team would fail the same way.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	today := s.clock.Today()

	doc, err := s.mutator.ReadTeams(ctx)
	if err != nil {
		s.logger.Error("sprint sweep aborted: store unavailable", zap.Error(err))
		return err
	}

	for name, team := range doc.Teams {
		if !team.Started {
			continue
		}
		for _, key := range models.ProjectKeys {
			project := team.Project(key)
			if project == nil {
				continue
			}
			sprint := project.ActiveSprint()
			if sprint == nil || !sprint.EndDate.Equal(today) {
				continue
			}

			err := s.projects.ForceAdvanceSprint(ctx, name, key, sprint.EndDate)
			if err != nil {
				if errors.KindOf(err) == errors.KindStoreUnavailable {
					s.logger.Error("sprint sweep aborted: store unavailable",
						zap.String("team", name), zap.Error(err))
					return err
				}
				// A conflict means someone advanced the sprint between our
				// snapshot and the serialized write. Nothing left to do.
				if errors.KindOf(err) == errors.KindConflict {
					s.logger.Info("sprint already advanced",
						zap.String("team", name),
						zap.String("project", key))
					continue
				}
				s.logger.Warn("sprint advance failed",
					zap.String("team", name),
					zap.String("project", key),
					zap.Error(err))
				continue
			}
			s.logger.Info("sprint advanced",
				zap.String("team", name),
				zap.String("project", key),
				zap.Int("incompleteTasks", sprint.Incomplete()))
		}
	}
	return nil
}

// Run sweeps once per day at SweepHour until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		timer := time.NewTimer(s.untilNextSweep())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.RunOnce(ctx); err != nil && ctx.Err() != nil {
				return
			}
		}
	}
}

func (s *Scheduler) untilNextSweep() time.Duration {
	now := s.clock.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.SweepHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

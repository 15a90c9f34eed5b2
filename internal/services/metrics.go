package services

import (
	"math"
	"sort"

	"github.com/LautaroGarc/dardito/internal/models"
)

// This file holds the pure derivations of the metrics engine. Every function
// is a function of stored state only; the cached team statistics block is
// refreshed through these, never edited directly.

// completionPercent applies the done + 0.5·inProgress weighting.
func completionPercent(done, inProgress, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * (done + 0.5*inProgress) / total))
}

// refreshBurndown appends or updates today's actual-work sample: remaining
// work is the total hour estimate minus the estimates of completed tasks.
// The planned line is fixed at sprint-selection time and never touched here.
func refreshBurndown(sprint *models.Sprint, today models.CalendarDate) {
	day := sprint.StartDate.DaysUntil(today)
	if day < 0 {
		day = 0
	}
	remaining := float64(sprint.TotalEstimate() - sprint.CompletedEstimate())

	for i := range sprint.Burndown.Actual {
		if sprint.Burndown.Actual[i].Day == day {
			sprint.Burndown.Actual[i].Work = remaining
			return
		}
	}
	sprint.Burndown.Actual = append(sprint.Burndown.Actual, models.BurndownPoint{Day: day, Work: remaining})
	sort.Slice(sprint.Burndown.Actual, func(i, j int) bool {
		return sprint.Burndown.Actual[i].Day < sprint.Burndown.Actual[j].Day
	})
}

// plannedLine builds the ideal linear decay from totalPoints to zero over the
// sprint's day count.
func plannedLine(sprint *models.Sprint, totalPoints int) []models.BurndownPoint {
	days := sprint.StartDate.DaysUntil(sprint.EndDate)
	if days <= 0 {
		return []models.BurndownPoint{{Day: 0, Work: float64(totalPoints)}}
	}
	line := make([]models.BurndownPoint, 0, days+1)
	for i := 0; i <= days; i++ {
		work := float64(totalPoints) - float64(totalPoints)*float64(i)/float64(days)
		line = append(line, models.BurndownPoint{Day: i, Work: work})
	}
	return line
}

// refreshItemProgress re-derives the implicit IN_SPRINT ↔ IN_PROGRESS state
// of every item on the sprint's board from its tasks' aggregate progress.
// DONE is never set here: marking an item done stays an explicit action.
func refreshItemProgress(project *models.Project, sprint *models.Sprint) {
	for _, itemID := range sprint.ScrumBoard {
		item := project.BacklogItemByID(itemID)
		if item == nil {
			continue
		}
		if item.State != models.ItemInSprint && item.State != models.ItemInProgress {
			continue
		}
		progressed := false
		for _, task := range sprint.Tasks {
			if task.BacklogItemID == itemID && task.State != models.TaskTodo {
				progressed = true
				break
			}
		}
		if progressed {
			item.State = models.ItemInProgress
		} else {
			item.State = models.ItemInSprint
		}
	}
}

// sprintCompletedPoints sums the story points of board items marked DONE.
func sprintCompletedPoints(project *models.Project, sprint *models.Sprint) int {
	points := 0
	for _, itemID := range sprint.ScrumBoard {
		item := project.BacklogItemByID(itemID)
		if item != nil && item.State == models.ItemDone {
			points += item.StoryPoints
		}
	}
	return points
}

// velocityHistory returns completed story points per concluded sprint across
// all of the team's projects. A sprint concludes once its end date is today
// or earlier.
func velocityHistory(team *models.Team, today models.CalendarDate) []float64 {
	var history []float64
	for _, key := range models.ProjectKeys {
		project := team.Project(key)
		if project == nil {
			continue
		}
		for n := 1; n <= project.CurrentSprint; n++ {
			sprint := project.Sprint(n)
			if sprint == nil || sprint.EndDate.After(today) {
				continue
			}
			history = append(history, float64(sprintCompletedPoints(project, sprint)))
		}
	}
	return history
}

// refreshTeamStats recomputes the cached statistics block from the backlog
// and sprint state.
func refreshTeamStats(team *models.Team, today models.CalendarDate) {
	stats := models.TeamStats{VelocityHistory: velocityHistory(team, today)}

	for _, key := range models.ProjectKeys {
		project := team.Project(key)
		if project == nil {
			continue
		}
		for _, item := range project.Backlog {
			stats.TotalStoryPoints += item.StoryPoints
			if item.State == models.ItemDone {
				stats.CompletedStoryPoints += item.StoryPoints
			}
		}
	}

	if len(stats.VelocityHistory) > 0 {
		sum := 0.0
		for _, v := range stats.VelocityHistory {
			sum += v
		}
		stats.AverageVelocity = sum / float64(len(stats.VelocityHistory))
	}

	team.Stats = stats
}

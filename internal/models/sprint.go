package models

// BurndownPoint is one remaining-work sample, keyed by day offset from the
// sprint start.
type BurndownPoint struct {
	Day  int     `json:"day"`
	Work float64 `json:"work"`
}

// BurndownChart holds the ideal line fixed at sprint-selection time and the
// observed daily samples.
type BurndownChart struct {
	Planned []BurndownPoint `json:"plannedWork"`
	Actual  []BurndownPoint `json:"actualWork"`
}

type Sprint struct {
	StartDate  CalendarDate     `json:"startDate"`
	EndDate    CalendarDate     `json:"endDate"`
	ScrumBoard []string         `json:"scrumBoard"`
	Tasks      map[string]*Task `json:"tasks"`
	Burndown   BurndownChart    `json:"burndownChart"`
}

// NewSprint returns an empty sprint covering [start, start+weeks*7).
func NewSprint(start CalendarDate, weeks int) *Sprint {
	return &Sprint{
		StartDate:  start,
		EndDate:    start.AddWeeks(weeks),
		ScrumBoard: []string{},
		Tasks:      map[string]*Task{},
		Burndown:   BurndownChart{Planned: []BurndownPoint{}, Actual: []BurndownPoint{}},
	}
}

// OnBoard reports whether the backlog item ID is selected into this sprint.
func (s *Sprint) OnBoard(itemID string) bool {
	for _, id := range s.ScrumBoard {
		if id == itemID {
			return true
		}
	}
	return false
}

// TotalEstimate sums the hour estimates of every task in the sprint.
func (s *Sprint) TotalEstimate() int {
	total := 0
	for _, t := range s.Tasks {
		total += t.EstimateHours
	}
	return total
}

// CompletedEstimate sums the hour estimates of DONE and VERIFIED tasks.
func (s *Sprint) CompletedEstimate() int {
	total := 0
	for _, t := range s.Tasks {
		if t.State.Completed() {
			total += t.EstimateHours
		}
	}
	return total
}

// Incomplete returns how many tasks are neither DONE nor VERIFIED.
func (s *Sprint) Incomplete() int {
	n := 0
	for _, t := range s.Tasks {
		if !t.State.Completed() {
			n++
		}
	}
	return n
}

// Package clock abstracts "today" so the lifecycle manager and scheduler can
// be driven through simulated days in tests.
package clock

import (
	"time"

	"github.com/LautaroGarc/dardito/internal/models"
)

type Clock interface {
	Now() time.Time
	Today() models.CalendarDate
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) Today() models.CalendarDate { return models.DateOf(time.Now()) }

// Fixed is a settable clock for tests.
type Fixed struct {
	Current time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{Current: t} }

func (f *Fixed) Now() time.Time { return f.Current }

func (f *Fixed) Today() models.CalendarDate { return models.DateOf(f.Current) }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Current = f.Current.Add(d) }

// AdvanceDays moves the fixed clock forward by n calendar days.
func (f *Fixed) AdvanceDays(n int) { f.Current = f.Current.AddDate(0, 0, n) }

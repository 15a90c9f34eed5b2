package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarDateArithmetic(t *testing.T) {
	d := CalendarDate{Year: 2026, Month: time.March, Day: 2}

	assert.Equal(t, CalendarDate{Year: 2026, Month: time.March, Day: 9}, d.AddWeeks(1))
	assert.Equal(t, CalendarDate{Year: 2026, Month: time.April, Day: 1}, d.AddDays(30))
	assert.Equal(t, 7, d.DaysUntil(d.AddWeeks(1)))
	assert.Equal(t, -7, d.AddWeeks(1).DaysUntil(d))

	assert.True(t, d.AddDays(1).After(d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.Equal(d))
	assert.True(t, CalendarDate{}.IsZero())
	assert.False(t, d.IsZero())
}

func TestCalendarDateIgnoresTimeOfDay(t *testing.T) {
	morning := DateOf(time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC))
	night := DateOf(time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, morning, night)
}

func TestCalendarDateJSON(t *testing.T) {
	d := CalendarDate{Year: 2026, Month: time.March, Day: 2}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-02"`, string(data))

	var parsed CalendarDate
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)

	assert.Error(t, json.Unmarshal([]byte(`"02/03/2026"`), &parsed))
	assert.Error(t, json.Unmarshal([]byte(`42`), &parsed))
}

func TestParseCalendarDate(t *testing.T) {
	d, err := ParseCalendarDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", d.String())

	_, err = ParseCalendarDate("not a date")
	assert.Error(t, err)
}

package shift

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*3600)

func TestShift_Bounds(t *testing.T) {
	day := time.Date(2024, 3, 4, 13, 27, 0, 0, jakarta)

	t.Run("day shift", func(t *testing.T) {
		s := Shift{ID: "s1", StartTime: "09:00", EndTime: "18:00"}
		start, end, err := s.Bounds(day)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, jakarta), start)
		assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, jakarta), end)
		assert.False(t, s.Overnight())
	})

	t.Run("overnight shift ends next day", func(t *testing.T) {
		s := Shift{ID: "s2", StartTime: "22:00", EndTime: "06:00"}
		start, end, err := s.Bounds(day)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 4, 22, 0, 0, 0, jakarta), start)
		assert.Equal(t, time.Date(2024, 3, 5, 6, 0, 0, 0, jakarta), end)
		assert.True(t, s.Overnight())
	})

	t.Run("accepts seconds", func(t *testing.T) {
		s := Shift{ID: "s3", StartTime: "08:30:00", EndTime: "17:00:00"}
		start, _, err := s.Bounds(day)
		require.NoError(t, err)
		assert.Equal(t, 8, start.Hour())
		assert.Equal(t, 30, start.Minute())
	})

	t.Run("keeps wall clock on DST change", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		s := Shift{ID: "s5", StartTime: "09:00", EndTime: "18:00"}
		for _, date := range []time.Time{
			time.Date(2024, 3, 31, 12, 0, 0, 0, berlin),
			time.Date(2024, 10, 27, 12, 0, 0, 0, berlin),
		} {
			start, end, err := s.Bounds(date)
			require.NoError(t, err)
			assert.Equal(t, time.Date(date.Year(), date.Month(), date.Day(), 9, 0, 0, 0, berlin), start)
			assert.Equal(t, time.Date(date.Year(), date.Month(), date.Day(), 18, 0, 0, 0, berlin), end)
		}

		night := Shift{ID: "s6", StartTime: "22:00", EndTime: "06:00"}
		_, end, err := night.Bounds(time.Date(2024, 3, 30, 12, 0, 0, 0, berlin))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 31, 6, 0, 0, 0, berlin), end)
	})

	t.Run("rejects malformed time", func(t *testing.T) {
		s := Shift{ID: "s4", StartTime: "9am", EndTime: "18:00"}
		_, _, err := s.Bounds(day)
		assert.Error(t, err)
	})
}

func TestShift_WorksOn(t *testing.T) {
	s := Shift{WorkDays: []time.Weekday{time.Monday, time.Friday}}
	assert.True(t, s.WorksOn(time.Monday))
	assert.False(t, s.WorksOn(time.Sunday))
}

func TestAssignment_Covers(t *testing.T) {
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, jakarta)
	a := Assignment{
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, jakarta),
		EndDate:   &end,
		IsActive:  true,
	}

	assert.True(t, a.Covers(time.Date(2024, 3, 1, 8, 0, 0, 0, jakarta)))
	assert.True(t, a.Covers(time.Date(2024, 3, 31, 23, 0, 0, 0, jakarta)))
	assert.False(t, a.Covers(time.Date(2024, 2, 29, 23, 0, 0, 0, jakarta)))
	assert.False(t, a.Covers(time.Date(2024, 4, 1, 0, 0, 0, 0, jakarta)))

	a.EndDate = nil
	assert.True(t, a.Covers(time.Date(2030, 1, 1, 0, 0, 0, 0, jakarta)))

	a.IsActive = false
	assert.False(t, a.Covers(time.Date(2024, 3, 10, 0, 0, 0, 0, jakarta)))
}

func TestWorkingDays(t *testing.T) {
	monSat := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}

	// 2024-03-09 is a Saturday, 2024-03-10 a Sunday.
	days := WorkingDays(
		time.Date(2024, 3, 9, 0, 0, 0, 0, jakarta),
		time.Date(2024, 3, 11, 0, 0, 0, 0, jakarta),
		monSat,
	)
	require.Len(t, days, 2)
	assert.Equal(t, 9, days[0].Day())
	assert.Equal(t, 11, days[1].Day())

	assert.Empty(t, WorkingDays(
		time.Date(2024, 3, 10, 0, 0, 0, 0, jakarta),
		time.Date(2024, 3, 10, 0, 0, 0, 0, jakarta),
		monSat,
	))

	assert.Empty(t, WorkingDays(
		time.Date(2024, 3, 12, 0, 0, 0, 0, jakarta),
		time.Date(2024, 3, 11, 0, 0, 0, 0, jakarta),
		monSat,
	))
}

func TestCountWorkingDaysInMonth(t *testing.T) {
	monFri := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	// March 2024 has 21 weekdays.
	assert.Equal(t, 21, CountWorkingDaysInMonth(time.Date(2024, 3, 15, 0, 0, 0, 0, jakarta), monFri))
	// February 2024 (leap) has 29 days, 4 Sundays.
	assert.Equal(t, 25, CountWorkingDaysInMonth(time.Date(2024, 2, 1, 0, 0, 0, 0, jakarta),
		append(monFri, time.Saturday)))
	assert.Equal(t, 0, CountWorkingDaysInMonth(time.Date(2024, 2, 1, 0, 0, 0, 0, jakarta), nil))
}

package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*3600)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, wib)
}

func officeWindow(t *testing.T, grace int) Window {
	t.Helper()
	w, err := NewWindow(shift.Shift{
		ID:                  "office",
		StartTime:           "09:00",
		EndTime:             "18:00",
		GracePeriodMinutes:  grace,
		LateAfterMinutes:    30,
		HalfDayAfterMinutes: 240,
	}, at(0, 0))
	require.NoError(t, err)
	return w
}

func TestCheckInTransition(t *testing.T) {
	rules := RulesFromPolicy(policy.Default())

	tests := []struct {
		name         string
		grace        int
		now          time.Time
		wantErr      error
		wantOfficial time.Time
		wantStatus   Status
		wantLate     int
	}{
		{name: "before early buffer", now: at(8, 44), wantErr: ErrShiftNotStarted},
		{name: "at early buffer", now: at(8, 45), wantOfficial: at(9, 0), wantStatus: StatusPresent},
		{name: "early arrival snaps to start", now: at(8, 50), wantOfficial: at(9, 0), wantStatus: StatusPresent},
		{name: "drift within tolerance snaps", now: at(9, 5), wantOfficial: at(9, 0), wantStatus: StatusPresent},
		{name: "past tolerance is late", grace: 5, now: at(9, 10), wantOfficial: at(9, 10), wantStatus: StatusLate, wantLate: 10},
		{name: "within grace is present", grace: 15, now: at(9, 10), wantOfficial: at(9, 10), wantStatus: StatusPresent},
		{name: "past late threshold", grace: 60, now: at(9, 45), wantOfficial: at(9, 45), wantStatus: StatusLate, wantLate: 45},
		{name: "past half day threshold", grace: 5, now: at(13, 1), wantOfficial: at(13, 1), wantStatus: StatusHalfDay, wantLate: 241},
		{name: "at shift end", grace: 5, now: at(18, 0), wantOfficial: at(18, 0), wantStatus: StatusHalfDay, wantLate: 540},
		{name: "after shift end", now: at(18, 1), wantErr: ErrShiftOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CheckInTransition(officeWindow(t, tt.grace), rules, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOfficial, out.OfficialAt)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantLate, out.LateMinutes)
		})
	}
}

func TestTransitions_ZeroThresholdsAreDisabled(t *testing.T) {
	rules := RulesFromPolicy(policy.Default())
	w, err := NewWindow(shift.Shift{
		ID:                 "flexi",
		StartTime:          "09:00",
		EndTime:            "18:00",
		GracePeriodMinutes: 10,
	}, at(0, 0))
	require.NoError(t, err)

	tests := []struct {
		name       string
		now        time.Time
		wantStatus Status
		wantLate   int
	}{
		{name: "within grace with no late threshold", now: at(9, 8), wantStatus: StatusPresent},
		{name: "past grace is late", now: at(9, 11), wantStatus: StatusLate, wantLate: 11},
		{name: "no half day threshold", now: at(13, 30), wantStatus: StatusLate, wantLate: 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CheckInTransition(w, rules, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantLate, out.LateMinutes)
		})
	}

	out, err := CheckOutTransition(StatusPresent, at(9, 0), w, at(14, 0))
	require.NoError(t, err)
	assert.Equal(t, StatusEarlyExit, out.Status)
	assert.Equal(t, 240, out.EarlyExitMinutes)
}

func TestCheckInTransition_SecondsAreTruncated(t *testing.T) {
	rules := RulesFromPolicy(policy.Default())
	now := at(9, 5).Add(59 * time.Second)

	out, err := CheckInTransition(officeWindow(t, 0), rules, now)
	require.NoError(t, err)
	assert.Equal(t, at(9, 0), out.OfficialAt)
}

func TestCheckOutTransition(t *testing.T) {
	tests := []struct {
		name      string
		prior     Status
		now       time.Time
		want      Status
		wantOT    int
		wantEarly int
		wantTotal int
	}{
		{name: "overtime", prior: StatusPresent, now: at(18, 45), want: StatusPresent, wantOT: 45, wantTotal: 585},
		{name: "on time", prior: StatusLate, now: at(18, 0), want: StatusLate, wantTotal: 540},
		{name: "early exit", prior: StatusPresent, now: at(17, 30), want: StatusEarlyExit, wantEarly: 30, wantTotal: 510},
		{name: "early exit from late", prior: StatusLate, now: at(17, 30), want: StatusEarlyExit, wantEarly: 30, wantTotal: 510},
		{name: "half day keeps half day", prior: StatusHalfDay, now: at(17, 30), want: StatusHalfDay, wantEarly: 30, wantTotal: 510},
		{name: "long early exit is half day", prior: StatusPresent, now: at(14, 0), want: StatusHalfDay, wantEarly: 240, wantTotal: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CheckOutTransition(tt.prior, at(9, 0), officeWindow(t, 5), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Status)
			assert.Equal(t, tt.wantOT, out.OTMinutes)
			assert.Equal(t, tt.wantEarly, out.EarlyExitMinutes)
			assert.Equal(t, tt.wantTotal, out.TotalMinutes)
		})
	}
}

func TestCheckOutTransition_BeforeCheckIn(t *testing.T) {
	_, err := CheckOutTransition(StatusPresent, at(9, 0), officeWindow(t, 5), at(8, 55))
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)
}

func TestCheckOutTransition_OvernightShift(t *testing.T) {
	w, err := NewWindow(shift.Shift{
		ID:                  "night",
		StartTime:           "22:00",
		EndTime:             "06:00",
		HalfDayAfterMinutes: 240,
	}, at(0, 0))
	require.NoError(t, err)

	checkIn := at(22, 0)
	next := time.Date(2024, 3, 5, 6, 20, 0, 0, wib)

	out, err := CheckOutTransition(StatusPresent, checkIn, w, next)
	require.NoError(t, err)
	assert.Equal(t, 20, out.OTMinutes)
	assert.Equal(t, 500, out.TotalMinutes)
	assert.Equal(t, StatusPresent, out.Status)
}

func TestOverrideTransition(t *testing.T) {
	got, err := OverrideTransition(StatusAbsent, StatusHoliday)
	require.NoError(t, err)
	assert.Equal(t, StatusHoliday, got)

	_, err = OverrideTransition(StatusAbsent, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = OverrideTransition(StatusAbsent, Status("vacation"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGraceTransition(t *testing.T) {
	got, err := GraceTransition(StatusAbsent)
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, got)

	_, err = GraceTransition(StatusLate)
	assert.ErrorIs(t, err, ErrNotAbsent)
}

func TestMonthlyStats_Accumulate(t *testing.T) {
	var stats MonthlyStats
	for _, d := range []Day{
		{Status: StatusPresent, TotalMinutes: 480},
		{Status: StatusLate, OTMinutes: 30, TotalMinutes: 500},
		{Status: StatusEarlyExit, TotalMinutes: 400},
		{Status: StatusHalfDay, TotalMinutes: 240},
		{Status: StatusAbsent},
		{Status: StatusOnLeave},
	} {
		stats.Accumulate(d)
	}

	assert.Equal(t, 4, stats.PresentDays)
	assert.Equal(t, 1, stats.LateDays)
	assert.Equal(t, 1, stats.HalfDays)
	assert.Equal(t, 1, stats.EarlyExitDays)
	assert.Equal(t, 1, stats.AbsentDays)
	assert.Equal(t, 30, stats.TotalOTMinutes)
	assert.Equal(t, 1620, stats.TotalWorkMinutes)
}

func TestDay_AppendNote(t *testing.T) {
	var d Day
	d.AppendNote("")
	assert.Nil(t, d.Notes)

	d.AppendNote("forgot badge")
	d.AppendNote("approved by lead")
	require.NotNil(t, d.Notes)
	assert.Equal(t, "forgot badge\napproved by lead", *d.Notes)
}

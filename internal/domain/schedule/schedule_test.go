package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredDosesPerDay(t *testing.T) {
	cases := map[Frequency]int{
		FrequencyOnceDaily:       1,
		FrequencyTwiceDaily:      2,
		FrequencyThreeTimesDaily: 3,
		FrequencyFourTimesDaily:  4,
		FrequencyEveryOtherDay:   1,
		FrequencyWeekly:          1,
		FrequencyAsNeeded:        1,
		"":                       1,
		"hourly":                 1,
		"TWICE_DAILY":            1,
	}
	for f, want := range cases {
		assert.Equal(t, want, RequiredDosesPerDay(f), "frequency %q", f)
	}
}

func TestNextDoseTime_TwiceDaily(t *testing.T) {
	next, ok, err := NextDoseTime("08:00", FrequencyTwiceDaily, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "08:00", next)

	next, ok, err = NextDoseTime("08:00", FrequencyTwiceDaily, []string{"08:00"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "20:00", next)

	_, ok, err = NextDoseTime("08:00", FrequencyTwiceDaily, []string{"08:00", "20:00"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextDoseTime_Offsets(t *testing.T) {
	tests := []struct {
		name      string
		scheduled string
		freq      Frequency
		taken     []string
		want      string
		wantOK    bool
	}{
		{"three first", "07:30", FrequencyThreeTimesDaily, nil, "07:30", true},
		{"three second", "07:30", FrequencyThreeTimesDaily, []string{"07:31"}, "15:30", true},
		{"three third", "07:30", FrequencyThreeTimesDaily, []string{"a", "b"}, "23:30", true},
		{"three wraps", "20:15", FrequencyThreeTimesDaily, []string{"x", "y"}, "12:15", true},
		{"twice wraps", "20:00", FrequencyTwiceDaily, []string{"20:00"}, "08:00", true},
		{"four last wraps", "06:00", FrequencyFourTimesDaily, []string{"06:00", "12:00", "18:00"}, "00:00", true},
		{"four second", "09:45", FrequencyFourTimesDaily, []string{"09:45"}, "15:45", true},
		{"once first", "21:00", FrequencyOnceDaily, nil, "21:00", true},
		{"once done", "21:00", FrequencyOnceDaily, []string{"21:05"}, "", false},
		{"weekly first", "10:00", FrequencyWeekly, []string{}, "10:00", true},
		{"as needed done", "10:00", FrequencyAsNeeded, []string{"11:00"}, "", false},
		{"unknown first", "10:00", Frequency("hourly"), nil, "10:00", true},
		{"unknown done", "10:00", Frequency("hourly"), []string{"10:00"}, "", false},
		{"seconds accepted", "08:00:00", FrequencyTwiceDaily, []string{"08:02:11"}, "20:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := NextDoseTime(tt.scheduled, tt.freq, tt.taken)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextDoseTime_CompleteForEveryFrequency(t *testing.T) {
	all := append(Frequencies(), Frequency(""), Frequency("monthly"))
	for _, f := range all {
		taken := make([]string, RequiredDosesPerDay(f))
		for i := range taken {
			taken[i] = "08:00"
		}
		_, ok, err := NextDoseTime("08:00", f, taken)
		require.NoError(t, err)
		assert.False(t, ok, "frequency %q should be complete", f)

		// sobre-registro: sigue completo
		_, ok, err = NextDoseTime("08:00", f, append(taken, "23:00"))
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestNextDoseTime_MalformedScheduledTime(t *testing.T) {
	for _, bad := range []string{"", "8", "25:00", "08:61", "eight", "08-00"} {
		_, _, err := NextDoseTime(bad, FrequencyTwiceDaily, nil)
		require.Error(t, err, "scheduled %q", bad)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.True(t, errors.Is(err, ErrParse))

		var ie *InvalidInputError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, "scheduled_time", ie.Field)
	}
}

func TestParseFrequency_Strict(t *testing.T) {
	f, err := ParseFrequency(" four_times_daily ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyFourTimesDaily, f)

	_, err = ParseFrequency("hourly")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrParse))
}

func TestIsComplete(t *testing.T) {
	assert.False(t, IsComplete(FrequencyThreeTimesDaily, 2))
	assert.True(t, IsComplete(FrequencyThreeTimesDaily, 3))
	assert.True(t, IsComplete(Frequency("nope"), 1))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Every other day", Label(FrequencyEveryOtherDay))
	assert.Equal(t, "custom", Label(Frequency("custom")))
}

func TestClock(t *testing.T) {
	c, err := ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, "05:59", c.Add(6).String())
	assert.Equal(t, "23:59", c.Add(-24).String())
	assert.Equal(t, "22:59", c.Add(-1).String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", FormatDate(d.AddDate(0, 0, 1)))

	_, err = ParseDate("2025/02/28")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "YYYY-MM-DD", pe.Layout)
}

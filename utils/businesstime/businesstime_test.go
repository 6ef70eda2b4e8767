package businesstime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolverInvalidZone(t *testing.T) {
	_, err := NewResolver("Not/AZone", 7, 16)
	assert.Error(t, err)
}

func TestNewResolverInvalidHours(t *testing.T) {
	_, err := NewResolver("UTC", 16, 7)
	assert.Error(t, err)
}

func TestIsWithinWorkingHours(t *testing.T) {
	r, err := NewResolver("Etc/GMT-2", 7, 16)
	require.NoError(t, err)

	tests := []struct {
		name   string
		local  time.Time
		within bool
	}{
		{"before open", r.ToInstant(2025, time.June, 2, 6, 59), false},
		{"at open", r.ToInstant(2025, time.June, 2, 7, 0), true},
		{"midday", r.ToInstant(2025, time.June, 2, 12, 30), true},
		{"at close", r.ToInstant(2025, time.June, 2, 16, 0), true},
		{"after close", r.ToInstant(2025, time.June, 2, 16, 1), false},
		{"late evening", r.ToInstant(2025, time.June, 2, 22, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.within, r.IsWithinWorkingHours(tt.local))
		})
	}
}

func TestIsWithinWorkingHoursUsesBusinessZone(t *testing.T) {
	r, err := NewResolver("Etc/GMT-2", 7, 16)
	require.NoError(t, err)

	// 05:30 UTC is 07:30 business-local, regardless of the instant's own zone.
	utcMorning := time.Date(2025, time.June, 2, 5, 30, 0, 0, time.UTC)
	assert.True(t, r.IsWithinWorkingHours(utcMorning))

	// 15:00 UTC is 17:00 business-local.
	utcAfternoon := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	assert.False(t, r.IsWithinWorkingHours(utcAfternoon))
}

func TestDSTZoneConversion(t *testing.T) {
	r, err := NewResolver("Europe/Berlin", 7, 16)
	require.NoError(t, err)

	// Berlin is UTC+1 in winter and UTC+2 in summer; the same UTC wall time
	// lands on different local hours.
	winter := time.Date(2025, time.January, 15, 6, 30, 0, 0, time.UTC)
	summer := time.Date(2025, time.July, 15, 6, 30, 0, 0, time.UTC)

	assert.Equal(t, 7, r.ToBusinessLocal(winter).Hour())
	assert.Equal(t, 8, r.ToBusinessLocal(summer).Hour())
	assert.True(t, r.IsWithinWorkingHours(winter))
	assert.True(t, r.IsWithinWorkingHours(summer))
}

func TestDayWindow(t *testing.T) {
	r, err := NewResolver("Etc/GMT-2", 7, 16)
	require.NoError(t, err)

	start, end, err := r.DayWindow("2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = r.DayWindow("02-06-2025")
	assert.Error(t, err)
}

func TestToInstantRoundTrip(t *testing.T) {
	r, err := NewResolver("Etc/GMT-2", 7, 16)
	require.NoError(t, err)

	instant := r.ToInstant(2025, time.June, 2, 10, 0)
	local := r.ToBusinessLocal(instant.UTC())
	assert.Equal(t, 10, local.Hour())
	assert.Equal(t, 0, local.Minute())
}

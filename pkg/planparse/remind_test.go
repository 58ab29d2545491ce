package planparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, seoul(t))
	require.NoError(t, err)
	return ts
}

func TestParseClockAt(t *testing.T) {
	base := at(t, "2025-05-01 00:00")

	cases := []struct {
		clock  string
		ok     bool
		expect string
	}{
		{"09:30", true, "2025-05-01 09:30"},
		{"9:05", true, "2025-05-01 09:05"},
		{"00:00", true, "2025-05-01 00:00"},
		{"23:59", true, "2025-05-01 23:59"},
		{"24:00", false, ""},
		{"12:60", false, ""},
		{"오전 9시", false, ""},
		{"", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.clock, func(t *testing.T) {
			got, ok := ParseClockAt(tc.clock, base)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, at(t, tc.expect), got)
			}
		})
	}
}

func TestActivityRemindAt(t *testing.T) {
	loc := seoul(t)
	now := at(t, "2025-05-01 13:30")
	lead := time.Hour

	cases := []struct {
		name   string
		date   string
		clock  string
		ok     bool
		expect string
	}{
		{"tomorrow activity", "2025-05-02", "14:00", true, "2025-05-02 13:00"},
		{"later today", "2025-05-01", "15:00", true, "2025-05-01 14:00"},
		// 14:00 的活动提前 1 小时是 13:00，此刻 13:30 已经过了，不补发
		{"offset already past", "2025-05-01", "14:00", false, ""},
		{"activity already past", "2025-05-01", "10:00", false, ""},
		{"bad clock", "2025-05-02", "25:99", false, ""},
		{"bad date", "언젠가", "14:00", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ActivityRemindAt(tc.date, tc.clock, lead, now, loc)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, at(t, tc.expect), got)
			}
		})
	}
}

func TestTripStartRemindAt(t *testing.T) {
	loc := seoul(t)

	t.Run("upcoming trip reminds at nine", func(t *testing.T) {
		got, ok := TripStartRemindAt("2025-05-03", 9, at(t, "2025-05-01 13:30"), loc)
		require.True(t, ok)
		assert.Equal(t, at(t, "2025-05-03 09:00"), got)
	})

	t.Run("start day before nine", func(t *testing.T) {
		got, ok := TripStartRemindAt("2025-05-01", 9, at(t, "2025-05-01 07:10"), loc)
		require.True(t, ok)
		assert.Equal(t, at(t, "2025-05-01 09:00"), got)
	})

	t.Run("start day after nine catches up", func(t *testing.T) {
		now := at(t, "2025-05-01 11:00")
		got, ok := TripStartRemindAt("2025-05-01", 9, now, loc)
		require.True(t, ok)
		assert.Equal(t, now, got)
	})

	t.Run("trip already started", func(t *testing.T) {
		_, ok := TripStartRemindAt("2025-04-30", 9, at(t, "2025-05-01 11:00"), loc)
		assert.False(t, ok)
	})

	t.Run("unparseable date", func(t *testing.T) {
		_, ok := TripStartRemindAt("내일", 9, at(t, "2025-05-01 11:00"), loc)
		assert.False(t, ok)
	})
}

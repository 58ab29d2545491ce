package planparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, date string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		t.Fatal(err)
	}
	// 带上当天的钟点，验证比较只看自然日
	return d.Add(14*time.Hour + 30*time.Minute)
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name   string
		start  string
		end    string
		today  string
		expect Status
	}{
		{"before start", "2024-01-10", "2024-01-15", "2024-01-03", StatusUpcoming},
		{"on start day", "2024-01-10", "2024-01-15", "2024-01-10", StatusOngoing},
		{"mid trip", "2024-01-01", "2024-01-05", "2024-01-03", StatusOngoing},
		{"on end day", "2024-01-01", "2024-01-05", "2024-01-05", StatusOngoing},
		{"after end", "2024-01-01", "2024-01-05", "2024-01-06", StatusCompleted},
		{"single day trip", "2024-01-03", "2024-01-03", "2024-01-03", StatusOngoing},
		{"missing start", "", "2024-01-05", "2024-01-03", StatusUnknown},
		{"missing end", "2024-01-01", "", "2024-01-03", StatusUnknown},
		{"garbage dates", "언제?", "나중에", "2024-01-03", StatusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, DeriveStatus(tc.start, tc.end, day(t, tc.today)))
		})
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "여행 예정", StatusUpcoming.Label())
	assert.Equal(t, "여행 중", StatusOngoing.Label())
	assert.Equal(t, "여행 완료", StatusCompleted.Label())
	assert.Equal(t, "", StatusUnknown.Label())
}

func TestTripDates(t *testing.T) {
	now := day(t, "2025-05-01")

	days := []Day{
		{Title: "5/31 여수 여행", Schedules: []Activity{{Name: "출발"}}},
		{Date: "2025-06-01", Schedules: []Activity{{Name: "관광"}}},
		{Title: "6/2 마지막 날", Schedules: []Activity{{Name: "귀가"}}},
	}

	start, end := TripDates(days, now)
	assert.Equal(t, "2025-05-31", start)
	assert.Equal(t, "2025-06-02", end)

	start, end = TripDates([]Day{{Title: "날짜 없음"}}, now)
	assert.Equal(t, "", start)
	assert.Equal(t, "", end)
}

func TestExtractDateFromTitle(t *testing.T) {
	assert.Equal(t, "2025-05-31", ExtractDateFromTitle("5/31 여수 여행", 2025))
	assert.Equal(t, "2024-12-01", ExtractDateFromTitle("12/1: 도쿄", 2024))
	assert.Equal(t, "", ExtractDateFromTitle("여수 여행", 2025))
	assert.Equal(t, "", ExtractDateFromTitle("13/40 이상한 날짜", 2025))
	assert.Equal(t, "", ExtractDateFromTitle("", 2025))
}

func TestStripDateFromTitle(t *testing.T) {
	assert.Equal(t, "여수 여행", StripDateFromTitle("5/31 여수 여행"))
	assert.Equal(t, "여수 여행", StripDateFromTitle("5/31: 여수 여행"))
	assert.Equal(t, "여수 여행", StripDateFromTitle("5/31 · 여수 여행"))
	assert.Equal(t, "서울 투어", StripDateFromTitle("1일차 - 서울 투어"))
	assert.Equal(t, "그대로", StripDateFromTitle("그대로"))
}

func TestBaseYear(t *testing.T) {
	now := day(t, "2026-08-30")

	assert.Equal(t, 2025, BaseYear([]Day{
		{Title: "날짜 없음"},
		{Date: "2025-07-01"},
		{Date: "2024-07-02"},
	}, now))

	assert.Equal(t, 2026, BaseYear([]Day{{Title: "아무것도"}}, now))
	assert.Equal(t, 2026, BaseYear(nil, now))
}

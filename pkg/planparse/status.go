package planparse

import (
	"strings"
	"time"
)

// Status 行程相对于当前日期的阶段。
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

var statusLabels = map[Status]string{
	StatusUpcoming:  "여행 예정",
	StatusOngoing:   "여행 중",
	StatusCompleted: "여행 완료",
}

// Label 面向用户的韩文状态文案，unknown 返回空串。
func (s Status) Label() string {
	return statusLabels[s]
}

// DeriveStatus 按自然日比较行程首末日期与今天。
// 任一日期缺失或无法解析时返回 unknown，由展示方留白。
func DeriveStatus(startDate, endDate string, today time.Time) Status {
	start, ok := parseISODate(startDate, today.Location())
	if !ok {
		return StatusUnknown
	}
	end, ok := parseISODate(endDate, today.Location())
	if !ok {
		return StatusUnknown
	}

	day := truncateToDay(today)
	switch {
	case end.Before(day):
		return StatusCompleted
	case start.After(day):
		return StatusUpcoming
	default:
		return StatusOngoing
	}
}

// TripDates 返回行程的首尾有效日期，没有任何可定日期的天时返回空串。
func TripDates(days []Day, now time.Time) (startDate, endDate string) {
	baseYear := BaseYear(days, now)
	for _, d := range days {
		date := ResolveDayDate(d, baseYear)
		if date == "" {
			continue
		}
		if startDate == "" || date < startDate {
			startDate = date
		}
		if endDate == "" || date > endDate {
			endDate = date
		}
	}
	return startDate, endDate
}

func parseISODate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package planparse

import (
	"regexp"
	"strconv"
	"time"
)

// 提醒时刻的纯时间运算。调度器只负责查库和落任务，
// 什么时候提醒、要不要补发全部在这里决定。

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ParseClockAt 解析 HH:MM 并应用到指定日期。
func ParseClockAt(clock string, day time.Time) (time.Time, bool) {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), true
}

// TripStartRemindAt 出发提醒时刻：出发当天 startHour 点。
// 时刻已过但行程还没开始就立即补发（返回 now），行程已经开始返回 false。
func TripStartRemindAt(startDate string, startHour int, now time.Time, loc *time.Location) (time.Time, bool) {
	start, ok := parseISODate(startDate, loc)
	if !ok {
		return time.Time{}, false
	}
	if start.Before(truncateToDay(now.In(loc))) {
		return time.Time{}, false
	}
	at := start.Add(time.Duration(startHour) * time.Hour)
	if at.Before(now) {
		at = now
	}
	return at, true
}

// ActivityRemindAt 活动提醒时刻：活动开始前 lead。
// 提醒时刻已过的槽位不补，返回 false。
func ActivityRemindAt(date, clock string, lead time.Duration, now time.Time, loc *time.Location) (time.Time, bool) {
	day, ok := parseISODate(date, loc)
	if !ok {
		return time.Time{}, false
	}
	at, ok := ParseClockAt(clock, day)
	if !ok {
		return time.Time{}, false
	}
	remindAt := at.Add(-lead)
	if remindAt.Before(now) {
		return time.Time{}, false
	}
	return remindAt, true
}

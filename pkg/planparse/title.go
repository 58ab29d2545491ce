package planparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	titleDate   = regexp.MustCompile(`^([0-9]{1,2})/([0-9]{1,2})`)
	titlePrefix = regexp.MustCompile(`^([0-9]{1,2}/[0-9]{1,2})[\s:·-]*|^[0-9]{1,2}일차[\s:·-]*`)
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ExtractDateFromTitle 从 "5/31 여수 여행" 这类日期前缀标题推出 ISO 日期。
// 没有前缀时返回空串。
func ExtractDateFromTitle(title string, baseYear int) string {
	m := titleDate.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", baseYear, month, day)
}

// StripDateFromTitle 去掉 "5/31"、"1일차" 这类前缀和后续分隔符，返回净标题。
func StripDateFromTitle(title string) string {
	return strings.TrimSpace(titlePrefix.ReplaceAllString(strings.TrimSpace(title), ""))
}

// BaseYear 取第一个带完整 ISO 日期的天的年份；一个都没有时用当前年份。
func BaseYear(days []Day, now time.Time) int {
	for _, d := range days {
		date := strings.TrimSpace(d.Date)
		if isoDate.MatchString(date) {
			if y, err := strconv.Atoi(date[:4]); err == nil {
				return y
			}
		}
	}
	return now.Year()
}

// ResolveDayDate 返回某天的有效日期：自带 ISO 日期优先，否则尝试从标题推导。
func ResolveDayDate(d Day, baseYear int) string {
	date := strings.TrimSpace(d.Date)
	if isoDate.MatchString(date) {
		return date
	}
	return ExtractDateFromTitle(d.Title, baseYear)
}

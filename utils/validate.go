package utils

import (
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidateDate 校验 YYYY-MM-DD 且为真实日期（闰年 2 月 29 日合法）
func ValidateDate(date string) bool {
	if !datePattern.MatchString(date) {
		return false
	}
	// time.Parse 会拒绝 2024-02-30、2023-04-31 这类越界日期
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// ValidateTime 校验 24 小时制 HH:MM，小时允许省略前导零
func ValidateTime(clock string) bool {
	return timePattern.MatchString(clock)
}

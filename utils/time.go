package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

var weekdayNames = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// ParseClock 将 HH:MM 解析为当天零点起的分钟数
func ParseClock(clock string) (int, error) {
	if !ValidateTime(clock) {
		return 0, fmt.Errorf("invalid clock time %q", clock)
	}

	hh, mm, _ := strings.Cut(clock, ":")
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// DurationMinutes 计算上下班间隔分钟数。end <= start 视为跨过午夜，加 24 小时，
// 因此 start == end 得到 1440 分钟。任一时间无法解析时 ok 为 false。
func DurationMinutes(start, end string) (minutes int, ok bool) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, false
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, false
	}

	diff := e - s
	if diff <= 0 {
		diff += MinutesPerDay
	}
	return diff, true
}

// CalculateDuration 返回 HH:MM 格式的工作时长，解析失败返回 "00:00"
func CalculateDuration(start, end string) string {
	minutes, ok := DurationMinutes(start, end)
	if !ok {
		return "00:00"
	}
	return FormatClockDuration(minutes)
}

// CalculateWorkHours 返回小时数（保留两位小数），日期或时间无效时返回 0
func CalculateWorkHours(start, end, date string) float64 {
	if !ValidateDate(date) {
		return 0
	}
	minutes, ok := DurationMinutes(start, end)
	if !ok {
		return 0
	}
	return MinutesToHours(minutes)
}

// MinutesToHours 分钟转小时，保留两位小数
func MinutesToHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

// FormatClockDuration 分钟数格式化为 HH:MM（小时可超过 23）
func FormatClockDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDurationText 分钟数格式化为 "X小时Y分钟"
func FormatDurationText(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d小时%d分钟", minutes/60, minutes%60)
}

// ParseDate 解析 YYYY-MM-DD（UTC 零点，仅用于日期运算）
func ParseDate(date string) (time.Time, error) {
	if !ValidateDate(date) {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return time.Parse(DateLayout, date)
}

// FormatDate 取本地日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatClock 取本地时间 HH:MM
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// AddDays 日期加减天数
func AddDays(date string, days int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, days).Format(DateLayout), nil
}

// WeekdayName 返回中文星期名，日期无效时返回空串
func WeekdayName(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return weekdayNames[d.Weekday()]
}

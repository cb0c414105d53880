package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDuration_SameDay(t *testing.T) {
	for on := 0; on < MinutesPerDay; on += 37 {
		for off := on + 1; off < MinutesPerDay; off += 53 {
			start := fmt.Sprintf("%02d:%02d", on/60, on%60)
			end := fmt.Sprintf("%02d:%02d", off/60, off%60)
			want := FormatClockDuration(off - on)
			assert.Equal(t, want, CalculateDuration(start, end), "%s-%s", start, end)
		}
	}
}

func TestCalculateDuration_Rollover(t *testing.T) {
	for on := 1; on < MinutesPerDay; on += 41 {
		for off := 0; off < on; off += 59 {
			start := fmt.Sprintf("%02d:%02d", on/60, on%60)
			end := fmt.Sprintf("%02d:%02d", off/60, off%60)
			want := FormatClockDuration(off - on + MinutesPerDay)
			assert.Equal(t, want, CalculateDuration(start, end), "%s-%s", start, end)
		}
	}

	assert.Equal(t, "08:00", CalculateDuration("22:00", "06:00"))
}

func TestCalculateDuration_EqualEndpointsIsFullDay(t *testing.T) {
	assert.Equal(t, "24:00", CalculateDuration("09:00", "09:00"))
	assert.InDelta(t, 24.0, CalculateWorkHours("09:00", "09:00", "2024-01-15"), 1e-9)
}

func TestCalculateDuration_ParseFailure(t *testing.T) {
	for _, pair := range [][2]string{{"", "18:00"}, {"ab:cd", "18:00"}, {"09:00", "9"}, {"25:00", "18:00"}} {
		assert.Equal(t, "00:00", CalculateDuration(pair[0], pair[1]))
	}
}

func TestCalculateWorkHours(t *testing.T) {
	assert.InDelta(t, 9.0, CalculateWorkHours("09:00", "18:00", "2024-01-15"), 1e-9)
	assert.InDelta(t, 8.5, CalculateWorkHours("09:30", "18:00", "2024-01-15"), 1e-9)
	assert.InDelta(t, 0.33, CalculateWorkHours("09:00", "09:20", "2024-01-15"), 1e-9)
	assert.Zero(t, CalculateWorkHours("09:00", "18:00", "2024-02-30"))
	assert.Zero(t, CalculateWorkHours("x", "18:00", "2024-01-15"))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "9小时0分钟", FormatDurationText(540))
	assert.Equal(t, "0小时0分钟", FormatDurationText(-5))
	assert.Equal(t, "45:00", FormatClockDuration(2700))
	assert.Equal(t, "星期一", WeekdayName("2024-01-15"))
	assert.Equal(t, "星期日", WeekdayName("2024-01-21"))
	assert.Equal(t, "", WeekdayName("bad"))

	next, err := AddDays("2024-02-28", 1)
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", next)
}

func TestValidateDate(t *testing.T) {
	valid := []string{"2024-01-15", "2024-02-29", "2000-02-29", "2023-12-31"}
	invalid := []string{
		"2023-02-29", "1900-02-29", "2024-02-30",
		"2024-04-31", "2024-06-31", "2024-09-31", "2024-11-31",
		"2024-1-15", "24-01-15", "2024-13-01", "2024-00-10", "2024-01-00", "",
	}

	for _, d := range valid {
		assert.True(t, ValidateDate(d), d)
	}
	for _, d := range invalid {
		assert.False(t, ValidateDate(d), d)
	}
}

func TestValidateTime(t *testing.T) {
	for _, s := range []string{"00:00", "9:05", "09:05", "23:59"} {
		assert.True(t, ValidateTime(s), s)
	}
	for _, s := range []string{"24:00", "12:60", "1205", "12:5", " 12:00", ""} {
		assert.False(t, ValidateTime(s), s)
	}
}

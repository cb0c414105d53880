package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/model"
	apperrors "HoursGuard/pkg/errors"
)

func rec(date, on, off string) model.AttendanceRecord {
	r := model.AttendanceRecord{Date: date}
	if on != "" {
		r.On = model.StringPtr(on)
	}
	if off != "" {
		r.Off = model.StringPtr(off)
	}
	return r
}

func TestWeekPeriod(t *testing.T) {
	tests := []struct {
		ref, start, end string
	}{
		{"2024-01-15", "2024-01-15", "2024-01-21"}, // 周一
		{"2024-01-17", "2024-01-15", "2024-01-21"},
		{"2024-01-21", "2024-01-15", "2024-01-21"}, // 周日属于上一周
		{"2024-03-01", "2024-02-26", "2024-03-03"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			p, err := WeekPeriod(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, model.PeriodWeek, p.Kind)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
		})
	}

	_, err := WeekPeriod("2024-02-30")
	assert.ErrorIs(t, err, apperrors.InvalidDate)
}

func TestMonthPeriod(t *testing.T) {
	p, err := MonthPeriod(2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", p.Start)
	assert.Equal(t, "2024-02-29", p.End)

	p, err = ParseMonth("2023-11")
	require.NoError(t, err)
	assert.Equal(t, "2023-11-30", p.End)

	_, err = ParseMonth("2023-13")
	assert.ErrorIs(t, err, apperrors.InvalidPeriod)
}

func TestRangePeriod(t *testing.T) {
	_, err := RangePeriod("2024-01-20", "2024-01-10")
	assert.ErrorIs(t, err, apperrors.InvalidPeriod)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	p, err := RangePeriod("2024-01-10", "2024-01-10")
	require.NoError(t, err)
	assert.True(t, Contains(p, "2024-01-10"))
	assert.False(t, Contains(p, "2024-01-11"))
}

func TestMonth_SingleDay(t *testing.T) {
	records := []model.AttendanceRecord{rec("2024-01-15", "09:00", "18:00")}

	s, err := Month(records, 2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, 1, s.WorkDays)
	assert.Equal(t, 1, s.TotalRecords)
	assert.InDelta(t, 9.0, s.TotalHours, 1e-9)
	assert.InDelta(t, 9.0, s.AvgHours, 1e-9)
	assert.Equal(t, "9小时0分钟", s.TotalText)
}

func TestWeek_FiveWorkdays(t *testing.T) {
	var records []model.AttendanceRecord
	for _, d := range []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-18", "2024-01-19"} {
		records = append(records, rec(d, "09:00", "18:00"))
	}
	// 区间外
	records = append(records, rec("2024-01-22", "09:00", "18:00"))

	s, err := Week(records, "2024-01-18")
	require.NoError(t, err)
	assert.Equal(t, 5, s.WorkDays)
	assert.InDelta(t, 45.0, s.TotalHours, 1e-9)
	assert.InDelta(t, 9.0, s.AvgHours, 1e-9)
	assert.Equal(t, "45小时0分钟", s.TotalText)
	assert.Equal(t, "9小时0分钟", s.AvgText)
}

func TestAggregate_IncompleteCountsOnlyTowardTotals(t *testing.T) {
	records := []model.AttendanceRecord{
		rec("2024-01-15", "09:00", "18:00"),
		rec("2024-01-16", "09:00", ""),
		rec("2024-01-17", "", "18:00"),
		rec("2024-01-18", "", ""),
	}
	p, _ := RangePeriod("2024-01-01", "2024-01-31")

	s := Aggregate(records, p)
	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, 1, s.WorkDays)
	assert.Equal(t, 540, s.TotalMinutes)
	assert.Equal(t, 540, s.AvgMinutes)
}

func TestAggregate_AverageRoundsHalfUp(t *testing.T) {
	records := []model.AttendanceRecord{
		rec("2024-01-15", "09:00", "09:01"),
		rec("2024-01-16", "09:00", "09:02"),
	}
	p, _ := RangePeriod("2024-01-15", "2024-01-16")

	s := Aggregate(records, p)
	assert.Equal(t, 3, s.TotalMinutes)
	assert.Equal(t, 2, s.AvgMinutes)
}

func TestAggregate_Empty(t *testing.T) {
	p, _ := RangePeriod("2024-01-01", "2024-01-31")
	s := Aggregate(nil, p)
	assert.Zero(t, s.WorkDays)
	assert.Zero(t, s.AvgHours)
	assert.Equal(t, "0小时0分钟", s.AvgText)
}

func TestAggregate_OvernightShift(t *testing.T) {
	p, _ := RangePeriod("2024-01-15", "2024-01-15")
	s := Aggregate([]model.AttendanceRecord{rec("2024-01-15", "22:00", "06:00")}, p)
	assert.Equal(t, 480, s.TotalMinutes)
}

func TestFilter_SortsAscending(t *testing.T) {
	records := []model.AttendanceRecord{
		rec("2024-01-17", "09:00", ""),
		rec("2023-12-31", "09:00", ""),
		rec("2024-01-15", "09:00", ""),
	}
	p, _ := RangePeriod("2024-01-01", "2024-01-31")

	got := Filter(records, p)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-15", got[0].Date)
	assert.Equal(t, "2024-01-17", got[1].Date)
}

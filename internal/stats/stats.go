// Package stats 按周、月或自定义区间汇总打卡时长
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"HoursGuard/internal/model"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/utils"
)

// WeekPeriod 参考日期所在的周，周一开始，周日为最后一天
func WeekPeriod(ref string) (model.Period, error) {
	d, err := utils.ParseDate(ref)
	if err != nil {
		return model.Period{}, apperrors.Validation("stats.WeekPeriod", apperrors.InvalidDate)
	}

	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)
	return model.Period{
		Kind:  model.PeriodWeek,
		Start: utils.FormatDate(monday),
		End:   utils.FormatDate(monday.AddDate(0, 0, 6)),
	}, nil
}

// MonthPeriod 某年某月的第一天到最后一天
func MonthPeriod(year int, month time.Month) (model.Period, error) {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return model.Period{}, apperrors.Validation("stats.MonthPeriod", apperrors.InvalidPeriod)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return model.Period{
		Kind:  model.PeriodMonth,
		Start: utils.FormatDate(first),
		End:   utils.FormatDate(first.AddDate(0, 1, -1)),
	}, nil
}

// ParseMonth 解析 YYYY-MM
func ParseMonth(s string) (model.Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return model.Period{}, apperrors.Validation("stats.ParseMonth", apperrors.InvalidPeriod)
	}
	return MonthPeriod(t.Year(), t.Month())
}

// RangePeriod 闭区间 [start, end]
func RangePeriod(start, end string) (model.Period, error) {
	if !utils.ValidateDate(start) || !utils.ValidateDate(end) {
		return model.Period{}, apperrors.Validation("stats.RangePeriod", apperrors.InvalidDate)
	}
	if start > end {
		return model.Period{}, apperrors.Validation("stats.RangePeriod",
			fmt.Errorf("start %s after end %s: %w", start, end, apperrors.InvalidPeriod))
	}
	return model.Period{Kind: model.PeriodRange, Start: start, End: end}, nil
}

// Contains 日期是否落在区间内
func Contains(p model.Period, date string) bool {
	return date >= p.Start && date <= p.End
}

// Filter 区间内的记录，按日期升序
func Filter(records []model.AttendanceRecord, p model.Period) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0)
	for _, r := range records {
		if Contains(p, r.Date) {
			out = append(out, r)
		}
	}
	SortByDate(out)
	return out
}

// SortByDate 按日期升序，稳定排序
func SortByDate(records []model.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
}

// RecordMinutes 完整记录的工作分钟数，其他状态返回 false
func RecordMinutes(r model.AttendanceRecord) (int, bool) {
	if r.State() != model.StateComplete {
		return 0, false
	}
	return utils.DurationMinutes(*r.On, *r.Off)
}

// Aggregate 汇总区间内的记录。不完整的记录只计入记录数
func Aggregate(records []model.AttendanceRecord, p model.Period) model.Stats {
	s := model.Stats{Period: p}

	for _, r := range records {
		if !Contains(p, r.Date) {
			continue
		}
		s.TotalRecords++
		if minutes, ok := RecordMinutes(r); ok {
			s.WorkDays++
			s.TotalMinutes += minutes
		}
	}

	if s.WorkDays > 0 {
		s.AvgMinutes = int(math.Floor(float64(s.TotalMinutes)/float64(s.WorkDays) + 0.5))
	}
	s.TotalHours = utils.MinutesToHours(s.TotalMinutes)
	s.AvgHours = utils.MinutesToHours(s.AvgMinutes)
	s.TotalText = utils.FormatDurationText(s.TotalMinutes)
	s.AvgText = utils.FormatDurationText(s.AvgMinutes)
	return s
}

func Week(records []model.AttendanceRecord, ref string) (model.Stats, error) {
	p, err := WeekPeriod(ref)
	if err != nil {
		return model.Stats{}, err
	}
	return Aggregate(records, p), nil
}

func Month(records []model.AttendanceRecord, year int, month time.Month) (model.Stats, error) {
	p, err := MonthPeriod(year, month)
	if err != nil {
		return model.Stats{}, err
	}
	return Aggregate(records, p), nil
}

func Range(records []model.AttendanceRecord, start, end string) (model.Stats, error) {
	p, err := RangePeriod(start, end)
	if err != nil {
		return model.Stats{}, err
	}
	return Aggregate(records, p), nil
}

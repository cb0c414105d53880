package service

import (
	"context"
	"time"

	"HoursGuard/internal/export"
	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/utils"
)

// WeekStats ref 为空时取今天所在的周
func (s *RecordService) WeekStats(ctx context.Context, ref string) (model.Stats, error) {
	if ref == "" {
		ref = utils.FormatDate(s.store.Now())
	}
	if !utils.ValidateDate(ref) {
		return model.Stats{}, apperrors.Validation("service.WeekStats", apperrors.InvalidDate)
	}

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return stats.Week(records, ref)
}

// MonthStats month 为 YYYY-MM，空串取当月
func (s *RecordService) MonthStats(ctx context.Context, month string) (model.Stats, error) {
	if month == "" {
		month = s.store.Now().Format("2006-01")
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return model.Stats{}, apperrors.Validation("service.MonthStats", apperrors.InvalidPeriod)
	}

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return stats.Month(records, t.Year(), t.Month())
}

func (s *RecordService) RangeStats(ctx context.Context, start, end string) (model.Stats, error) {
	if _, err := stats.RangePeriod(start, end); err != nil {
		return model.Stats{}, err
	}

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return stats.Range(records, start, end)
}

// Export period 为 nil 时导出全部记录
func (s *RecordService) Export(ctx context.Context, period *model.Period, format export.Format) (export.Document, error) {
	records, err := s.store.Records(ctx)
	if err != nil {
		return export.Document{}, err
	}
	return export.Render(records, period, format)
}

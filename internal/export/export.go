// Package export 把打卡记录渲染为文本、CSV、XLSX 或 JSON 数据包。
// 所有输出只取决于记录和统计区间。
package export

import (
	"fmt"
	"strings"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/utils"
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat 大小写不敏感，空串视为 text
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", apperrors.Validation("export.ParseFormat", apperrors.InvalidExport)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Document 渲染结果
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render 按格式渲染。period 为 nil 时导出全部记录
func Render(records []model.AttendanceRecord, period *model.Period, format Format) (Document, error) {
	selected := selectRecords(records, period)

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatText:
		body = []byte(Text(selected, period))
	case FormatCSV:
		body, err = CSV(selected)
	case FormatXLSX:
		body, err = XLSX(selected)
	case FormatJSON:
		body, err = JSON(selected, period)
	default:
		return Document{}, apperrors.Validation("export.Render", apperrors.InvalidExport)
	}
	if err != nil {
		return Document{}, apperrors.File("export.Render", err)
	}

	return Document{
		Filename:    Filename(period, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// Filename 例如 hoursguard_2024-01-01_2024-01-31.csv
func Filename(period *model.Period, format Format) string {
	if period == nil {
		return fmt.Sprintf("hoursguard_all.%s", format.Extension())
	}
	return fmt.Sprintf("hoursguard_%s_%s.%s", period.Start, period.End, format.Extension())
}

func selectRecords(records []model.AttendanceRecord, period *model.Period) []model.AttendanceRecord {
	if period != nil {
		return stats.Filter(records, *period)
	}
	out := model.CloneRecords(records)
	stats.SortByDate(out)
	return out
}

// monthGroup 同一个 YYYY-MM 的记录
type monthGroup struct {
	month   string
	records []model.AttendanceRecord
}

// groupByMonth 输入需已按日期升序
func groupByMonth(records []model.AttendanceRecord) []monthGroup {
	var groups []monthGroup
	for _, r := range records {
		month := r.Date
		if len(month) >= 7 {
			month = month[:7]
		}
		if n := len(groups); n > 0 && groups[n-1].month == month {
			groups[n-1].records = append(groups[n-1].records, r)
			continue
		}
		groups = append(groups, monthGroup{month: month, records: []model.AttendanceRecord{r}})
	}
	return groups
}

func monthStats(g monthGroup) model.Stats {
	p, err := stats.ParseMonth(g.month)
	if err != nil {
		p = model.Period{Kind: model.PeriodRange, Start: g.records[0].Date, End: g.records[len(g.records)-1].Date}
	}
	return stats.Aggregate(g.records, p)
}

// overnight 下班时间不晚于上班时间。按分钟比较，9:00 与 09:00 等价
func overnight(r model.AttendanceRecord) bool {
	if !r.IsComplete() {
		return false
	}
	on, err := utils.ParseClock(*r.On)
	if err != nil {
		return false
	}
	off, err := utils.ParseClock(*r.Off)
	if err != nil {
		return false
	}
	return off <= on
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

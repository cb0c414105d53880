package export

import (
	"github.com/xuri/excelize/v2"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
)

const (
	sheetDetail  = "打卡记录"
	sheetSummary = "月度汇总"
)

var summaryHeader = []string{"月份", "完成天数", "总时长(小时)", "平均时长(小时)", "总时长", "平均时长"}

// XLSX 明细表与月度汇总表
func XLSX(records []model.AttendanceRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetDetail); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := writeDetailSheet(f, records, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, records, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDetailSheet(f *excelize.File, records []model.AttendanceRecord, headerStyle int) error {
	if err := writeRow(f, sheetDetail, 1, toCells(csvHeader)); err != nil {
		return err
	}
	for i, row := range detailRows(records) {
		if err := writeRow(f, sheetDetail, i+2, toCells(row)); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetDetail, "A1", "F1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheetDetail, "A", "F", 16)
}

func writeSummarySheet(f *excelize.File, records []model.AttendanceRecord, headerStyle int) error {
	if err := writeRow(f, sheetSummary, 1, toCells(summaryHeader)); err != nil {
		return err
	}

	sorted := model.CloneRecords(records)
	stats.SortByDate(sorted)
	for i, g := range groupByMonth(sorted) {
		s := monthStats(g)
		row := []interface{}{g.month, s.WorkDays, s.TotalHours, s.AvgHours, s.TotalText, s.AvgText}
		if err := writeRow(f, sheetSummary, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "F1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "F", 16)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

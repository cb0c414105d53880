package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	"HoursGuard/utils"
)

const utf8BOM = "\ufeff"

var csvHeader = []string{"日期", "星期", "上班时间", "下班时间", "工作时长(小时)", "备注"}

// CSV 带 BOM 的 UTF-8，只包含完整记录
func CSV(records []model.AttendanceRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range detailRows(records) {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detailRows 完整记录按日期升序的明细行
func detailRows(records []model.AttendanceRecord) [][]string {
	sorted := model.CloneRecords(records)
	stats.SortByDate(sorted)

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		if !r.IsComplete() {
			continue
		}
		note := ""
		if overnight(r) {
			note = "跨天"
		}
		rows = append(rows, []string{
			r.Date,
			utils.WeekdayName(r.Date),
			*r.On,
			*r.Off,
			fmt.Sprintf("%.2f", utils.CalculateWorkHours(*r.On, *r.Off, r.Date)),
			note,
		})
	}
	return rows
}

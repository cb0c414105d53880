package export

import (
	"fmt"
	"strings"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	"HoursGuard/utils"
)

// Text 按月分组的纯文本报告，每月先汇总再逐日列出
func Text(records []model.AttendanceRecord, period *model.Period) string {
	var b strings.Builder

	b.WriteString("打卡记录导出\n")
	if period != nil {
		fmt.Fprintf(&b, "统计区间：%s 至 %s\n", period.Start, period.End)
	}

	sorted := model.CloneRecords(records)
	stats.SortByDate(sorted)

	groups := groupByMonth(sorted)
	if len(groups) == 0 {
		b.WriteString("\n暂无打卡记录\n")
		return b.String()
	}

	for _, g := range groups {
		s := monthStats(g)
		fmt.Fprintf(&b, "\n==== %s ====\n", g.month)
		fmt.Fprintf(&b, "完成天数：%d 天\n", s.WorkDays)
		fmt.Fprintf(&b, "平均时长：%s\n", s.AvgText)
		fmt.Fprintf(&b, "总时长：%s\n\n", s.TotalText)

		for _, r := range g.records {
			b.WriteString(textLine(r))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func textLine(r model.AttendanceRecord) string {
	line := fmt.Sprintf("%s %s  上班 %s  下班 %s",
		r.Date, utils.WeekdayName(r.Date), valueOr(r.On, "--:--"), valueOr(r.Off, "--:--"))

	if r.IsComplete() {
		line += "  时长 " + utils.CalculateDuration(*r.On, *r.Off)
		if overnight(r) {
			line += "（跨天）"
		}
	}
	return line
}

package model

// PeriodKind 统计周期类型
type PeriodKind string

const (
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
	PeriodRange PeriodKind = "range"
)

// Period 闭区间 [Start, End]，日期为 YYYY-MM-DD
type Period struct {
	Kind  PeriodKind `json:"kind"`
	Start string     `json:"start"`
	End   string     `json:"end"`
}

// Stats 某周期的汇总
type Stats struct {
	Period       Period  `json:"period"`
	TotalText    string  `json:"totalText"`
	AvgText      string  `json:"avgText"`
	TotalRecords int     `json:"totalRecords"`
	WorkDays     int     `json:"workDays"` // 完整记录数
	TotalMinutes int     `json:"totalMinutes"`
	AvgMinutes   int     `json:"avgMinutes"`
	TotalHours   float64 `json:"totalHours"`
	AvgHours     float64 `json:"avgHours"`
}

package dto

// ========== Stats / Export 相关 DTO ==========

// WeekStatsQuery date 为参考日期，默认今天
type WeekStatsQuery struct {
	Date string `query:"date"`
}

// MonthStatsQuery month 为 YYYY-MM，默认当月
type MonthStatsQuery struct {
	Month string `query:"month"`
}

// RangeQuery 闭区间
type RangeQuery struct {
	Start string `query:"start"`
	End   string `query:"end"`
}

// ExportQuery 不指定区间时导出全部
type ExportQuery struct {
	Format string `query:"format"`
	Month  string `query:"month"`
	Start  string `query:"start"`
	End    string `query:"end"`
}

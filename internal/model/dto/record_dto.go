package dto

import "HoursGuard/internal/model"

// ========== Record 相关 DTO ==========

// ClockRequest 上下班打卡，字段为空时取服务器当前时间
type ClockRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// UpdateRecordRequest 手动修改，空串表示清除
type UpdateRecordRequest struct {
	On  *string `json:"on"`
	Off *string `json:"off"`
}

// RecordListQuery 记录查询参数
type RecordListQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// RecordListResponse 记录列表
type RecordListResponse struct {
	Records []model.AttendanceRecord `json:"records"`
	Total   int                      `json:"total"`
}

// ImportRecordsRequest 导入记录
type ImportRecordsRequest struct {
	Mode    string                   `json:"mode"`
	Records []model.AttendanceRecord `json:"records"`
}

// CleanupRequest 清理旧数据
type CleanupRequest struct {
	Days int `json:"days"`
}

// CleanupResponse 清理结果
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// WarningResponse 数据丢失提示状态
type WarningResponse struct {
	ShouldShow bool `json:"should_show"`
}

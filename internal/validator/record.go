// Package validator 打卡记录的结构与格式校验
package validator

import (
	"bytes"
	"encoding/json"
	"strings"

	"HoursGuard/internal/model"
	"HoursGuard/utils"
)

// ValidateRecord 日期必须是真实日期，上下班时间存在时必须是 HH:MM。
// 不要求下班晚于上班，跨天由时长计算处理。
func ValidateRecord(r *model.AttendanceRecord) bool {
	if r == nil || r.Date == "" {
		return false
	}
	if !utils.ValidateDate(r.Date) {
		return false
	}
	if r.On != nil && !utils.ValidateTime(*r.On) {
		return false
	}
	if r.Off != nil && !utils.ValidateTime(*r.Off) {
		return false
	}
	return true
}

// ValidateRecordsArray 每一条都合法才返回 true，空列表合法
func ValidateRecordsArray(records []model.AttendanceRecord) bool {
	for i := range records {
		if !ValidateRecord(&records[i]) {
			return false
		}
	}
	return true
}

// DecodeRecords 解析存储中的 records 值，必须是 JSON 数组且每条记录合法
func DecodeRecords(raw []byte) ([]model.AttendanceRecord, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var records []model.AttendanceRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, false
	}
	if !ValidateRecordsArray(records) {
		return nil, false
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return records, true
}

// SanitizeRecord 只保留 date/on/off，去掉空白值后重新校验，不合法返回 nil
func SanitizeRecord(r *model.AttendanceRecord) *model.AttendanceRecord {
	if r == nil {
		return nil
	}

	out := &model.AttendanceRecord{Date: strings.TrimSpace(r.Date)}
	out.On = sanitizeClock(r.On)
	out.Off = sanitizeClock(r.Off)

	if !ValidateRecord(out) {
		return nil
	}
	return out
}

func sanitizeClock(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

package model

import "time"

// BackupVersion 备份格式版本
const BackupVersion = "1.0"

// BackupSnapshot 某一时刻的完整记录副本
type BackupSnapshot struct {
	ID        string             `json:"id"`
	Records   []AttendanceRecord `json:"records"`
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
}

// BackupSummary 备份列表项
type BackupSummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Index       int       `json:"index"`
	RecordCount int       `json:"record_count"`
}

// RestoreResult 从指定备份恢复的结果
type RestoreResult struct {
	Message string             `json:"message"`
	Records []AttendanceRecord `json:"records,omitempty"`
	Success bool               `json:"success"`
}

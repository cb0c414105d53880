package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	InternalError   = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// 打卡记录错误。
var (
	InvalidDate        = Definition{Code: "INVALID_DATE", Message: "Date must be a real calendar date in YYYY-MM-DD format"}
	InvalidTime        = Definition{Code: "INVALID_TIME", Message: "Time must be HH:MM in 24-hour format"}
	InvalidRecord      = Definition{Code: "INVALID_RECORD", Message: "Attendance record failed validation"}
	RecordNotFound     = Definition{Code: "RECORD_NOT_FOUND", Message: "No attendance record for this date"}
	AlreadyClockedIn   = Definition{Code: "ALREADY_CLOCKED_IN", Message: "Already clocked in for this date"}
	NotClockedIn       = Definition{Code: "NOT_CLOCKED_IN", Message: "No clock-in found to clock out from"}
	InvalidPeriod      = Definition{Code: "INVALID_PERIOD", Message: "Invalid statistics period"}
	InvalidExport      = Definition{Code: "INVALID_EXPORT_FORMAT", Message: "Unsupported export format"}
	InvalidCleanupDays = Definition{Code: "INVALID_CLEANUP_DAYS", Message: "Cleanup threshold must be a positive number of days"}
)

// 存储与备份错误。
var (
	StorageReadFailed  = Definition{Code: "STORAGE_READ_FAILED", Message: "Failed to read from storage"}
	StorageWriteFailed = Definition{Code: "STORAGE_WRITE_FAILED", Message: "Failed to write to storage"}
	BackupNotFound     = Definition{Code: "BACKUP_NOT_FOUND", Message: "No valid backup available"}
	BackupInvalid      = Definition{Code: "BACKUP_INVALID", Message: "Backup data failed validation"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:     InvalidRequest,
	Unauthorized.Code:       Unauthorized,
	TooManyRequests.Code:    TooManyRequests,
	InternalError.Code:      InternalError,
	InvalidDate.Code:        InvalidDate,
	InvalidTime.Code:        InvalidTime,
	InvalidRecord.Code:      InvalidRecord,
	RecordNotFound.Code:     RecordNotFound,
	AlreadyClockedIn.Code:   AlreadyClockedIn,
	NotClockedIn.Code:       NotClockedIn,
	InvalidPeriod.Code:      InvalidPeriod,
	InvalidExport.Code:      InvalidExport,
	InvalidCleanupDays.Code: InvalidCleanupDays,
	StorageReadFailed.Code:  StorageReadFailed,
	StorageWriteFailed.Code: StorageWriteFailed,
	BackupNotFound.Code:     BackupNotFound,
	BackupInvalid.Code:      BackupInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

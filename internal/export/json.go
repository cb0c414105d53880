package export

import (
	"bytes"
	"encoding/json"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	apperrors "HoursGuard/pkg/errors"
)

// DataDump JSON 导出格式，records 可直接用于导入
type DataDump struct {
	Period  *model.Period            `json:"period,omitempty"`
	Version string                   `json:"version"`
	Records []model.AttendanceRecord `json:"records"`
	Stats   model.Stats              `json:"stats"`
}

func JSON(records []model.AttendanceRecord, period *model.Period) ([]byte, error) {
	dump := DataDump{
		Period:  period,
		Version: model.BackupVersion,
		Records: model.CloneRecords(records),
	}
	stats.SortByDate(dump.Records)

	p := model.Period{Kind: model.PeriodRange}
	if period != nil {
		p = *period
	} else if len(dump.Records) > 0 {
		p.Start = dump.Records[0].Date
		p.End = dump.Records[len(dump.Records)-1].Date
	}
	dump.Stats = stats.Aggregate(dump.Records, p)

	return json.MarshalIndent(dump, "", "  ")
}

// ParseDump 读取 JSON 导出文件或记录数组，供导入使用
func ParseDump(data []byte) ([]model.AttendanceRecord, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\ufeff")))
	if len(data) > 0 && data[0] == '[' {
		var records []model.AttendanceRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, apperrors.Validation("export.ParseDump", apperrors.InvalidRecord)
		}
		return records, nil
	}

	var dump DataDump
	if err := json.Unmarshal(data, &dump); err != nil || dump.Records == nil {
		return nil, apperrors.Validation("export.ParseDump", apperrors.InvalidRecord)
	}
	return dump.Records, nil
}

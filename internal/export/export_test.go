package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	apperrors "HoursGuard/pkg/errors"
)

func rec(date, on, off string) model.AttendanceRecord {
	r := model.AttendanceRecord{Date: date}
	if on != "" {
		r.On = model.StringPtr(on)
	}
	if off != "" {
		r.Off = model.StringPtr(off)
	}
	return r
}

func sample() []model.AttendanceRecord {
	return []model.AttendanceRecord{
		rec("2024-02-01", "09:00", "18:00"),
		rec("2024-01-16", "22:00", "06:00"),
		rec("2024-01-15", "09:00", "18:00"),
		rec("2024-01-17", "09:00", ""),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("png")
	assert.ErrorIs(t, err, apperrors.InvalidExport)
}

func TestCSV(t *testing.T) {
	body, err := CSV(sample())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(body, []byte("\xef\xbb\xbf")))

	rows, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"日期", "星期", "上班时间", "下班时间", "工作时长(小时)", "备注"}, rows[0])
	assert.Equal(t, []string{"2024-01-15", "星期一", "09:00", "18:00", "9.00", ""}, rows[1])
	assert.Equal(t, []string{"2024-01-16", "星期二", "22:00", "06:00", "8.00", "跨天"}, rows[2])
	assert.Equal(t, "2024-02-01", rows[3][0])
}

func TestText_GroupsByMonth(t *testing.T) {
	out := Text(sample(), nil)

	jan := strings.Index(out, "==== 2024-01 ====")
	feb := strings.Index(out, "==== 2024-02 ====")
	require.NotEqual(t, -1, jan)
	require.NotEqual(t, -1, feb)
	assert.Less(t, jan, feb)

	assert.Contains(t, out, "完成天数：2 天")
	assert.Contains(t, out, "总时长：17小时0分钟")
	assert.Contains(t, out, "2024-01-15 星期一  上班 09:00  下班 18:00  时长 09:00")
	assert.Contains(t, out, "2024-01-17 星期三  上班 09:00  下班 --:--")
	assert.Less(t, strings.Index(out, "2024-01-15"), strings.Index(out, "2024-01-16"))
}

func TestUnpaddedClockIsNotOvernight(t *testing.T) {
	records := []model.AttendanceRecord{
		{Date: "2024-01-15", On: model.StringPtr("9:00"), Off: model.StringPtr("18:00")},
		{Date: "2024-01-16", On: model.StringPtr("22:00"), Off: model.StringPtr("6:00")},
	}

	body, err := CSV(records)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024-01-15", "星期一", "9:00", "18:00", "9.00", ""}, rows[1])
	assert.Equal(t, "跨天", rows[2][5])

	out := Text(records, nil)
	assert.Contains(t, out, "上班 9:00  下班 18:00  时长 09:00\n")
	assert.Contains(t, out, "下班 6:00  时长 08:00（跨天）")
}

func TestText_Empty(t *testing.T) {
	assert.Contains(t, Text(nil, nil), "暂无打卡记录")
}

func TestRender_FiltersByPeriod(t *testing.T) {
	p, err := stats.ParseMonth("2024-01")
	require.NoError(t, err)

	doc, err := Render(sample(), &p, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "hoursguard_2024-01-01_2024-01-31.json", doc.Filename)
	assert.Equal(t, "application/json; charset=utf-8", doc.ContentType)

	var dump DataDump
	require.NoError(t, json.Unmarshal(doc.Body, &dump))
	require.Len(t, dump.Records, 3)
	assert.Equal(t, "2024-01-15", dump.Records[0].Date)
	assert.Equal(t, 2, dump.Stats.WorkDays)
	assert.Equal(t, model.BackupVersion, dump.Version)
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	records := sample()
	_, err := Render(records, nil, FormatText)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", records[0].Date)
}

func TestXLSX(t *testing.T) {
	body, err := XLSX(sample())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetDetail)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "日期", rows[0][0])
	assert.Equal(t, "2024-01-15", rows[1][0])

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "2024-01", summary[1][0])
	assert.Equal(t, "2", summary[1][1])
}

func TestParseDump(t *testing.T) {
	doc, err := Render(sample(), nil, FormatJSON)
	require.NoError(t, err)

	records, err := ParseDump(doc.Body)
	require.NoError(t, err)
	assert.Len(t, records, len(sample()))

	records, err = ParseDump([]byte(`[{"date":"2024-01-15","on":"09:00"}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "09:00", *records[0].On)

	_, err = ParseDump([]byte(`{"version":"1.0"}`))
	assert.ErrorIs(t, err, apperrors.InvalidRecord)
	_, err = ParseDump([]byte(`not json`))
	assert.ErrorIs(t, err, apperrors.InvalidRecord)
}

package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/model"
)

func rec(date string, clocks ...string) *model.AttendanceRecord {
	r := &model.AttendanceRecord{Date: date}
	if len(clocks) > 0 && clocks[0] != "-" {
		r.On = model.StringPtr(clocks[0])
	}
	if len(clocks) > 1 && clocks[1] != "-" {
		r.Off = model.StringPtr(clocks[1])
	}
	return r
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name   string
		record *model.AttendanceRecord
		want   bool
	}{
		{"nil", nil, false},
		{"missing date", rec(""), false},
		{"date only", rec("2024-01-15"), true},
		{"complete", rec("2024-01-15", "09:00", "18:00"), true},
		{"single digit hour", rec("2024-01-15", "9:05"), true},
		{"off before on", rec("2024-01-15", "22:00", "06:00"), true},
		{"off only", rec("2024-01-15", "-", "18:00"), true},
		{"bad date format", rec("2024/01/15"), false},
		{"not a real date", rec("2024-02-30"), false},
		{"bad on", rec("2024-01-15", "24:00"), false},
		{"bad off", rec("2024-01-15", "09:00", "18:60"), false},
		{"empty on", rec("2024-01-15", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRecord(tt.record))
		})
	}
}

func TestValidateRecordsArray(t *testing.T) {
	assert.True(t, ValidateRecordsArray(nil))
	assert.True(t, ValidateRecordsArray([]model.AttendanceRecord{*rec("2024-01-15", "09:00")}))
	assert.False(t, ValidateRecordsArray([]model.AttendanceRecord{
		*rec("2024-01-15", "09:00"),
		*rec("2023-04-31"),
	}))
}

func TestDecodeRecords(t *testing.T) {
	records, ok := DecodeRecords([]byte(`[{"date":"2024-01-15","on":"09:00","off":"18:00"}]`))
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "18:00", *records[0].Off)

	empty, ok := DecodeRecords([]byte(`[]`))
	assert.True(t, ok)
	assert.NotNil(t, empty)

	for _, raw := range []string{``, `null`, `{}`, `{corrupted`, `[{"date":20240115}]`, `[{"date":"2024-13-01"}]`} {
		_, ok := DecodeRecords([]byte(raw))
		assert.False(t, ok, raw)
	}
}

func TestSanitizeRecord(t *testing.T) {
	got := SanitizeRecord(&model.AttendanceRecord{
		Date: " 2024-01-15 ",
		On:   model.StringPtr("09:00"),
		Off:  model.StringPtr("  "),
	})
	require.NotNil(t, got)
	assert.Equal(t, "2024-01-15", got.Date)
	assert.Nil(t, got.Off)

	assert.Nil(t, SanitizeRecord(nil))
	assert.Nil(t, SanitizeRecord(rec("2024-02-30")))
}

func TestSanitizeRecord_IdempotentOnValidRecords(t *testing.T) {
	inputs := []*model.AttendanceRecord{
		rec("2024-01-15"),
		rec("2024-01-15", "09:00"),
		rec("2024-02-29", "22:00", "06:00"),
		rec("2000-02-29", "-", "18:00"),
	}

	for _, in := range inputs {
		require.True(t, ValidateRecord(in))

		once := SanitizeRecord(in)
		require.NotNil(t, once)
		assert.True(t, ValidateRecord(once))
		assert.True(t, cmp.Equal(in, once), cmp.Diff(in, once))

		twice := SanitizeRecord(once)
		assert.True(t, cmp.Equal(once, twice))
	}
}

package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/model"
)

func TestCheckStorageHealth_Healthy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.m.SafeSet(ctx, KeyRecords, []model.AttendanceRecord{record("2024-01-15", "09:00", "18:00")}))

	report := f.m.CheckStorageHealth(ctx)
	assert.True(t, report.IsHealthy)
	assert.Empty(t, report.Issues)
}

func TestCheckStorageHealth_UsageAboveThreshold(t *testing.T) {
	f := newFixture(t, func(p *Policy) { p.LimitBytes = 200 })
	ctx := context.Background()

	records := make([]model.AttendanceRecord, 0, 10)
	for i := 1; i <= 9; i++ {
		records = append(records, record("2024-01-0"+string(rune('0'+i)), "09:00", "18:00"))
	}
	require.True(t, f.m.SafeSet(ctx, KeyRecords, records))

	report := f.m.CheckStorageHealth(ctx)
	assert.False(t, report.IsHealthy)
	assert.True(t, containsPrefix(report.Issues, "存储使用率过高"))
}

func TestCheckStorageHealth_InvalidRecords(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.base.Set(context.Background(), KeyRecords, []byte(`[{"date":"2024-13-01"}]`)))

	report := f.m.CheckStorageHealth(context.Background())
	assert.False(t, report.IsHealthy)
	assert.Contains(t, report.Issues, "打卡数据格式异常")
	assert.Contains(t, report.Suggestions, "从备份恢复或重新初始化数据")
}

func TestCheckStorageHealth_StaleBackupIsNonFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := f.m.CheckStorageHealth(ctx)
	assert.True(t, report.IsHealthy)
	assert.Contains(t, report.Issues, "尚未创建备份")

	_, err := f.m.CreateBackup(ctx, []model.AttendanceRecord{})
	require.NoError(t, err)
	f.now = f.now.Add(8 * 24 * time.Hour)

	report = f.m.CheckStorageHealth(ctx)
	assert.True(t, report.IsHealthy)
	assert.True(t, containsPrefix(report.Issues, "备份已 8 天未更新"))
	assert.Contains(t, report.Suggestions, "手动创建一次备份")
}

func TestStorageInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, KeyWarningShown, true)

	info, err := f.m.StorageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyWarningShown}, info.Keys)
	assert.Equal(t, int64(len(KeyWarningShown)+len("true")), info.CurrentSize)
	assert.Equal(t, DefaultPolicy().LimitBytes, info.LimitSize)
}

func containsPrefix(items []string, prefix string) bool {
	for _, s := range items {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/errhandler"
	"HoursGuard/internal/model"
	"HoursGuard/internal/notify"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/storage/memory"
)

type fixture struct {
	base  *memory.Store
	flaky *memory.Flaky
	m     *Manager
	now   time.Time
}

func newFixture(t *testing.T, mutate ...func(*Policy)) *fixture {
	t.Helper()

	f := &fixture{
		base: memory.New(),
		now:  time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local),
	}
	f.flaky = memory.NewFlaky(f.base)

	policy := DefaultPolicy()
	policy.RetryDelay = time.Millisecond
	for _, fn := range mutate {
		fn(&policy)
	}

	clock := func() time.Time { return f.now }
	handler := errhandler.New(f.base, errhandler.WithNotifier(notify.Context{}), errhandler.WithClock(clock))
	f.m = NewManager(f.flaky, policy,
		WithNotifier(notify.Context{}),
		WithErrorHandler(handler),
		WithClock(clock),
	)
	return f
}

func (f *fixture) seed(t *testing.T, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, f.base.Set(context.Background(), key, raw))
}

func record(date, on, off string) model.AttendanceRecord {
	r := model.AttendanceRecord{Date: date}
	if on != "" {
		r.On = model.StringPtr(on)
	}
	if off != "" {
		r.Off = model.StringPtr(off)
	}
	return r
}

func TestSafeGet_RetriesUntilSuccess(t *testing.T) {
	for k := 0; k < 3; k++ {
		f := newFixture(t)
		want := []model.AttendanceRecord{record("2024-01-15", "09:00", "18:00")}
		f.seed(t, KeyRecords, want)

		f.flaky.Fail(memory.OpGet, KeyRecords, k)
		got, err := f.m.Records(context.Background())
		require.NoError(t, err)

		assert.Equal(t, want, got, "k=%d", k)
		assert.Equal(t, k+1, f.flaky.Calls(memory.OpGet, KeyRecords), "k=%d", k)
	}
}

func TestSafeSet_RetriesUntilSuccess(t *testing.T) {
	for k := 0; k < 3; k++ {
		f := newFixture(t)
		records := []model.AttendanceRecord{record("2024-01-15", "09:00", "")}

		f.flaky.Fail(memory.OpSet, KeyRecords, k)
		ok := f.m.SafeSet(context.Background(), KeyRecords, records)

		assert.True(t, ok, "k=%d", k)
		assert.Equal(t, k+1, f.flaky.Calls(memory.OpSet, KeyRecords), "k=%d", k)
		assert.Equal(t, records, f.records(t))
	}
}

func TestSafeSet_RejectsInvalidRecordsWithoutRetry(t *testing.T) {
	f := newFixture(t)
	ctx, c := notify.WithCollector(context.Background())

	ok := f.m.SafeSet(ctx, KeyRecords, []model.AttendanceRecord{record("2024-02-30", "09:00", "")})
	assert.False(t, ok)
	assert.Zero(t, f.flaky.Calls(memory.OpSet, KeyRecords))
	assert.Zero(t, f.flaky.Calls(memory.OpSet, KeyBackups))

	assert.False(t, f.m.SafeSet(ctx, KeyRecords, "not records"))
	require.NotEmpty(t, c.Notices())
}

func TestSafeSet_VerificationMismatchIsRetried(t *testing.T) {
	f := newFixture(t)
	records := []model.AttendanceRecord{record("2024-01-15", "09:00", "18:00")}

	f.flaky.Drop(KeyRecords, 1)
	assert.True(t, f.m.SafeSet(context.Background(), KeyRecords, records))
	assert.Equal(t, 2, f.flaky.Calls(memory.OpSet, KeyRecords))
	assert.Equal(t, records, f.records(t))
}

func TestSafeSet_ExhaustionNotifiesAndReturnsFalse(t *testing.T) {
	f := newFixture(t)
	ctx, c := notify.WithCollector(context.Background())

	f.flaky.Fail(memory.OpSet, KeyWarningShown, 10)
	assert.False(t, f.m.SafeSet(ctx, KeyWarningShown, true))
	assert.Equal(t, 3, f.flaky.Calls(memory.OpSet, KeyWarningShown))

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "数据保存失败，请稍后重试", notices[0].Message)

	logs, err := errhandler.New(f.base).ErrorLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "storage_error", logs[0].Type)
}

func TestSafeGet_OtherKeysDegradeToDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, SafeGet(ctx, f.m, KeyWarningShown, false))

	f.seed(t, KeyWarningShown, true)
	f.flaky.Fail(memory.OpGet, KeyWarningShown, 3)
	assert.False(t, SafeGet(ctx, f.m, KeyWarningShown, false))
	assert.True(t, SafeGet(ctx, f.m, KeyWarningShown, false))
}

func TestSafeGet_CorruptedRecordsRestoreFromBackup(t *testing.T) {
	f := newFixture(t)
	ctx, c := notify.WithCollector(context.Background())

	saved := []model.AttendanceRecord{
		record("2024-01-15", "09:00", "18:00"),
		record("2024-01-16", "09:30", ""),
	}
	require.True(t, f.m.SafeSet(ctx, KeyRecords, saved))

	f.flaky.Corrupt(KeyRecords, 3)
	got, err := f.m.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	// 恢复的数据已写回
	raw, err := f.base.Get(ctx, KeyRecords)
	require.NoError(t, err)
	assert.JSONEq(t, mustJSON(t, saved), string(raw))

	var titles []string
	for _, n := range c.Notices() {
		if n.Level == model.NoticeModal {
			titles = append(titles, n.Title)
		}
	}
	assert.Equal(t, []string{"数据已恢复"}, titles)
}

func TestSafeGet_CorruptedRecordsWithoutBackupReturnDefault(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.base.Set(context.Background(), KeyRecords, []byte(`{corrupted`)))

	got, err := f.m.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, 3, f.flaky.Calls(memory.OpGet, KeyRecords))
}

func TestRecords_BackendOutageDoesNotOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.m.SafeSet(ctx, KeyRecords, []model.AttendanceRecord{record("2024-01-15", "09:00", "18:00")}))
	current := []model.AttendanceRecord{
		record("2024-01-15", "09:00", "18:00"),
		record("2024-01-16", "09:00", "18:00"),
		record("2024-01-17", "09:00", ""),
	}
	// 仍在节流窗口内，备份只有第一条
	require.True(t, f.m.SafeSet(ctx, KeyRecords, current))

	f.flaky.Fail(memory.OpGet, KeyRecords, 3)
	_, err := f.m.Records(ctx)
	require.Error(t, err)
	def, ok := apperrors.DefinitionOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.StorageReadFailed.Code, def.Code)
	assert.Equal(t, 2, f.flaky.Calls(memory.OpSet, KeyRecords))

	assert.Equal(t, current, f.records(t))
}

func TestSafeGet_OutageServesBackupReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := []model.AttendanceRecord{record("2024-01-15", "09:00", "18:00")}
	require.True(t, f.m.SafeSet(ctx, KeyRecords, first))
	current := append(model.CloneRecords(first), record("2024-01-16", "09:00", ""))
	require.True(t, f.m.SafeSet(ctx, KeyRecords, current))

	f.flaky.Fail(memory.OpGet, KeyRecords, 3)
	assert.Equal(t, first, SafeGet(ctx, f.m, KeyRecords, []model.AttendanceRecord{}))

	assert.Equal(t, current, f.records(t))
}

func (f *fixture) records(t *testing.T) []model.AttendanceRecord {
	t.Helper()
	records, err := f.m.Records(context.Background())
	require.NoError(t, err)
	return records
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

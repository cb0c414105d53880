package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/export"
	"HoursGuard/internal/model"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/store"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/storage/memory"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newService(t *testing.T, now string) (*RecordService, *clock, *Provider) {
	t.Helper()

	ts, err := time.ParseInLocation("2006-01-02 15:04", now, time.Local)
	require.NoError(t, err)
	c := &clock{now: ts}

	policy := store.DefaultPolicy()
	policy.RetryDelay = time.Millisecond
	p := NewProvider(Deps{
		KV:     memory.New(),
		Policy: policy,
		Clock:  c.Now,
	})
	return p.Workspace("dev-1").Records, c, p
}

func ptr(s string) *string { return &s }

func storedRecords(t *testing.T, m *store.Manager) []model.AttendanceRecord {
	t.Helper()
	records, err := m.Records(context.Background())
	require.NoError(t, err)
	return records
}

func TestClockInOut_MonthStats(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	r, err := s.ClockIn(ctx, "2024-01-15", "09:00")
	require.NoError(t, err)
	assert.Equal(t, model.StateClockedIn, r.State())

	r, err = s.ClockOut(ctx, "2024-01-15", "18:00")
	require.NoError(t, err)
	assert.Equal(t, model.StateComplete, r.State())

	st, err := s.MonthStats(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 1, st.WorkDays)
	assert.InDelta(t, 9.0, st.TotalHours, 1e-9)
	assert.InDelta(t, 9.0, st.AvgHours, 1e-9)
}

func TestFiveWorkdays_WeekStats(t *testing.T) {
	s, _, _ := newService(t, "2024-01-19 19:00")
	ctx := context.Background()

	for _, d := range []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-18", "2024-01-19"} {
		_, err := s.ClockIn(ctx, d, "09:00")
		require.NoError(t, err)
		_, err = s.ClockOut(ctx, d, "18:00")
		require.NoError(t, err)
	}

	st, err := s.WeekStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 5, st.WorkDays)
	assert.InDelta(t, 45.0, st.TotalHours, 1e-9)
	assert.InDelta(t, 9.0, st.AvgHours, 1e-9)
}

func TestClockIn_Defaults(t *testing.T) {
	s, _, _ := newService(t, "2024-03-01 08:45")

	r, err := s.ClockIn(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", r.Date)
	assert.Equal(t, "08:45", *r.On)
}

func TestClockIn_AlreadyClockedIn(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	_, err := s.ClockIn(ctx, "2024-01-15", "09:00")
	require.NoError(t, err)

	_, err = s.ClockIn(ctx, "2024-01-15", "09:30")
	assert.ErrorIs(t, err, apperrors.AlreadyClockedIn)
	assert.Equal(t, apperrors.KindUser, apperrors.KindOf(err))
}

func TestClockIn_RejectsInvalidInput(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	_, err := s.ClockIn(ctx, "2024-02-30", "09:00")
	assert.ErrorIs(t, err, apperrors.InvalidDate)

	_, err = s.ClockIn(ctx, "2024-01-15", "24:00")
	assert.ErrorIs(t, err, apperrors.InvalidTime)
}

func TestClockOut_Overnight(t *testing.T) {
	s, _, _ := newService(t, "2024-01-16 06:00")
	ctx := context.Background()

	_, err := s.ClockIn(ctx, "2024-01-15", "22:00")
	require.NoError(t, err)

	r, err := s.ClockOut(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", r.Date)
	assert.Equal(t, "06:00", *r.Off)

	records, err := s.ListRecords(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestClockOut_NotClockedIn(t *testing.T) {
	s, _, _ := newService(t, "2024-01-16 18:00")

	_, err := s.ClockOut(context.Background(), "", "")
	assert.ErrorIs(t, err, apperrors.NotClockedIn)
}

func TestClockOut_RepeatedOverwrites(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	_, err := s.ClockIn(ctx, "2024-01-15", "09:00")
	require.NoError(t, err)
	_, err = s.ClockOut(ctx, "2024-01-15", "17:00")
	require.NoError(t, err)
	r, err := s.ClockOut(ctx, "2024-01-15", "18:30")
	require.NoError(t, err)
	assert.Equal(t, "18:30", *r.Off)
}

func TestDeleteRecord_PreservesOrder(t *testing.T) {
	s, _, _ := newService(t, "2024-01-20 09:00")
	ctx := context.Background()

	for _, d := range []string{"2024-01-17", "2024-01-15", "2024-01-16"} {
		_, err := s.UpdateRecord(ctx, d, ptr("09:00"), nil)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteRecord(ctx, "2024-01-15"))

	records := storedRecords(t, s.Store())
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-17", records[0].Date)
	assert.Equal(t, "2024-01-16", records[1].Date)

	err := s.DeleteRecord(ctx, "2024-01-15")
	assert.ErrorIs(t, err, apperrors.RecordNotFound)
}

func TestUpdateRecord(t *testing.T) {
	s, _, _ := newService(t, "2024-01-20 09:00")
	ctx := context.Background()

	r, err := s.UpdateRecord(ctx, "2024-01-15", ptr(" 09:00 "), ptr("18:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", *r.On)

	r, err = s.UpdateRecord(ctx, "2024-01-15", ptr("09:00"), ptr(""))
	require.NoError(t, err)
	assert.Nil(t, r.Off)

	_, err = s.UpdateRecord(ctx, "2024-01-15", ptr("9:75"), nil)
	assert.ErrorIs(t, err, apperrors.InvalidTime)

	got, err := s.GetRecord(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, model.StateClockedIn, got.State())
}

func TestListRecords_Range(t *testing.T) {
	s, _, _ := newService(t, "2024-01-20 09:00")
	ctx := context.Background()

	for _, d := range []string{"2024-01-18", "2024-01-10", "2024-01-15"} {
		_, err := s.UpdateRecord(ctx, d, ptr("09:00"), nil)
		require.NoError(t, err)
	}

	records, err := s.ListRecords(ctx, "2024-01-12", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-15", records[0].Date)

	_, err = s.ListRecords(ctx, "2024-01-31", "2024-01-01")
	assert.ErrorIs(t, err, apperrors.InvalidPeriod)
}

func TestToday(t *testing.T) {
	s, c, _ := newService(t, "2024-01-15 08:00")
	ctx := context.Background()

	st, err := s.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "empty", st.State)
	assert.Nil(t, st.Record)

	_, err = s.ClockIn(ctx, "", "09:00")
	require.NoError(t, err)

	c.now = c.now.Add(3*time.Hour + 30*time.Minute)
	st, err = s.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "clocked_in", st.State)
	assert.Equal(t, 150, st.DurationMinutes)
	assert.Equal(t, "02:30", st.Duration)

	// 跨天后仍显示前一天的上班记录
	c.now = time.Date(2024, 1, 16, 1, 0, 0, 0, time.Local)
	st, err = s.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "clocked_in", st.State)
	assert.Equal(t, "2024-01-15", st.Record.Date)
	assert.Equal(t, 16*60, st.DurationMinutes)
}

func TestCleanupOldData(t *testing.T) {
	s, _, _ := newService(t, "2024-03-31 09:00")
	ctx := context.Background()

	for _, d := range []string{"2024-01-01", "2024-03-01", "2024-03-30"} {
		_, err := s.UpdateRecord(ctx, d, ptr("09:00"), nil)
		require.NoError(t, err)
	}

	_, err := s.CleanupOldData(ctx, 0)
	assert.ErrorIs(t, err, apperrors.InvalidCleanupDays)

	removed, err := s.CleanupOldData(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = s.CleanupOldData(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestImportRecords(t *testing.T) {
	s, _, _ := newService(t, "2024-03-31 09:00")
	ctx := context.Background()

	_, err := s.UpdateRecord(ctx, "2024-01-15", ptr("09:00"), nil)
	require.NoError(t, err)

	res, err := s.ImportRecords(ctx, []model.AttendanceRecord{
		{Date: "2024-01-15", On: ptr("08:00"), Off: ptr("17:00")},
		{Date: "2024-01-16", On: ptr(" ")},
	}, ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Total)

	r, err := s.GetRecord(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "08:00", *r.On)

	_, err = s.ImportRecords(ctx, []model.AttendanceRecord{{Date: "2024-02-30"}}, ImportReplace)
	assert.ErrorIs(t, err, apperrors.InvalidRecord)
	assert.Len(t, storedRecords(t, s.Store()), 2)

	res, err = s.ImportRecords(ctx, []model.AttendanceRecord{{Date: "2024-02-01"}}, ImportReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestClearAllData_KeepsBackups(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	_, err := s.ClockIn(ctx, "", "")
	require.NoError(t, err)
	require.NoError(t, s.ClearAllData(ctx))

	assert.Empty(t, storedRecords(t, s.Store()))
	assert.NotEmpty(t, s.Store().ListBackups(ctx))
}

func TestWarning(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	assert.True(t, s.ShouldShowWarning(ctx))
	require.NoError(t, s.AcknowledgeWarning(ctx))
	assert.False(t, s.ShouldShowWarning(ctx))
}

func TestExport(t *testing.T) {
	s, _, _ := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	_, err := s.UpdateRecord(ctx, "2024-01-15", ptr("09:00"), ptr("18:00"))
	require.NoError(t, err)

	doc, err := s.Export(ctx, nil, export.FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "2024-01-15,星期一,09:00,18:00,9.00,")
}

func TestProvider_IsolatesDevices(t *testing.T) {
	_, _, p := newService(t, "2024-01-15 09:00")
	ctx := context.Background()

	_, err := p.Workspace("a").Records.ClockIn(ctx, "", "")
	require.NoError(t, err)

	assert.Len(t, storedRecords(t, p.Workspace("a").Store), 1)
	assert.Empty(t, storedRecords(t, p.Workspace("b").Store))
	assert.Same(t, p.Workspace("a"), p.Workspace("a"))
}

func TestStorageFailureSurfacesNotice(t *testing.T) {
	base := memory.New()
	flaky := memory.NewFlaky(base)
	policy := store.DefaultPolicy()
	policy.RetryDelay = time.Millisecond

	p := NewProvider(Deps{KV: flaky, Policy: policy})
	s := p.Workspace("dev").Records

	flaky.Fail(memory.OpSet, "dev:"+store.KeyRecords, 10)
	ctx, c := notify.WithCollector(context.Background())

	_, err := s.ClockIn(ctx, "2024-01-15", "09:00")
	assert.Equal(t, apperrors.KindStorage, apperrors.KindOf(err))
	require.NotEmpty(t, c.Notices())

	logs, err := p.Workspace("dev").Errors.ErrorLogs(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestReadOutageAbortsWrites(t *testing.T) {
	base := memory.New()
	flaky := memory.NewFlaky(base)
	policy := store.DefaultPolicy()
	policy.RetryDelay = time.Millisecond
	c := &clock{now: time.Date(2024, 1, 16, 9, 0, 0, 0, time.Local)}
	p := NewProvider(Deps{KV: flaky, Policy: policy, Clock: c.Now})
	s := p.Workspace("dev").Records
	ctx := context.Background()

	_, err := s.UpdateRecord(ctx, "2024-01-15", ptr("09:00"), ptr("18:00"))
	require.NoError(t, err)
	_, err = s.ClockIn(ctx, "2024-01-16", "09:00")
	require.NoError(t, err)

	key := "dev:" + store.KeyRecords
	sets := flaky.Calls(memory.OpSet, key)

	flaky.Fail(memory.OpGet, key, 3)
	_, err = s.ClockOut(ctx, "2024-01-16", "18:00")
	assert.ErrorIs(t, err, apperrors.StorageReadFailed)
	assert.Equal(t, sets, flaky.Calls(memory.OpSet, key))

	flaky.Fail(memory.OpGet, key, 3)
	_, err = s.Today(ctx)
	assert.ErrorIs(t, err, apperrors.StorageReadFailed)

	records := storedRecords(t, s.Store())
	require.Len(t, records, 2)
	assert.Equal(t, model.StateClockedIn, records[1].State())
}

package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"HoursGuard/internal/model"
	"HoursGuard/internal/queue"
	"HoursGuard/internal/service"
	"HoursGuard/internal/store"
	"HoursGuard/storage/memory"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type eventSink struct {
	mu   sync.Mutex
	keys []string
	msgs []model.EventMessage
}

func (s *eventSink) Publish(_ context.Context, key string, body any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if msg, ok := body.(model.EventMessage); ok {
		s.msgs = append(s.msgs, msg)
	}
	return nil
}

func (s *eventSink) healthReports() []model.EventMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EventMessage
	for _, m := range s.msgs {
		if m.EventType == model.EventHealthReport {
			out = append(out, m)
		}
	}
	return out
}

func newProvider(t *testing.T) (*service.Provider, *manualClock, *eventSink) {
	t.Helper()

	c := &manualClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)}
	sink := &eventSink{}
	policy := store.DefaultPolicy()
	policy.RetryDelay = time.Millisecond

	p := service.NewProvider(service.Deps{
		KV:     memory.New(),
		Policy: policy,
		Events: queue.NewEvents(sink, nil),
		Clock:  c.Now,
	})
	return p, c, sink
}

func TestRunOnce_BacksUpAndReportsHealth(t *testing.T) {
	p, c, sink := newProvider(t)
	ctx := context.Background()

	_, err := p.Devices().Ensure(ctx, "dev-a", "a")
	require.NoError(t, err)
	_, err = p.Devices().Ensure(ctx, "dev-b", "b")
	require.NoError(t, err)

	// dev-b 的打卡写入会触发一次节流备份
	_, err = p.Workspace("dev-b").Records.ClockIn(ctx, "2024-03-15", "09:00")
	require.NoError(t, err)

	s := New(p, Options{})
	results, err := s.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "dev-a", results[0].DeviceID)
	assert.True(t, results[0].BackedUp)
	assert.False(t, results[1].BackedUp)
	for _, r := range results {
		assert.True(t, r.Health.IsHealthy, r.Health.Issues)
	}
	assert.Len(t, sink.healthReports(), 2)

	c.Advance(25 * time.Hour)
	results, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, results[0].BackedUp)
	assert.True(t, results[1].BackedUp)
	assert.Len(t, p.Workspace("dev-b").Store.ListBackups(ctx), 2)
}

func TestRunOnce_AutoCleanup(t *testing.T) {
	p, _, _ := newProvider(t)
	ctx := context.Background()

	_, err := p.Devices().Ensure(ctx, "dev-a", "a")
	require.NoError(t, err)
	_, err = p.Workspace("dev-a").Records.ImportRecords(ctx, []model.AttendanceRecord{
		{Date: "2024-01-02", On: model.StringPtr("09:00"), Off: model.StringPtr("18:00")},
		{Date: "2024-03-14", On: model.StringPtr("09:00"), Off: model.StringPtr("18:00")},
	}, service.ImportReplace)
	require.NoError(t, err)

	results, err := New(p, Options{AutoCleanupDays: 30}).RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].CleanedUp)
	assert.NoError(t, results[0].CleanupErr)

	records, err := p.Workspace("dev-a").Store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-03-14", records[0].Date)
}

func TestRunOnce_ReadOutageSkipsBackupAndCleanup(t *testing.T) {
	c := &manualClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)}
	sink := &eventSink{}
	flaky := memory.NewFlaky(memory.New())
	policy := store.DefaultPolicy()
	policy.RetryDelay = time.Millisecond
	p := service.NewProvider(service.Deps{
		KV:     flaky,
		Policy: policy,
		Events: queue.NewEvents(sink, nil),
		Clock:  c.Now,
	})
	ctx := context.Background()

	_, err := p.Devices().Ensure(ctx, "dev-a", "a")
	require.NoError(t, err)
	_, err = p.Workspace("dev-a").Records.UpdateRecord(ctx, "2024-01-02", model.StringPtr("09:00"), model.StringPtr("18:00"))
	require.NoError(t, err)

	key := "dev-a:" + store.KeyRecords
	sets := flaky.Calls(memory.OpSet, key)
	backupSets := flaky.Calls(memory.OpSet, "dev-a:"+store.KeyBackups)
	c.Advance(25 * time.Hour)

	flaky.Fail(memory.OpGet, key, 3)
	results, err := New(p, Options{AutoCleanupDays: 30}).RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].ReadErr)
	assert.False(t, results[0].BackedUp)
	assert.Zero(t, results[0].CleanedUp)
	assert.Equal(t, sets, flaky.Calls(memory.OpSet, key))
	assert.Equal(t, backupSets, flaky.Calls(memory.OpSet, "dev-a:"+store.KeyBackups))

	records, err := p.Workspace("dev-a").Store.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRunOnce_NoDevices(t *testing.T) {
	p, _, sink := newProvider(t)

	results, err := New(p, Options{}).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, sink.healthReports())
}

func TestRunOnce_CancelledContextMarksInterrupted(t *testing.T) {
	p, _, _ := newProvider(t)
	_, err := p.Devices().Ensure(context.Background(), "dev-a", "a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(p, Options{}).RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.True(t, results[0].Interrupted)
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, _, sink := newProvider(t)
	_, err := p.Devices().Ensure(context.Background(), "dev-a", "a")
	require.NoError(t, err)

	s := New(p, Options{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(sink.healthReports()) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, s.LastRun().IsZero())
}

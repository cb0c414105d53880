package store

import (
	"time"

	"HoursGuard/config"
	"HoursGuard/internal/errhandler"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/queue"
	"HoursGuard/pkg/metrics"
)

// Policy 存储可靠性策略
type Policy struct {
	MaxRetries       int
	RetryDelay       time.Duration // 首次重试间隔，之后翻倍
	BackupInterval   time.Duration // 自动备份节流
	BackupMax        int           // 保留份数，超出后淘汰最旧的
	BackupStaleAfter time.Duration
	LimitBytes       int64
	WarnRatio        float64
}

// DefaultPolicy 与配置默认值一致
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:       3,
		RetryDelay:       100 * time.Millisecond,
		BackupInterval:   24 * time.Hour,
		BackupMax:        5,
		BackupStaleAfter: 7 * 24 * time.Hour,
		LimitBytes:       10240 * 1024,
		WarnRatio:        0.8,
	}
}

func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		MaxRetries:       cfg.StorageMaxRetries,
		RetryDelay:       cfg.StorageRetryDelay,
		BackupInterval:   cfg.BackupInterval,
		BackupMax:        cfg.BackupMax,
		BackupStaleAfter: cfg.BackupStaleAfter,
		LimitBytes:       cfg.StorageLimitBytes(),
		WarnRatio:        cfg.StorageWarnRatio,
	}
}

type Option func(*Manager)

// WithBreaker 共享的后端熔断器
func WithBreaker(b *Breaker) Option {
	return func(m *Manager) { m.breaker = b }
}

func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithErrorHandler(h *errhandler.Handler) Option {
	return func(m *Manager) { m.handler = h }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithEvents(e *queue.Events, deviceID string) Option {
	return func(m *Manager) {
		m.events = e
		m.deviceID = deviceID
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

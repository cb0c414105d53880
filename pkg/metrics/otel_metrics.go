package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "hoursguard"

// Metrics OpenTelemetry 指标集合。nil 接收者上的方法都是空操作
type Metrics struct {
	// 存储相关指标
	StorageOpsTotal   metric.Int64Counter
	StorageOpDuration metric.Float64Histogram
	StorageRetryTotal metric.Int64Counter
	BackupTotal       metric.Int64Counter
	RestoreTotal      metric.Int64Counter

	// 业务指标
	ClockEventsTotal metric.Int64Counter
	ErrorsTotal      metric.Int64Counter
}

// New 基于全局 MeterProvider 创建指标；OTel 未初始化时为 no-op
func New() (*Metrics, error) {
	return NewWithMeter(otel.Meter(meterName))
}

func NewWithMeter(meter metric.Meter) (*Metrics, error) {
	var err error
	m := &Metrics{}

	m.StorageOpsTotal, err = meter.Int64Counter(
		"storage_ops_total",
		metric.WithDescription("Total number of storage operations"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	m.StorageOpDuration, err = meter.Float64Histogram(
		"storage_op_duration_seconds",
		metric.WithDescription("Storage operation duration including retries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, err
	}

	m.StorageRetryTotal, err = meter.Int64Counter(
		"storage_retry_total",
		metric.WithDescription("Total number of storage retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	m.BackupTotal, err = meter.Int64Counter(
		"backup_total",
		metric.WithDescription("Total number of backup snapshots written"),
		metric.WithUnit("{backup}"),
	)
	if err != nil {
		return nil, err
	}

	m.RestoreTotal, err = meter.Int64Counter(
		"restore_total",
		metric.WithDescription("Total number of restore attempts"),
		metric.WithUnit("{restore}"),
	)
	if err != nil {
		return nil, err
	}

	m.ClockEventsTotal, err = meter.Int64Counter(
		"clock_events_total",
		metric.WithDescription("Total number of clock-in and clock-out events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"handled_errors_total",
		metric.WithDescription("Total number of errors passed to the error handler"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordStorageOp 记录一次存储操作（含重试后的最终结果）
func (m *Metrics) RecordStorageOp(ctx context.Context, op, key string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	status := "success"
	if !ok {
		status = "failed"
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("key", key),
		attribute.String("status", status),
	)
	m.StorageOpsTotal.Add(ctx, 1, attrs)
	m.StorageOpDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRetry 记录一次重试
func (m *Metrics) RecordRetry(ctx context.Context, op, key string) {
	if m == nil {
		return
	}
	m.StorageRetryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("key", key),
	))
}

// RecordBackup 记录备份写入
func (m *Metrics) RecordBackup(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	m.BackupTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

// RecordRestore 记录恢复结果
func (m *Metrics) RecordRestore(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.RestoreTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", ok)))
}

// RecordClockEvent 记录上下班打卡
func (m *Metrics) RecordClockEvent(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ClockEventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordError 记录错误处理器收到的错误
func (m *Metrics) RecordError(ctx context.Context, kind, severity string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("severity", severity),
	))
}

// Package store 打卡数据的防御式持久化：读写重试、写后校验、自动备份与恢复、健康检查
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"HoursGuard/internal/errhandler"
	"HoursGuard/internal/model"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/queue"
	"HoursGuard/internal/validator"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/metrics"
	"HoursGuard/storage/kv"
)

// 持久化的键
const (
	KeyRecords      = "records"
	KeyBackups      = "backupData"
	KeyLastBackup   = "lastBackupTime"
	KeyWarningShown = "hasShownWarning"
	KeyErrorLogs    = errhandler.KeyErrorLogs
)

var (
	errInvalidRecords = errors.New("records failed validation")
	errVerifyMismatch = errors.New("write verification failed")
)

// Manager 一个设备命名空间上的存储管理器
type Manager struct {
	kv       kv.Store
	policy   Policy
	breaker  *Breaker
	notifier notify.Notifier
	handler  *errhandler.Handler
	metrics  *metrics.Metrics
	events   *queue.Events
	deviceID string
	now      func() time.Time
}

func NewManager(store kv.Store, policy Policy, opts ...Option) *Manager {
	if policy.MaxRetries < 1 {
		policy.MaxRetries = 1
	}
	if policy.BackupMax < 1 {
		policy.BackupMax = 1
	}

	m := &Manager{
		kv:       store,
		policy:   policy,
		notifier: notify.Discard{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy 当前策略
func (m *Manager) Policy() Policy {
	return m.policy
}

// Now 管理器使用的时钟
func (m *Manager) Now() time.Time {
	return m.now()
}

func (m *Manager) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.policy.RetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = m.policy.RetryDelay * 8
	return b
}

// retry 按策略重试 op，每次尝试经过熔断器
func retry[T any](ctx context.Context, m *Manager, op, key string, fn func(context.Context) (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		var out T
		err := m.breaker.Call(ctx, func(ctx context.Context) error {
			var err error
			out, err = fn(ctx)
			return err
		})
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrBreakerOpen) {
			return out, backoff.Permanent(err)
		}
		return out, err
	},
		backoff.WithBackOff(m.newBackOff()),
		backoff.WithMaxTries(uint(m.policy.MaxRetries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			m.metrics.RecordRetry(ctx, op, key)
			logger.Logger.Debug("Retrying storage operation",
				zap.String("op", op),
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Duration("next", next),
				zap.Error(err),
			)
		}),
	)
}

type readResult struct {
	raw   []byte
	found bool
}

// readRaw 带重试的读取。validate 不为 nil 时，校验失败视为一次失败的尝试
func (m *Manager) readRaw(ctx context.Context, key string, validate func([]byte) bool) (readResult, error) {
	start := time.Now()
	res, err := retry(ctx, m, "get", key, func(ctx context.Context) (readResult, error) {
		raw, err := m.kv.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			return readResult{}, nil
		}
		if err != nil {
			return readResult{}, err
		}
		if validate != nil && !validate(raw) {
			return readResult{}, fmt.Errorf("%s: %w", key, errInvalidRecords)
		}
		return readResult{raw: raw, found: true}, nil
	})
	m.metrics.RecordStorageOp(ctx, "get", key, err == nil, time.Since(start))
	return res, err
}

// writeVerified 带重试的写入，每次写入后回读并做结构比较
func (m *Manager) writeVerified(ctx context.Context, key string, raw []byte) error {
	var want any
	if err := json.Unmarshal(raw, &want); err != nil {
		return err
	}

	start := time.Now()
	_, err := retry(ctx, m, "set", key, func(ctx context.Context) (struct{}, error) {
		if err := m.kv.Set(ctx, key, raw); err != nil {
			return struct{}{}, err
		}

		back, err := m.kv.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			return struct{}{}, fmt.Errorf("%s: %w", key, errVerifyMismatch)
		}
		if err != nil {
			return struct{}{}, err
		}

		var got any
		if err := json.Unmarshal(back, &got); err != nil || !cmp.Equal(want, got) {
			return struct{}{}, fmt.Errorf("%s: %w", key, errVerifyMismatch)
		}
		return struct{}{}, nil
	})
	m.metrics.RecordStorageOp(ctx, "set", key, err == nil, time.Since(start))
	return err
}

func recordsValidator(b []byte) bool {
	_, valid := validator.DecodeRecords(b)
	return valid
}

// SafeGetRaw 读取原始值。records 会做格式校验，重试耗尽后尝试从备份恢复：
// 数据损坏时恢复并写回，后端读取失败时只返回备份内容，不写入。
// 键不存在或最终失败时 ok 为 false。
func (m *Manager) SafeGetRaw(ctx context.Context, key string) (raw []byte, ok bool) {
	if key != KeyRecords {
		res, err := m.readRaw(ctx, key, nil)
		if err != nil {
			m.report(ctx, apperrors.Storage("store.SafeGet", err), true)
			return nil, false
		}
		return res.raw, res.found
	}

	res, err := m.readRaw(ctx, key, recordsValidator)
	if err == nil {
		return res.raw, res.found
	}
	if errors.Is(err, errInvalidRecords) {
		records, ok := m.recoverCorrupted(ctx, err)
		if !ok {
			return nil, false
		}
		restored, _ := json.Marshal(records)
		return restored, true
	}

	m.report(ctx, apperrors.Storage("store.SafeGet", err).WithUserMessage("打卡数据读取失败，暂时显示最近一次备份"), true)
	records := m.TryRestoreFromBackup(ctx)
	if records == nil {
		return nil, false
	}
	snapshot, _ := json.Marshal(records)
	return snapshot, true
}

// recoverCorrupted 记录已损坏：用最新的合法备份覆盖。没有备份时 ok 为 false
func (m *Manager) recoverCorrupted(ctx context.Context, cause error) ([]model.AttendanceRecord, bool) {
	m.report(ctx, apperrors.Storage("store.Records", cause).WithUserMessage("打卡数据已损坏，正在尝试从备份恢复"), true)

	records := m.TryRestoreFromBackup(ctx)
	if records == nil {
		return nil, false
	}

	restored, _ := json.Marshal(records)
	if err := m.writeVerified(ctx, KeyRecords, restored); err != nil {
		logger.Logger.Error("Failed to write restored records back", zap.Error(err))
	}
	m.notifier.Modal(ctx, "数据已恢复",
		fmt.Sprintf("打卡数据已损坏，已从备份恢复 %d 条记录", len(records)),
		[]string{"检查最近的打卡记录是否完整", "手动创建一次备份"},
	)
	m.events.Emit(ctx, model.EventBackupRestored, m.deviceID, map[string]interface{}{
		"records": len(records),
		"trigger": "corrupted",
	})
	return records, true
}

// SafeGet 读取并解码 key，缺失、失败或解码错误时返回 def
func SafeGet[T any](ctx context.Context, m *Manager, key string, def T) T {
	raw, ok := m.SafeGetRaw(ctx, key)
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Logger.Warn("Stored value has unexpected shape", zap.String("key", key), zap.Error(err))
		return def
	}
	return v
}

// Records 读取全部打卡记录。
// 数据损坏时从备份恢复，没有可用备份时返回空列表；后端读取失败时返回存储错误，调用方不应据此写入。
func (m *Manager) Records(ctx context.Context) ([]model.AttendanceRecord, error) {
	res, err := m.readRaw(ctx, KeyRecords, recordsValidator)
	switch {
	case err == nil && !res.found:
		return []model.AttendanceRecord{}, nil
	case err == nil:
		records, _ := validator.DecodeRecords(res.raw)
		return records, nil
	case errors.Is(err, errInvalidRecords):
		records, ok := m.recoverCorrupted(ctx, err)
		if !ok {
			return []model.AttendanceRecord{}, nil
		}
		return model.CloneRecords(records), nil
	default:
		appErr := apperrors.Storage("store.Records", fmt.Errorf("%w: %v", apperrors.StorageReadFailed, err)).
			WithUserMessage("打卡数据读取失败，请稍后重试")
		m.report(ctx, appErr, true)
		return nil, appErr
	}
}

// SafeSet 写入 key，成功返回 true，不会 panic。
// records 写入前校验（不合法立即拒绝，不重试）并触发节流备份。
func (m *Manager) SafeSet(ctx context.Context, key string, data any) bool {
	if key == KeyRecords {
		records, ok := asRecords(data)
		if !ok || !validator.ValidateRecordsArray(records) {
			m.report(ctx, apperrors.Validation("store.SafeSet", apperrors.InvalidRecord), false)
			return false
		}
		data = records

		if _, err := m.CreateBackup(ctx, records); err != nil {
			m.report(ctx, apperrors.Storage("store.CreateBackup", err), true)
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		m.report(ctx, apperrors.System("store.SafeSet", err), false)
		return false
	}

	if err := m.writeVerified(ctx, key, raw); err != nil {
		m.report(ctx, apperrors.Storage("store.SafeSet", err).WithUserMessage("数据保存失败，请稍后重试"), false)
		return false
	}
	return true
}

// SaveRecords 写入记录列表，失败时返回分类后的错误
func (m *Manager) SaveRecords(ctx context.Context, records []model.AttendanceRecord) error {
	if !validator.ValidateRecordsArray(records) {
		return apperrors.Validation("store.SaveRecords", apperrors.InvalidRecord)
	}
	if !m.SafeSet(ctx, KeyRecords, records) {
		// SafeSet 已经上报过
		return apperrors.Storage("store.SaveRecords", apperrors.StorageWriteFailed).
			WithUserMessage("数据保存失败，请稍后重试").
			MarkHandled()
	}
	return nil
}

func asRecords(data any) ([]model.AttendanceRecord, bool) {
	switch v := data.(type) {
	case []model.AttendanceRecord:
		if v == nil {
			v = []model.AttendanceRecord{}
		}
		return v, true
	case *[]model.AttendanceRecord:
		if v == nil {
			return nil, false
		}
		return asRecords(*v)
	default:
		return nil, false
	}
}

// report 交给错误处理器；没有处理器时 silent=false 的错误直接提示
func (m *Manager) report(ctx context.Context, err *apperrors.AppError, silent bool) {
	if m.handler != nil {
		m.handler.Handle(ctx, err, errhandler.Options{Silent: silent})
		return
	}

	logger.Logger.Warn("Storage error", zap.String("context", err.Context), zap.Error(err))
	if !silent {
		m.notifier.Toast(ctx, err.UserMessage)
	}
	err.MarkHandled()
}

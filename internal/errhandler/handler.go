// Package errhandler 统一的错误处理：记录日志、写入错误环形缓冲区、按严重程度提示用户
package errhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/queue"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/metrics"
	"HoursGuard/pkg/snowflake"
	"HoursGuard/storage/kv"
)

// KeyErrorLogs 错误日志在存储中的键
const KeyErrorLogs = "errorLogs"

// DefaultMaxLogs 环形缓冲区默认容量
const DefaultMaxLogs = 50

var errCorruptLogs = errors.New("error log corrupted")

// Options 单次处理的选项
type Options struct {
	Context  string             // 覆盖错误自带的上下文
	Severity apperrors.Severity // 覆盖错误自带的严重程度
	Silent   bool               // 只记录，不提示用户
}

var titles = map[apperrors.Kind]string{
	apperrors.KindStorage:    "存储错误",
	apperrors.KindNetwork:    "网络错误",
	apperrors.KindFile:       "文件错误",
	apperrors.KindValidation: "数据格式错误",
	apperrors.KindSystem:     "系统错误",
	apperrors.KindUser:       "操作失败",
}

var suggestions = map[apperrors.Kind][]string{
	apperrors.KindStorage:    {"清理旧数据释放空间", "导出数据后重新初始化", "稍后重试"},
	apperrors.KindNetwork:    {"检查网络连接", "稍后重试"},
	apperrors.KindFile:       {"检查文件路径和权限", "尝试其他导出格式"},
	apperrors.KindValidation: {"检查日期格式 YYYY-MM-DD", "检查时间格式 HH:MM"},
	apperrors.KindSystem:     {"重启应用", "导出错误日志并反馈"},
	apperrors.KindUser:       {"确认当前打卡状态后重试"},
}

// Handler 按设备构造，错误日志写在该设备的命名空间下
type Handler struct {
	store    kv.Store
	notifier notify.Notifier
	ids      *snowflake.Generator
	metrics  *metrics.Metrics
	events   *queue.Events
	deviceID string
	maxLogs  int
	now      func() time.Time

	mu sync.Mutex // 串行化环形缓冲区的读改写
}

type Option func(*Handler)

func WithNotifier(n notify.Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

func WithIDs(ids *snowflake.Generator) Option {
	return func(h *Handler) { h.ids = ids }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithEvents(e *queue.Events, deviceID string) Option {
	return func(h *Handler) {
		h.events = e
		h.deviceID = deviceID
	}
}

func WithMaxLogs(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxLogs = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func New(store kv.Store, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		notifier: notify.Discard{},
		maxLogs:  DefaultMaxLogs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle 处理一个错误并返回写入的日志条目。
// nil 接收者、nil 错误或已处理过的错误直接返回空条目
func (h *Handler) Handle(ctx context.Context, err error, opts Options) model.ErrorLogEntry {
	if h == nil || err == nil || apperrors.IsHandled(err) {
		return model.ErrorLogEntry{}
	}

	kind := apperrors.KindOf(err)
	severity := apperrors.SeverityOf(err)
	if opts.Severity != "" {
		severity = opts.Severity
	}

	where := opts.Context
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if where == "" {
			where = appErr.Context
		}
		appErr.MarkHandled()
	}

	entry := model.ErrorLogEntry{
		ID:          h.nextID(),
		Timestamp:   h.now(),
		Type:        string(kind),
		Context:     where,
		Message:     err.Error(),
		UserMessage: apperrors.UserMessageOf(err),
		Severity:    string(severity),
	}

	h.log(entry, err)
	h.append(ctx, entry)
	h.metrics.RecordError(ctx, entry.Type, entry.Severity)
	h.events.Emit(ctx, model.EventErrorLogged, h.deviceID, map[string]interface{}{
		"type":     entry.Type,
		"context":  entry.Context,
		"severity": entry.Severity,
	})

	if !opts.Silent {
		if severity.IsBlocking() {
			h.notifier.Modal(ctx, titles[kind], entry.UserMessage, suggestions[kind])
		} else {
			h.notifier.Toast(ctx, entry.UserMessage)
		}
	}

	return entry
}

func (h *Handler) log(entry model.ErrorLogEntry, err error) {
	fields := []zap.Field{
		zap.String("type", entry.Type),
		zap.String("context", entry.Context),
		zap.String("severity", entry.Severity),
		zap.String("device_id", h.deviceID),
		zap.Error(err),
	}

	switch apperrors.Severity(entry.Severity) {
	case apperrors.SeverityLow:
		logger.Logger.Info("Handled error", fields...)
	case apperrors.SeverityMedium:
		logger.Logger.Warn("Handled error", fields...)
	default:
		logger.Logger.Error("Handled error", fields...)
	}
}

// append 写入环形缓冲区。失败只记日志，不再递归处理。
// 读取失败时放弃本次追加，内容损坏时重新开始
func (h *Handler) append(ctx context.Context, entry model.ErrorLogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	logs, err := h.read(ctx)
	switch {
	case errors.Is(err, errCorruptLogs):
		logger.Logger.Warn("Error log corrupted, starting a new one", zap.Error(err))
		logs = nil
	case err != nil:
		logger.Logger.Warn("Error log unreadable, entry not persisted",
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
		return
	}

	logs = append(logs, entry)
	if len(logs) > h.maxLogs {
		logs = logs[len(logs)-h.maxLogs:]
	}

	if err := h.write(ctx, logs); err != nil {
		logger.Logger.Error("Failed to persist error log", zap.Error(err))
	}
}

// ErrorLogs 返回全部错误日志，旧的在前
func (h *Handler) ErrorLogs(ctx context.Context) ([]model.ErrorLogEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	logs, err := h.read(ctx)
	if err != nil {
		return nil, apperrors.Storage("errhandler.ErrorLogs", err)
	}
	return logs, nil
}

// ClearErrorLogs 清空错误日志
func (h *Handler) ClearErrorLogs(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Delete(ctx, KeyErrorLogs); err != nil {
		return apperrors.Storage("errhandler.ClearErrorLogs", err)
	}
	return nil
}

// ExportErrorLogs 导出为缩进 JSON
func (h *Handler) ExportErrorLogs(ctx context.Context) ([]byte, error) {
	logs, err := h.ErrorLogs(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(logs, "", "  ")
}

func (h *Handler) read(ctx context.Context) ([]model.ErrorLogEntry, error) {
	raw, err := h.store.Get(ctx, KeyErrorLogs)
	if errors.Is(err, kv.ErrNotFound) {
		return []model.ErrorLogEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var logs []model.ErrorLogEntry
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptLogs, err)
	}
	if logs == nil {
		logs = []model.ErrorLogEntry{}
	}
	return logs, nil
}

func (h *Handler) write(ctx context.Context, logs []model.ErrorLogEntry) error {
	raw, err := json.Marshal(logs)
	if err != nil {
		return err
	}
	return h.store.Set(ctx, KeyErrorLogs, raw)
}

func (h *Handler) nextID() string {
	if h.ids == nil {
		return h.now().Format("20060102150405.000000000")
	}
	return h.ids.NextString()
}

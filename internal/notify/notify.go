// Package notify 面向用户的提示：轻提示（toast）和带建议的弹窗（modal）
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/pkg/logger"
)

// Notifier 提示的投递方式由实现决定：日志、HTTP 响应、消息队列
type Notifier interface {
	Toast(ctx context.Context, message string)
	Modal(ctx context.Context, title, message string, suggestions []string)
}

// Log 只写日志
type Log struct{}

func (Log) Toast(_ context.Context, message string) {
	logger.Logger.Info("Toast notice", zap.String("message", message))
}

func (Log) Modal(_ context.Context, title, message string, suggestions []string) {
	logger.Logger.Warn("Modal notice",
		zap.String("title", title),
		zap.String("message", message),
		zap.Strings("suggestions", suggestions),
	)
}

// Collector 收集本次请求/命令期间产生的提示
type Collector struct {
	mu      sync.Mutex
	notices []model.Notice
}

func (c *Collector) Toast(_ context.Context, message string) {
	c.add(model.Notice{Level: model.NoticeToast, Message: message})
}

func (c *Collector) Modal(_ context.Context, title, message string, suggestions []string) {
	c.add(model.Notice{
		Level:       model.NoticeModal,
		Title:       title,
		Message:     message,
		Suggestions: append([]string(nil), suggestions...),
	})
}

func (c *Collector) add(n model.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices 返回已收集提示的副本
func (c *Collector) Notices() []model.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Notice(nil), c.notices...)
}

type collectorKey struct{}

// WithCollector 在 ctx 上挂载一个新的 Collector
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFrom 取出 ctx 上的 Collector
func CollectorFrom(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// Context 把提示写入 ctx 上的 Collector，没有 Collector 时丢弃
type Context struct{}

func (Context) Toast(ctx context.Context, message string) {
	if c := CollectorFrom(ctx); c != nil {
		c.Toast(ctx, message)
	}
}

func (Context) Modal(ctx context.Context, title, message string, suggestions []string) {
	if c := CollectorFrom(ctx); c != nil {
		c.Modal(ctx, title, message, suggestions)
	}
}

// Multi 依次投递给多个 Notifier
type Multi []Notifier

func (m Multi) Toast(ctx context.Context, message string) {
	for _, n := range m {
		n.Toast(ctx, message)
	}
}

func (m Multi) Modal(ctx context.Context, title, message string, suggestions []string) {
	for _, n := range m {
		n.Modal(ctx, title, message, suggestions)
	}
}

// Discard 丢弃所有提示
type Discard struct{}

func (Discard) Toast(context.Context, string)                   {}
func (Discard) Modal(context.Context, string, string, []string) {}

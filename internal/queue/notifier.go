package queue

import (
	"context"

	"HoursGuard/internal/model"
)

// NoticeNotifier 将用户提示作为事件发布，供其他客户端（如小程序推送）消费
type NoticeNotifier struct {
	events   *Events
	deviceID string
}

func NewNoticeNotifier(events *Events, deviceID string) *NoticeNotifier {
	return &NoticeNotifier{events: events, deviceID: deviceID}
}

func (n *NoticeNotifier) Toast(ctx context.Context, message string) {
	n.events.Emit(ctx, model.EventNotice, n.deviceID, map[string]interface{}{
		"level":   string(model.NoticeToast),
		"message": message,
	})
}

func (n *NoticeNotifier) Modal(ctx context.Context, title, message string, suggestions []string) {
	n.events.Emit(ctx, model.EventNotice, n.deviceID, map[string]interface{}{
		"level":       string(model.NoticeModal),
		"title":       title,
		"message":     message,
		"suggestions": suggestions,
	})
}

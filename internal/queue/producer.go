package queue

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/snowflake"
)

// Publisher 事件发布能力，由 storage/mq.Client 实现
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// Events 业务事件发布。发布失败只记日志，不影响主流程
type Events struct {
	pub Publisher
	ids *snowflake.Generator
	now func() time.Time
}

// NewEvents pub 为 nil 时事件只写 debug 日志
func NewEvents(pub Publisher, ids *snowflake.Generator) *Events {
	return &Events{pub: pub, ids: ids, now: time.Now}
}

// Emit 发布一条事件。nil 接收者安全
func (e *Events) Emit(ctx context.Context, eventType, deviceID string, payload map[string]interface{}) {
	if e == nil {
		return
	}

	msg := model.EventMessage{
		EventID:    e.nextID(),
		EventType:  eventType,
		DeviceID:   deviceID,
		OccurredAt: e.now().Format(time.RFC3339),
		Payload:    payload,
	}

	if e.pub == nil {
		logger.Logger.Debug("Event (publisher disabled)",
			zap.String("event_type", eventType),
			zap.String("device_id", deviceID),
		)
		return
	}

	if err := e.pub.Publish(ctx, eventType, msg); err != nil {
		logger.Logger.Warn("Failed to publish event",
			zap.String("event_id", msg.EventID),
			zap.String("event_type", eventType),
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return
	}

	logger.Logger.Debug("Published event",
		zap.String("event_id", msg.EventID),
		zap.String("event_type", eventType),
	)
}

func (e *Events) nextID() string {
	if e.ids == nil {
		return strconv.FormatInt(e.now().UnixNano(), 10)
	}
	return e.ids.NextString()
}

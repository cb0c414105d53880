package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/pkg/logger"
)

// AuditHandler 消费事件并写入审计日志
func AuditHandler(_ context.Context, routingKey string, body []byte) error {
	var msg model.EventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal event %s: %w", routingKey, err)
	}

	fields := []zap.Field{
		zap.String("event_id", msg.EventID),
		zap.String("event_type", msg.EventType),
		zap.String("device_id", msg.DeviceID),
		zap.String("occurred_at", msg.OccurredAt),
		zap.Any("payload", msg.Payload),
	}

	switch msg.EventType {
	case model.EventErrorLogged, model.EventBackupRestored:
		logger.Logger.Warn("Audit event", fields...)
	case model.EventHealthReport:
		if healthy, _ := msg.Payload["isHealthy"].(bool); !healthy {
			logger.Logger.Warn("Audit event", fields...)
			return nil
		}
		logger.Logger.Info("Audit event", fields...)
	default:
		logger.Logger.Info("Audit event", fields...)
	}
	return nil
}

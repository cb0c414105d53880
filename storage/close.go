package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"HoursGuard/pkg/logger"
	"HoursGuard/storage/database"
)

// Close 优雅关闭所有存储连接
// 关闭顺序：MQ -> Redis -> Database/SQLite，先停止发布事件，再关闭数据存储
func (b *Backends) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if b.MQ != nil {
		if err := b.MQ.Close(ctx); err != nil {
			logger.Logger.Error("Failed to close message queue", zap.Error(err))
		}
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	if b.DB != nil {
		if err := database.Close(ctx, b.DB); err != nil {
			logger.Logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if b.SQLite != nil {
		if err := b.SQLite.Close(ctx); err != nil {
			logger.Logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	}

	logger.Logger.Info("All storage connections closed")
}

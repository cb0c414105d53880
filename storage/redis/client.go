package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"HoursGuard/config"
	"HoursGuard/pkg/logger"
	redisotel "HoursGuard/pkg/redis"
)

// Open 建立 Redis 连接，OTel 启用时挂载追踪 Hook
func Open(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 5,
		// 重试由存储管理器统一负责
		MaxRetries: 0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	if cfg.OTelEnabled {
		hook, err := redisotel.NewTracingHook(cfg.ServiceName, cfg.RedisDB)
		if err != nil {
			logger.Logger.Warn("Failed to instrument Redis tracing", zap.Error(err))
		} else {
			client.AddHook(hook)
		}
	}

	logger.Logger.Info("Redis connected", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return client, nil
}

// Key 拼接带前缀的键，空片段会被跳过
func Key(prefix string, parts ...string) string {
	if prefix == "" {
		prefix = "hg"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part != "" {
			sb.WriteString(":")
			sb.WriteString(part)
		}
	}

	return sb.String()
}

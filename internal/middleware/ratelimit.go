package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/response"
	"HoursGuard/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 限流键前缀
	KeyPrefix string
	// 时间窗口
	Window time.Duration
	// 时间窗口内最大请求数
	MaxRequests int
	// 是否按设备限流（需要认证）
	ByDevice bool
	// 是否按IP限流
	ByIP bool
}

// DefaultRateLimitConfig 默认限流配置
var DefaultRateLimitConfig = RateLimitConfig{
	KeyPrefix:   "rate:limit",
	Window:      time.Minute,
	MaxRequests: 120,
	ByDevice:    true,
	ByIP:        true,
}

// AuthRateLimitConfig 设备注册与刷新令牌按 IP 限流
var AuthRateLimitConfig = RateLimitConfig{
	KeyPrefix:   "auth:rate",
	Window:      time.Minute,
	MaxRequests: 10,
	ByIP:        true,
}

// RateLimiter 基于 redis 有序集合的滑动窗口限流
type RateLimiter struct {
	client redislib.Cmdable
	prefix string
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter prefix 为 redis 键的全局前缀
func NewRateLimiter(client redislib.Cmdable, prefix string, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix, config: config, now: time.Now}
}

// getKey 生成限流键
func (rl *RateLimiter) getKey(ctx context.Context, c *app.RequestContext) string {
	var identifier string

	if rl.config.ByDevice {
		if deviceID, exists := GetDeviceID(ctx, c); exists {
			identifier = fmt.Sprintf("device:%s", deviceID)
		}
	}

	if identifier == "" && rl.config.ByIP {
		identifier = fmt.Sprintf("ip:%s", c.ClientIP())
	}

	return redis.Key(rl.prefix, rl.config.KeyPrefix, identifier)
}

// Allow 检查 key 是否允许请求，返回窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	now := rl.now()
	windowStart := now.Add(-rl.config.Window)

	pipe := rl.client.Pipeline()

	// 移除窗口开始时间之前的所有请求记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

// RateLimitMiddleware 创建限流中间件。redis 不可用时放行
func RateLimitMiddleware(limiter *RateLimiter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		allowed, count, err := limiter.Allow(ctx, limiter.getKey(ctx, c))
		if err != nil {
			logger.Logger.Warn("Rate limit check failed, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := limiter.config.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(limiter.config.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

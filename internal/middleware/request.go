package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"HoursGuard/internal/notify"
	"HoursGuard/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestContext 分配请求 ID，并挂载提示收集器，请求期间产生的提示随响应的 meta.notices 返回
func RequestContext() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		requestID := string(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		ctx, _ = notify.WithCollector(ctx)
		c.Next(ctx)
	}
}

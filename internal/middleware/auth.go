package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"HoursGuard/internal/model"
	"HoursGuard/pkg/errors"
	"HoursGuard/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

// NewAuth 基于 Issuer 的密钥构造鉴权中间件，令牌由 Issuer 签发
func NewAuth(issuer *token.Issuer) (*jwt.HertzJWTMiddleware, error) {
	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:            "HoursGuard API",
		Key:              issuer.Secret(),
		SigningAlgorithm: "HS256",
		Timeout:          issuer.AccessTTL(),
		IdentityKey:      IdentityKey,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			uid, ok := claims[IdentityKey].(string)
			if !ok || uid == "" {
				return nil
			}
			return uid
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, model.NewErrorResponse(errors.Unauthorized.Code, message, nil))
		},

		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth middleware: %w", err)
	}
	return mw, nil
}

// GetDeviceID 从请求上下文中获取设备 ID
func GetDeviceID(ctx context.Context, c *app.RequestContext) (string, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

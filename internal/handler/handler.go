// Package handler HTTP 接口，每个请求在设备自己的 Workspace 上执行
package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HoursGuard/internal/errhandler"
	"HoursGuard/internal/middleware"
	"HoursGuard/internal/service"
	"HoursGuard/pkg/errors"
	"HoursGuard/pkg/response"
	"HoursGuard/pkg/token"
)

type Handler struct {
	provider *service.Provider
	issuer   *token.Issuer
}

func New(provider *service.Provider, issuer *token.Issuer) *Handler {
	return &Handler{provider: provider, issuer: issuer}
}

// workspace 取当前设备的 Workspace，失败时已写入 401
func (h *Handler) workspace(ctx context.Context, c *app.RequestContext) (*service.Workspace, bool) {
	deviceID, ok := middleware.GetDeviceID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return nil, false
	}
	return h.provider.Workspace(deviceID), true
}

// fail 写入设备的错误日志（不额外提示）后返回错误响应
func (h *Handler) fail(ctx context.Context, c *app.RequestContext, ws *service.Workspace, err error) {
	ws.Errors.Handle(ctx, err, errhandler.Options{Silent: true})
	response.Error(ctx, c, err)
}

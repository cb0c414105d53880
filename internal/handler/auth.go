package handler

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"HoursGuard/internal/model/dto"
	"HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/response"
)

// RegisterDevice 注册设备并签发令牌
// POST /v1/auth/device
func (h *Handler) RegisterDevice(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterDeviceRequest
	if len(c.Request.Body()) > 0 {
		if err := c.Bind(&req); err != nil {
			response.BindError(ctx, c, err)
			return
		}
	}

	device, err := h.provider.Devices().Register(ctx, req.Name)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	pair, err := h.issuer.Issue(device.ID)
	if err != nil {
		response.Error(ctx, c, errors.System("handler.RegisterDevice", err))
		return
	}

	response.Created(ctx, c, dto.AuthResponse{
		DeviceID:     device.ID,
		RegisteredAt: &device.RegisteredAt,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/refresh
func (h *Handler) RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if req.RefreshToken == "" {
		response.BindError(ctx, c, fmt.Errorf("refresh_token is required"))
		return
	}

	deviceID, err := h.issuer.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		logger.Logger.Info("Refresh token rejected", zap.Error(err))
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	if _, ok, err := h.provider.Devices().Get(ctx, deviceID); err != nil {
		response.Error(ctx, c, err)
		return
	} else if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	pair, err := h.issuer.Issue(deviceID)
	if err != nil {
		response.Error(ctx, c, errors.System("handler.RefreshToken", err))
		return
	}

	response.Success(ctx, c, dto.AuthResponse{
		DeviceID:     deviceID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

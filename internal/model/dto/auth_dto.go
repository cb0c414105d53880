package dto

import "time"

// ========== Auth 相关 DTO ==========

// RegisterDeviceRequest 注册设备
type RegisterDeviceRequest struct {
	Name string `json:"name"`
}

// RefreshTokenRequest 刷新令牌
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse 注册或刷新后返回的令牌
type AuthResponse struct {
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	DeviceID     string     `json:"device_id"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
}

package model

import "time"

// Device 已注册的设备，每个设备独立的数据命名空间
type Device struct {
	RegisteredAt time.Time `json:"registered_at"`
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
}

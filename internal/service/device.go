package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"HoursGuard/internal/model"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/snowflake"
	"HoursGuard/storage/kv"
)

// KeyDevices 设备注册表的键，位于全局命名空间
const KeyDevices = "devices"

// DeviceRegistry 记录已注册的设备。设备 ID 同时作为该设备数据的命名空间
type DeviceRegistry struct {
	kv  kv.Store
	ids *snowflake.Generator
	now func() time.Time

	mu sync.Mutex
}

func NewDeviceRegistry(store kv.Store, ids *snowflake.Generator, now func() time.Time) *DeviceRegistry {
	if now == nil {
		now = time.Now
	}
	return &DeviceRegistry{kv: store, ids: ids, now: now}
}

// Register 注册一个新设备
func (r *DeviceRegistry) Register(ctx context.Context, name string) (model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	devices, err := r.load(ctx)
	if err != nil {
		return model.Device{}, err
	}

	d := model.Device{
		ID:           r.newID(),
		Name:         strings.TrimSpace(name),
		RegisteredAt: r.now(),
	}
	devices = append(devices, d)
	if err := r.save(ctx, devices); err != nil {
		return model.Device{}, err
	}

	logger.Logger.Info("Device registered", zap.String("device_id", d.ID), zap.String("name", d.Name))
	return d, nil
}

// Ensure 确保设备存在，用于 CLI 的固定设备
func (r *DeviceRegistry) Ensure(ctx context.Context, id, name string) (model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	devices, err := r.load(ctx)
	if err != nil {
		return model.Device{}, err
	}
	for _, d := range devices {
		if d.ID == id {
			return d, nil
		}
	}

	d := model.Device{ID: id, Name: name, RegisteredAt: r.now()}
	if err := r.save(ctx, append(devices, d)); err != nil {
		return model.Device{}, err
	}
	return d, nil
}

// Get 查询设备
func (r *DeviceRegistry) Get(ctx context.Context, id string) (model.Device, bool, error) {
	devices, err := r.List(ctx)
	if err != nil {
		return model.Device{}, false, err
	}
	for _, d := range devices {
		if d.ID == id {
			return d, true, nil
		}
	}
	return model.Device{}, false, nil
}

// List 按注册顺序返回
func (r *DeviceRegistry) List(ctx context.Context) ([]model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *DeviceRegistry) newID() string {
	if r.ids != nil {
		return r.ids.NextString()
	}
	return uuid.NewString()
}

func (r *DeviceRegistry) load(ctx context.Context) ([]model.Device, error) {
	raw, err := r.kv.Get(ctx, KeyDevices)
	if errors.Is(err, kv.ErrNotFound) {
		return []model.Device{}, nil
	}
	if err != nil {
		return nil, apperrors.Storage("service.DeviceRegistry", err)
	}

	var devices []model.Device
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, apperrors.Storage("service.DeviceRegistry", err)
	}
	return devices, nil
}

func (r *DeviceRegistry) save(ctx context.Context, devices []model.Device) error {
	raw, err := json.Marshal(devices)
	if err != nil {
		return apperrors.System("service.DeviceRegistry", err)
	}
	if err := r.kv.Set(ctx, KeyDevices, raw); err != nil {
		return apperrors.Storage("service.DeviceRegistry", err)
	}
	return nil
}

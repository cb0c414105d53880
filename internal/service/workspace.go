package service

import (
	"sync"
	"time"

	"HoursGuard/internal/errhandler"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/queue"
	"HoursGuard/internal/store"
	"HoursGuard/pkg/metrics"
	"HoursGuard/pkg/snowflake"
	"HoursGuard/storage/kv"
)

// Deps 进程级共享的依赖，由 cmd 入口组装后注入
type Deps struct {
	KV       kv.Store
	Policy   store.Policy
	Breaker  *store.Breaker
	Metrics  *metrics.Metrics
	Events   *queue.Events
	IDs      *snowflake.Generator
	Notifier notify.Notifier // 为 nil 时使用 notify.Context
	MaxLogs  int
	Clock    func() time.Time
}

// Workspace 一个设备的存储管理器、错误处理器和记录服务
type Workspace struct {
	DeviceID string
	Store    *store.Manager
	Errors   *errhandler.Handler
	Records  *RecordService
}

// Provider 按设备懒加载 Workspace，同一设备复用同一个实例
type Provider struct {
	deps    Deps
	devices *DeviceRegistry

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewProvider(deps Deps) *Provider {
	if deps.Notifier == nil {
		deps.Notifier = notify.Context{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Provider{
		deps:       deps,
		devices:    NewDeviceRegistry(deps.KV, deps.IDs, deps.Clock),
		workspaces: make(map[string]*Workspace),
	}
}

// Workspace 返回设备的 Workspace
func (p *Provider) Workspace(deviceID string) *Workspace {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ws, ok := p.workspaces[deviceID]; ok {
		return ws
	}

	ns := kv.Namespace(p.deps.KV, deviceID)
	notifier := p.deps.Notifier
	if p.deps.Events != nil {
		notifier = notify.Multi{notifier, queue.NewNoticeNotifier(p.deps.Events, deviceID)}
	}
	handler := errhandler.New(ns,
		errhandler.WithNotifier(notifier),
		errhandler.WithIDs(p.deps.IDs),
		errhandler.WithMetrics(p.deps.Metrics),
		errhandler.WithEvents(p.deps.Events, deviceID),
		errhandler.WithMaxLogs(p.deps.MaxLogs),
		errhandler.WithClock(p.deps.Clock),
	)
	manager := store.NewManager(ns, p.deps.Policy,
		store.WithBreaker(p.deps.Breaker),
		store.WithNotifier(notifier),
		store.WithErrorHandler(handler),
		store.WithMetrics(p.deps.Metrics),
		store.WithEvents(p.deps.Events, deviceID),
		store.WithClock(p.deps.Clock),
	)

	ws := &Workspace{
		DeviceID: deviceID,
		Store:    manager,
		Errors:   handler,
		Records:  NewRecordService(manager, WithEvents(p.deps.Events, deviceID), WithMetrics(p.deps.Metrics)),
	}
	p.workspaces[deviceID] = ws
	return ws
}

// Devices 进程内共享的设备注册表
func (p *Provider) Devices() *DeviceRegistry {
	return p.devices
}

// Events 进程级事件发布器，可能为 nil
func (p *Provider) Events() *queue.Events {
	return p.deps.Events
}

package app

// 各进程入口共用的装配：配置、日志、链路追踪、存储、事件和设备工作区

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"HoursGuard/config"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/queue"
	"HoursGuard/internal/service"
	"HoursGuard/internal/store"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/metrics"
	pkgotel "HoursGuard/pkg/otel"
	"HoursGuard/pkg/snowflake"
	"HoursGuard/storage"
)

// App 一个进程的全部依赖
type App struct {
	Config   *config.Config
	Backends *storage.Backends
	Provider *service.Provider
	Events   *queue.Events
	Metrics  *metrics.Metrics
	IDs      *snowflake.Generator

	shutdownOTel func(context.Context) error
}

// Options 入口差异
type Options struct {
	Component string          // server / worker / scheduler / cli，用于服务名
	Notifier  notify.Notifier // 为 nil 时使用 notify.Context
}

// Build 按配置初始化。返回错误时已打开的连接已关闭
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	if cfg.OTelEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.FromConfig(cfg, opts.Component))
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, continuing without it", zap.Error(err))
		} else {
			a.shutdownOTel = shutdown
		}
	}

	ids, err := snowflake.New(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init snowflake: %w", err)
	}
	a.IDs = ids

	// OTel 未启用时为 no-op 指标
	m, err := metrics.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	a.Metrics = m

	backends, err := storage.Open(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.Backends = backends

	var pub queue.Publisher
	if backends.MQ != nil {
		pub = backends.MQ
	}
	a.Events = queue.NewEvents(pub, ids)

	a.Provider = service.NewProvider(service.Deps{
		KV:       backends.KV,
		Policy:   store.PolicyFromConfig(cfg),
		Breaker:  store.NewBreaker("storage", cfg.BreakerMaxFailures, cfg.BreakerResetTimeout),
		Metrics:  m,
		Events:   a.Events,
		IDs:      ids,
		Notifier: opts.Notifier,
		MaxLogs:  cfg.ErrorLogMax,
	})

	logger.Logger.Info("Application initialized",
		zap.String("component", opts.Component),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Bool("events_enabled", backends.MQ != nil),
		zap.Bool("otel_enabled", a.shutdownOTel != nil),
	)
	return a, nil
}

// Close 关闭存储连接并刷新 telemetry
func (a *App) Close() {
	if a.Backends != nil {
		a.Backends.Close()
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(context.Background()); err != nil {
			logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"HoursGuard/config"
	"HoursGuard/internal/app"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/schedule"
	"HoursGuard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 没有请求上下文，提示只写日志
	a, err := app.Build(ctx, cfg, app.Options{Component: "scheduler", Notifier: notify.Log{}})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}
	defer a.Close()

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", cfg.ServiceName+"-scheduler"),
		zap.String("environment", cfg.Environment),
		zap.Duration("interval", cfg.SchedulerInterval),
		zap.Int("auto_cleanup_days", cfg.AutoCleanupDays),
	)

	schedule.New(a.Provider, schedule.Options{
		Interval:        cfg.SchedulerInterval,
		AutoCleanupDays: cfg.AutoCleanupDays,
	}).Run(ctx)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

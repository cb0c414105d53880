package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"HoursGuard/config"
	"HoursGuard/internal/app"
	"HoursGuard/internal/queue"
	"HoursGuard/pkg/logger"
	"HoursGuard/storage/mq"
)

const (
	auditQueue   = "hoursguard.audit"
	reconnectGap = 5 * time.Second
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

	if !cfg.RabbitMQEnabled {
		logger.Logger.Fatal("Worker requires RABBITMQ_ENABLED=true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	a, err := app.Build(ctx, cfg, app.Options{Component: "worker"})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize worker", zap.Error(err))
	}
	defer a.Close()

	logger.Logger.Info("Worker service starting",
		zap.String("service", cfg.ServiceName+"-worker"),
		zap.String("environment", cfg.Environment),
		zap.String("exchange", a.Backends.MQ.Exchange()),
	)

	opts := mq.ConsumeOptions{
		Queue:         auditQueue,
		BindingKey:    "#",
		ConsumerTag:   cfg.ServiceName + "-audit",
		PrefetchCount: 20,
		Handler:       queue.AuditHandler,
	}

	for {
		err := a.Backends.MQ.Consume(ctx, opts)
		if ctx.Err() != nil {
			break
		}
		logger.Logger.Error("Audit consumer stopped, retrying",
			zap.Error(err),
			zap.Duration("retry_in", reconnectGap),
		)

		select {
		case <-ctx.Done():
		case <-time.After(reconnectGap):
		}
		if ctx.Err() != nil {
			break
		}
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}

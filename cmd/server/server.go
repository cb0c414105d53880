package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	hzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"HoursGuard/config"
	"HoursGuard/internal/app"
	"HoursGuard/internal/handler"
	"HoursGuard/internal/middleware"
	"HoursGuard/internal/router"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/token"
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

	if err := cfg.ValidateServer(); err != nil {
		logger.Logger.Fatal("Invalid server configuration", zap.Error(err))
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

	// 请求内的提示由 RequestContext 中间件收集到响应 meta
	a, err := app.Build(ctx, cfg, app.Options{Component: "server"})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	issuer := token.FromConfig(cfg)
	auth, err := middleware.NewAuth(issuer)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize auth middleware", zap.Error(err))
	}

	httpMetrics, err := middleware.NewHTTPMetrics(otel.Meter(cfg.ServiceName + ".http"))
	if err != nil {
		logger.Logger.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
	}

	deps := router.Deps{
		Handler:      handler.New(a.Provider, issuer),
		Auth:         auth,
		Metrics:      httpMetrics,
		IsProduction: cfg.IsProduction(),
		CORSOrigins:  cfg.CORSOrigins,
	}

	// 限流依赖 redis，其他后端下不启用
	if cfg.RateLimitEnabled && a.Backends.Redis != nil {
		limitCfg := middleware.DefaultRateLimitConfig
		limitCfg.Window = time.Duration(cfg.RateLimitWindow) * time.Second
		limitCfg.MaxRequests = cfg.RateLimitMax
		deps.Limiter = middleware.NewRateLimiter(a.Backends.Redis, cfg.RedisPrefix, limitCfg)
		deps.AuthLimiter = middleware.NewRateLimiter(a.Backends.Redis, cfg.RedisPrefix, middleware.AuthRateLimitConfig)
	}

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	opts := []hzconfig.Option{server.WithHostPorts(addr)}
	if cfg.OTelEnabled {
		tracerOpt, tracingMW := middleware.NewServerTracerConfig()
		opts = append(opts, tracerOpt)
		deps.Tracing = tracingMW
	}
	h := server.New(opts...)

	router.Register(h, deps)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("addr", addr),
		zap.String("environment", cfg.Environment),
		zap.Bool("rate_limit", deps.Limiter != nil),
	)

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}

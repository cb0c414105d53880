package schedule

// 维护调度器：按设备执行节流备份、健康检查和可选的过期数据清理

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/internal/service"
	"HoursGuard/pkg/logger"
)

// Options 调度参数
type Options struct {
	Interval        time.Duration // 两次维护之间的间隔
	AutoCleanupDays int           // 0 表示不自动清理
	RunTimeout      time.Duration // 单次维护的超时
}

// DeviceResult 单个设备一次维护的结果
type DeviceResult struct {
	DeviceID    string
	ReadErr     error // 读取记录失败时跳过备份和清理
	BackedUp    bool
	Health      model.HealthReport
	CleanedUp   int
	CleanupErr  error
	Interrupted bool
}

// Scheduler 维护调度器
type Scheduler struct {
	provider *service.Provider
	opts     Options
	logger   *zap.Logger

	jobMu      sync.Mutex
	jobRunning bool
	lastRun    time.Time
}

func New(provider *service.Provider, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 5 * time.Minute
	}
	return &Scheduler{provider: provider, opts: opts, logger: logger.Logger}
}

// LastRun 最近一次开始维护的时间
func (s *Scheduler) LastRun() time.Time {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.lastRun
}

// RunOnce 对所有已注册设备执行一次维护。上一轮未结束时直接跳过
func (s *Scheduler) RunOnce(ctx context.Context) ([]DeviceResult, error) {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Maintenance job already running, skipping")
		return nil, nil
	}
	s.jobRunning = true
	startTime := time.Now()
	s.lastRun = startTime
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	devices, err := s.provider.Devices().List(ctx)
	if err != nil {
		s.logger.Error("Failed to list devices", zap.Error(err))
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	s.logger.Info("Starting storage maintenance",
		zap.Int("device_count", len(devices)),
		zap.Time("start_time", startTime),
	)

	results := make([]DeviceResult, 0, len(devices))
	unhealthy := 0
	for _, d := range devices {
		if ctx.Err() != nil {
			results = append(results, DeviceResult{DeviceID: d.ID, Interrupted: true})
			continue
		}

		res := s.maintain(ctx, d.ID)
		if !res.Health.IsHealthy {
			unhealthy++
		}
		results = append(results, res)
	}

	s.logger.Info("Storage maintenance completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("device_count", len(devices)),
		zap.Int("unhealthy_count", unhealthy),
	)

	return results, ctx.Err()
}

func (s *Scheduler) maintain(ctx context.Context, deviceID string) DeviceResult {
	ws := s.provider.Workspace(deviceID)
	res := DeviceResult{DeviceID: deviceID}

	records, err := ws.Store.Records(ctx)
	if err != nil {
		res.ReadErr = err
		s.logger.Warn("Skipping backup and cleanup, records unreadable",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
	} else {
		s.backupAndCleanup(ctx, ws, records, &res)
	}

	res.Health = ws.Store.CheckStorageHealth(ctx)
	if !res.Health.IsHealthy {
		s.logger.Warn("Storage health check reported issues",
			zap.String("device_id", deviceID),
			zap.Strings("issues", res.Health.Issues),
		)
	}

	s.provider.Events().Emit(ctx, model.EventHealthReport, deviceID, map[string]interface{}{
		"isHealthy":   res.Health.IsHealthy,
		"issues":      res.Health.Issues,
		"suggestions": res.Health.Suggestions,
		"backedUp":    res.BackedUp,
		"cleanedUp":   res.CleanedUp,
		"readFailed":  res.ReadErr != nil,
	})

	return res
}

func (s *Scheduler) backupAndCleanup(ctx context.Context, ws *service.Workspace, records []model.AttendanceRecord, res *DeviceResult) {
	backedUp, err := ws.Store.CreateBackup(ctx, records)
	if err != nil {
		s.logger.Warn("Scheduled backup failed",
			zap.String("device_id", ws.DeviceID),
			zap.Error(err),
		)
	}
	res.BackedUp = backedUp

	if s.opts.AutoCleanupDays > 0 {
		res.CleanedUp, res.CleanupErr = ws.Records.CleanupOldData(ctx, s.opts.AutoCleanupDays)
		if res.CleanupErr != nil {
			s.logger.Warn("Scheduled cleanup failed",
				zap.String("device_id", ws.DeviceID),
				zap.Error(res.CleanupErr),
			)
		}
	}
}

// Run 立即执行一次，之后按间隔循环，直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.logger.Info("Maintenance scheduler started", zap.Duration("interval", s.opts.Interval))

	s.runWithTimeout(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Maintenance scheduler stopped")
			return
		case <-ticker.C:
			s.runWithTimeout(ctx)
		}
	}
}

func (s *Scheduler) runWithTimeout(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()

	if _, err := s.RunOnce(runCtx); err != nil && ctx.Err() == nil {
		s.logger.Error("Storage maintenance run failed", zap.Error(err))
	}
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"HoursGuard/config"
)

var (
	// Logger 在 Init 之前为 no-op，库代码和测试可直接使用
	Logger   = zap.NewNop()
	logClose io.Closer
)

// Init 安装全局 zap logger，并接管 hertz 的 hlog 输出
func Init(cfg *config.Config) error {
	ws, closer, err := buildWriteSyncer(cfg.LoggerOutputPath)
	if err != nil {
		return err
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.LoggerLevel))
	hzLogger := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(buildEncoder(cfg)),
		hertzzap.WithCoreWs(ws),
		hertzzap.WithCoreLevel(level),
		hertzzap.WithZapOptions(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.Fields(zap.String("service", cfg.ServiceName)),
		),
	)
	hlog.SetLogger(hzLogger)
	hlog.SetLevel(toHlogLevel(level.Level()))

	logClose = closer
	Logger = hzLogger.Logger()
	Logger.Debug("Logger initialized",
		zap.String("level", strings.ToUpper(cfg.LoggerLevel)),
		zap.String("format", cfg.LoggerFormat),
		zap.String("output", cfg.LoggerOutputPath),
		zap.String("environment", cfg.Environment),
	)
	return nil
}

// Sync 刷新缓冲并关闭日志文件
func Sync() {
	// stdout/stderr 上的 Sync 可能返回 EINVAL，忽略
	_ = Logger.Sync()

	if logClose != nil {
		_ = logClose.Close()
		logClose = nil
	}
}

func buildEncoder(cfg *config.Config) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if cfg.IsDevelopment() || strings.EqualFold(cfg.LoggerFormat, "text") {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// buildWriteSyncer stdout、stderr 或追加写入的日志文件
func buildWriteSyncer(path string) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout), nil, nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return zapcore.AddSync(file), file, nil
}

// ParseLevel 未知级别按 INFO 处理
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toHlogLevel(level zapcore.Level) hlog.Level {
	switch level {
	case zapcore.DebugLevel:
		return hlog.LevelDebug
	case zapcore.WarnLevel:
		return hlog.LevelWarn
	case zapcore.ErrorLevel:
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

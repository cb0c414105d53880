package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"HoursGuard/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"ERROR":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInit_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoursguard.log")
	t.Cleanup(func() { Logger = zap.NewNop() })

	err := Init(&config.Config{
		Environment:      "production",
		ServiceName:      "hoursguard",
		LoggerLevel:      "WARN",
		LoggerFormat:     "json",
		LoggerOutputPath: path,
	})
	require.NoError(t, err)

	Logger.Info("dropped below level")
	Logger.Warn("storage retry exhausted", zap.String("key", "records"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped below level")
	assert.Contains(t, string(data), `"msg":"storage retry exhausted"`)
	assert.Contains(t, string(data), `"service":"hoursguard"`)
}

func TestInit_BadPath(t *testing.T) {
	err := Init(&config.Config{LoggerOutputPath: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

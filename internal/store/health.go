package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/internal/validator"
	"HoursGuard/pkg/logger"
	"HoursGuard/storage/kv"
)

// StorageInfo 当前命名空间的键与占用字节数（键长 + 值长）
func (m *Manager) StorageInfo(ctx context.Context) (model.StorageInfo, error) {
	keys, err := m.kv.Keys(ctx, "")
	if err != nil {
		return model.StorageInfo{}, err
	}

	var size int64
	for _, k := range keys {
		v, err := m.kv.Get(ctx, k)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.StorageInfo{}, err
		}
		size += int64(len(k) + len(v))
	}

	info := model.StorageInfo{
		Keys:        keys,
		CurrentSize: size,
		LimitSize:   m.policy.LimitBytes,
	}
	if info.Keys == nil {
		info.Keys = []string{}
	}
	if info.LimitSize > 0 {
		info.UsageRatio = math.Round(float64(size)/float64(info.LimitSize)*10000) / 10000
	}
	return info, nil
}

// CheckStorageHealth 检查用量、记录格式与备份时效，不会 panic
func (m *Manager) CheckStorageHealth(ctx context.Context) (report model.HealthReport) {
	report = model.HealthReport{IsHealthy: true, Issues: []string{}, Suggestions: []string{}}

	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Error("Storage health check panicked", zap.Any("panic", r))
			report = model.HealthReport{
				IsHealthy:   false,
				Issues:      []string{"存储检查失败"},
				Suggestions: []string{"重启应用后重试"},
			}
		}
	}()

	info, err := m.StorageInfo(ctx)
	if err != nil {
		logger.Logger.Warn("Storage health check failed", zap.String("device_id", m.deviceID), zap.Error(err))
		return model.HealthReport{
			IsHealthy:   false,
			Issues:      []string{"存储检查失败"},
			Suggestions: []string{"检查存储后端连接后重试"},
		}
	}

	if info.UsageRatio > m.policy.WarnRatio {
		report.IsHealthy = false
		report.Issues = append(report.Issues, fmt.Sprintf("存储使用率过高：%.1f%%", info.UsageRatio*100))
		report.Suggestions = append(report.Suggestions, "清理旧数据或导出后删除历史记录")
	}

	raw, err := m.kv.Get(ctx, KeyRecords)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		report.IsHealthy = false
		report.Issues = append(report.Issues, "打卡数据无法读取")
		report.Suggestions = append(report.Suggestions, "检查存储后端连接后重试")
	default:
		if _, ok := validator.DecodeRecords(raw); !ok {
			report.IsHealthy = false
			report.Issues = append(report.Issues, "打卡数据格式异常")
			report.Suggestions = append(report.Suggestions, "从备份恢复或重新初始化数据")
		}
	}

	// 备份过期不影响健康状态，只给出建议
	last, ok := m.LastBackupTime(ctx)
	switch {
	case !ok:
		report.Issues = append(report.Issues, "尚未创建备份")
		report.Suggestions = append(report.Suggestions, "手动创建一次备份")
	case m.now().Sub(last) > m.policy.BackupStaleAfter:
		days := int(m.now().Sub(last).Hours() / 24)
		report.Issues = append(report.Issues, fmt.Sprintf("备份已 %d 天未更新", days))
		report.Suggestions = append(report.Suggestions, "手动创建一次备份")
	}

	return report
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/internal/validator"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
)

// CreateBackup 节流备份：距上次备份不足 BackupInterval 时不做任何事。
// 返回是否真正写入了快照。
func (m *Manager) CreateBackup(ctx context.Context, records []model.AttendanceRecord) (bool, error) {
	if last, ok := m.LastBackupTime(ctx); ok && m.now().Sub(last) < m.policy.BackupInterval {
		return false, nil
	}
	if err := m.writeBackup(ctx, records, "auto"); err != nil {
		return false, err
	}
	return true, nil
}

// ForceBackup 立即备份当前记录，不受节流限制
func (m *Manager) ForceBackup(ctx context.Context) (model.BackupSummary, error) {
	records, err := m.Records(ctx)
	if err != nil {
		return model.BackupSummary{}, err
	}
	if err := m.writeBackup(ctx, records, "manual"); err != nil {
		return model.BackupSummary{}, err
	}

	backups := m.ListBackups(ctx)
	if len(backups) == 0 {
		return model.BackupSummary{}, apperrors.Storage("store.ForceBackup", apperrors.BackupNotFound)
	}
	return backups[0], nil
}

func (m *Manager) writeBackup(ctx context.Context, records []model.AttendanceRecord, trigger string) error {
	if !validator.ValidateRecordsArray(records) {
		return apperrors.Validation("store.CreateBackup", apperrors.BackupInvalid)
	}

	now := m.now()
	snapshots := m.loadBackups(ctx)
	snapshots = append(snapshots, model.BackupSnapshot{
		ID:        uuid.NewString(),
		Records:   model.CloneRecords(records),
		Timestamp: now,
		Version:   model.BackupVersion,
	})
	// 先进先出，淘汰最旧的
	if len(snapshots) > m.policy.BackupMax {
		snapshots = snapshots[len(snapshots)-m.policy.BackupMax:]
	}

	raw, err := json.Marshal(snapshots)
	if err != nil {
		return err
	}
	if err := m.writeVerified(ctx, KeyBackups, raw); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	stamp, _ := json.Marshal(now.Format(time.RFC3339Nano))
	if err := m.writeVerified(ctx, KeyLastBackup, stamp); err != nil {
		return fmt.Errorf("write last backup time: %w", err)
	}

	m.metrics.RecordBackup(ctx, trigger)
	m.events.Emit(ctx, model.EventBackupCreated, m.deviceID, map[string]interface{}{
		"records": len(records),
		"trigger": trigger,
	})
	logger.Logger.Info("Backup created",
		zap.String("device_id", m.deviceID),
		zap.String("trigger", trigger),
		zap.Int("records", len(records)),
		zap.Int("snapshots", len(snapshots)),
	)
	return nil
}

// loadBackups 旧的在前。备份区损坏时视为没有备份
func (m *Manager) loadBackups(ctx context.Context) []model.BackupSnapshot {
	res, err := m.readRaw(ctx, KeyBackups, nil)
	if err != nil || !res.found {
		return nil
	}

	var snapshots []model.BackupSnapshot
	if err := json.Unmarshal(res.raw, &snapshots); err != nil {
		logger.Logger.Warn("Backup data unreadable, ignoring", zap.String("device_id", m.deviceID), zap.Error(err))
		return nil
	}
	return snapshots
}

// LastBackupTime 上次成功备份的时间
func (m *Manager) LastBackupTime(ctx context.Context) (time.Time, bool) {
	res, err := m.readRaw(ctx, KeyLastBackup, nil)
	if err != nil || !res.found {
		return time.Time{}, false
	}

	var stamp string
	if err := json.Unmarshal(res.raw, &stamp); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ListBackups 新的在前，Index 即 RestoreFromBackup 使用的下标
func (m *Manager) ListBackups(ctx context.Context) []model.BackupSummary {
	snapshots := m.loadBackups(ctx)

	out := make([]model.BackupSummary, 0, len(snapshots))
	for i := len(snapshots) - 1; i >= 0; i-- {
		s := snapshots[i]
		out = append(out, model.BackupSummary{
			ID:          s.ID,
			Timestamp:   s.Timestamp,
			Version:     s.Version,
			Index:       len(out),
			RecordCount: len(s.Records),
		})
	}
	return out
}

// TryRestoreFromBackup 返回最新一份记录合法的备份，没有时返回 nil
func (m *Manager) TryRestoreFromBackup(ctx context.Context) []model.AttendanceRecord {
	snapshots := m.loadBackups(ctx)
	for i := len(snapshots) - 1; i >= 0; i-- {
		if validator.ValidateRecordsArray(snapshots[i].Records) {
			m.metrics.RecordRestore(ctx, true)
			logger.Logger.Warn("Restoring records from backup",
				zap.String("device_id", m.deviceID),
				zap.String("backup_id", snapshots[i].ID),
				zap.Time("backup_time", snapshots[i].Timestamp),
			)
			records := snapshots[i].Records
			if records == nil {
				records = []model.AttendanceRecord{}
			}
			return records
		}
	}

	m.metrics.RecordRestore(ctx, false)
	return nil
}

// RestoreFromBackup 用指定备份（0 为最新）覆盖当前记录
func (m *Manager) RestoreFromBackup(ctx context.Context, index int) model.RestoreResult {
	snapshots := m.loadBackups(ctx)
	if len(snapshots) == 0 {
		return model.RestoreResult{Success: false, Message: "没有可用的备份"}
	}
	if index < 0 || index >= len(snapshots) {
		return model.RestoreResult{Success: false, Message: fmt.Sprintf("备份 %d 不存在，共有 %d 份备份", index, len(snapshots))}
	}

	snap := snapshots[len(snapshots)-1-index]
	if !validator.ValidateRecordsArray(snap.Records) {
		m.metrics.RecordRestore(ctx, false)
		return model.RestoreResult{Success: false, Message: "备份数据已损坏，无法恢复"}
	}

	records := snap.Records
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	if !m.SafeSet(ctx, KeyRecords, records) {
		m.metrics.RecordRestore(ctx, false)
		return model.RestoreResult{Success: false, Message: "恢复写入失败，请稍后重试"}
	}

	m.metrics.RecordRestore(ctx, true)
	m.events.Emit(ctx, model.EventBackupRestored, m.deviceID, map[string]interface{}{
		"records":   len(records),
		"backup_id": snap.ID,
		"trigger":   "manual",
	})
	msg := fmt.Sprintf("已从 %s 的备份恢复 %d 条记录", snap.Timestamp.Local().Format("2006-01-02 15:04"), len(records))
	m.notifier.Modal(ctx, "数据已恢复", msg, nil)

	return model.RestoreResult{Success: true, Message: msg, Records: records}
}

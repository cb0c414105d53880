package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"HoursGuard/internal/model"
	"HoursGuard/internal/queue"
	"HoursGuard/internal/stats"
	"HoursGuard/internal/store"
	"HoursGuard/internal/validator"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
	"HoursGuard/pkg/metrics"
	"HoursGuard/utils"
)

// ImportMode 导入方式
type ImportMode string

const (
	ImportMerge   ImportMode = "merge"   // 按日期覆盖已有记录
	ImportReplace ImportMode = "replace" // 用导入的数据替换全部记录
)

// ImportResult 导入结果
type ImportResult struct {
	Mode     ImportMode `json:"mode"`
	Imported int        `json:"imported"`
	Total    int        `json:"total"`
}

// RecordService 单个设备的打卡记录操作
type RecordService struct {
	store    *store.Manager
	events   *queue.Events
	metrics  *metrics.Metrics
	deviceID string

	mu sync.Mutex // 串行化同一设备的读改写
}

type Option func(*RecordService)

func WithEvents(e *queue.Events, deviceID string) Option {
	return func(s *RecordService) {
		s.events = e
		s.deviceID = deviceID
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RecordService) { s.metrics = m }
}

func NewRecordService(m *store.Manager, opts ...Option) *RecordService {
	s := &RecordService{store: m}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store 底层存储管理器
func (s *RecordService) Store() *store.Manager {
	return s.store
}

// resolve 补全默认的日期和时间并校验格式
func (s *RecordService) resolve(op, date, clock string) (string, string, error) {
	now := s.store.Now()
	if date == "" {
		date = utils.FormatDate(now)
	}
	if clock == "" {
		clock = utils.FormatClock(now)
	}
	if !utils.ValidateDate(date) {
		return "", "", apperrors.Validation(op, apperrors.InvalidDate)
	}
	if !utils.ValidateTime(clock) {
		return "", "", apperrors.Validation(op, apperrors.InvalidTime)
	}
	return date, clock, nil
}

func indexOf(records []model.AttendanceRecord, date string) int {
	for i := range records {
		if records[i].Date == date {
			return i
		}
	}
	return -1
}

// ClockIn 上班打卡。date、clock 为空时取当前时间
func (s *RecordService) ClockIn(ctx context.Context, date, clock string) (model.AttendanceRecord, error) {
	date, clock, err := s.resolve("service.ClockIn", date, clock)
	if err != nil {
		return model.AttendanceRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	i := indexOf(records, date)
	if i >= 0 && records[i].On != nil {
		return model.AttendanceRecord{}, apperrors.User("service.ClockIn", apperrors.AlreadyClockedIn).
			WithUserMessage(fmt.Sprintf("%s 已于 %s 上班打卡", date, *records[i].On))
	}
	if i < 0 {
		records = append(records, model.AttendanceRecord{Date: date})
		i = len(records) - 1
	}
	records[i].On = model.StringPtr(clock)

	if err := s.store.SaveRecords(ctx, records); err != nil {
		return model.AttendanceRecord{}, err
	}

	s.metrics.RecordClockEvent(ctx, "in")
	s.events.Emit(ctx, model.EventClockIn, s.deviceID, map[string]interface{}{"date": date, "on": clock})
	logger.Logger.Info("Clocked in",
		zap.String("device_id", s.deviceID),
		zap.String("date", date),
		zap.String("on", clock),
	)
	return records[i].Clone(), nil
}

// ClockOut 下班打卡。当天没有上班记录、但前一天只有上班记录时，视为跨天下班并结束前一天的记录。
// 重复下班打卡会覆盖下班时间。
func (s *RecordService) ClockOut(ctx context.Context, date, clock string) (model.AttendanceRecord, error) {
	date, clock, err := s.resolve("service.ClockOut", date, clock)
	if err != nil {
		return model.AttendanceRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	i := indexOf(records, date)
	if i < 0 || records[i].On == nil {
		prev, _ := utils.AddDays(date, -1)
		j := indexOf(records, prev)
		if j < 0 || records[j].State() != model.StateClockedIn {
			return model.AttendanceRecord{}, apperrors.User("service.ClockOut", apperrors.NotClockedIn).
				WithUserMessage("请先上班打卡")
		}
		i = j
	}
	records[i].Off = model.StringPtr(clock)

	if err := s.store.SaveRecords(ctx, records); err != nil {
		return model.AttendanceRecord{}, err
	}

	r := records[i]
	minutes, _ := stats.RecordMinutes(r)
	s.metrics.RecordClockEvent(ctx, "out")
	s.events.Emit(ctx, model.EventClockOut, s.deviceID, map[string]interface{}{
		"date":    r.Date,
		"on":      *r.On,
		"off":     clock,
		"minutes": minutes,
	})
	logger.Logger.Info("Clocked out",
		zap.String("device_id", s.deviceID),
		zap.String("date", r.Date),
		zap.String("off", clock),
		zap.Int("minutes", minutes),
	)
	return r.Clone(), nil
}

// UpdateRecord 手动修改某天的上下班时间，记录不存在时创建。空串视为清除
func (s *RecordService) UpdateRecord(ctx context.Context, date string, on, off *string) (model.AttendanceRecord, error) {
	r := validator.SanitizeRecord(&model.AttendanceRecord{Date: date, On: on, Off: off})
	if r == nil {
		return model.AttendanceRecord{}, s.recordError("service.UpdateRecord", date, on, off)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if i := indexOf(records, r.Date); i >= 0 {
		records[i] = *r
	} else {
		records = append(records, *r)
	}

	if err := s.store.SaveRecords(ctx, records); err != nil {
		return model.AttendanceRecord{}, err
	}

	s.metrics.RecordClockEvent(ctx, "edit")
	s.events.Emit(ctx, model.EventRecordUpdated, s.deviceID, map[string]interface{}{"date": r.Date})
	return r.Clone(), nil
}

// recordError 指出具体哪个字段不合法
func (s *RecordService) recordError(op, date string, on, off *string) error {
	if !utils.ValidateDate(date) {
		return apperrors.Validation(op, apperrors.InvalidDate)
	}
	if (on != nil && *on != "" && !utils.ValidateTime(*on)) || (off != nil && *off != "" && !utils.ValidateTime(*off)) {
		return apperrors.Validation(op, apperrors.InvalidTime)
	}
	return apperrors.Validation(op, apperrors.InvalidRecord)
}

// DeleteRecord 删除指定日期的记录，其余记录顺序不变
func (s *RecordService) DeleteRecord(ctx context.Context, date string) error {
	if !utils.ValidateDate(date) {
		return apperrors.Validation("service.DeleteRecord", apperrors.InvalidDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Records(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, date)
	if i < 0 {
		return apperrors.User("service.DeleteRecord", apperrors.RecordNotFound)
	}
	records = append(records[:i], records[i+1:]...)

	if err := s.store.SaveRecords(ctx, records); err != nil {
		return err
	}

	s.events.Emit(ctx, model.EventRecordDeleted, s.deviceID, map[string]interface{}{"date": date})
	return nil
}

// GetRecord 查询某天的记录
func (s *RecordService) GetRecord(ctx context.Context, date string) (model.AttendanceRecord, error) {
	if !utils.ValidateDate(date) {
		return model.AttendanceRecord{}, apperrors.Validation("service.GetRecord", apperrors.InvalidDate)
	}

	records, err := s.store.Records(ctx)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	i := indexOf(records, date)
	if i < 0 {
		return model.AttendanceRecord{}, apperrors.User("service.GetRecord", apperrors.RecordNotFound)
	}
	return records[i], nil
}

// ListRecords 按日期升序返回，from/to 为空表示不限
func (s *RecordService) ListRecords(ctx context.Context, from, to string) ([]model.AttendanceRecord, error) {
	if (from != "" && !utils.ValidateDate(from)) || (to != "" && !utils.ValidateDate(to)) {
		return nil, apperrors.Validation("service.ListRecords", apperrors.InvalidDate)
	}
	if from != "" && to != "" && from > to {
		return nil, apperrors.Validation("service.ListRecords", apperrors.InvalidPeriod)
	}

	records, err := s.store.Records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if (from != "" && r.Date < from) || (to != "" && r.Date > to) {
			continue
		}
		out = append(out, r)
	}
	stats.SortByDate(out)
	return out, nil
}

// Today 今日状态。今天没有记录而昨天仍在上班中时，返回昨天的记录
func (s *RecordService) Today(ctx context.Context) (model.TodayStatus, error) {
	now := s.store.Now()
	today := utils.FormatDate(now)
	records, err := s.store.Records(ctx)
	if err != nil {
		return model.TodayStatus{}, err
	}

	status := model.TodayStatus{Date: today, State: model.StateEmpty.String(), Duration: "00:00"}

	i := indexOf(records, today)
	if i < 0 {
		yesterday, _ := utils.AddDays(today, -1)
		if j := indexOf(records, yesterday); j >= 0 && records[j].State() == model.StateClockedIn {
			i = j
		}
	}
	if i < 0 {
		return status, nil
	}

	r := records[i]
	status.Record = &r
	status.State = r.State().String()

	switch r.State() {
	case model.StateComplete:
		status.DurationMinutes, _ = stats.RecordMinutes(r)
	case model.StateClockedIn:
		status.DurationMinutes = elapsedMinutes(*r.On, utils.FormatClock(now), r.Date != today)
	}
	status.Duration = utils.FormatClockDuration(status.DurationMinutes)
	return status, nil
}

// elapsedMinutes 上班至今的分钟数。与完整记录不同，同一分钟视为 0
func elapsedMinutes(on, now string, crossedMidnight bool) int {
	start, err := utils.ParseClock(on)
	if err != nil {
		return 0
	}
	end, err := utils.ParseClock(now)
	if err != nil {
		return 0
	}
	if crossedMidnight || end < start {
		end += utils.MinutesPerDay
	}
	return end - start
}

// CleanupOldData 删除早于 today-days 的记录，返回删除条数
func (s *RecordService) CleanupOldData(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, apperrors.Validation("service.CleanupOldData", apperrors.InvalidCleanupDays)
	}
	cutoff, _ := utils.AddDays(utils.FormatDate(s.store.Now()), -days)

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Records(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.Date >= cutoff {
			kept = append(kept, r)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.store.SaveRecords(ctx, kept); err != nil {
		return 0, err
	}

	s.events.Emit(ctx, model.EventCleanup, s.deviceID, map[string]interface{}{
		"removed": removed,
		"cutoff":  cutoff,
	})
	logger.Logger.Info("Cleaned up old records",
		zap.String("device_id", s.deviceID),
		zap.String("cutoff", cutoff),
		zap.Int("removed", removed),
	)
	return removed, nil
}

// ImportRecords 导入记录。任意一条不合法时整批拒绝；批内同一日期以后出现的为准
func (s *RecordService) ImportRecords(ctx context.Context, incoming []model.AttendanceRecord, mode ImportMode) (ImportResult, error) {
	switch mode {
	case "":
		mode = ImportMerge
	case ImportMerge, ImportReplace:
	default:
		return ImportResult{}, apperrors.Validation("service.ImportRecords", apperrors.InvalidRequest)
	}

	batch := make([]model.AttendanceRecord, 0, len(incoming))
	for i := range incoming {
		r := validator.SanitizeRecord(&incoming[i])
		if r == nil {
			return ImportResult{}, apperrors.Validation("service.ImportRecords",
				fmt.Errorf("record %d (%q): %w", i, incoming[i].Date, apperrors.InvalidRecord))
		}
		if j := indexOf(batch, r.Date); j >= 0 {
			batch[j] = *r
			continue
		}
		batch = append(batch, *r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []model.AttendanceRecord
	if mode == ImportReplace {
		records = batch
	} else {
		current, err := s.store.Records(ctx)
		if err != nil {
			return ImportResult{}, err
		}
		records = current
		for _, r := range batch {
			if i := indexOf(records, r.Date); i >= 0 {
				records[i] = r
			} else {
				records = append(records, r)
			}
		}
	}
	stats.SortByDate(records)

	if err := s.store.SaveRecords(ctx, records); err != nil {
		return ImportResult{}, err
	}

	s.events.Emit(ctx, model.EventRecordsImport, s.deviceID, map[string]interface{}{
		"mode":     string(mode),
		"imported": len(batch),
		"total":    len(records),
	})
	return ImportResult{Mode: mode, Imported: len(batch), Total: len(records)}, nil
}

// ClearAllData 清空打卡记录，备份保留
func (s *RecordService) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveRecords(ctx, []model.AttendanceRecord{}); err != nil {
		return err
	}
	s.events.Emit(ctx, model.EventRecordsCleared, s.deviceID, nil)
	logger.Logger.Warn("All records cleared", zap.String("device_id", s.deviceID))
	return nil
}

// ShouldShowWarning 数据只保存在本地存储的提示是否还未展示过
func (s *RecordService) ShouldShowWarning(ctx context.Context) bool {
	return !store.SafeGet(ctx, s.store, store.KeyWarningShown, false)
}

func (s *RecordService) AcknowledgeWarning(ctx context.Context) error {
	if !s.store.SafeSet(ctx, store.KeyWarningShown, true) {
		return apperrors.Storage("service.AcknowledgeWarning", apperrors.StorageWriteFailed)
	}
	return nil
}

package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HoursGuard/internal/model"
	"HoursGuard/internal/model/dto"
	"HoursGuard/internal/service"
	"HoursGuard/pkg/response"
)

// GetToday 今日打卡状态
// GET /v1/today
func (h *Handler) GetToday(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}
	status, err := ws.Records.Today(ctx)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, status)
}

// ClockIn 上班打卡
// POST /v1/clock/in
func (h *Handler) ClockIn(ctx context.Context, c *app.RequestContext) {
	h.clock(ctx, c, (*service.RecordService).ClockIn)
}

// ClockOut 下班打卡
// POST /v1/clock/out
func (h *Handler) ClockOut(ctx context.Context, c *app.RequestContext) {
	h.clock(ctx, c, (*service.RecordService).ClockOut)
}

type clockFunc func(*service.RecordService, context.Context, string, string) (model.AttendanceRecord, error)

func (h *Handler) clock(ctx context.Context, c *app.RequestContext, fn clockFunc) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var req dto.ClockRequest
	if len(c.Request.Body()) > 0 {
		if err := c.Bind(&req); err != nil {
			response.BindError(ctx, c, err)
			return
		}
	}

	record, err := fn(ws.Records, ctx, req.Date, req.Time)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, record)
}

// ListRecords 记录列表
// GET /v1/records
func (h *Handler) ListRecords(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var query dto.RecordListQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	records, err := ws.Records.ListRecords(ctx, query.From, query.To)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, dto.RecordListResponse{Records: records, Total: len(records)})
}

// GetRecord 某天的记录
// GET /v1/records/:date
func (h *Handler) GetRecord(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	record, err := ws.Records.GetRecord(ctx, c.Param("date"))
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, record)
}

// UpdateRecord 手动修改某天的记录
// PUT /v1/records/:date
func (h *Handler) UpdateRecord(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var req dto.UpdateRecordRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	record, err := ws.Records.UpdateRecord(ctx, c.Param("date"), req.On, req.Off)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, record)
}

// DeleteRecord 删除某天的记录
// DELETE /v1/records/:date
func (h *Handler) DeleteRecord(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	if err := ws.Records.DeleteRecord(ctx, c.Param("date")); err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.NoContent(ctx, c)
}

// ImportRecords 导入记录
// POST /v1/records/import
func (h *Handler) ImportRecords(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var req dto.ImportRecordsRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := ws.Records.ImportRecords(ctx, req.Records, service.ImportMode(req.Mode))
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, result)
}

// CleanupRecords 清理早于 days 天前的记录
// POST /v1/records/cleanup
func (h *Handler) CleanupRecords(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var req dto.CleanupRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	removed, err := ws.Records.CleanupOldData(ctx, req.Days)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, dto.CleanupResponse{Removed: removed})
}

// ClearRecords 清空全部记录，备份保留
// DELETE /v1/records
func (h *Handler) ClearRecords(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	if err := ws.Records.ClearAllData(ctx); err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.NoContent(ctx, c)
}

// GetWarning 是否需要展示数据丢失提示
// GET /v1/notice/warning
func (h *Handler) GetWarning(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}
	response.Success(ctx, c, dto.WarningResponse{ShouldShow: ws.Records.ShouldShowWarning(ctx)})
}

// AckWarning 标记提示已展示
// POST /v1/notice/warning/ack
func (h *Handler) AckWarning(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	if err := ws.Records.AcknowledgeWarning(ctx); err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, dto.WarningResponse{ShouldShow: false})
}

package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HoursGuard/internal/export"
	"HoursGuard/internal/model"
	"HoursGuard/internal/model/dto"
	"HoursGuard/internal/stats"
	"HoursGuard/pkg/response"
)

// WeekStats 周统计
// GET /v1/stats/week?date=YYYY-MM-DD
func (h *Handler) WeekStats(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var query dto.WeekStatsQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := ws.Records.WeekStats(ctx, query.Date)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, result)
}

// MonthStats 月统计
// GET /v1/stats/month?month=YYYY-MM
func (h *Handler) MonthStats(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var query dto.MonthStatsQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := ws.Records.MonthStats(ctx, query.Month)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, result)
}

// RangeStats 自定义区间统计
// GET /v1/stats/range?start=&end=
func (h *Handler) RangeStats(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var query dto.RangeQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := ws.Records.RangeStats(ctx, query.Start, query.End)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, result)
}

// Export 下载导出文件
// GET /v1/export?format=text|csv|xlsx|json&month=YYYY-MM 或 &start=&end=
func (h *Handler) Export(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	var query dto.ExportQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	format, err := export.ParseFormat(query.Format)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}

	period, err := exportPeriod(query)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}

	doc, err := ws.Records.Export(ctx, period, format)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.File(c, doc.Filename, doc.ContentType, doc.Body)
}

func exportPeriod(query dto.ExportQuery) (*model.Period, error) {
	switch {
	case query.Month != "":
		p, err := stats.ParseMonth(query.Month)
		return &p, err
	case query.Start != "" || query.End != "":
		p, err := stats.RangePeriod(query.Start, query.End)
		return &p, err
	default:
		return nil, nil
	}
}

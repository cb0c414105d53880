package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"HoursGuard/internal/errhandler"
	"HoursGuard/pkg/errors"
	"HoursGuard/pkg/response"
)

// ListBackups 备份列表，新的在前
// GET /v1/backups
func (h *Handler) ListBackups(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}
	response.Success(ctx, c, ws.Store.ListBackups(ctx))
}

// CreateBackup 立即备份，不受节流限制
// POST /v1/backups
func (h *Handler) CreateBackup(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	summary, err := ws.Store.ForceBackup(ctx)
	if err != nil {
		h.fail(ctx, c, ws, errors.Storage("handler.CreateBackup", err))
		return
	}
	response.Created(ctx, c, summary)
}

// RestoreBackup 从指定备份恢复，0 为最新
// POST /v1/backups/:index/restore
func (h *Handler) RestoreBackup(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(ctx, c, ws, errors.Validation("handler.RestoreBackup", errors.InvalidRequest))
		return
	}

	result := ws.Store.RestoreFromBackup(ctx, index)
	if !result.Success {
		appErr := errors.User("handler.RestoreBackup", errors.BackupNotFound).WithUserMessage(result.Message)
		ws.Errors.Handle(ctx, appErr, errhandler.Options{Silent: true})
		response.ErrorWithDetails(ctx, c, appErr, map[string]interface{}{"index": index})
		return
	}
	response.Success(ctx, c, result)
}

// StorageHealth 存储健康检查
// GET /v1/storage/health
func (h *Handler) StorageHealth(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}
	response.Success(ctx, c, ws.Store.CheckStorageHealth(ctx))
}

// StorageInfo 存储用量
// GET /v1/storage/info
func (h *Handler) StorageInfo(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	info, err := ws.Store.StorageInfo(ctx)
	if err != nil {
		h.fail(ctx, c, ws, errors.Storage("handler.StorageInfo", err))
		return
	}
	response.Success(ctx, c, info)
}

// ListErrors 错误日志，旧的在前
// GET /v1/errors
func (h *Handler) ListErrors(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	logs, err := ws.Errors.ErrorLogs(ctx)
	if err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.Success(ctx, c, logs)
}

// ClearErrors 清空错误日志
// DELETE /v1/errors
func (h *Handler) ClearErrors(ctx context.Context, c *app.RequestContext) {
	ws, ok := h.workspace(ctx, c)
	if !ok {
		return
	}

	if err := ws.Errors.ClearErrorLogs(ctx); err != nil {
		h.fail(ctx, c, ws, err)
		return
	}
	response.NoContent(ctx, c)
}

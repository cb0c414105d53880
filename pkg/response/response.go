package response

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	"HoursGuard/internal/model"
	"HoursGuard/internal/notify"
	"HoursGuard/pkg/errors"
)

// RequestIDKey 请求 ID 在 RequestContext 中的键
const RequestIDKey = "request_id"

var codeStatus = map[string]int{
	errors.InvalidRequest.Code:     http.StatusBadRequest,
	errors.InvalidDate.Code:        http.StatusBadRequest,
	errors.InvalidTime.Code:        http.StatusBadRequest,
	errors.InvalidRecord.Code:      http.StatusBadRequest,
	errors.InvalidPeriod.Code:      http.StatusBadRequest,
	errors.InvalidExport.Code:      http.StatusBadRequest,
	errors.InvalidCleanupDays.Code: http.StatusBadRequest,
	errors.BackupInvalid.Code:      http.StatusUnprocessableEntity,
	errors.Unauthorized.Code:       http.StatusUnauthorized,
	errors.RecordNotFound.Code:     http.StatusNotFound,
	errors.BackupNotFound.Code:     http.StatusNotFound,
	errors.AlreadyClockedIn.Code:   http.StatusConflict,
	errors.NotClockedIn.Code:       http.StatusConflict,
	errors.TooManyRequests.Code:    http.StatusTooManyRequests,
	errors.StorageReadFailed.Code:  http.StatusServiceUnavailable,
	errors.StorageWriteFailed.Code: http.StatusServiceUnavailable,
}

var kindStatus = map[errors.Kind]int{
	errors.KindValidation: http.StatusBadRequest,
	errors.KindUser:       http.StatusBadRequest,
	errors.KindStorage:    http.StatusServiceUnavailable,
	errors.KindNetwork:    http.StatusBadGateway,
	errors.KindFile:       http.StatusInternalServerError,
	errors.KindSystem:     http.StatusInternalServerError,
}

func errorToHTTPStatus(err error) int {
	if def, ok := errors.DefinitionOf(err); ok {
		if status, ok := codeStatus[def.Code]; ok {
			return status
		}
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return kindStatus[appErr.Kind]
	}
	return http.StatusInternalServerError
}

// errorBody 业务错误码优先，其次是错误分类
func errorBody(err error) model.ErrorBody {
	var appErr *errors.AppError
	isApp := stderrors.As(err, &appErr)
	def, hasDef := errors.DefinitionOf(err)

	body := model.ErrorBody{Code: errors.InternalError.Code, Message: errors.InternalError.Message}
	switch {
	case isApp:
		body.Code = strings.ToUpper(string(appErr.Kind))
		if hasDef {
			body.Code = def.Code
		}
		body.Message = errors.UserMessageOf(err)
		body.Details = model.ErrorDetail{
			"kind":     string(appErr.Kind),
			"severity": string(appErr.Severity),
		}
		if hasDef {
			body.Details["reason"] = def.Message
		}
	case hasDef:
		body.Code = def.Code
		body.Message = def.Message
	}
	return body
}

func meta(ctx context.Context, c *app.RequestContext) model.Meta {
	m := model.Meta{CompatibleSince: "v1", RequestID: c.GetString(RequestIDKey)}
	if col := notify.CollectorFrom(ctx); col != nil {
		m.Notices = col.Notices()
	}
	return m
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(errorToHTTPStatus(err), model.ErrorResponse{
		Error: errorBody(err),
		Meta:  meta(ctx, c),
	})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	body := errorBody(err)
	if body.Details == nil {
		body.Details = model.ErrorDetail{}
	}
	for k, v := range details {
		body.Details[k] = v
	}
	c.JSON(errorToHTTPStatus(err), model.ErrorResponse{Error: body, Meta: meta(ctx, c)})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, model.SuccessResponse{Data: data, Meta: meta(ctx, c)})
}

func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, model.SuccessResponse{Data: data, Meta: meta(ctx, c)})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Error: model.ErrorBody{Code: errors.InvalidRequest.Code, Message: err.Error()},
		Meta:  meta(ctx, c),
	})
}

// File 下载文件
func File(c *app.RequestContext, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}

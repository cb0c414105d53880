package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/model"
	"HoursGuard/internal/notify"
	"HoursGuard/pkg/response"
)

func TestCORSMiddleware(t *testing.T) {
	h := server.New()
	h.Use(CORSMiddleware([]string{"https://app.example.com"}))
	h.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "pong")
	})

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/ping", nil, ut.Header{Key: "Origin", Value: "https://app.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/ping", nil, ut.Header{Key: "Origin", Value: "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = ut.PerformRequest(h.Engine, http.MethodOptions, "/ping", nil, ut.Header{Key: "Origin", Value: "https://app.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestContext_CollectsNotices(t *testing.T) {
	h := server.New()
	h.Use(RequestContext())
	h.GET("/notice", func(ctx context.Context, c *app.RequestContext) {
		notify.Context{}.Toast(ctx, "数据保存失败，请稍后重试")
		response.Success(ctx, c, nil)
	})

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/notice", nil, ut.Header{Key: "X-Request-ID", Value: "req-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	var resp model.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.Meta.RequestID)
	require.Len(t, resp.Meta.Notices, 1)
	assert.Equal(t, model.NoticeToast, resp.Meta.Notices[0].Level)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/notice", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecoverMiddleware(t *testing.T) {
	for _, production := range []bool{true, false} {
		h := server.New()
		h.Use(RecoverMiddleware(NewRecoverConfig(production)))
		h.GET("/panic", func(ctx context.Context, c *app.RequestContext) {
			panic("boom")
		})

		w := ut.PerformRequest(h.Engine, http.MethodGet, "/panic", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		if production {
			assert.NotContains(t, resp.Error.Details, "panic")
		} else {
			assert.Equal(t, "boom", resp.Error.Details["panic"])
		}
	}
}

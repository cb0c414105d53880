package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/jwt"

	"HoursGuard/internal/handler"
	"HoursGuard/internal/middleware"
)

// Deps 路由依赖。Tracing、Metrics、Limiter 为 nil 时不启用对应中间件
type Deps struct {
	Handler      *handler.Handler
	Auth         *jwt.HertzJWTMiddleware
	Tracing      app.HandlerFunc // hertz 链路追踪中间件，需与 server 的 tracer 选项配套
	Metrics      *middleware.HTTPMetrics
	Limiter      *middleware.RateLimiter
	AuthLimiter  *middleware.RateLimiter
	IsProduction bool
	CORSOrigins  []string
}

func Register(h *server.Hertz, deps Deps) {
	if deps.Tracing != nil {
		h.Use(deps.Tracing)
	}
	h.Use(middleware.RecoverMiddleware(middleware.NewRecoverConfig(deps.IsProduction)))
	h.Use(middleware.RequestContext())
	h.Use(middleware.CORSMiddleware(deps.CORSOrigins))
	if deps.Metrics != nil {
		h.Use(middleware.OpenTelemetryMiddleware(deps.Metrics))
	}

	hd := deps.Handler
	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth", optional(deps.AuthLimiter)...)
	{
		auth.POST("/device", hd.RegisterDevice)
		auth.POST("/refresh", hd.RefreshToken)
	}

	// 以下路由需要鉴权
	authed := []app.HandlerFunc{deps.Auth.MiddlewareFunc()}
	authed = append(authed, optional(deps.Limiter)...)
	api := v1.Group("", authed...)
	{
		api.GET("/today", hd.GetToday)
		api.POST("/clock/in", hd.ClockIn)
		api.POST("/clock/out", hd.ClockOut)

		api.GET("/notice/warning", hd.GetWarning)
		api.POST("/notice/warning/ack", hd.AckWarning)

		api.GET("/export", hd.Export)
	}

	records := api.Group("/records")
	{
		records.GET("", hd.ListRecords)
		records.DELETE("", hd.ClearRecords)
		records.POST("/import", hd.ImportRecords)
		records.POST("/cleanup", hd.CleanupRecords)
		records.GET("/:date", hd.GetRecord)
		records.PUT("/:date", hd.UpdateRecord)
		records.DELETE("/:date", hd.DeleteRecord)
	}

	statsGroup := api.Group("/stats")
	{
		statsGroup.GET("/week", hd.WeekStats)
		statsGroup.GET("/month", hd.MonthStats)
		statsGroup.GET("/range", hd.RangeStats)
	}

	backups := api.Group("/backups")
	{
		backups.GET("", hd.ListBackups)
		backups.POST("", hd.CreateBackup)
		backups.POST("/:index/restore", hd.RestoreBackup)
	}

	storageGroup := api.Group("/storage")
	{
		storageGroup.GET("/health", hd.StorageHealth)
		storageGroup.GET("/info", hd.StorageInfo)
	}

	errorsGroup := api.Group("/errors")
	{
		errorsGroup.GET("", hd.ListErrors)
		errorsGroup.DELETE("", hd.ClearErrors)
	}
}

func optional(l *middleware.RateLimiter) []app.HandlerFunc {
	if l == nil {
		return nil
	}
	return []app.HandlerFunc{middleware.RateLimitMiddleware(l)}
}

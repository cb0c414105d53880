package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey  = "otel:span"
	startKey = "otel:start_time"
)

// OTELPlugin GORM OpenTelemetry 插件
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig

	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName   string
	EnableMetrics bool
	MaxSQLLength  int
}

// DefaultPluginConfig 默认插件配置
func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		ServiceName:   "hoursguard",
		EnableMetrics: true,
		MaxSQLLength:  500,
	}
}

// NewOTELPlugin 使用全局 Provider 创建插件实例
func NewOTELPlugin(config PluginConfig) (*OTELPlugin, error) {
	if config.ServiceName == "" {
		config.ServiceName = "hoursguard"
	}
	return newOTELPlugin(
		otel.Tracer(config.ServiceName+".gorm"),
		otel.Meter(config.ServiceName+".gorm"),
		config,
	)
}

func newOTELPlugin(tracer trace.Tracer, meter metric.Meter, config PluginConfig) (*OTELPlugin, error) {
	queriesTotal, err := meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}

	return &OTELPlugin{
		tracer:        tracer,
		config:        config,
		queriesTotal:  queriesTotal,
		queryDuration: queryDuration,
	}, nil
}

// Name 实现 gorm.Plugin 接口
func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		name     string
		register func(before, after func(*gorm.DB)) error
	}{
		{"query", func(b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("otel:before_query", b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("otel:after_query", a)
		}},
		{"create", func(b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("otel:before_create", b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("otel:after_create", a)
		}},
		{"update", func(b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("otel:before_update", b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("otel:after_update", a)
		}},
		{"delete", func(b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("otel:after_delete", a)
		}},
		{"row", func(b, a func(*gorm.DB)) error {
			if err := cb.Row().Before("gorm:row").Register("otel:before_row", b); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register("otel:after_row", a)
		}},
		{"raw", func(b, a func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", b); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("otel:after_raw", a)
		}},
	}

	for _, h := range hooks {
		if err := h.register(p.beforeCallback, p.afterCallback); err != nil {
			return err
		}
	}
	return nil
}

func (p *OTELPlugin) beforeCallback(db *gorm.DB) {
	ctx, span := p.tracer.Start(db.Statement.Context, "db."+tableName(db),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemPostgreSQL,
			attribute.String("service.name", p.config.ServiceName),
		),
	)

	db.InstanceSet(startKey, time.Now())
	db.InstanceSet(spanKey, span)
	db.Statement.Context = ctx
}

func (p *OTELPlugin) afterCallback(db *gorm.DB) {
	v, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	operation := operationName(db.Statement.SQL.String())
	span.SetName(operation)

	sql := db.Statement.SQL.String()
	if p.config.MaxSQLLength > 0 && len(sql) > p.config.MaxSQLLength {
		sql = sql[:p.config.MaxSQLLength] + "..."
	}
	span.SetAttributes(
		semconv.DBStatement(sql),
		attribute.String("db.table", tableName(db)),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	status := "success"
	switch {
	case db.Error == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(db.Error, gorm.ErrRecordNotFound):
		status = "not_found"
		span.SetStatus(codes.Ok, "Record not found")
	default:
		status = "error"
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if !p.config.EnableMetrics {
		return
	}
	var elapsed float64
	if v, ok := db.InstanceGet(startKey); ok {
		if start, ok := v.(time.Time); ok {
			elapsed = time.Since(start).Seconds()
		}
	}
	p.recordMetrics(db.Statement.Context, operation, status, elapsed)
}

func (p *OTELPlugin) recordMetrics(ctx context.Context, operation, status string, elapsed float64) {
	labels := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	)
	p.queriesTotal.Add(ctx, 1, labels)
	p.queryDuration.Record(ctx, elapsed, labels)
}

func tableName(db *gorm.DB) string {
	if db.Statement.Table == "" {
		return "unknown"
	}
	return db.Statement.Table
}

// operationName 从 SQL 中提取操作类型
func operationName(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case sql == "":
		return "db.unknown"
	case strings.HasPrefix(sql, "SELECT"):
		return "db.select"
	case strings.HasPrefix(sql, "INSERT"):
		return "db.insert"
	case strings.HasPrefix(sql, "UPDATE"):
		return "db.update"
	case strings.HasPrefix(sql, "DELETE"):
		return "db.delete"
	default:
		return "db.query"
	}
}

// WithDefaultOTELPlugin 使用默认配置添加 OpenTelemetry 插件
func WithDefaultOTELPlugin(db *gorm.DB, serviceName string) error {
	config := DefaultPluginConfig()
	config.ServiceName = serviceName

	plugin, err := NewOTELPlugin(config)
	if err != nil {
		return err
	}
	return db.Use(plugin)
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"HoursGuard/config"
	pkgdb "HoursGuard/pkg/database"
	"HoursGuard/pkg/logger"
)

// Open 连接 PostgreSQL，注册只读副本与追踪插件并完成迁移
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   newLogger(cfg),
		DisableForeignKeyConstraintWhenMigrating: true,
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), gormCfg)
	if err != nil {
		logger.Logger.Error("Failed to open database", zap.String("dsn", "please check database connection"), zap.Error(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	configureConnectionPool(sqlDB, cfg)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		logger.Logger.Error("Failed to ping database", zap.Error(err))
		return nil, err
	}

	if cfg.PostgreSQLReplicaDSN != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.PostgreSQLReplicaDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(cfg.PostgreSQLMaxIdle).
			SetMaxOpenConns(cfg.PostgreSQLMaxOpen))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		logger.Logger.Info("Database read replica registered")
	}

	if cfg.OTelEnabled {
		if err := pkgdb.WithDefaultOTELPlugin(db, cfg.ServiceName); err != nil {
			logger.Logger.Warn("Failed to register gorm tracing plugin", zap.Error(err))
		}
	}

	if err := Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("run database migration: %w", err)
	}

	logger.Logger.Info("Database initialized successfully")
	return db, nil
}

func Close(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- sqlDB.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func configureConnectionPool(sqlDB *sql.DB, cfg *config.Config) {
	sqlDB.SetMaxIdleConns(cfg.PostgreSQLMaxIdle)
	sqlDB.SetMaxOpenConns(cfg.PostgreSQLMaxOpen)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
}

func newLogger(cfg *config.Config) gormlogger.Interface {
	var level gormlogger.LogLevel
	switch cfg.LoggerLevel {
	case "DEBUG":
		level = gormlogger.Info
	case "ERROR":
		level = gormlogger.Error
	default:
		level = gormlogger.Warn
	}

	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Logger.Sugar().Infof(format, args...)
}

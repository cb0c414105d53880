package database

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"HoursGuard/pkg/logger"
)

// KVEntry 键值表，一行一个键
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)"`
	Value     []byte    `gorm:"type:bytea;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// Migrate 创建键值表
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.WithContext(ctx).AutoMigrate(&KVEntry{}); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}

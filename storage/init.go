package storage

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"HoursGuard/config"
	"HoursGuard/storage/database"
	"HoursGuard/storage/kv"
	"HoursGuard/storage/memory"
	"HoursGuard/storage/mq"
	"HoursGuard/storage/redis"
	"HoursGuard/storage/sqlite"
)

// Backends 统一持有各存储连接，按配置只初始化需要的部分
type Backends struct {
	KV kv.Store

	Redis  *goredis.Client // 仅 redis 后端
	DB     *gorm.DB        // 仅 postgres 后端
	SQLite *sqlite.Store   // 仅 sqlite 后端
	MQ     *mq.Client      // RABBITMQ_ENABLED 时
}

// Open 统一 init storage 层
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		b.KV = memory.New()

	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.SQLite = s
		b.KV = s

	case config.BackendRedis:
		client, err := redis.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.Redis = client
		b.KV = redis.NewStore(client, cfg.RedisPrefix)

	case config.BackendPostgres:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.DB = db
		b.KV = database.NewStore(db)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.RabbitMQEnabled {
		client, err := mq.Dial(ctx, cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.MQ = client
	}

	return b, nil
}

package config

import (
	"errors"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// 存储后端
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	// 服务配置
	ServerPort  string   `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string   `env:"SERVICE_NAME" envDefault:"hoursguard"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","` // 为空时允许任意来源

	// 存储后端：memory, sqlite, redis, postgres
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`

	// SQLite 配置（CLI 默认使用本地文件）
	SQLitePath string `env:"SQLITE_PATH" envDefault:"hoursguard.db"`

	// PostgreSQL 配置
	PostgreSQLHost       string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort       string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser       string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword   string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase   string `env:"POSTGRESQL_DATABASE" envDefault:"hoursguard"`
	PostgreSQLSchema     string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode    string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle    int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen    int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`
	PostgreSQLReplicaDSN string `env:"POSTGRESQL_REPLICA_DSN"` // 只读副本，可选

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"hg"`

	// RabbitMQ 配置，未启用时事件只写日志
	RabbitMQEnabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"hoursguard.events"`

	// 存储可靠性策略
	StorageMaxRetries int           `env:"STORAGE_MAX_RETRIES" envDefault:"3"`
	StorageRetryDelay time.Duration `env:"STORAGE_RETRY_DELAY" envDefault:"100ms"`
	BackupInterval    time.Duration `env:"BACKUP_INTERVAL" envDefault:"24h"`  // 自动备份节流间隔
	BackupMax         int           `env:"BACKUP_MAX" envDefault:"5"`         // 保留的备份份数，1 表示单槽位覆盖
	BackupStaleAfter  time.Duration `env:"BACKUP_STALE_AFTER" envDefault:"168h"`
	StorageLimitKB    int64         `env:"STORAGE_LIMIT_KB" envDefault:"10240"` // 与小程序本地存储上限一致
	StorageWarnRatio  float64       `env:"STORAGE_WARN_RATIO" envDefault:"0.8"`
	ErrorLogMax       int           `env:"ERROR_LOG_MAX" envDefault:"50"`

	// 熔断配置
	BreakerMaxFailures  int           `env:"BREAKER_MAX_FAILURES" envDefault:"10"`
	BreakerResetTimeout time.Duration `env:"BREAKER_RESET_TIMEOUT" envDefault:"30s"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 服务端必填
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"120"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"30"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置（仅 redis 后端可用）
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitWindow  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`
	RateLimitMax     int  `env:"RATE_LIMIT_MAX" envDefault:"120"`

	// 定时维护
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1h"`
	AutoCleanupDays   int           `env:"AUTO_CLEANUP_DAYS" envDefault:"0"` // 0 表示不自动清理
}

// Load 读取 .env 与环境变量
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateServer 服务端额外要求
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageBackend == BackendMemory && c.IsProduction() {
		log.Printf("WARN: memory storage backend in production, data will be lost on restart")
	}
	if c.StorageBackend == BackendRedis && !c.RateLimitEnabled {
		log.Printf("WARN: rate limiting disabled")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendPostgres:
	default:
		return errors.New("STORAGE_BACKEND must be one of memory, sqlite, redis, postgres")
	}

	if c.StorageMaxRetries < 1 {
		return errors.New("STORAGE_MAX_RETRIES must be at least 1")
	}
	if c.BackupMax < 1 {
		return errors.New("BACKUP_MAX must be at least 1")
	}
	if c.StorageWarnRatio <= 0 || c.StorageWarnRatio > 1 {
		return errors.New("STORAGE_WARN_RATIO must be in (0, 1]")
	}
	if c.ErrorLogMax < 1 {
		return errors.New("ERROR_LOG_MAX must be at least 1")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// StorageLimitBytes 存储配额（字节）
func (c *Config) StorageLimitBytes() int64 {
	return c.StorageLimitKB * 1024
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

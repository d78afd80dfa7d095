package config

import "time"

// Поддерживаемые драйверы хранилища.
const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StorageConfig выбирает драйвер хранилища ключ-значение.
// Попытки подключения повторяются только для сетевых драйверов (redis, postgres).
type StorageConfig struct {
	Driver          string        `yaml:"driver" env:"NOTES_STORAGE_DRIVER" env-default:"sqlite"`
	ConnectAttempts int           `yaml:"connect_attempts" env:"NOTES_STORAGE_CONNECT_ATTEMPTS" env-default:"3"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"NOTES_STORAGE_CONNECT_BACKOFF" env-default:"500ms"`
}

// SQLiteConfig содержит настройки локального файла SQLite.
type SQLiteConfig struct {
	Path          string `yaml:"path" env:"NOTES_SQLITE_PATH" env-default:"data/notes.db"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms" env:"NOTES_SQLITE_BUSY_TIMEOUT_MS" env-default:"5000"`
}

// RedisConfig содержит настройки подключения к Redis.
type RedisConfig struct {
	Host      string        `yaml:"host" env:"NOTES_REDIS_HOST" env-default:"localhost"`
	Port      int           `yaml:"port" env:"NOTES_REDIS_PORT" env-default:"6379"`
	Password  string        `yaml:"password" env:"NOTES_REDIS_PASSWORD" env-default:""`
	DB        int           `yaml:"db" env:"NOTES_REDIS_DB" env-default:"0"`
	PoolSize  int           `yaml:"pool_size" env:"NOTES_REDIS_POOL_SIZE" env-default:"4"`
	Timeout   time.Duration `yaml:"timeout" env:"NOTES_REDIS_TIMEOUT" env-default:"3s"`
	KeyPrefix string        `yaml:"key_prefix" env:"NOTES_REDIS_KEY_PREFIX" env-default:"notekeeper:"`
}

// Package db открывает хранилище ключ-значение сервиса заметок по выбранному драйверу.
package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"notekeeper/internal/notes/adapters/storage/memory"
	kvpostgres "notekeeper/internal/notes/adapters/storage/postgres"
	kvredis "notekeeper/internal/notes/adapters/storage/redis"
	kvsqlite "notekeeper/internal/notes/adapters/storage/sqlite"
	"notekeeper/internal/notes/config"
	"notekeeper/internal/notes/ports/storage"
	"notekeeper/pkg/db/postgres"
	"notekeeper/pkg/db/redis"
	"notekeeper/pkg/db/sqlite"
	"notekeeper/pkg/logger"
	"notekeeper/pkg/retry"
)

// Константы для сообщений logger.
const (
	LogStorageOpening    = "opening notes storage"
	LogStorageOpened     = "notes storage opened"
	LogMigrationStarting = "starting database migrations for notes service"
)

// Константы для сообщений об ошибках.
const (
	ErrOpenStorage   = "failed to open notes storage"
	ErrDBMigrations  = "failed to apply notes database migrations"
	ErrDBConnection  = "failed to connect to notes database"
	ErrGetPath       = "failed to get path"
	ErrRedisConnect  = "failed to connect to notes redis"
	ErrSQLiteOpen    = "failed to open notes sqlite database"
	ErrSQLitePrepare = "failed to prepare notes sqlite store"
)

// ErrUnknownDriver возвращается для неподдерживаемого значения NOTES_STORAGE_DRIVER.
var ErrUnknownDriver = errors.New("unknown storage driver")

const filePrefix = "file://"

// Open создает хранилище для драйвера из cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (storage.KVStore, error) {
	driver := cfg.Storage.Driver
	log := logger.Log(ctx).With(zap.String("driver", driver))
	log.Info(ctx, LogStorageOpening)

	var (
		store storage.KVStore
		err   error
	)
	switch driver {
	case config.DriverMemory:
		store = memory.NewKVStore()
	case config.DriverSQLite:
		store, err = openSQLite(ctx, &cfg.SQLite)
	case config.DriverRedis:
		err = retry.Do(ctx, driver, connectPolicy(&cfg.Storage), func(ctx context.Context) error {
			var openErr error
			store, openErr = openRedis(ctx, &cfg.Redis)
			return openErr
		})
	case config.DriverPostgres:
		err = retry.Do(ctx, driver, connectPolicy(&cfg.Storage), func(ctx context.Context) error {
			var openErr error
			store, openErr = openPostgres(ctx, &cfg.Postgres)
			return openErr
		})
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		log.Error(ctx, ErrOpenStorage, zap.Error(err))
		return nil, err
	}

	log.Info(ctx, LogStorageOpened)
	return store, nil
}

func connectPolicy(cfg *config.StorageConfig) retry.Policy {
	policy := retry.DefaultPolicy()
	policy.Attempts = cfg.ConnectAttempts
	if cfg.ConnectBackoff > 0 {
		policy.InitialBackoff = cfg.ConnectBackoff
		policy.MaxBackoff = max(policy.MaxBackoff, cfg.ConnectBackoff)
	}
	return policy
}

func openSQLite(ctx context.Context, cfg *config.SQLiteConfig) (storage.KVStore, error) {
	database, err := sqlite.New(ctx, cfg.Path, cfg.BusyTimeoutMS)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSQLiteOpen, err)
	}

	store, err := kvsqlite.NewKVStore(ctx, database.DB())
	if err != nil {
		_ = database.Close(ctx)
		return nil, fmt.Errorf("%s: %w", ErrSQLitePrepare, err)
	}
	return store, nil
}

func openRedis(ctx context.Context, cfg *config.RedisConfig) (storage.KVStore, error) {
	client, err := redis.NewClient(ctx, &redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrRedisConnect, err)
	}
	return kvredis.NewKVStore(client, cfg.KeyPrefix), nil
}

func openPostgres(ctx context.Context, cfg *config.PostgresConfig) (storage.KVStore, error) {
	log := logger.Log(ctx)

	migrationsPath, err := migrationsURL(cfg.MigrationsPath)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("%s: %s: %w", ErrDBMigrations, ErrGetPath, err))
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), cfg.MinConn, cfg.MaxConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}
	return kvpostgres.NewKVStore(database.Pool()), nil
}

func migrationsURL(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filePrefix + dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filePrefix + absPath, nil
}

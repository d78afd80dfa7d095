// Package postgres provides a KVStore backed by a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notekeeper/internal/notes/ports/storage"
	"notekeeper/pkg/logger"
)

// Pool - часть pgxpool.Pool, нужная хранилищу.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Константы для сообщений об ошибках.
const (
	ErrGetValue = "failed to get value from postgres"
	ErrSetValue = "failed to set value in postgres"
)

const (
	getSQL    = `SELECT value FROM kv_store WHERE key = $1`
	upsertSQL = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

// KVStore хранит значения в таблице kv_store (см. migrations/notes).
type KVStore struct {
	pool Pool
}

var _ storage.KVStore = (*KVStore)(nil)

// NewKVStore создает хранилище поверх пула соединений.
func NewKVStore(pool Pool) *KVStore {
	return &KVStore{pool: pool}
}

// Get получает значение по ключу. Отсутствующий ключ дает пустую строку.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "postgres.KVStore.Get"), zap.String("key", key))

	var value string
	if err := s.pool.QueryRow(ctx, getSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		log.Error(ctx, ErrGetValue, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrGetValue, err)
	}
	return value, nil
}

// Set перезаписывает значение.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	log := logger.Log(ctx).With(zap.String("method", "postgres.KVStore.Set"), zap.String("key", key))

	if _, err := s.pool.Exec(ctx, upsertSQL, key, value); err != nil {
		log.Error(ctx, ErrSetValue, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrSetValue, err)
	}
	return nil
}

// Close закрывает пул.
func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}

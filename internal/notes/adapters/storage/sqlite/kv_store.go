// Package sqlite provides a KVStore persisted in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notekeeper/internal/notes/ports/storage"
	"notekeeper/pkg/logger"
)

// Константы для сообщений об ошибках.
const (
	ErrCreateSchema = "failed to create kv_store table"
	ErrGetValue     = "failed to read value from sqlite"
	ErrSetValue     = "failed to write value to sqlite"
	ErrCloseDB      = "failed to close sqlite database"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	getSQL    = `SELECT value FROM kv_store WHERE key = ?`
	upsertSQL = `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// KVStore хранит значения в таблице kv_store.
type KVStore struct {
	db *sql.DB
}

var _ storage.KVStore = (*KVStore)(nil)

// NewKVStore создает таблицу при необходимости.
func NewKVStore(ctx context.Context, db *sql.DB) (*KVStore, error) {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		logger.Log(ctx).Error(ctx, ErrCreateSchema, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreateSchema, err)
	}
	return &KVStore{db: db}, nil
}

// Get возвращает значение или пустую строку, если ключа нет.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "sqlite.KVStore.Get"), zap.String("key", key))

	var value string
	err := s.db.QueryRowContext(ctx, getSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		log.Error(ctx, ErrGetValue, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrGetValue, err)
	}
	return value, nil
}

// Set перезаписывает значение.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	log := logger.Log(ctx).With(zap.String("method", "sqlite.KVStore.Set"), zap.String("key", key))

	if _, err := s.db.ExecContext(ctx, upsertSQL, key, value); err != nil {
		log.Error(ctx, ErrSetValue, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrSetValue, err)
	}
	return nil
}

// Close закрывает базу.
func (s *KVStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrCloseDB, err)
	}
	return nil
}

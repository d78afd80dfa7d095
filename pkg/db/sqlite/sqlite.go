// Package sqlite предоставляет подключение к локальной базе SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"notekeeper/pkg/logger"
)

// MemoryPath открывает базу в памяти процесса.
const MemoryPath = ":memory:"

const driverName = "sqlite"

// Константы для сообщений logger.
const (
	LogOpening = "opening SQLite database"
	LogOpened  = "SQLite database opened"
	LogClosing = "closing SQLite database"
)

// Константы для сообщений об ошибках.
const (
	ErrCreateDir    = "failed to create database directory"
	ErrOpenDatabase = "failed to open database"
	ErrPingDatabase = "failed to ping database"
	ErrPragma       = "failed to apply pragma"
)

// Database представляет соединение с SQLite.
type Database struct {
	db *sql.DB
}

// New открывает базу по пути path, создавая каталог при необходимости.
// Используется одно соединение: запись в SQLite все равно последовательна.
func New(ctx context.Context, path string, busyTimeoutMS int) (*Database, error) {
	log := logger.Log(ctx).With(zap.String("path", path))
	log.Info(ctx, LogOpening)

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Error(ctx, ErrCreateDir, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrCreateDir, err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		log.Error(ctx, ErrOpenDatabase, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrOpenDatabase, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		log.Error(ctx, ErrPingDatabase, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPingDatabase, err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS)); err != nil {
		_ = db.Close()
		log.Error(ctx, ErrPragma, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPragma, err)
	}

	log.Info(ctx, LogOpened)
	return &Database{db: db}, nil
}

// DB возвращает пул database/sql.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close закрывает базу.
func (d *Database) Close(ctx context.Context) error {
	logger.Log(ctx).Info(ctx, LogClosing)
	return d.db.Close()
}

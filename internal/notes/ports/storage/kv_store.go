// Package storage defines the durable key-value port used for persistence.
package storage

import "context"

// KVStore - долговременное хранилище строк по ключу.
// Get возвращает пустую строку без ошибки, если ключ отсутствует.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Package memory provides an in-process KVStore backed by go-cache.
// Data lives as long as the process does.
package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"notekeeper/internal/notes/ports/storage"
)

// KVStore хранит значения в памяти без срока жизни.
type KVStore struct {
	cache *cache.Cache
}

var _ storage.KVStore = (*KVStore)(nil)

// NewKVStore создает пустое хранилище.
func NewKVStore() *KVStore {
	return &KVStore{cache: cache.New(cache.NoExpiration, 0)}
}

// Get возвращает значение или пустую строку, если ключа нет.
func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", nil
	}
	value, _ := v.(string)
	return value, nil
}

// Set перезаписывает значение.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// Close очищает хранилище.
func (s *KVStore) Close() error {
	s.cache.Flush()
	return nil
}

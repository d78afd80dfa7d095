// Package app contains the notes workspace: stores, query engine, autosave
// and the persistence gateway that keeps them in durable storage.
package app

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/storage"
	"notekeeper/pkg/logger"
)

// Ключи коллекций в хранилище.
const (
	KeyNotes   = "notes"
	KeyFolders = "folders"
)

// Константы для сообщений logger.
const (
	LogPayloadMissing   = "stored collection is absent, starting empty"
	LogPayloadMalformed = "stored collection is malformed, discarding"
	LogReadFailed       = "failed to read stored collection, starting empty"
	LogCollectionLoaded = "collection loaded"
	LogCollectionSaved  = "collection saved"
)

// Константы для сообщений об ошибках.
const (
	ErrEncodeCollection = "failed to encode collection"
	ErrWriteCollection  = "failed to write collection"
)

// PersistenceGateway сериализует коллекции целиком и перезаписывает их в KVStore.
type PersistenceGateway struct {
	store storage.KVStore
}

// NewPersistenceGateway создает шлюз поверх хранилища.
func NewPersistenceGateway(store storage.KVStore) *PersistenceGateway {
	return &PersistenceGateway{store: store}
}

// LoadNotes читает заметки. Отсутствующие или поврежденные данные дают пустую коллекцию.
func (g *PersistenceGateway) LoadNotes(ctx context.Context) []*entities.Note {
	notes := load[*entities.Note](ctx, g.store, KeyNotes)
	out := make([]*entities.Note, 0, len(notes))
	for _, n := range notes {
		if n == nil {
			continue
		}
		n.Tags = entities.NormalizeTags(n.Tags)
		out = append(out, n)
	}
	return out
}

// LoadFolders читает папки. Отсутствующие или поврежденные данные дают пустую коллекцию.
func (g *PersistenceGateway) LoadFolders(ctx context.Context) []*entities.Folder {
	folders := load[*entities.Folder](ctx, g.store, KeyFolders)
	out := make([]*entities.Folder, 0, len(folders))
	for _, f := range folders {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// SaveNotes перезаписывает коллекцию заметок.
func (g *PersistenceGateway) SaveNotes(ctx context.Context, notes []*entities.Note) error {
	return save(ctx, g.store, KeyNotes, notes)
}

// SaveFolders перезаписывает коллекцию папок.
func (g *PersistenceGateway) SaveFolders(ctx context.Context, folders []*entities.Folder) error {
	return save(ctx, g.store, KeyFolders, folders)
}

func load[T any](ctx context.Context, store storage.KVStore, key string) []T {
	log := logger.Log(ctx).With(zap.String("method", "PersistenceGateway.load"), zap.String("key", key))

	raw, err := store.Get(ctx, key)
	if err != nil {
		log.Error(ctx, LogReadFailed, zap.Error(err))
		return nil
	}
	if raw == "" {
		log.Debug(ctx, LogPayloadMissing)
		return nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn(ctx, LogPayloadMalformed, zap.Int("size", len(raw)), zap.Error(err))
		return nil
	}

	log.Debug(ctx, LogCollectionLoaded, zap.Int("count", len(items)))
	return items
}

// save возвращает ошибку без логирования: ее логирует вызывающее хранилище.
func save[T any](ctx context.Context, store storage.KVStore, key string, items []T) error {
	log := logger.Log(ctx).With(zap.String("method", "PersistenceGateway.save"), zap.String("key", key))

	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%s %q: %w", ErrEncodeCollection, key, err)
	}

	if err := store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("%s %q: %w", ErrWriteCollection, key, err)
	}

	log.Debug(ctx, LogCollectionSaved, zap.Int("count", len(items)), zap.Int("size", len(payload)))
	return nil
}

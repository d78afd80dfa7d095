package app

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/services"
	"notekeeper/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogFoldersLoaded        = "folders loaded"
	LogFolderCreated        = "folder created"
	LogFolderUpdated        = "folder updated"
	LogFolderDeleted        = "folder deleted"
	LogFolderRejected       = "folder rejected"
	LogPersistFoldersFailed = "failed to persist folders"
)

// FolderStore хранит коллекцию папок. Удаление папки каскадно
// открепляет от нее заметки в NoteStore.
type FolderStore struct {
	gateway *PersistenceGateway
	clock   services.Clock
	ids     services.IDGenerator
	notes   *NoteStore
	folders []*entities.Folder
}

// NewFolderStore загружает папки и подключается к NoteStore как справочник папок.
func NewFolderStore(ctx context.Context, gateway *PersistenceGateway, notes *NoteStore, clock services.Clock, ids services.IDGenerator) *FolderStore {
	s := &FolderStore{
		gateway: gateway,
		clock:   clock,
		ids:     ids,
		notes:   notes,
	}

	for _, f := range gateway.LoadFolders(ctx) {
		if f.ID == "" || s.Exists(f.ID) {
			continue
		}
		s.folders = append(s.folders, f)
	}
	logger.Log(ctx).Info(ctx, LogFoldersLoaded, zap.Int("count", len(s.folders)))

	notes.attachFolders(ctx, s)
	return s
}

// Create добавляет папку в конец списка. Пустое имя дает entities.ErrEmptyFolderName,
// при этом ничего не сохраняется.
func (s *FolderStore) Create(ctx context.Context, name string) (*entities.Folder, error) {
	log := logger.Log(ctx).With(zap.String("method", "FolderStore.Create"))

	folder, err := entities.NewFolder(s.ids.NewID(), name, s.clock.Now())
	if err != nil {
		log.Debug(ctx, LogFolderRejected, zap.Error(err))
		return nil, err
	}

	s.folders = append(s.folders, folder)
	log.Debug(ctx, LogFolderCreated, zap.String("folder_id", folder.ID))
	s.persist(ctx)
	return folder.Clone(), nil
}

// Update заменяет папку с тем же ID. Имя проверяется так же, как при создании.
// Для отсутствующей папки ничего не делает и возвращает false.
func (s *FolderStore) Update(ctx context.Context, folder *entities.Folder) (bool, error) {
	log := logger.Log(ctx).With(zap.String("method", "FolderStore.Update"))

	name, err := entities.ValidateFolderName(folder.Name)
	if err != nil {
		log.Debug(ctx, LogFolderRejected, zap.Error(err))
		return false, err
	}

	i := s.index(folder.ID)
	if i < 0 {
		return false, nil
	}

	updated := s.folders[i].Clone()
	updated.Name = name
	s.folders[i] = updated

	log.Debug(ctx, LogFolderUpdated, zap.String("folder_id", folder.ID))
	s.persist(ctx)
	return true, nil
}

// Delete удаляет папку и в том же переходе обнуляет FolderID у всех ее заметок.
// Сначала сохраняются заметки, затем папки.
func (s *FolderStore) Delete(ctx context.Context, id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	s.folders = slices.Delete(s.folders, i, i+1)
	detached := s.notes.detachFolder(id)

	logger.Log(ctx).Debug(ctx, LogFolderDeleted, zap.String("folder_id", id), zap.Int("detached_notes", detached))

	s.notes.persist(ctx)
	s.persist(ctx)
	return true
}

// List возвращает копии папок в порядке создания.
func (s *FolderStore) List() []*entities.Folder {
	out := make([]*entities.Folder, len(s.folders))
	for i, f := range s.folders {
		out[i] = f.Clone()
	}
	return out
}

// Get возвращает копию папки по ID.
func (s *FolderStore) Get(id string) (*entities.Folder, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.folders[i].Clone(), true
}

// Exists сообщает, есть ли папка с таким ID.
func (s *FolderStore) Exists(id string) bool {
	return s.index(id) >= 0
}

func (s *FolderStore) index(id string) int {
	return slices.IndexFunc(s.folders, func(f *entities.Folder) bool { return f.ID == id })
}

func (s *FolderStore) persist(ctx context.Context) {
	if err := s.gateway.SaveFolders(ctx, s.folders); err != nil {
		logger.Log(ctx).Error(ctx, LogPersistFoldersFailed, zap.Error(err))
	}
}

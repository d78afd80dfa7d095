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
	LogNotesLoaded         = "notes loaded"
	LogNoteCreated         = "note created"
	LogNoteUpdated         = "note updated"
	LogNoteDeleted         = "note deleted"
	LogNoteMissing         = "note not found, update ignored"
	LogUnknownFolderScope  = "note references an unknown folder, reference cleared"
	LogDanglingFolderFixed = "stored notes referenced deleted folders, references cleared"
	LogPersistNotesFailed  = "failed to persist notes"
)

// FolderDirectory отвечает на вопрос, существует ли папка.
type FolderDirectory interface {
	Exists(id string) bool
}

// NoteStore хранит каноническую коллекцию заметок и сохраняет ее после каждого изменения.
// Методы не потокобезопасны: вызывающий код выполняет их в одном потоке управления.
type NoteStore struct {
	gateway  *PersistenceGateway
	clock    services.Clock
	ids      services.IDGenerator
	folders  FolderDirectory
	notes    []*entities.Note
	revision uint64
}

// NewNoteStore загружает заметки из хранилища.
func NewNoteStore(ctx context.Context, gateway *PersistenceGateway, clock services.Clock, ids services.IDGenerator) *NoteStore {
	s := &NoteStore{
		gateway: gateway,
		clock:   clock,
		ids:     ids,
	}

	for _, n := range gateway.LoadNotes(ctx) {
		if n.ID == "" || s.index(n.ID) >= 0 {
			continue
		}
		if n.UpdatedAt.Before(n.CreatedAt) {
			n.UpdatedAt = n.CreatedAt
		}
		s.notes = append(s.notes, n)
	}

	logger.Log(ctx).Info(ctx, LogNotesLoaded, zap.Int("count", len(s.notes)))
	return s
}

// Create создает пустую заметку в начале списка.
func (s *NoteStore) Create(ctx context.Context, folderScope *string) *entities.Note {
	note := entities.NewNote(s.ids.NewID(), s.knownFolder(ctx, folderScope), s.clock.Now())
	s.notes = slices.Insert(s.notes, 0, note)
	s.revision++

	logger.Log(ctx).Debug(ctx, LogNoteCreated, zap.String("note_id", note.ID))
	s.persist(ctx)
	return note.Clone()
}

// Update заменяет заметку с тем же ID. Для отсутствующей заметки ничего не делает и возвращает false.
// ID и CreatedAt не меняются, UpdatedAt выставляется заново.
func (s *NoteStore) Update(ctx context.Context, note *entities.Note) bool {
	i := s.index(note.ID)
	if i < 0 {
		logger.Log(ctx).Debug(ctx, LogNoteMissing, zap.String("note_id", note.ID))
		return false
	}

	current := s.notes[i]
	updated := &entities.Note{
		ID:        current.ID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      entities.NormalizeTags(note.Tags),
		FolderID:  s.knownFolder(ctx, note.FolderID),
		CreatedAt: current.CreatedAt,
	}
	updated.Touch(s.clock.Now())
	s.notes[i] = updated
	s.revision++

	logger.Log(ctx).Debug(ctx, LogNoteUpdated, zap.String("note_id", note.ID))
	s.persist(ctx)
	return true
}

// Delete удаляет заметку. Для отсутствующей заметки ничего не делает.
func (s *NoteStore) Delete(ctx context.Context, id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	s.revision++

	logger.Log(ctx).Debug(ctx, LogNoteDeleted, zap.String("note_id", id))
	s.persist(ctx)
	return true
}

// List возвращает копии заметок в порядке хранения (новые первыми).
func (s *NoteStore) List() []*entities.Note {
	out := make([]*entities.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Get возвращает копию заметки по ID.
func (s *NoteStore) Get(id string) (*entities.Note, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.notes[i].Clone(), true
}

// Len возвращает количество заметок.
func (s *NoteStore) Len() int {
	return len(s.notes)
}

// Revision увеличивается при каждом изменении коллекции.
func (s *NoteStore) Revision() uint64 {
	return s.revision
}

// attachFolders подключает справочник папок и очищает ссылки на несуществующие папки,
// оставшиеся после прерванной записи.
func (s *NoteStore) attachFolders(ctx context.Context, folders FolderDirectory) {
	s.folders = folders

	repaired := 0
	for _, n := range s.notes {
		if n.FolderID != nil && !folders.Exists(*n.FolderID) {
			n.FolderID = nil
			repaired++
		}
	}
	if repaired == 0 {
		return
	}

	s.revision++
	logger.Log(ctx).Warn(ctx, LogDanglingFolderFixed, zap.Int("count", repaired))
	s.persist(ctx)
}

// detachFolder убирает ссылку на папку у всех заметок, не сохраняя коллекцию.
func (s *NoteStore) detachFolder(folderID string) int {
	detached := 0
	for i, n := range s.notes {
		if n.InFolder(folderID) {
			c := n.Clone()
			c.FolderID = nil
			s.notes[i] = c
			detached++
		}
	}
	if detached > 0 {
		s.revision++
	}
	return detached
}

func (s *NoteStore) knownFolder(ctx context.Context, folderID *string) *string {
	if folderID == nil {
		return nil
	}
	if s.folders != nil && !s.folders.Exists(*folderID) {
		logger.Log(ctx).Warn(ctx, LogUnknownFolderScope, zap.String("folder_id", *folderID))
		return nil
	}
	return entities.CloneID(folderID)
}

func (s *NoteStore) index(id string) int {
	return slices.IndexFunc(s.notes, func(n *entities.Note) bool { return n.ID == id })
}

// persist сохраняет коллекцию. Ошибка записи логируется и не возвращается:
// состояние в памяти остается каноническим.
func (s *NoteStore) persist(ctx context.Context) {
	if err := s.gateway.SaveNotes(ctx, s.notes); err != nil {
		logger.Log(ctx).Error(ctx, LogPersistNotesFailed, zap.Error(err))
	}
}

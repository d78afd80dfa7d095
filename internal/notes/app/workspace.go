package app

import (
	"context"
	"errors"
	"slices"

	"notekeeper/internal/notes/domain/entities"
)

// AllNotesLabel - название представления без выбранной папки.
const AllNotesLabel = "All Notes"

// Ошибки рабочего пространства.
var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrFolderNotFound = errors.New("folder not found")
)

// View - то, что показывает список заметок.
type View struct {
	Notes         []*entities.Note
	Folders       []*entities.Folder
	Tags          []string
	FolderID      *string
	FolderName    string
	ActiveNoteID  string
	Filters       Filters
	FiltersActive bool
	Total         int
}

// Workspace связывает хранилища, автосохранение и выборку с состоянием
// интерфейса: выбранной папкой, активной заметкой и фильтрами.
// Все методы выполняются в одном потоке управления.
type Workspace struct {
	notes    *NoteStore
	folders  *FolderStore
	autosave *AutosaveController
	tags     *TagCatalog
	engine   *QueryEngine

	selectedFolder *string
	filters        Filters
}

// NewWorkspace создает рабочее пространство с фильтрами по умолчанию.
func NewWorkspace(notes *NoteStore, folders *FolderStore, autosave *AutosaveController, engine *QueryEngine) *Workspace {
	return &Workspace{
		notes:    notes,
		folders:  folders,
		autosave: autosave,
		tags:     NewTagCatalog(notes),
		engine:   engine,
		filters:  DefaultFilters(),
	}
}

// Notes возвращает хранилище заметок.
func (w *Workspace) Notes() *NoteStore { return w.notes }

// Folders возвращает хранилище папок.
func (w *Workspace) Folders() *FolderStore { return w.folders }

// Autosave возвращает контроллер автосохранения.
func (w *Workspace) Autosave() *AutosaveController { return w.autosave }

// CreateNote создает заметку в выбранной папке и делает ее активной.
func (w *Workspace) CreateNote(ctx context.Context) *entities.Note {
	return w.CreateNoteIn(ctx, w.selectedFolder)
}

// CreateNoteIn создает заметку в указанной папке и делает ее активной.
func (w *Workspace) CreateNoteIn(ctx context.Context, folderID *string) *entities.Note {
	note := w.notes.Create(ctx, folderID)
	w.autosave.Open(ctx, note)
	return note
}

// SelectNote сохраняет текущий черновик и открывает заметку id.
func (w *Workspace) SelectNote(ctx context.Context, id string) (*entities.Note, error) {
	w.autosave.Flush(ctx)

	note, ok := w.notes.Get(id)
	if !ok {
		return nil, ErrNoteNotFound
	}
	w.autosave.Open(ctx, note)
	return note, nil
}

// ActiveNote возвращает сохраненную версию активной заметки.
func (w *Workspace) ActiveNote() (*entities.Note, bool) {
	if w.autosave.ActiveID() == "" {
		return nil, false
	}
	return w.notes.Get(w.autosave.ActiveID())
}

// UpdateNote заменяет заметку целиком. Если она активна, ожидающий черновик
// сохраняется раньше, а после замены черновик перечитывается.
func (w *Workspace) UpdateNote(ctx context.Context, note *entities.Note) bool {
	active := w.autosave.ActiveID() == note.ID
	if active {
		w.autosave.Flush(ctx)
	}

	if !w.notes.Update(ctx, note) {
		return false
	}

	if active {
		if stored, ok := w.notes.Get(note.ID); ok {
			w.autosave.Open(ctx, stored)
		}
	}
	return true
}

// DeleteNote удаляет заметку; если она была активной, черновик отбрасывается.
func (w *Workspace) DeleteNote(ctx context.Context, id string) bool {
	if w.autosave.ActiveID() == id {
		w.autosave.Discard(ctx)
	}
	return w.notes.Delete(ctx, id)
}

// CreateFolder создает папку.
func (w *Workspace) CreateFolder(ctx context.Context, name string) (*entities.Folder, error) {
	return w.folders.Create(ctx, name)
}

// RenameFolder переименовывает папку.
func (w *Workspace) RenameFolder(ctx context.Context, id, name string) (*entities.Folder, error) {
	ok, err := w.folders.Update(ctx, &entities.Folder{ID: id, Name: name})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFolderNotFound
	}
	folder, _ := w.folders.Get(id)
	return folder, nil
}

// DeleteFolder удаляет папку, открепляет от нее заметки и черновик
// и сбрасывает выбор папки, если была выбрана удаленная.
func (w *Workspace) DeleteFolder(ctx context.Context, id string) bool {
	if !w.folders.Delete(ctx, id) {
		return false
	}
	w.autosave.DetachFolder(id)
	if w.selectedFolder != nil && *w.selectedFolder == id {
		w.selectedFolder = nil
	}
	return true
}

// SelectFolder ограничивает список папкой id; nil показывает все заметки.
func (w *Workspace) SelectFolder(id *string) error {
	if id != nil && !w.folders.Exists(*id) {
		return ErrFolderNotFound
	}
	w.selectedFolder = entities.CloneID(id)
	return nil
}

// SelectedFolder возвращает выбранную папку.
func (w *Workspace) SelectedFolder() *string {
	return entities.CloneID(w.selectedFolder)
}

// CurrentFolderName возвращает имя выбранной папки или AllNotesLabel.
func (w *Workspace) CurrentFolderName() string {
	if w.selectedFolder == nil {
		return AllNotesLabel
	}
	if folder, ok := w.folders.Get(*w.selectedFolder); ok {
		return folder.Name
	}
	return AllNotesLabel
}

// SetSearch задает строку поиска.
func (w *Workspace) SetSearch(term string) {
	w.filters.SearchTerm = term
}

// ClearSearch очищает строку поиска.
func (w *Workspace) ClearSearch() {
	w.filters.SearchTerm = ""
}

// ToggleTag добавляет тег в фильтр или убирает его оттуда.
func (w *Workspace) ToggleTag(tag string) {
	if i := slices.Index(w.filters.Tags, tag); i >= 0 {
		w.filters.Tags = slices.Delete(slices.Clone(w.filters.Tags), i, i+1)
		return
	}
	w.filters.Tags = append(slices.Clone(w.filters.Tags), tag)
}

// SetTagFilter заменяет набор тегов фильтра.
func (w *Workspace) SetTagFilter(tags []string) {
	w.filters.Tags = entities.NormalizeTags(tags)
}

// SetSort задает сортировку.
func (w *Workspace) SetSort(field SortField, direction SortDirection) {
	w.filters.SortBy = field
	w.filters.Direction = direction
}

// ClearFilters сбрасывает поиск и теги. Сортировка сохраняется.
func (w *Workspace) ClearFilters() {
	w.filters.SearchTerm = ""
	w.filters.Tags = nil
}

// Filters возвращает текущие фильтры вместе с выбранной папкой.
func (w *Workspace) Filters() Filters {
	f := w.filters
	f.Tags = slices.Clone(f.Tags)
	f.FolderID = entities.CloneID(w.selectedFolder)
	return f
}

// Tags возвращает все теги заметок.
func (w *Workspace) Tags() []string {
	return w.tags.Tags()
}

// Flush немедленно сохраняет ожидающий черновик.
func (w *Workspace) Flush(ctx context.Context) bool {
	return w.autosave.Flush(ctx)
}

// View строит отображаемый список с текущими фильтрами.
func (w *Workspace) View() View {
	return w.Query(w.Filters())
}

// Query строит список с произвольными фильтрами, не меняя состояние.
func (w *Workspace) Query(f Filters) View {
	notes := w.notes.List()
	folders := w.folders.List()

	name := AllNotesLabel
	if f.FolderID != nil {
		if folder, ok := w.folders.Get(*f.FolderID); ok {
			name = folder.Name
		}
	}

	return View{
		Notes:         w.engine.FilteredAndSorted(notes, folders, f),
		Folders:       folders,
		Tags:          w.tags.Tags(),
		FolderID:      entities.CloneID(f.FolderID),
		FolderName:    name,
		ActiveNoteID:  w.autosave.ActiveID(),
		Filters:       f,
		FiltersActive: f.Active(),
		Total:         len(notes),
	}
}

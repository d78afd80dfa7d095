package app

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/domain/specification"
)

// SortField - поле сортировки заметок.
type SortField string

// Поддерживаемые поля сортировки.
const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
)

// SortDirection - направление сортировки.
type SortDirection string

// Поддерживаемые направления.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Ошибки разбора параметров запроса.
var (
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	ErrInvalidLocale        = errors.New("invalid collation locale")
)

// DefaultLocale используется для сравнения заголовков, если локаль не задана.
const DefaultLocale = "en"

// ParseSortField разбирает имя поля сортировки. Пустая строка дает updatedAt.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case "":
		return SortByUpdatedAt, nil
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle:
		return SortField(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortField, s)
}

// ParseSortDirection разбирает направление сортировки. Пустая строка дает desc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case "":
		return SortDesc, nil
	case SortAsc, SortDesc:
		return SortDirection(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortDirection, s)
}

// ParseLocale разбирает BCP 47 тег локали для сравнения заголовков.
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		s = DefaultLocale
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("%w %q: %w", ErrInvalidLocale, s, err)
	}
	return tag, nil
}

// Filters описывает поиск, фильтры и сортировку списка заметок.
type Filters struct {
	SearchTerm string
	Tags       []string
	FolderID   *string
	SortBy     SortField
	Direction  SortDirection
}

// DefaultFilters - все заметки, последние измененные первыми.
func DefaultFilters() Filters {
	return Filters{SortBy: SortByUpdatedAt, Direction: SortDesc}
}

// Active сообщает, сужают ли поиск или теги список заметок.
func (f Filters) Active() bool {
	return f.SearchTerm != "" || len(f.Tags) > 0
}

// QueryEngine строит отображаемый список заметок. Не хранит состояния
// между вызовами: результат зависит только от аргументов.
type QueryEngine struct {
	locale language.Tag
}

// NewQueryEngine создает движок, сравнивающий заголовки по правилам locale.
func NewQueryEngine(locale language.Tag) *QueryEngine {
	return &QueryEngine{locale: locale}
}

// FilteredAndSorted фильтрует и сортирует notes. Входные срезы не изменяются.
// Фильтр по папке сравнивает folderId точно, даже если папки уже нет в folders;
// сброс устаревшего выбора выполняет Workspace.
func (e *QueryEngine) FilteredAndSorted(notes []*entities.Note, _ []*entities.Folder, f Filters) []*entities.Note {
	spec := e.specification(f)

	out := make([]*entities.Note, 0, len(notes))
	for _, n := range notes {
		if spec.IsSatisfiedBy(n) {
			out = append(out, n)
		}
	}

	slices.SortStableFunc(out, e.comparator(f))
	return out
}

func (e *QueryEngine) specification(f Filters) specification.Specification {
	spec := specification.And{
		specification.NewNoteSearchQuery(f.SearchTerm),
		specification.HasAllTags{Tags: f.Tags},
	}

	if f.FolderID != nil {
		spec = append(spec, specification.ByFolderID{FolderID: f.FolderID})
	}
	return spec
}

func (e *QueryEngine) comparator(f Filters) func(a, b *entities.Note) int {
	var cmp func(a, b *entities.Note) int

	switch f.SortBy {
	case SortByTitle:
		col := collate.New(e.locale)
		cmp = func(a, b *entities.Note) int { return col.CompareString(a.Title, b.Title) }
	case SortByCreatedAt:
		cmp = func(a, b *entities.Note) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		cmp = func(a, b *entities.Note) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}

	if f.Direction == SortAsc {
		return cmp
	}
	return func(a, b *entities.Note) int { return cmp(b, a) }
}

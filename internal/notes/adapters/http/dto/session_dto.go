package dto

import (
	"notekeeper/internal/notes/app"
)

// Filters - поиск, теги и сортировка списка.
type Filters struct {
	Search    string   `json:"search"`
	Tags      []string `json:"tags"`
	Sort      string   `json:"sort"`
	Direction string   `json:"direction"`
}

// FiltersFromApp переводит фильтры в ответ.
func FiltersFromApp(f app.Filters) Filters {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return Filters{
		Search:    f.SearchTerm,
		Tags:      tags,
		Sort:      string(f.SortBy),
		Direction: string(f.Direction),
	}
}

// Draft - несохраненные правки активной заметки.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	FolderID *string  `json:"folderId"`
}

// SessionResponse описывает выбор и состояние автосохранения.
type SessionResponse struct {
	ActiveNoteID string  `json:"activeNoteId,omitempty"`
	State        string  `json:"state"`
	Draft        *Draft  `json:"draft,omitempty"`
	FolderID     *string `json:"folderId"`
	FolderName   string  `json:"folderName"`
	Filters      Filters `json:"filters"`
}

// SelectFolderRequest выбирает папку; null показывает все заметки.
type SelectFolderRequest struct {
	FolderID *string `json:"folderId"`
}

// DraftPatch - правка черновика. Заданные поля применяются по порядку:
// title, content, tags, addTag, removeTag, removeLastTag, folder.
type DraftPatch struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Tags          *[]string `json:"tags"`
	AddTag        *string   `json:"addTag"`
	RemoveTag     *string   `json:"removeTag"`
	RemoveLastTag bool      `json:"removeLastTag"`
	FolderID      *string   `json:"folderId"`
	ClearFolder   bool      `json:"clearFolder"`
}

// FiltersRequest задает фильтры сеанса. Пустые sort и direction не меняют сортировку.
type FiltersRequest struct {
	Search    string   `json:"search"`
	Tags      []string `json:"tags"`
	Sort      string   `json:"sort"`
	Direction string   `json:"direction"`
}

// FlushResponse сообщает, был ли записан черновик.
type FlushResponse struct {
	Committed bool `json:"committed"`
}

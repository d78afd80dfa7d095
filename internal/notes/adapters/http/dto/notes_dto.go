// Package dto содержит структуры запросов и ответов локального HTTP API.
package dto

import (
	"time"

	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/domain/entities"
)

// Параметры превью заметки в списке.
const (
	ExcerptLength  = 100
	VisibleTags    = 3
	ImportMaxBytes = 1 << 20
)

// CreateNoteRequest содержит данные для создания заметки.
// Без folderId заметка создается в выбранной папке.
type CreateNoteRequest struct {
	FolderID *string `json:"folderId"`
}

// UpdateNoteRequest заменяет редактируемые поля заметки.
type UpdateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	FolderID *string  `json:"folderId"`
}

// Note представляет заметку.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteListItem - превью заметки в списке.
type NoteListItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Tags       []string  `json:"tags"`
	HiddenTags int       `json:"hiddenTags"`
	FolderID   *string   `json:"folderId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListNotesResponse содержит отфильтрованный список и все теги.
type ListNotesResponse struct {
	Notes         []NoteListItem `json:"notes"`
	Total         int            `json:"total"`
	Tags          []string       `json:"tags"`
	FolderID      *string        `json:"folderId"`
	FolderName    string         `json:"folderName"`
	ActiveNoteID  string         `json:"activeNoteId,omitempty"`
	Filters       Filters        `json:"filters"`
	FiltersActive bool           `json:"filtersActive"`
}

// TagsResponse содержит все теги заметок.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// NoteFromEntity переводит заметку в ответ.
func NoteFromEntity(n *entities.Note) Note {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return Note{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		FolderID:  n.FolderID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// ListItemFromEntity строит превью: ExcerptLength символов и первые VisibleTags тегов.
func ListItemFromEntity(n *entities.Note) NoteListItem {
	visible := n.Tags
	hidden := 0
	if len(visible) > VisibleTags {
		hidden = len(visible) - VisibleTags
		visible = visible[:VisibleTags]
	}
	if visible == nil {
		visible = []string{}
	}
	return NoteListItem{
		ID:         n.ID,
		Title:      n.Title,
		Excerpt:    n.Excerpt(ExcerptLength),
		Tags:       visible,
		HiddenTags: hidden,
		FolderID:   n.FolderID,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

// ListFromView переводит представление рабочего пространства в ответ.
func ListFromView(v app.View) ListNotesResponse {
	items := make([]NoteListItem, 0, len(v.Notes))
	for _, n := range v.Notes {
		items = append(items, ListItemFromEntity(n))
	}
	return ListNotesResponse{
		Notes:         items,
		Total:         v.Total,
		Tags:          v.Tags,
		FolderID:      v.FolderID,
		FolderName:    v.FolderName,
		ActiveNoteID:  v.ActiveNoteID,
		Filters:       FiltersFromApp(v.Filters),
		FiltersActive: v.FiltersActive,
	}
}

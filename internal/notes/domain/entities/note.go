// Package entities defines the domain entities of the notes workspace.
package entities

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultNoteTitle присваивается новой заметке и заметке с пустым заголовком.
const DefaultNoteTitle = "Untitled Note"

// EmptyExcerpt показывается в превью заметки без содержимого.
const EmptyExcerpt = "No content"

// Note представляет собой заметку.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNote creates an empty untitled note in the given folder scope.
func NewNote(id string, folderID *string, now time.Time) *Note {
	return &Note{
		ID:        id,
		Title:     DefaultNoteTitle,
		Tags:      []string{},
		FolderID:  CloneID(folderID),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone возвращает глубокую копию заметки.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	c.Tags = slices.Clone(n.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.FolderID = CloneID(n.FolderID)
	return &c
}

// Touch обновляет UpdatedAt, не допуская значения раньше CreatedAt.
func (n *Note) Touch(now time.Time) {
	if now.Before(n.CreatedAt) {
		now = n.CreatedAt
	}
	n.UpdatedAt = now
}

// InFolder сообщает, лежит ли заметка в папке folderID.
func (n *Note) InFolder(folderID string) bool {
	return n.FolderID != nil && *n.FolderID == folderID
}

// AddTag добавляет тег. Пустые и повторяющиеся теги игнорируются.
func (n *Note) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(n.Tags, tag) {
		return false
	}
	n.Tags = append(n.Tags, tag)
	return true
}

// RemoveTag удаляет тег, если он есть.
func (n *Note) RemoveTag(tag string) bool {
	i := slices.Index(n.Tags, tag)
	if i < 0 {
		return false
	}
	n.Tags = slices.Delete(n.Tags, i, i+1)
	return true
}

// HasAllTags is true when the note carries every tag in required.
func (n *Note) HasAllTags(required []string) bool {
	for _, tag := range required {
		if !slices.Contains(n.Tags, tag) {
			return false
		}
	}
	return true
}

// Excerpt возвращает первые limit символов содержимого для превью.
func (n *Note) Excerpt(limit int) string {
	if n.Content == "" {
		return EmptyExcerpt
	}
	if utf8.RuneCountInString(n.Content) <= limit {
		return n.Content
	}
	runes := []rune(n.Content)
	return string(runes[:limit])
}

// SameContent compares the editable fields of two notes.
func (n *Note) SameContent(other *Note) bool {
	return n.Title == other.Title &&
		n.Content == other.Content &&
		slices.Equal(n.Tags, other.Tags) &&
		EqualIDs(n.FolderID, other.FolderID)
}

// NormalizeTags обрезает пробелы, убирает пустые теги и дубликаты,
// сохраняя порядок первого появления.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// CloneID копирует необязательный идентификатор.
func CloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// EqualIDs сравнивает необязательные идентификаторы по значению.
func EqualIDs(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ClampText обрезает строку до limit символов. Используется при импорте.
func ClampText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

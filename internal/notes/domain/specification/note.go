// Package specification holds composable note predicates used by the query engine.
package specification

import (
	"strings"

	"golang.org/x/text/cases"

	"notekeeper/internal/notes/domain/entities"
)

// Specification - предикат над заметкой.
type Specification interface {
	IsSatisfiedBy(note *entities.Note) bool
}

// NoteSearchQuery matches notes whose title OR content contains the query,
// ignoring case. An empty query matches every note.
type NoteSearchQuery struct {
	folded string
	caser  cases.Caser
}

// NewNoteSearchQuery подготавливает поисковый запрос.
func NewNoteSearchQuery(query string) *NoteSearchQuery {
	caser := cases.Fold()
	return &NoteSearchQuery{folded: caser.String(query), caser: caser}
}

func (s *NoteSearchQuery) IsSatisfiedBy(note *entities.Note) bool {
	if s.folded == "" {
		return true
	}
	return strings.Contains(s.caser.String(note.Title), s.folded) ||
		strings.Contains(s.caser.String(note.Content), s.folded)
}

// HasAllTags matches notes carrying every listed tag.
type HasAllTags struct {
	Tags []string
}

func (s HasAllTags) IsSatisfiedBy(note *entities.Note) bool {
	return note.HasAllTags(s.Tags)
}

// ByFolderID matches notes filed in the folder. A nil FolderID matches all notes.
type ByFolderID struct {
	FolderID *string
}

func (s ByFolderID) IsSatisfiedBy(note *entities.Note) bool {
	if s.FolderID == nil {
		return true
	}
	return note.InFolder(*s.FolderID)
}

// And matches notes satisfying every specification.
type And []Specification

func (s And) IsSatisfiedBy(note *entities.Note) bool {
	for _, spec := range s {
		if !spec.IsSatisfiedBy(note) {
			return false
		}
	}
	return true
}

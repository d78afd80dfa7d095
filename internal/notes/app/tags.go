package app

import "notekeeper/internal/notes/domain/entities"

// TagUniverse возвращает все непустые теги в порядке первого появления.
// Фильтры на результат не влияют.
func TagUniverse(notes []*entities.Note) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range notes {
		for _, tag := range n.Tags {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// TagCatalog кэширует TagUniverse до следующего изменения NoteStore.
type TagCatalog struct {
	notes    *NoteStore
	revision uint64
	tags     []string
	valid    bool
}

// NewTagCatalog создает каталог тегов поверх NoteStore.
func NewTagCatalog(notes *NoteStore) *TagCatalog {
	return &TagCatalog{notes: notes}
}

// Tags возвращает копию актуального набора тегов.
func (c *TagCatalog) Tags() []string {
	if !c.valid || c.revision != c.notes.Revision() {
		c.tags = TagUniverse(c.notes.notes)
		c.revision = c.notes.Revision()
		c.valid = true
	}
	out := make([]string, len(c.tags))
	copy(out, c.tags)
	return out
}

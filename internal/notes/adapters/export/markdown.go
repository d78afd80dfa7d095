// Package export переводит заметки в Markdown с YAML front matter и обратно.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"notekeeper/internal/notes/domain/entities"
)

const delimiter = "---"

// MaxTitleLength ограничивает заголовок импортируемого документа.
const MaxTitleLength = 500

// Константы для сообщений об ошибках.
const (
	ErrEncodeFrontMatter = "failed to encode front matter"
	ErrParseFrontMatter  = "failed to parse front matter"
)

// ErrInvalidFormat возвращается, если документ не начинается с блока front matter.
var ErrInvalidFormat = errors.New("invalid front matter format")

// FrontMatter - метаданные заметки в начале документа.
type FrontMatter struct {
	ID        string    `yaml:"id,omitempty"`
	Title     string    `yaml:"title"`
	Tags      []string  `yaml:"tags"`
	Folder    string    `yaml:"folder,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// Document - разобранный Markdown-документ.
type Document struct {
	FrontMatter
	Content string
}

// Marshal записывает заметку; folderName попадает в поле folder.
func Marshal(note *entities.Note, folderName string) ([]byte, error) {
	fm := FrontMatter{
		ID:        note.ID,
		Title:     note.Title,
		Tags:      entities.NormalizeTags(note.Tags),
		Folder:    folderName,
		CreatedAt: note.CreatedAt.UTC(),
		UpdatedAt: note.UpdatedAt.UTC(),
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&fm); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrEncodeFrontMatter, err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrEncodeFrontMatter, err)
	}

	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(note.Content)
	return buf.Bytes(), nil
}

// Parse разбирает документ. Теги нормализуются, заголовок обрезается
// до MaxTitleLength, пустой заголовок заменяется на DefaultNoteTitle.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimLeft(data, "\uFEFF \t\r\n")
	parts := bytes.SplitN(data, []byte(delimiter), 3)
	if len(parts) < 3 || len(bytes.TrimSpace(parts[0])) != 0 {
		return nil, ErrInvalidFormat
	}

	var doc Document
	if err := yaml.Unmarshal(parts[1], &doc.FrontMatter); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrParseFrontMatter, err)
	}

	doc.Tags = entities.NormalizeTags(doc.Tags)
	doc.Title = entities.ClampText(doc.Title, MaxTitleLength)
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = entities.DefaultNoteTitle
	}
	doc.Content = string(bytes.TrimSpace(parts[2]))
	return &doc, nil
}

package entities

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyFolderName возвращается, если имя папки пустое после обрезки пробелов.
var ErrEmptyFolderName = errors.New("folder name is required")

// Folder представляет собой папку верхнего уровня.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFolder создает папку, предварительно проверив имя.
func NewFolder(id, name string, now time.Time) (*Folder, error) {
	name, err := ValidateFolderName(name)
	if err != nil {
		return nil, err
	}
	return &Folder{ID: id, Name: name, CreatedAt: now}, nil
}

// ValidateFolderName возвращает имя без крайних пробелов или ErrEmptyFolderName.
func ValidateFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyFolderName
	}
	return name, nil
}

// Clone возвращает копию папки.
func (f *Folder) Clone() *Folder {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

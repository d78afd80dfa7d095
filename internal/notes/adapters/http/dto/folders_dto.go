package dto

import (
	"time"

	"notekeeper/internal/notes/domain/entities"
)

// FolderRequest содержит имя создаваемой или переименовываемой папки.
type FolderRequest struct {
	Name string `json:"name"`
}

// Folder представляет папку.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// FoldersResponse содержит список папок.
type FoldersResponse struct {
	Folders []Folder `json:"folders"`
}

// FolderFromEntity переводит папку в ответ.
func FolderFromEntity(f *entities.Folder) Folder {
	return Folder{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
}

// FoldersFromEntities переводит список папок в ответ.
func FoldersFromEntities(folders []*entities.Folder) FoldersResponse {
	out := make([]Folder, 0, len(folders))
	for _, f := range folders {
		out = append(out, FolderFromEntity(f))
	}
	return FoldersResponse{Folders: out}
}

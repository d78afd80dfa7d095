// Package http содержит локальный HTTP API рабочего пространства заметок.
package http

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notekeeper/internal/notes/adapters/http/handlers"
	"notekeeper/internal/notes/adapters/http/middleware"
	"notekeeper/internal/notes/app"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
// base - родительский контекст запросов (несет логгер).
func SetupRouter(base context.Context, server *fiber.App, workspace *app.Workspace, dispatcher handlers.Dispatcher) {
	h := handlers.NewHandler(workspace, dispatcher)

	// Middleware для всех запросов.
	server.Use(middleware.NewRequestIDMiddleware(base))
	server.Use(middleware.NewLoggerMiddleware())
	server.Use(middleware.NewRecoveryMiddleware())

	apiV1 := server.Group("/api/v1")

	notesRoutes := apiV1.Group("/notes")
	notesRoutes.Get("/", h.ListNotes)
	notesRoutes.Post("/", h.CreateNote)
	notesRoutes.Post("/import", h.ImportNote)
	notesRoutes.Get("/:note_id", h.GetNote)
	notesRoutes.Put("/:note_id", h.UpdateNote)
	notesRoutes.Delete("/:note_id", h.DeleteNote)
	notesRoutes.Get("/:note_id/export", h.ExportNote)

	apiV1.Get("/tags", h.ListTags)

	foldersRoutes := apiV1.Group("/folders")
	foldersRoutes.Get("/", h.ListFolders)
	foldersRoutes.Post("/", h.CreateFolder)
	foldersRoutes.Put("/:folder_id", h.RenameFolder)
	foldersRoutes.Delete("/:folder_id", h.DeleteFolder)

	sessionRoutes := apiV1.Group("/session")
	sessionRoutes.Get("/", h.GetSession)
	sessionRoutes.Put("/note/:note_id", h.SelectNote)
	sessionRoutes.Put("/folder", h.SelectFolder)
	sessionRoutes.Patch("/draft", h.PatchDraft)
	sessionRoutes.Post("/flush", h.Flush)
	sessionRoutes.Put("/filters", h.SetFilters)
	sessionRoutes.Delete("/filters", h.ClearFilters)

	// Обработчик для несуществующих маршрутов.
	server.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}

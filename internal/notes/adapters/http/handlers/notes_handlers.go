package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/notes/adapters/export"
	"notekeeper/internal/notes/adapters/http/dto"
	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/domain/entities"
)

// Константы сообщений для логирования.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerGetNote    = "handling get note request"
	LogHandlerListNotes  = "handling list notes request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"
	LogHandlerExportNote = "handling export note request"
	LogHandlerImportNote = "handling import note request"
	LogHandlerListTags   = "handling list tags request"
)

// Параметры запроса списка заметок.
const (
	QuerySearch    = "search"
	QueryTags      = "tags"
	QueryFolder    = "folder"
	QuerySort      = "sort"
	QueryDirection = "direction"
)

// ContentTypeMarkdown - тип ответа экспорта.
const ContentTypeMarkdown = "text/markdown; charset=utf-8"

// CreateNote обрабатывает запрос на создание новой заметки.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.CreateNote")
	log.Debug(userCtx, LogHandlerCreateNote)

	var req dto.CreateNoteRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.Bind().Body(&req); err != nil {
			log.Warn(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
			return badRequest(ctx, ErrMsgInvalidRequestBody)
		}
	}

	var note *entities.Note
	err := h.run(userCtx, func(ws *app.Workspace) error {
		if req.FolderID != nil {
			note = ws.CreateNoteIn(userCtx, req.FolderID)
			return nil
		}
		note = ws.CreateNote(userCtx)
		return nil
	})
	if err != nil {
		log.Error(userCtx, "failed to create note", zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusCreated, dto.NoteFromEntity(note))
}

// GetNote обрабатывает запрос на получение заметки по ID.
func (h *Handler) GetNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.GetNote")
	log.Debug(userCtx, LogHandlerGetNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	var note *entities.Note
	err := h.run(userCtx, func(ws *app.Workspace) error {
		found, ok := ws.Notes().Get(noteID)
		if !ok {
			return app.ErrNoteNotFound
		}
		note = found
		return nil
	})
	if err != nil {
		log.Debug(userCtx, "failed to get note", zap.String("note_id", noteID), zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.NoteFromEntity(note))
}

// ListNotes возвращает отфильтрованный и отсортированный список заметок.
// Параметры запроса перекрывают фильтры сеанса только для этого ответа.
func (h *Handler) ListNotes(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.ListNotes")
	log.Debug(userCtx, LogHandlerListNotes)

	params := ctx.Queries()

	var view app.View
	err := h.run(userCtx, func(ws *app.Workspace) error {
		filters, err := applyQuery(ws.Filters(), params)
		if err != nil {
			return err
		}
		view = ws.Query(filters)
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to list notes", zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.ListFromView(view))
}

// UpdateNote заменяет редактируемые поля заметки.
func (h *Handler) UpdateNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.UpdateNote")
	log.Debug(userCtx, LogHandlerUpdateNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	var req dto.UpdateNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Warn(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	var note *entities.Note
	err := h.run(userCtx, func(ws *app.Workspace) error {
		if !ws.UpdateNote(userCtx, &entities.Note{
			ID:       noteID,
			Title:    req.Title,
			Content:  req.Content,
			Tags:     req.Tags,
			FolderID: req.FolderID,
		}) {
			return app.ErrNoteNotFound
		}
		note, _ = ws.Notes().Get(noteID)
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to update note", zap.String("note_id", noteID), zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.NoteFromEntity(note))
}

// DeleteNote обрабатывает запрос на удаление заметки.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.DeleteNote")
	log.Debug(userCtx, LogHandlerDeleteNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	err := h.run(userCtx, func(ws *app.Workspace) error {
		if !ws.DeleteNote(userCtx, noteID) {
			return app.ErrNoteNotFound
		}
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to delete note", zap.String("note_id", noteID), zap.Error(err))
		return handleError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// ExportNote отдает заметку как Markdown с YAML front matter.
func (h *Handler) ExportNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.ExportNote")
	log.Debug(userCtx, LogHandlerExportNote)

	noteID := ctx.Params("note_id")

	var (
		note       *entities.Note
		folderName string
	)
	err := h.run(userCtx, func(ws *app.Workspace) error {
		found, ok := ws.Notes().Get(noteID)
		if !ok {
			return app.ErrNoteNotFound
		}
		note = found
		if found.FolderID != nil {
			if folder, ok := ws.Folders().Get(*found.FolderID); ok {
				folderName = folder.Name
			}
		}
		return nil
	})
	if err != nil {
		return handleError(ctx, err)
	}

	data, err := export.Marshal(note, folderName)
	if err != nil {
		log.Error(userCtx, "failed to export note", zap.String("note_id", noteID), zap.Error(err))
		return handleError(ctx, err)
	}

	ctx.Set(fiber.HeaderContentType, ContentTypeMarkdown)
	return ctx.Status(fiber.StatusOK).Send(data)
}

// ImportNote создает заметку из Markdown-документа. Поле folder
// сопоставляется с именем существующей папки, иначе заметка без папки.
func (h *Handler) ImportNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.ImportNote")
	log.Debug(userCtx, LogHandlerImportNote)

	body := ctx.Body()
	if len(body) > dto.ImportMaxBytes {
		return sendJSON(ctx, fiber.StatusRequestEntityTooLarge, fiber.Map{"error": ErrMsgInvalidRequestBody})
	}

	doc, err := export.Parse(body)
	if err != nil {
		log.Warn(userCtx, "failed to parse imported note", zap.Error(err))
		if errors.Is(err, export.ErrInvalidFormat) {
			return handleError(ctx, err)
		}
		return badRequest(ctx, err.Error())
	}

	var note *entities.Note
	err = h.run(userCtx, func(ws *app.Workspace) error {
		var folderID *string
		for _, folder := range ws.Folders().List() {
			if strings.EqualFold(folder.Name, doc.Folder) {
				folderID = &folder.ID
				break
			}
		}

		created := ws.CreateNoteIn(userCtx, folderID)
		ws.UpdateNote(userCtx, &entities.Note{
			ID:       created.ID,
			Title:    doc.Title,
			Content:  doc.Content,
			Tags:     doc.Tags,
			FolderID: folderID,
		})
		note, _ = ws.Notes().Get(created.ID)
		return nil
	})
	if err != nil {
		log.Error(userCtx, "failed to import note", zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusCreated, dto.NoteFromEntity(note))
}

// ListTags возвращает все теги заметок в порядке первого появления.
func (h *Handler) ListTags(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.ListTags")
	log.Debug(userCtx, LogHandlerListTags)

	var tags []string
	if err := h.run(userCtx, func(ws *app.Workspace) error {
		tags = ws.Tags()
		return nil
	}); err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.TagsResponse{Tags: tags})
}

func applyQuery(f app.Filters, params map[string]string) (app.Filters, error) {
	if search, ok := params[QuerySearch]; ok {
		f.SearchTerm = search
	}
	if tags, ok := params[QueryTags]; ok {
		f.Tags = entities.NormalizeTags(strings.Split(tags, ","))
	}
	if folder, ok := params[QueryFolder]; ok {
		f.FolderID = nil
		if folder != "" {
			f.FolderID = &folder
		}
	}
	if sort, ok := params[QuerySort]; ok {
		field, err := app.ParseSortField(sort)
		if err != nil {
			return f, err
		}
		f.SortBy = field
	}
	if direction, ok := params[QueryDirection]; ok {
		dir, err := app.ParseSortDirection(direction)
		if err != nil {
			return f, err
		}
		f.Direction = dir
	}
	return f, nil
}

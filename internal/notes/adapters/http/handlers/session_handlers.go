package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/notes/adapters/http/dto"
	"notekeeper/internal/notes/app"
)

// Константы сообщений для логирования.
const (
	LogHandlerGetSession   = "handling get session request"
	LogHandlerSelectNote   = "handling select note request"
	LogHandlerSelectFolder = "handling select folder request"
	LogHandlerPatchDraft   = "handling patch draft request"
	LogHandlerFlush        = "handling flush request"
	LogHandlerSetFilters   = "handling set filters request"
	LogHandlerClearFilters = "handling clear filters request"
)

// GetSession возвращает выбор, фильтры и черновик активной заметки.
func (h *Handler) GetSession(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.GetSession")
	log.Debug(userCtx, LogHandlerGetSession)

	var resp dto.SessionResponse
	if err := h.run(userCtx, func(ws *app.Workspace) error {
		resp = session(ws)
		return nil
	}); err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, resp)
}

// SelectNote делает заметку активной, немедленно сохранив черновик предыдущей.
func (h *Handler) SelectNote(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.SelectNote")
	log.Debug(userCtx, LogHandlerSelectNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	var resp dto.SessionResponse
	err := h.run(userCtx, func(ws *app.Workspace) error {
		if _, err := ws.SelectNote(userCtx, noteID); err != nil {
			return err
		}
		resp = session(ws)
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to select note", zap.String("note_id", noteID), zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, resp)
}

// SelectFolder ограничивает список папкой; null показывает все заметки.
func (h *Handler) SelectFolder(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.SelectFolder")
	log.Debug(userCtx, LogHandlerSelectFolder)

	var req dto.SelectFolderRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.Bind().Body(&req); err != nil {
			return badRequest(ctx, ErrMsgInvalidRequestBody)
		}
	}

	var resp dto.SessionResponse
	err := h.run(userCtx, func(ws *app.Workspace) error {
		if err := ws.SelectFolder(req.FolderID); err != nil {
			return err
		}
		resp = session(ws)
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to select folder", zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, resp)
}

// PatchDraft правит черновик активной заметки. Запись откладывается
// до паузы в правках.
func (h *Handler) PatchDraft(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.PatchDraft")
	log.Debug(userCtx, LogHandlerPatchDraft)

	var patch dto.DraftPatch
	if err := ctx.Bind().Body(&patch); err != nil {
		log.Warn(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	var resp dto.SessionResponse
	err := h.run(userCtx, func(ws *app.Workspace) error {
		autosave := ws.Autosave()
		if autosave.ActiveID() == "" {
			return ErrNoActiveNote
		}
		applyPatch(userCtx, autosave, &patch)
		resp = session(ws)
		return nil
	})
	if err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, resp)
}

// Flush немедленно сохраняет ожидающий черновик.
func (h *Handler) Flush(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.Flush")
	log.Debug(userCtx, LogHandlerFlush)

	var committed bool
	if err := h.run(userCtx, func(ws *app.Workspace) error {
		committed = ws.Flush(userCtx)
		return nil
	}); err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.FlushResponse{Committed: committed})
}

// SetFilters задает поиск, теги и сортировку сеанса.
func (h *Handler) SetFilters(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.SetFilters")
	log.Debug(userCtx, LogHandlerSetFilters)

	var req dto.FiltersRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	var resp dto.SessionResponse
	err := h.run(userCtx, func(ws *app.Workspace) error {
		current := ws.Filters()
		field, direction := current.SortBy, current.Direction
		if req.Sort != "" {
			parsed, err := app.ParseSortField(req.Sort)
			if err != nil {
				return err
			}
			field = parsed
		}
		if req.Direction != "" {
			parsed, err := app.ParseSortDirection(req.Direction)
			if err != nil {
				return err
			}
			direction = parsed
		}

		ws.SetSearch(req.Search)
		ws.SetTagFilter(req.Tags)
		ws.SetSort(field, direction)
		resp = session(ws)
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to set filters", zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, resp)
}

// ClearFilters сбрасывает поиск и теги сеанса.
func (h *Handler) ClearFilters(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.ClearFilters")
	log.Debug(userCtx, LogHandlerClearFilters)

	var resp dto.SessionResponse
	if err := h.run(userCtx, func(ws *app.Workspace) error {
		ws.ClearFilters()
		resp = session(ws)
		return nil
	}); err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, resp)
}

func applyPatch(ctx context.Context, autosave *app.AutosaveController, patch *dto.DraftPatch) {
	if patch.Title != nil {
		autosave.SetTitle(ctx, *patch.Title)
	}
	if patch.Content != nil {
		autosave.SetContent(ctx, *patch.Content)
	}
	if patch.Tags != nil {
		autosave.SetTags(ctx, *patch.Tags)
	}
	if patch.AddTag != nil {
		autosave.AddTag(ctx, *patch.AddTag)
	}
	if patch.RemoveTag != nil {
		autosave.RemoveTag(ctx, *patch.RemoveTag)
	}
	if patch.RemoveLastTag {
		autosave.RemoveLastTag(ctx)
	}
	switch {
	case patch.ClearFolder:
		autosave.SetFolder(ctx, nil)
	case patch.FolderID != nil:
		autosave.SetFolder(ctx, patch.FolderID)
	}
}

func session(ws *app.Workspace) dto.SessionResponse {
	autosave := ws.Autosave()
	resp := dto.SessionResponse{
		ActiveNoteID: autosave.ActiveID(),
		State:        autosave.State().String(),
		FolderID:     ws.SelectedFolder(),
		FolderName:   ws.CurrentFolderName(),
		Filters:      dto.FiltersFromApp(ws.Filters()),
	}
	if autosave.ActiveID() != "" {
		draft := autosave.Draft()
		tags := draft.Tags
		if tags == nil {
			tags = []string{}
		}
		resp.Draft = &dto.Draft{
			Title:    draft.Title,
			Content:  draft.Content,
			Tags:     tags,
			FolderID: draft.FolderID,
		}
	}
	return resp
}

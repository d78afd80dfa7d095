package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/notes/adapters/http/dto"
	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/domain/entities"
)

// Константы сообщений для логирования.
const (
	LogHandlerListFolders  = "handling list folders request"
	LogHandlerCreateFolder = "handling create folder request"
	LogHandlerRenameFolder = "handling rename folder request"
	LogHandlerDeleteFolder = "handling delete folder request"
)

// ListFolders возвращает папки в порядке создания.
func (h *Handler) ListFolders(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.ListFolders")
	log.Debug(userCtx, LogHandlerListFolders)

	var folders []*entities.Folder
	if err := h.run(userCtx, func(ws *app.Workspace) error {
		folders = ws.Folders().List()
		return nil
	}); err != nil {
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.FoldersFromEntities(folders))
}

// CreateFolder создает папку. Пустое имя дает 422.
func (h *Handler) CreateFolder(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.CreateFolder")
	log.Debug(userCtx, LogHandlerCreateFolder)

	var req dto.FolderRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Warn(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	var folder *entities.Folder
	err := h.run(userCtx, func(ws *app.Workspace) error {
		created, err := ws.CreateFolder(userCtx, req.Name)
		folder = created
		return err
	})
	if err != nil {
		log.Warn(userCtx, "failed to create folder", zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusCreated, dto.FolderFromEntity(folder))
}

// RenameFolder переименовывает папку.
func (h *Handler) RenameFolder(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.RenameFolder")
	log.Debug(userCtx, LogHandlerRenameFolder)

	folderID := ctx.Params("folder_id")
	if folderID == "" {
		return badRequest(ctx, ErrMsgInvalidFolderID)
	}

	var req dto.FolderRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Warn(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	var folder *entities.Folder
	err := h.run(userCtx, func(ws *app.Workspace) error {
		renamed, err := ws.RenameFolder(userCtx, folderID, req.Name)
		folder = renamed
		return err
	})
	if err != nil {
		log.Warn(userCtx, "failed to rename folder", zap.String("folder_id", folderID), zap.Error(err))
		return handleError(ctx, err)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.FolderFromEntity(folder))
}

// DeleteFolder удаляет папку; ее заметки остаются без папки.
func (h *Handler) DeleteFolder(ctx fiber.Ctx) error {
	userCtx, log := requestLogger(ctx, "Handler.DeleteFolder")
	log.Debug(userCtx, LogHandlerDeleteFolder)

	folderID := ctx.Params("folder_id")
	if folderID == "" {
		return badRequest(ctx, ErrMsgInvalidFolderID)
	}

	err := h.run(userCtx, func(ws *app.Workspace) error {
		if !ws.DeleteFolder(userCtx, folderID) {
			return app.ErrFolderNotFound
		}
		return nil
	})
	if err != nil {
		log.Warn(userCtx, "failed to delete folder", zap.String("folder_id", folderID), zap.Error(err))
		return handleError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// Package handlers содержит HTTP-обработчики локального API заметок.
// Каждая операция над рабочим пространством выполняется через Dispatcher
// в едином цикле событий.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/notes/adapters/export"
	"notekeeper/internal/notes/adapters/http/middleware"
	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/domain/entities"
	"notekeeper/pkg/logger"
	"notekeeper/pkg/loop"
)

// Константы ошибок для ответов.
const (
	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgInvalidNoteID      = "invalid note id"
	ErrMsgInvalidFolderID    = "invalid folder id"
	ErrMsgUnavailable        = "service is shutting down"
	ErrMsgInternal           = "Internal server error"
)

// ErrNoActiveNote возвращается при правке черновика без активной заметки.
var ErrNoActiveNote = errors.New("no active note")

// Dispatcher выполняет fn в потоке управления рабочего пространства.
type Dispatcher interface {
	Do(ctx context.Context, fn func()) error
}

// Handler обработчик HTTP-запросов для работы с заметками, папками и сеансом.
type Handler struct {
	workspace  *app.Workspace
	dispatcher Dispatcher
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(workspace *app.Workspace, dispatcher Dispatcher) *Handler {
	return &Handler{
		workspace:  workspace,
		dispatcher: dispatcher,
	}
}

// run выполняет fn через диспетчер и возвращает ошибку операции.
func (h *Handler) run(ctx context.Context, fn func(ws *app.Workspace) error) error {
	var opErr error
	if err := h.dispatcher.Do(ctx, func() { opErr = fn(h.workspace) }); err != nil {
		return err
	}
	return opErr
}

func requestLogger(ctx fiber.Ctx, handler string) (context.Context, *logger.Logger) {
	userCtx := middleware.Context(ctx)
	return userCtx, logger.Log(userCtx).With(zap.String("handler", handler))
}

func sendJSON(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func badRequest(ctx fiber.Ctx, msg string) error {
	return sendJSON(ctx, fiber.StatusBadRequest, fiber.Map{"error": msg})
}

// handleError обрабатывает ошибки и возвращает соответствующий HTTP-статус.
func handleError(ctx fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := ErrMsgInternal

	switch {
	case errors.Is(err, app.ErrNoteNotFound), errors.Is(err, app.ErrFolderNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrNoActiveNote):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, entities.ErrEmptyFolderName):
		status, msg = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, app.ErrInvalidSortField),
		errors.Is(err, app.ErrInvalidSortDirection),
		errors.Is(err, export.ErrInvalidFormat):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, loop.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, msg = fiber.StatusServiceUnavailable, ErrMsgUnavailable
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status, msg = fiberErr.Code, fiberErr.Message
	}

	return sendJSON(ctx, status, fiber.Map{"error": msg})
}

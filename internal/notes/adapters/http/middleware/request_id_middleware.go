// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notekeeper/pkg/logger"
)

// Ключи и заголовки запроса.
const (
	HeaderRequestID = "X-Request-ID"
	LocalsContext   = "userContext"
)

// NewRequestIDMiddleware кладет в Locals контекст с идентификатором запроса
// (из заголовка X-Request-ID или новым) и возвращает его в ответе.
func NewRequestIDMiddleware(base context.Context) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := logger.NewRequestIDContext(base, ctx.Get(HeaderRequestID))
		id, _ := logger.GetRequestID(requestCtx)

		ctx.Set(HeaderRequestID, id)
		ctx.Locals(LocalsContext, requestCtx)

		return ctx.Next()
	}
}

// Context возвращает контекст запроса, сохраненный NewRequestIDMiddleware.
func Context(ctx fiber.Ctx) context.Context {
	if userCtx, ok := ctx.Locals(LocalsContext).(context.Context); ok {
		return userCtx
	}
	return ctx.Context()
}

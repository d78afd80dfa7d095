// Package shutdown предоставляет функциональность для корректного завершения приложения
// путем ожидания и обработки сигналов SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogSignalReceived  = "shutdown signal received"
	LogContextCanceled = "parent context canceled, shutting down"
	LogHookFailed      = "shutdown hook failed"
	LogTimeoutExceeded = "shutdown timeout exceeded, remaining hooks skipped"
)

// Hook выполняет один этап остановки.
type Hook func(ctx context.Context) error

// Wait блокирует выполнение до получения SIGINT/SIGTERM или отмены ctx,
// затем выполняет хуки по порядку в рамках общего timeout.
// Порядок важен: сначала сохраняются данные, затем закрываются ресурсы.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	log := logger.Log(ctx)

	select {
	case sig := <-sigCh:
		log.Info(ctx, LogSignalReceived, zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info(ctx, LogContextCanceled)
	}

	Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run выполняет хуки последовательно. Ошибка хука логируется и не прерывает остальные.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	log := logger.Log(ctx)

	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for i, hook := range hooks {
		if stopCtx.Err() != nil {
			log.Warn(ctx, LogTimeoutExceeded, zap.Int("remaining", len(hooks)-i))
			return
		}
		if err := hook(stopCtx); err != nil {
			log.Error(ctx, LogHookFailed, zap.Int("hook", i), zap.Error(err))
		}
	}
}

// Package main реализует точку входа локального сервиса заметок.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	notehttp "notekeeper/internal/notes/adapters/http"
	"notekeeper/internal/notes/app"
	"notekeeper/internal/notes/config"
	"notekeeper/internal/notes/db"
	"notekeeper/internal/notes/ports/services"
	"notekeeper/pkg/logger"
	"notekeeper/pkg/loop"
	"notekeeper/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTES_LOGGER_MODE"
	EnvLoggerLevel = "NOTES_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitStorage          = "failed to initialize storage"
	ErrParseLocale          = "failed to parse query locale"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrLoopStopped          = "event loop stopped with error"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notes service started"
	LogServiceShutdownDone = "notes service shutdown complete"
	LogLoadingWorkspace    = "loading notes workspace"
	LogWorkspaceLoaded     = "notes workspace loaded"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogFlushingDraft       = "flushing pending draft"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingLoop        = "stopping event loop"
	LogClosingStorage      = "closing storage"
)

const loopQueueSize = 256

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLoggerWithOptions(cfg.Logging.GetEnvironment(), cfg.Logging.Level, cfg.Logging.GetOptions())
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger
		ctx = logger.NewContext(ctx, log)

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		locale, err := app.ParseLocale(cfg.Query.Locale)
		if err != nil {
			log.Error(ctx, ErrParseLocale, zap.Error(err))
			exitCode = 1
			return
		}

		store, err := db.Open(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitStorage, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogLoadingWorkspace)
		eventLoop := loop.New(loopQueueSize)
		scheduler := services.SchedulerFunc(func(d time.Duration, fn func()) services.Timer {
			return eventLoop.AfterFunc(d, fn)
		})

		ids := app.NewUUIDGenerator()
		gateway := app.NewPersistenceGateway(store)
		notes := app.NewNoteStore(ctx, gateway, services.SystemClock, ids)
		folders := app.NewFolderStore(ctx, gateway, notes, services.SystemClock, ids)
		autosave := app.NewAutosaveController(notes, scheduler, cfg.Autosave.Delay)
		workspace := app.NewWorkspace(notes, folders, autosave, app.NewQueryEngine(locale))

		log.Info(ctx, LogWorkspaceLoaded,
			zap.Int("notes", notes.Len()),
			zap.Int("folders", len(folders.List())))

		loopCtx, stopLoop := context.WithCancel(ctx)
		loopDone := make(chan struct{})
		go func() {
			defer close(loopDone)
			if err := eventLoop.Run(loopCtx); err != nil {
				log.Error(ctx, ErrLoopStopped, zap.Error(err))
			}
		}()

		log.Info(ctx, LogInitHTTPServer)
		server := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})
		notehttp.SetupRouter(ctx, server, workspace, eventLoop)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := server.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера: новые правки больше не поступают.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return server.Shutdown()
			},
			// Немедленное сохранение ожидающего черновика.
			func(ctx context.Context) error {
				log.Info(ctx, LogFlushingDraft)
				err := eventLoop.Do(ctx, func() { workspace.Flush(ctx) })
				if errors.Is(err, loop.ErrStopped) {
					return nil
				}
				return err
			},
			// Остановка цикла событий.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingLoop)
				stopLoop()
				select {
				case <-loopDone:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
			// Закрытие хранилища.
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingStorage)
				return store.Close()
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

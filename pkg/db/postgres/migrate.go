package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

// Константы для сообщений об ошибках миграций.
const (
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
	ErrReadSchemaVersion       = "failed to read schema version"
)

// ErrDirtySchema возвращается, если предыдущая миграция оборвалась на середине.
// Такую базу нужно починить вручную (migrate force).
var ErrDirtySchema = errors.New("database schema is dirty")

// MigrateDSN приводит схему kv_store к последней версии из migrationsPath.
func MigrateDSN(ctx context.Context, dsn string, migrationsPath string) error {
	log := logger.Log(ctx).With(zap.String("path", migrationsPath))

	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer m.Close()

	if _, dirty, err := schemaVersion(m); err != nil {
		log.Error(ctx, ErrReadSchemaVersion, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrReadSchemaVersion, err)
	} else if dirty {
		log.Error(ctx, ErrDirtySchema.Error())
		return ErrDirtySchema
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		version, _, _ := schemaVersion(m)
		log.Debug(ctx, LogMigrationsUpToDate, zap.Uint("version", version))
		return nil
	case err != nil:
		log.Error(ctx, ErrApplyMigrations, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrApplyMigrations, err)
	}

	version, _, _ := schemaVersion(m)
	log.Info(ctx, LogMigrationsApplied, zap.Uint("version", version))
	return nil
}

// schemaVersion возвращает 0 для пустой базы.
func schemaVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

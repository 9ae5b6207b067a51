package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"namedesk/internal/infrastructure/logging"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// goose keeps its dialect, base FS and logger in package globals, so they are
// set exactly once for every runner in the process.
var (
	gooseConfigOnce sync.Once
	gooseConfigErr  error
)

// gooseLogger routes goose output into the structured logger
type gooseLogger struct {
	logger logging.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

// MigrationRunner applies the embedded migrations with goose
type MigrationRunner struct {
	db     *sql.DB
	logger logging.Logger
}

var _ MigrationManager = (*MigrationRunner)(nil)

// NewMigrationRunner creates a runner for db
func NewMigrationRunner(db *sql.DB, logger logging.Logger) *MigrationRunner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	gooseConfigOnce.Do(func() {
		gooseConfigErr = configureGoose(logger)
	})

	return &MigrationRunner{
		db:     db,
		logger: logger,
	}
}

func configureGoose(logger logging.Logger) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{logger: logger})
	return nil
}

// RunMigrations applies every pending migration
func (mr *MigrationRunner) RunMigrations(ctx context.Context) error {
	if mr.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if gooseConfigErr != nil {
		return fmt.Errorf("goose configuration failed: %w", gooseConfigErr)
	}

	mr.logger.Info("Running database migrations")

	if err := goose.UpContext(ctx, mr.db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if version, err := goose.GetDBVersionContext(ctx, mr.db); err == nil {
		mr.logger.Info("Database migrated", "version", version)
	}
	return nil
}

// GetCurrentVersion returns the applied schema version
func (mr *MigrationRunner) GetCurrentVersion(ctx context.Context) (int64, error) {
	if mr.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	if gooseConfigErr != nil {
		return 0, fmt.Errorf("goose configuration failed: %w", gooseConfigErr)
	}

	version, err := goose.GetDBVersionContext(ctx, mr.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// ValidateMigrations checks that the embedded migrations parse
func (mr *MigrationRunner) ValidateMigrations() error {
	if gooseConfigErr != nil {
		return fmt.Errorf("goose configuration failed: %w", gooseConfigErr)
	}

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("failed to collect migrations: %w", err)
	}
	if len(migrations) == 0 {
		return fmt.Errorf("no migrations found")
	}

	mr.logger.Debug("Validated embedded migrations", "count", len(migrations))
	return nil
}

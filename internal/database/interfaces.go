package database

import (
	"context"
	"database/sql"

	queries "namedesk/internal/database/generated"
)

// Service manages the records database connection and schema
type Service interface {
	Connect(ctx context.Context, config *Config, path string) error
	Close() error
	Health(ctx context.Context) error

	DB() *sql.DB
	Queries() *queries.Queries
	Path() string

	Migrate(ctx context.Context) error
	GetMigrationVersion(ctx context.Context) (int64, error)
}

// MigrationManager applies the embedded schema migrations
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	GetCurrentVersion(ctx context.Context) (int64, error)
	ValidateMigrations() error
}

// DataDirs locates the per-user data directory and the bundled resources
type DataDirs interface {
	UserDataDir() (string, error)
	ResourcesDir() (string, error)
}

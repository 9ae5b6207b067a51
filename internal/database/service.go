package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	queries "namedesk/internal/database/generated"
	dberrors "namedesk/internal/infrastructure/errors"
	"namedesk/internal/infrastructure/logging"

	_ "github.com/mattn/go-sqlite3"
)

// maxWALConns caps the pool even when WAL allows concurrent readers
const maxWALConns = 4

// SQLiteService owns the connection to the records database.
//
// Connect opens and pings the file, Migrate brings the schema up to date,
// Queries hands out the generated accessors and Close releases the pool.
// Close is safe to call more than once.
type SQLiteService struct {
	mu              sync.RWMutex
	db              *sql.DB
	path            string
	migrationRunner MigrationManager
	queries         *queries.Queries
	logger          logging.Logger
}

var _ Service = (*SQLiteService)(nil)

// NewSQLiteService creates a disconnected service
func NewSQLiteService(logger logging.Logger) *SQLiteService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteService{logger: logger}
}

// Connect opens the database at path using config for pool and pragma settings
func (s *SQLiteService) Connect(ctx context.Context, config *Config, path string) error {
	if config == nil {
		return dberrors.Validation("Connect", "config", "must not be nil")
	}
	if path == "" {
		return dberrors.Validation("Connect", "path", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close existing database connection", "error", err)
		}
		s.db, s.queries, s.migrationRunner = nil, nil, nil
	}

	db, err := sql.Open("sqlite3", config.ConnectionString(path))
	if err != nil {
		return dberrors.Connection("Connect", fmt.Sprintf("failed to open database: %v", err))
	}

	s.configureConnectionPool(db, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.WrapWithContext("Connect", err, map[string]string{"path": path})
	}

	s.db = db
	s.path = path
	s.queries = queries.New(db)
	s.migrationRunner = NewMigrationRunner(db, s.logger)

	s.logger.Info("Connected to SQLite database", "path", path)
	return nil
}

// Close releases the connection pool
func (s *SQLiteService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db, s.queries, s.migrationRunner = nil, nil, nil
	if err != nil {
		return dberrors.Connection("Close", fmt.Sprintf("failed to close database: %v", err))
	}

	s.logger.Info("Closed SQLite database connection", "path", s.path)
	return nil
}

// Migrate validates and applies the embedded migrations
func (s *SQLiteService) Migrate(ctx context.Context) error {
	s.mu.RLock()
	db, runner := s.db, s.migrationRunner
	s.mu.RUnlock()

	if db == nil {
		return dberrors.Connection("Migrate", "database not connected")
	}
	if runner == nil {
		return dberrors.Validation("Migrate", "migrationRunner", "not initialized")
	}

	if err := runner.ValidateMigrations(); err != nil {
		return dberrors.WrapWithContext("Migrate", err, map[string]string{"phase": "validation"})
	}
	if err := runner.RunMigrations(ctx); err != nil {
		return dberrors.WrapWithContext("Migrate", err, map[string]string{"phase": "execution"})
	}
	return nil
}

// Health pings the database and runs a trivial query
func (s *SQLiteService) Health(ctx context.Context) error {
	db := s.DB()
	if db == nil {
		return dberrors.Connection("Health", "database not connected")
	}

	if err := db.PingContext(ctx); err != nil {
		return dberrors.WrapWithContext("Health", err, map[string]string{"phase": "ping"})
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return dberrors.WrapWithContext("Health", err, map[string]string{"phase": "query"})
	}
	if result != 1 {
		return dberrors.Validation("Health", "query_result", fmt.Sprintf("expected 1, got %d", result))
	}
	return nil
}

// DB returns the pool, or nil when disconnected
func (s *SQLiteService) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Queries returns the generated accessors, or nil when disconnected
func (s *SQLiteService) Queries() *queries.Queries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}

// Path is the file the service last connected to
func (s *SQLiteService) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// GetMigrationVersion returns the applied schema version
func (s *SQLiteService) GetMigrationVersion(ctx context.Context) (int64, error) {
	s.mu.RLock()
	db, runner := s.db, s.migrationRunner
	s.mu.RUnlock()

	if db == nil {
		return 0, dberrors.Connection("GetMigrationVersion", "database not connected")
	}
	if runner == nil {
		return 0, dberrors.Validation("GetMigrationVersion", "migrationRunner", "not initialized")
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		return 0, dberrors.Wrap("GetMigrationVersion", err)
	}
	return version, nil
}

// configureConnectionPool sizes the pool for SQLite's locking model
func (s *SQLiteService) configureConnectionPool(db *sql.DB, config *Config) {
	if config.ForceSingleConnection || config.IsInMemory() {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.logger.Debug("Configured SQLite for single connection mode")
		return
	}

	if !strings.EqualFold(config.JournalMode, "WAL") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.logger.Debug("Configured SQLite for single connection mode (non-WAL journal mode)",
			"journalMode", config.JournalMode)
	} else {
		maxConns := config.MaxConnections
		if maxConns <= 0 || maxConns > maxWALConns {
			maxConns = maxWALConns
		}
		idleConns := min(config.MaxIdleConns, maxConns)
		if idleConns <= 0 {
			idleConns = 1
		}
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(idleConns)
		s.logger.Debug("Configured SQLite connection pool (WAL mode)",
			"maxOpenConns", maxConns, "maxIdleConns", idleConns)
	}

	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
}

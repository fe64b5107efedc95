package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/school-timetable/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Storage bundles the SQLite repositories that share one connection pool.
type Storage struct {
	*TimetableRepository
	*SelectionRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open connects to the database at dsn using the server defaults. The special
// dsn ":memory:" opens a private in-memory database.
func Open(dsn string) (*Storage, error) {
	config := migration.DefaultSQLiteConfig(dsn)
	if dsn == migration.InMemoryDSN {
		config = migration.InMemoryTestSQLiteConfig()
	}
	return OpenWithConfig(config, nil)
}

// OpenWithConfig connects using an explicit configuration. A nil logger
// discards migration logs.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", config.DSN, err)
	}

	return &Storage{
		TimetableRepository: NewTimetableRepository(pool),
		SelectionRepository: NewSelectionRepository(pool),
		pool:                pool,
		logger:              logger,
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies every pending embedded migration.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.migrations().RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// MigrationStatus reports applied and pending embedded migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (*migration.MigrationStatus, error) {
	return s.migrations().GetMigrationStatus(ctx)
}

func (s *Storage) migrations() migration.MigrationManager {
	return migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationDir,
		s.logger,
	)
}

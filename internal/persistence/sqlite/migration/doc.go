// Package migration applies versioned SQL schema changes to a SQLite database.
//
// Migration files are read from an fs.FS, usually an embedded directory, and
// must be named {version}_{description}.sql (e.g. "001_create_timetables.sql").
// Versions are applied in ascending order, each inside its own transaction, and
// recorded in a schema_migrations table together with the file checksum. A
// file that changed after it was applied is reported instead of silently
// skipped.
//
// Example usage:
//
//	scanner := NewFileScanner(migrationFiles)
//	manager := NewMigrationManager(scanner, NewSQLiteExecutor(db), "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration

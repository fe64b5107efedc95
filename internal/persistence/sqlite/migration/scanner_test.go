package migration

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	tests := []struct {
		name          string
		files         map[string]string
		expectedOrder []string
		expectErr     error
		errorContains string
	}{
		{
			name: "orders by numeric version",
			files: map[string]string{
				"migrations/010_add_index.sql":   "CREATE INDEX idx_a ON a(id);",
				"migrations/002_create_b.sql":    "CREATE TABLE b (id TEXT PRIMARY KEY);",
				"migrations/001_create_a.sql":    "CREATE TABLE a (id TEXT PRIMARY KEY);",
				"migrations/README.md":           "# notes",
				"migrations/nested/003_skip.sql": "CREATE TABLE c (id TEXT);",
			},
			expectedOrder: []string{"001", "002", "010"},
		},
		{
			name:          "empty directory",
			files:         map[string]string{"migrations/README.md": "# none yet"},
			expectedOrder: nil,
		},
		{
			name: "duplicate versions",
			files: map[string]string{
				"migrations/001_create_a.sql": "CREATE TABLE a (id TEXT);",
				"migrations/1_create_b.sql":   "CREATE TABLE b (id TEXT);",
			},
			expectErr: ErrDuplicateVersion,
		},
		{
			name:      "bad file name",
			files:     map[string]string{"migrations/create_a.sql": "CREATE TABLE a (id TEXT);"},
			expectErr: ErrInvalidMigrationFile,
		},
		{
			name:      "empty file",
			files:     map[string]string{"migrations/001_empty.sql": "   \n"},
			expectErr: ErrInvalidMigrationFile,
		},
		{
			name:          "unbalanced parentheses",
			files:         map[string]string{"migrations/001_broken.sql": "CREATE TABLE a (id TEXT;"},
			expectErr:     ErrInvalidMigrationFile,
			errorContains: "parenthesis",
		},
		{
			name:          "unterminated string",
			files:         map[string]string{"migrations/001_broken.sql": "INSERT INTO a VALUES ('x);"},
			expectErr:     ErrInvalidMigrationFile,
			errorContains: "unterminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, content := range tt.files {
				fsys[name] = &fstest.MapFile{Data: []byte(content)}
			}

			migrations, err := NewFileScanner(fsys).ScanMigrations("migrations")
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScanMigrations returned error: %v", err)
			}
			if len(migrations) != len(tt.expectedOrder) {
				t.Fatalf("expected %d migrations, got %d", len(tt.expectedOrder), len(migrations))
			}
			for i, version := range tt.expectedOrder {
				if migrations[i].Version != version {
					t.Fatalf("position %d: expected version %s, got %s", i, version, migrations[i].Version)
				}
			}
		})
	}
}

func TestFileScanner_MissingDirectory(t *testing.T) {
	_, err := NewFileScanner(fstest.MapFS{}).ScanMigrations("migrations")
	var fsErr *FileSystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("expected FileSystemError, got %v", err)
	}
}

func TestFileScanner_ParseMigrationFile(t *testing.T) {
	content := "-- Description: Create timetables\nCREATE TABLE timetables (id TEXT PRIMARY KEY);\n"
	fsys := fstest.MapFS{
		"m/001_create_timetables.sql": &fstest.MapFile{Data: []byte(content)},
		"m/002_add_rooms.sql":         &fstest.MapFile{Data: []byte("ALTER TABLE timetables ADD COLUMN room TEXT;")},
	}
	scanner := NewFileScanner(fsys)

	migration, err := scanner.ParseMigrationFile("m/001_create_timetables.sql")
	if err != nil {
		t.Fatalf("ParseMigrationFile returned error: %v", err)
	}
	if migration.Description != "Create timetables" {
		t.Fatalf("expected description from header, got %q", migration.Description)
	}
	if migration.Checksum != checksum(content) || len(migration.Checksum) != 64 {
		t.Fatalf("unexpected checksum %q", migration.Checksum)
	}

	fallback, err := scanner.ParseMigrationFile("m/002_add_rooms.sql")
	if err != nil {
		t.Fatalf("ParseMigrationFile returned error: %v", err)
	}
	if fallback.Description != "add rooms" {
		t.Fatalf("expected description from file name, got %q", fallback.Description)
	}
}

func TestParseSQL(t *testing.T) {
	sql := `
-- leading comment
CREATE TABLE a (id TEXT);

-- another
CREATE INDEX idx_a ON a(id);
;
`
	statements := parseSQL(sql)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Fatalf("unexpected statement %q", statements[1])
	}
}

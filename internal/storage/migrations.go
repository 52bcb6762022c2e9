package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Concepts table: one row per (text, context) key
CREATE TABLE IF NOT EXISTS concepts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    context TEXT NOT NULL,
    love REAL NOT NULL CHECK (love >= 0 AND love <= 1),
    justice REAL NOT NULL CHECK (justice >= 0 AND justice <= 1),
    power REAL NOT NULL CHECK (power >= 0 AND power <= 1),
    wisdom REAL NOT NULL CHECK (wisdom >= 0 AND wisdom <= 1),
    embedding BLOB,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(text, context)
);

CREATE INDEX IF NOT EXISTS idx_concepts_context ON concepts(context);

-- Sacred numbers table
CREATE TABLE IF NOT EXISTS sacred_numbers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    value REAL NOT NULL UNIQUE,
    is_sacred BOOLEAN NOT NULL DEFAULT 0,
    resonance REAL NOT NULL DEFAULT 0
);

-- Anchors table: fixed seed points, created at initialization
CREATE TABLE IF NOT EXISTS anchors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    love REAL NOT NULL,
    justice REAL NOT NULL,
    power REAL NOT NULL,
    wisdom REAL NOT NULL
);

-- Relationships table: directed edges, one per ordered pair
CREATE TABLE IF NOT EXISTS relationships (
    concept_id INTEGER NOT NULL,
    related_id INTEGER NOT NULL,
    distance REAL NOT NULL,
    strength REAL NOT NULL,
    type TEXT NOT NULL DEFAULT 'proximity',
    PRIMARY KEY (concept_id, related_id),
    CHECK (concept_id != related_id),
    FOREIGN KEY (concept_id) REFERENCES concepts(id) ON DELETE CASCADE,
    FOREIGN KEY (related_id) REFERENCES concepts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_relationships_related ON relationships(related_id);

-- Seed anchors; the primary anchor sits at the corner of the unit 4-cube
INSERT OR IGNORE INTO anchors (name, love, justice, power, wisdom) VALUES
    ('primary', 1.0, 1.0, 1.0, 1.0),
    ('equilibrium', 0.5, 0.5, 0.5, 0.5),
    ('compassion', 0.95, 0.60, 0.35, 0.70),
    ('judgment', 0.45, 0.95, 0.70, 0.75),
    ('sovereignty', 0.60, 0.70, 0.95, 0.65),
    ('insight', 0.65, 0.60, 0.45, 0.95);
`

const migrationV1Down = `
DROP TABLE IF EXISTS relationships;
DROP TABLE IF EXISTS anchors;
DROP TABLE IF EXISTS sacred_numbers;
DROP TABLE IF EXISTS concepts;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Check if schema_version table exists
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err = db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err = db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	var currentVersion string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	var migration *Migration
	for i := range AllMigrations {
		if AllMigrations[i].Version == currentVersion {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", currentVersion)
	}

	if _, err = db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", currentVersion, err)
	}

	if _, err = db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", currentVersion); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", currentVersion, err)
	}

	return nil
}

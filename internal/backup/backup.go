package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dshills/semspace/internal/storage"
)

var (
	// ErrBackupExists is returned by Create when the target file already exists
	ErrBackupExists = errors.New("backup target already exists")
	// ErrInvalidBackup is returned by Restore when the source fails verification
	ErrInvalidBackup = errors.New("invalid backup file")
	// ErrTransactionOpen is returned when a backup operation is attempted
	// while the store holds an explicit transaction
	ErrTransactionOpen = errors.New("backup operations require no open transaction")
)

// timestampFormat orders backup filenames lexically and avoids collisions
// for backups taken in quick succession.
const timestampFormat = "20060102T150405.000000000"

const backupPrefix = "semspace-"

// Manager performs physical snapshots, verification, restore, and JSON
// interchange for a single Store.
type Manager struct {
	store *storage.Store
}

// New creates a backup manager bound to store.
func New(store *storage.Store) *Manager {
	return &Manager{store: store}
}

// Create writes a consistent snapshot of the database to path using
// VACUUM INTO, which copies a single committed view regardless of
// concurrent readers. The target must not exist.
func (m *Manager) Create(ctx context.Context, path string) error {
	if m.store.InTransaction() {
		return ErrTransactionOpen
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrBackupExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat backup target: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
	}
	if _, err := m.store.DB().ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

// requiredTables must all be present for a file to count as a valid backup.
var requiredTables = []string{"concepts", "sacred_numbers", "anchors", "relationships"}

// Verify reports whether path holds a readable, structurally intact
// database. It never returns an error; any failure mode is simply false.
func (m *Manager) Verify(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}

	db, err := sql.Open(storage.DriverName, "file:"+path+"?mode=ro")
	if err != nil {
		return false
	}
	defer func() { _ = db.Close() }()

	for _, table := range requiredTables {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			return false
		}
	}

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return false
	}
	return result == "ok"
}

// Restore replaces the store's contents with the contents of the backup at
// path. The copy runs in a single transaction on the live handle, so a
// failure partway leaves the store untouched. The backup is verified first.
func (m *Manager) Restore(ctx context.Context, path string) error {
	if m.store.InTransaction() {
		return ErrTransactionOpen
	}
	if !m.Verify(ctx, path) {
		return fmt.Errorf("%w: %s", ErrInvalidBackup, path)
	}

	// ATTACH cannot run inside a transaction, so pin the connection and
	// manage the transaction with explicit statements around the copy.
	conn, err := m.store.DB().Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS src", path); err != nil {
		return fmt.Errorf("failed to attach backup: %w", err)
	}
	defer func() { _, _ = conn.ExecContext(ctx, "DETACH DATABASE src") }()

	if err := copyFromAttached(ctx, conn); err != nil {
		return err
	}

	m.store.ClearCache()
	return nil
}

func copyFromAttached(ctx context.Context, conn *sql.Conn) error {
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to begin restore transaction: %w", err)
	}

	stmts := []string{
		"DELETE FROM main.relationships",
		"DELETE FROM main.concepts",
		"DELETE FROM main.sacred_numbers",
		"DELETE FROM main.anchors",
		`INSERT INTO main.anchors (id, name, love, justice, power, wisdom)
		 SELECT id, name, love, justice, power, wisdom FROM src.anchors`,
		`INSERT INTO main.sacred_numbers (id, value, is_sacred, resonance)
		 SELECT id, value, is_sacred, resonance FROM src.sacred_numbers`,
		`INSERT INTO main.concepts (id, text, context, love, justice, power, wisdom, embedding, created_at, updated_at)
		 SELECT id, text, context, love, justice, power, wisdom, embedding, created_at, updated_at FROM src.concepts`,
		`INSERT INTO main.relationships (concept_id, related_id, distance, strength, type)
		 SELECT concept_id, related_id, distance, strength, type FROM src.relationships`,
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
			return fmt.Errorf("failed to restore: %w", err)
		}
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		return fmt.Errorf("failed to commit restore: %w", err)
	}
	return nil
}

// Auto writes a timestamped backup into dir and prunes old backups beyond
// keepLastN (0 keeps everything). It returns the path of the new backup.
func (m *Manager) Auto(ctx context.Context, dir string, keepLastN int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := backupPrefix + time.Now().UTC().Format(timestampFormat) + ".db"
	path := filepath.Join(dir, name)
	if err := m.Create(ctx, path); err != nil {
		return "", err
	}

	if keepLastN > 0 {
		if err := pruneBackups(dir, keepLastN); err != nil {
			return path, fmt.Errorf("backup created but pruning failed: %w", err)
		}
	}
	return path, nil
}

// pruneBackups removes all but the newest keepLastN timestamped backups.
// Filenames sort lexically by timestamp, so no stat calls are needed.
func pruneBackups(dir string, keepLastN int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasPrefix(n, backupPrefix) && strings.HasSuffix(n, ".db") {
			names = append(names, n)
		}
	}
	if len(names) <= keepLastN {
		return nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, n := range names[keepLastN:] {
		if err := os.Remove(filepath.Join(dir, n)); err != nil {
			return err
		}
	}
	return nil
}

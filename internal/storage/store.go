package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/internal/embedder"
	"github.com/dshills/semspace/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrTransactionActive is returned by Begin while a transaction is open
	ErrTransactionActive = errors.New("transaction already active")
	// ErrNoTransaction is returned by commit/rollback/savepoint operations
	// issued with no open transaction
	ErrNoTransaction = errors.New("no active transaction")
	// ErrUnknownSavepoint is returned for savepoint names that were never
	// created or were already released
	ErrUnknownSavepoint = errors.New("unknown savepoint")
)

const defaultCacheSize = 4096

// Options configures a Store.
type Options struct {
	// Engine computes coordinates at write time. Defaults to a fresh
	// keyword-only engine.
	Engine *coordinate.Engine
	// Embedder, when set, persists an embedding alongside each concept.
	Embedder embedder.Embedder
	// CacheSize bounds the id -> coordinate read cache.
	CacheSize int
}

// Store is the durable concept store: one logical SQLite handle per
// process. Writes are serialized through the single connection; a Store is
// not safe for concurrent use without external locking.
type Store struct {
	db     *sql.DB
	engine *coordinate.Engine
	emb    embedder.Embedder

	// tx is the single active explicit transaction, nil outside one.
	tx         *sql.Tx
	savepoints []string

	// coordCache accelerates repeated coordinate reads by id. Refreshed on
	// every write, purged on rollback; never authoritative.
	coordCache *lru.Cache[int64, types.Coordinate]
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single writer; also pins every statement to one connection so the
	// explicit transaction and savepoint state stay coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open creates or opens a concept store at dbPath. Pass ":memory:" for an
// ephemeral store. A nil opts uses defaults.
func Open(dbPath string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}
	engine := opts.Engine
	if engine == nil {
		engine = coordinate.NewEngine()
	}
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	cache, err := lru.New[int64, types.Coordinate](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create coordinate cache: %w", err)
	}

	return &Store{
		db:         db,
		engine:     engine,
		emb:        opts.Embedder,
		coordCache: cache,
	}, nil
}

// Close closes the database connection. An open transaction is rolled back.
func (s *Store) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
		s.savepoints = nil
	}
	return s.db.Close()
}

// Engine returns the coordinate engine used at write time.
func (s *Store) Engine() *coordinate.Engine {
	return s.engine
}

// DB exposes the underlying handle for backup tooling. It must not be used
// for writes outside the transaction model.
func (s *Store) DB() *sql.DB {
	return s.db
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// querier returns the active transaction when one is open; otherwise the
// database itself, so operations auto-commit individually.
func (s *Store) querier() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// InTransaction reports whether an explicit transaction is open.
func (s *Store) InTransaction() bool {
	return s.tx != nil
}

// Begin opens the store's single explicit transaction. A second Begin while
// one is active is a caller error, not a wait condition.
func (s *Store) Begin(ctx context.Context) error {
	if s.tx != nil {
		return ErrTransactionActive
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	s.savepoints = nil
	return nil
}

// Commit commits the active transaction.
func (s *Store) Commit() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Commit()
	s.tx = nil
	s.savepoints = nil
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Rollback aborts the active transaction and purges the coordinate cache,
// since cached entries may reflect undone writes.
func (s *Store) Rollback() error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Rollback()
	s.tx = nil
	s.savepoints = nil
	s.coordCache.Purge()
	if err != nil {
		return fmt.Errorf("failed to rollback: %w", err)
	}
	return nil
}

var savepointNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CreateSavepoint creates a named savepoint inside the active transaction.
// Savepoints form a stack; the name must be a plain identifier.
func (s *Store) CreateSavepoint(ctx context.Context, name string) error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	if !savepointNameRe.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	if _, err := s.tx.ExecContext(ctx, `SAVEPOINT "`+name+`"`); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}
	s.savepoints = append(s.savepoints, name)
	return nil
}

// RollbackToSavepoint undoes writes made after the named savepoint without
// aborting the outer transaction. The savepoint itself remains valid;
// savepoints created after it are discarded.
func (s *Store) RollbackToSavepoint(ctx context.Context, name string) error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	idx := s.findSavepoint(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSavepoint, name)
	}
	if _, err := s.tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT "`+name+`"`); err != nil {
		return fmt.Errorf("failed to rollback to savepoint %s: %w", name, err)
	}
	s.savepoints = s.savepoints[:idx+1]
	s.coordCache.Purge()
	return nil
}

// ReleaseSavepoint merges the named savepoint into its parent. The
// savepoint and any created after it become invalid.
func (s *Store) ReleaseSavepoint(ctx context.Context, name string) error {
	if s.tx == nil {
		return ErrNoTransaction
	}
	idx := s.findSavepoint(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSavepoint, name)
	}
	if _, err := s.tx.ExecContext(ctx, `RELEASE SAVEPOINT "`+name+`"`); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	s.savepoints = s.savepoints[:idx]
	return nil
}

func (s *Store) findSavepoint(name string) int {
	for i := len(s.savepoints) - 1; i >= 0; i-- {
		if s.savepoints[i] == name {
			return i
		}
	}
	return -1
}

// Atomic wraps fn in begin/commit and guarantees rollback on any error,
// returning the original failure.
func (s *Store) Atomic(ctx context.Context, fn func() error) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		_ = s.Rollback()
		return err
	}
	return s.Commit()
}

// CachedCoordinate reads the id -> coordinate cache without touching disk.
func (s *Store) CachedCoordinate(id int64) (types.Coordinate, bool) {
	return s.coordCache.Get(id)
}

// ClearCache empties the coordinate cache. The cache is an accelerator
// only; clearing it never affects stored data.
func (s *Store) ClearCache() {
	s.coordCache.Purge()
}

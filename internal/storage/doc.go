// Package storage provides SQLite-based persistence for the semantic
// coordinate store.
//
// The storage layer manages:
//   - Concepts keyed by (text, context) with upsert semantics
//   - Sacred numbers with canonical-set membership
//   - Fixed anchors seeded at initialization
//   - Relationship edges produced by discovery
//
// # Transaction Model
//
// A Store is one logical handle with at most one explicit transaction open
// at a time; a nested Begin is a caller error. Named savepoints form a
// stack inside the active transaction. Operations issued with no open
// transaction auto-commit individually:
//
//	if err := store.Begin(ctx); err != nil { ... }
//	id, _ := store.Store(ctx, "love", "biblical")
//	_ = store.CreateSavepoint(ctx, "s1")
//	_, _ = store.Store(ctx, "wrath", "biblical")
//	_ = store.RollbackToSavepoint(ctx, "s1")
//	if err := store.Commit(); err != nil { ... }
//
// Atomic wraps a sequence of calls in begin/commit with guaranteed
// rollback on error:
//
//	err := store.Atomic(ctx, func() error {
//	    for _, t := range texts {
//	        if _, err := store.Store(ctx, t, "biblical"); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
//
// # Coordinate Cache
//
// Every successful write refreshes an in-memory LRU id -> coordinate map.
// The cache accelerates repeated reads, is purged on rollback, and is
// never authoritative; ClearCache is always safe.
//
// # Build Tags
//
// Two driver configurations are supported:
//
//   - Pure Go (default / purego tag): modernc.org/sqlite, no C compiler
//   - CGO (sqlite_vec tag): github.com/mattn/go-sqlite3
package storage

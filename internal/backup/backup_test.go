package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/semspace/internal/discovery"
	"github.com/dshills/semspace/internal/storage"
	"github.com/dshills/semspace/pkg/types"
)

func setupTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedStore(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()
	for _, text := range []string{"love", "mercy", "grace"} {
		_, err := store.Store(ctx, text, "biblical")
		require.NoError(t, err)
	}
	_, err := store.StoreSacredNumber(ctx, 7)
	require.NoError(t, err)
	_, err = discovery.New(store).Discover(ctx, discovery.Options{MaxDistance: 0.3, MaxRelationships: 3})
	require.NoError(t, err)
}

func TestCreateAndVerify(t *testing.T) {
	store := setupTestStore(t)
	seedStore(t, store)
	mgr := New(store)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, mgr.Create(ctx, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.True(t, mgr.Verify(ctx, path))
}

func TestCreateRefusesExistingTarget(t *testing.T) {
	store := setupTestStore(t)
	mgr := New(store)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, mgr.Create(ctx, path))
	assert.ErrorIs(t, mgr.Create(ctx, path), ErrBackupExists)
}

func TestCreateRefusesDuringTransaction(t *testing.T) {
	store := setupTestStore(t)
	mgr := New(store)
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx))
	defer func() { _ = store.Rollback() }()

	err := mgr.Create(ctx, filepath.Join(t.TempDir(), "backup.db"))
	assert.ErrorIs(t, err, ErrTransactionOpen)
}

func TestVerifyNeverErrors(t *testing.T) {
	store := setupTestStore(t)
	mgr := New(store)
	ctx := context.Background()
	dir := t.TempDir()

	// Missing file.
	assert.False(t, mgr.Verify(ctx, filepath.Join(dir, "nope.db")))

	// Directory.
	assert.False(t, mgr.Verify(ctx, dir))

	// Empty file.
	empty := filepath.Join(dir, "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.False(t, mgr.Verify(ctx, empty))

	// Garbage bytes.
	garbage := filepath.Join(dir, "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a database, not even close"), 0o644))
	assert.False(t, mgr.Verify(ctx, garbage))
}

func TestRestore(t *testing.T) {
	store := setupTestStore(t)
	seedStore(t, store)
	mgr := New(store)
	ctx := context.Background()

	wantConcepts, err := store.CountConcepts(ctx)
	require.NoError(t, err)
	wantRels, err := store.CountRelationships(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, mgr.Create(ctx, path))

	// Mutate after the snapshot.
	extraID, err := store.Store(ctx, "wrath", "biblical")
	require.NoError(t, err)
	_, err = store.StoreSacredNumber(ctx, 12)
	require.NoError(t, err)

	require.NoError(t, mgr.Restore(ctx, path))

	gotConcepts, err := store.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantConcepts, gotConcepts)

	gotRels, err := store.CountRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantRels, gotRels)

	_, err = store.Get(ctx, "wrath", "biblical")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.CoordinateByID(ctx, extraID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	nums, err := store.ListSacredNumbers(ctx)
	require.NoError(t, err)
	assert.Len(t, nums, 1)
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	store := setupTestStore(t)
	mgr := New(store)
	ctx := context.Background()

	garbage := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte("junk"), 0o644))

	err := mgr.Restore(ctx, garbage)
	assert.ErrorIs(t, err, ErrInvalidBackup)

	// The failed restore left nothing behind.
	count, err := store.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSnapshotRoundTrip(t *testing.T) {
	source := setupTestStore(t)
	seedStore(t, source)
	ctx := context.Background()

	snap, err := New(source).Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.SnapshotVersion, snap.Metadata.Version)
	assert.Equal(t, len(snap.Concepts), snap.Metadata.Concepts)
	assert.Equal(t, len(snap.Relationships), snap.Metadata.Relationships)

	target := setupTestStore(t)
	require.NoError(t, New(target).RestoreSnapshot(ctx, snap))

	restored, err := New(target).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, restored.Concepts, len(snap.Concepts))
	for i, want := range snap.Concepts {
		got := restored.Concepts[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Text, got.Text)
		assert.Equal(t, want.Context, got.Context)
		assert.Equal(t, want.Coordinate, got.Coordinate)
	}
	assert.Equal(t, snap.Relationships, restored.Relationships)
	assert.Equal(t, snap.SacredNumbers, restored.SacredNumbers)
	assert.Equal(t, snap.Anchors, restored.Anchors)
}

func TestRestoreSnapshotVersionCheck(t *testing.T) {
	store := setupTestStore(t)
	mgr := New(store)
	ctx := context.Background()

	err := mgr.RestoreSnapshot(ctx, &types.Snapshot{
		Metadata: types.SnapshotMetadata{Version: "2.0.0"},
	})
	assert.Error(t, err)

	err = mgr.RestoreSnapshot(ctx, &types.Snapshot{
		Metadata: types.SnapshotMetadata{Version: "not-a-version"},
	})
	assert.Error(t, err)
}

func TestExportAndRestoreJSON(t *testing.T) {
	store := setupTestStore(t)
	seedStore(t, store)
	mgr := New(store)
	ctx := context.Background()

	wantConcepts, err := store.CountConcepts(ctx)
	require.NoError(t, err)
	wantRels, err := store.CountRelationships(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, mgr.ExportJSON(ctx, path))

	// Mutate, then restore the export.
	_, err = store.Store(ctx, "folly", "biblical")
	require.NoError(t, err)

	require.NoError(t, mgr.RestoreJSON(ctx, path))

	gotConcepts, err := store.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantConcepts, gotConcepts)

	gotRels, err := store.CountRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantRels, gotRels)

	_, err = store.Get(ctx, "folly", "biblical")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestoreJSONBadFile(t *testing.T) {
	store := setupTestStore(t)
	mgr := New(store)
	ctx := context.Background()

	assert.Error(t, mgr.RestoreJSON(ctx, filepath.Join(t.TempDir(), "missing.json")))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	assert.Error(t, mgr.RestoreJSON(ctx, bad))
}

func TestAutoRotation(t *testing.T) {
	store := setupTestStore(t)
	seedStore(t, store)
	mgr := New(store)
	ctx := context.Background()
	dir := t.TempDir()

	var last string
	for i := 0; i < 3; i++ {
		path, err := mgr.Auto(ctx, dir, 2)
		require.NoError(t, err)
		assert.True(t, mgr.Verify(ctx, path))
		last = path
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// The newest backup survives pruning.
	_, err = os.Stat(last)
	assert.NoError(t, err)
}

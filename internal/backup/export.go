package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/dshills/semspace/pkg/types"
)

// Snapshot reads every logical table into an interchange document. The
// reads run inside one transaction so the document is a consistent view
// even while other writers exist.
func (m *Manager) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	if m.store.InTransaction() {
		return nil, ErrTransactionOpen
	}

	snap := &types.Snapshot{}
	err := m.store.Atomic(ctx, func() error {
		var err error
		if snap.Concepts, err = m.store.ListConcepts(ctx, ""); err != nil {
			return err
		}
		if snap.SacredNumbers, err = m.store.ListSacredNumbers(ctx); err != nil {
			return err
		}
		if snap.Anchors, err = m.store.ListAnchors(ctx); err != nil {
			return err
		}
		if snap.Relationships, err = m.store.ListRelationships(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot: %w", err)
	}

	snap.Metadata = types.SnapshotMetadata{
		Version:       types.SnapshotVersion,
		ExportedAt:    time.Now().UTC(),
		Concepts:      len(snap.Concepts),
		SacredNumbers: len(snap.SacredNumbers),
		Anchors:       len(snap.Anchors),
		Relationships: len(snap.Relationships),
	}
	return snap, nil
}

// RestoreSnapshot replaces the store's contents with the snapshot. The
// wipe and all imports run in a single transaction; on any failure the
// store keeps its previous contents.
func (m *Manager) RestoreSnapshot(ctx context.Context, snap *types.Snapshot) error {
	if m.store.InTransaction() {
		return ErrTransactionOpen
	}
	if err := checkSnapshotVersion(snap.Metadata.Version); err != nil {
		return err
	}

	err := m.store.Atomic(ctx, func() error {
		if err := m.store.Wipe(ctx); err != nil {
			return err
		}
		for _, a := range snap.Anchors {
			if err := m.store.ImportAnchor(ctx, a); err != nil {
				return err
			}
		}
		for _, n := range snap.SacredNumbers {
			if err := m.store.ImportSacredNumber(ctx, n); err != nil {
				return err
			}
		}
		for _, c := range snap.Concepts {
			if err := m.store.ImportConcept(ctx, c); err != nil {
				return err
			}
		}
		for _, r := range snap.Relationships {
			if err := m.store.ImportRelationship(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	m.store.ClearCache()
	return nil
}

// checkSnapshotVersion accepts any snapshot sharing the current format's
// major version.
func checkSnapshotVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid snapshot version %q: %w", version, err)
	}
	current := semver.MustParse(types.SnapshotVersion)
	if v.Major() != current.Major() {
		return fmt.Errorf("unsupported snapshot version %s (current %s)", version, types.SnapshotVersion)
	}
	return nil
}

// ExportJSON writes the current snapshot to path as indented JSON.
func (m *Manager) ExportJSON(ctx context.Context, path string) error {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// RestoreJSON reads a snapshot document from path and restores it.
func (m *Manager) RestoreJSON(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return m.RestoreSnapshot(ctx, &snap)
}

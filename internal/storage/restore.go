package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/semspace/pkg/types"
)

// Row-level import primitives used by the backup manager to rebuild the
// store from an interchange snapshot. Unlike Store/StoreSacredNumber these
// preserve original ids, so they only make sense against a wiped store and
// inside the caller's transaction.

// Wipe deletes every row from every logical table. Anchors are re-imported
// by the snapshot, so they are cleared too.
func (s *Store) Wipe(ctx context.Context) error {
	// Relationship rows cascade from concepts, but delete explicitly so a
	// wipe works even with foreign keys disabled.
	for _, table := range []string{"relationships", "concepts", "sacred_numbers", "anchors"} {
		if _, err := s.querier().ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to wipe %s: %w", table, err)
		}
	}
	s.coordCache.Purge()
	return nil
}

// ImportConcept inserts a concept row preserving its id and timestamps.
func (s *Store) ImportConcept(ctx context.Context, c *types.Concept) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid concept %d: %w", c.ID, err)
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	query := `
		INSERT INTO concepts (id, text, context, love, justice, power, wisdom, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.querier().ExecContext(ctx, query,
		c.ID, c.Text, c.Context,
		c.Coordinate.Love, c.Coordinate.Justice, c.Coordinate.Power, c.Coordinate.Wisdom,
		serializeVector(c.Embedding), createdAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to import concept %d: %w", c.ID, err)
	}
	s.coordCache.Add(c.ID, c.Coordinate)
	return nil
}

// ImportSacredNumber inserts a sacred number row preserving its id.
func (s *Store) ImportSacredNumber(ctx context.Context, n *types.SacredNumber) error {
	query := `INSERT INTO sacred_numbers (id, value, is_sacred, resonance) VALUES (?, ?, ?, ?)`
	if _, err := s.querier().ExecContext(ctx, query, n.ID, n.Value, n.IsSacred, n.Resonance); err != nil {
		return fmt.Errorf("failed to import sacred number %v: %w", n.Value, err)
	}
	return nil
}

// ImportAnchor inserts an anchor row preserving its id.
func (s *Store) ImportAnchor(ctx context.Context, a *types.Anchor) error {
	query := `INSERT INTO anchors (id, name, love, justice, power, wisdom) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.querier().ExecContext(ctx, query,
		a.ID, a.Name,
		a.Coordinate.Love, a.Coordinate.Justice, a.Coordinate.Power, a.Coordinate.Wisdom,
	)
	if err != nil {
		return fmt.Errorf("failed to import anchor %s: %w", a.Name, err)
	}
	return nil
}

// ImportRelationship inserts an edge row.
func (s *Store) ImportRelationship(ctx context.Context, r *types.Relationship) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid relationship: %w", err)
	}
	query := `INSERT INTO relationships (concept_id, related_id, distance, strength, type) VALUES (?, ?, ?, ?, ?)`
	_, err := s.querier().ExecContext(ctx, query, r.ConceptID, r.RelatedID, r.Distance, r.Strength, string(r.Type))
	if err != nil {
		return fmt.Errorf("failed to import relationship %d->%d: %w", r.ConceptID, r.RelatedID, err)
	}
	return nil
}

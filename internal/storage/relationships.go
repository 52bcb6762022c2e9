package storage

import (
	"context"
	"fmt"

	"github.com/dshills/semspace/pkg/types"
)

// UpsertRelationship persists a directed edge. Re-inserting an existing
// ordered pair is a no-op. Reports whether the edge was new.
func (s *Store) UpsertRelationship(ctx context.Context, rel *types.Relationship) (bool, error) {
	if err := rel.Validate(); err != nil {
		return false, fmt.Errorf("invalid relationship: %w", err)
	}

	query := `
		INSERT INTO relationships (concept_id, related_id, distance, strength, type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(concept_id, related_id) DO NOTHING
	`
	result, err := s.querier().ExecContext(ctx, query,
		rel.ConceptID, rel.RelatedID, rel.Distance, rel.Strength, string(rel.Type))
	if err != nil {
		return false, fmt.Errorf("failed to upsert relationship: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const relationshipColumns = `concept_id, related_id, distance, strength, type`

// RelationshipsFor returns the outgoing edges of a concept, nearest first.
func (s *Store) RelationshipsFor(ctx context.Context, conceptID int64) ([]*types.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE concept_id = ? ORDER BY distance`
	return s.queryRelationships(ctx, query, conceptID)
}

// ListRelationships returns every edge ordered by endpoints.
func (s *Store) ListRelationships(ctx context.Context) ([]*types.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships ORDER BY concept_id, related_id`
	return s.queryRelationships(ctx, query)
}

// CountRelationships returns the total number of edges.
func (s *Store) CountRelationships(ctx context.Context) (int, error) {
	var count int
	err := s.querier().QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count relationships: %w", err)
	}
	return count, nil
}

func (s *Store) queryRelationships(ctx context.Context, query string, args ...interface{}) ([]*types.Relationship, error) {
	rows, err := s.querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rels := make([]*types.Relationship, 0)
	for rows.Next() {
		var r types.Relationship
		var typ string
		if err := rows.Scan(&r.ConceptID, &r.RelatedID, &r.Distance, &r.Strength, &typ); err != nil {
			return nil, err
		}
		r.Type = types.RelationType(typ)
		rels = append(rels, &r)
	}
	return rels, rows.Err()
}

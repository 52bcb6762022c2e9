package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dshills/semspace/pkg/types"
)

// GetAnchor retrieves a named anchor. Anchors are seeded at initialization
// and never mutated. Returns ErrNotFound for unknown names.
func (s *Store) GetAnchor(ctx context.Context, name string) (*types.Anchor, error) {
	query := `SELECT id, name, love, justice, power, wisdom FROM anchors WHERE name = ?`
	var a types.Anchor
	err := s.querier().QueryRowContext(ctx, query, name).Scan(
		&a.ID, &a.Name,
		&a.Coordinate.Love, &a.Coordinate.Justice, &a.Coordinate.Power, &a.Coordinate.Wisdom,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAnchors returns every anchor in seed order.
func (s *Store) ListAnchors(ctx context.Context) ([]*types.Anchor, error) {
	rows, err := s.querier().QueryContext(ctx, `SELECT id, name, love, justice, power, wisdom FROM anchors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list anchors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	anchors := make([]*types.Anchor, 0)
	for rows.Next() {
		var a types.Anchor
		err := rows.Scan(
			&a.ID, &a.Name,
			&a.Coordinate.Love, &a.Coordinate.Justice, &a.Coordinate.Power, &a.Coordinate.Wisdom,
		)
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, &a)
	}
	return anchors, rows.Err()
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/pkg/types"
)

// StoreSacredNumber inserts or explicitly overwrites a numeric value with
// its canonical-set membership and derived resonance.
func (s *Store) StoreSacredNumber(ctx context.Context, value float64) (*types.SacredNumber, error) {
	n := &types.SacredNumber{
		Value:     value,
		IsSacred:  coordinate.IsSacred(value),
		Resonance: coordinate.NumberResonance(value),
	}

	query := `
		INSERT INTO sacred_numbers (value, is_sacred, resonance)
		VALUES (?, ?, ?)
		ON CONFLICT(value) DO UPDATE SET
			is_sacred = excluded.is_sacred,
			resonance = excluded.resonance
		RETURNING id
	`
	err := s.querier().QueryRowContext(ctx, query, n.Value, n.IsSacred, n.Resonance).Scan(&n.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to store sacred number: %w", err)
	}
	return n, nil
}

// GetSacredNumber retrieves a stored numeric value. Returns ErrNotFound
// when absent.
func (s *Store) GetSacredNumber(ctx context.Context, value float64) (*types.SacredNumber, error) {
	query := `SELECT id, value, is_sacred, resonance FROM sacred_numbers WHERE value = ?`
	var n types.SacredNumber
	err := s.querier().QueryRowContext(ctx, query, value).Scan(&n.ID, &n.Value, &n.IsSacred, &n.Resonance)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListSacredNumbers returns every stored numeric value in insertion order.
func (s *Store) ListSacredNumbers(ctx context.Context) ([]*types.SacredNumber, error) {
	rows, err := s.querier().QueryContext(ctx, `SELECT id, value, is_sacred, resonance FROM sacred_numbers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sacred numbers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	numbers := make([]*types.SacredNumber, 0)
	for rows.Next() {
		var n types.SacredNumber
		if err := rows.Scan(&n.ID, &n.Value, &n.IsSacred, &n.Resonance); err != nil {
			return nil, err
		}
		numbers = append(numbers, &n)
	}
	return numbers, rows.Err()
}

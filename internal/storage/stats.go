package storage

import (
	"context"
	"fmt"
)

// Stats summarizes the store's durable state.
type Stats struct {
	Concepts      int
	SacredNumbers int
	Anchors       int
	Relationships int
	SizeMB        float64
}

// Stats collects table counts and the on-disk size.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM concepts", &stats.Concepts},
		{"SELECT COUNT(*) FROM sacred_numbers", &stats.SacredNumbers},
		{"SELECT COUNT(*) FROM anchors", &stats.Anchors},
		{"SELECT COUNT(*) FROM relationships", &stats.Relationships},
	}
	for _, c := range counts {
		if err := s.querier().QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to collect stats: %w", err)
		}
	}

	var pageCount, pageSize int
	if err := s.querier().QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.querier().QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return stats, nil
}

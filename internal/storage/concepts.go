package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/internal/embedder"
	"github.com/dshills/semspace/pkg/types"
)

// ConceptInput is one item of a batch store.
type ConceptInput struct {
	Text    string
	Context string
}

// Store upserts a concept keyed by (text, context). Coordinates (and the
// embedding, when a provider is configured) are recomputed on every call,
// overwriting prior values. Returns the concept's stable id.
func (s *Store) Store(ctx context.Context, text, contextName string) (int64, error) {
	text = strings.TrimSpace(text)
	contextName = strings.TrimSpace(contextName)
	if text == "" {
		return 0, fmt.Errorf("concept text cannot be empty")
	}

	coord := s.engine.Calculate(ctx, text, contextName)

	var blob []byte
	if s.emb != nil {
		// A provider failure degrades to a keyword-only concept rather
		// than failing the write.
		if emb, err := s.emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text}); err == nil {
			blob = serializeVector(emb.Vector)
		}
	}

	return s.upsertConcept(ctx, s.querier(), text, contextName, coord, blob)
}

func (s *Store) upsertConcept(ctx context.Context, q querier, text, contextName string, coord types.Coordinate, embeddingBlob []byte) (int64, error) {
	query := `
		INSERT INTO concepts (text, context, love, justice, power, wisdom, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(text, context) DO UPDATE SET
			love = excluded.love,
			justice = excluded.justice,
			power = excluded.power,
			wisdom = excluded.wisdom,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now().UTC()
	var id int64
	err := q.QueryRowContext(ctx, query,
		text, contextName,
		coord.Love, coord.Justice, coord.Power, coord.Wisdom,
		embeddingBlob, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert concept: %w", err)
	}

	s.coordCache.Add(id, coord)
	return id, nil
}

// BatchStore stores every input in a single transaction; any failure rolls
// the whole batch back.
func (s *Store) BatchStore(ctx context.Context, items []ConceptInput) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	err := s.Atomic(ctx, func() error {
		for _, item := range items {
			id, err := s.Store(ctx, item.Text, item.Context)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

const conceptColumns = `id, text, context, love, justice, power, wisdom, embedding, created_at, updated_at`

// Get retrieves a concept by its (text, context) key. Returns ErrNotFound
// when no such concept exists. Derived metrics are computed fresh on every
// read, never persisted.
func (s *Store) Get(ctx context.Context, text, contextName string) (*types.Concept, error) {
	query := `SELECT ` + conceptColumns + ` FROM concepts WHERE text = ? AND context = ?`
	row := s.querier().QueryRowContext(ctx, query, strings.TrimSpace(text), strings.TrimSpace(contextName))
	return scanConcept(row)
}

// GetByID retrieves a concept by id. Returns ErrNotFound when missing.
func (s *Store) GetByID(ctx context.Context, id int64) (*types.Concept, error) {
	query := `SELECT ` + conceptColumns + ` FROM concepts WHERE id = ?`
	row := s.querier().QueryRowContext(ctx, query, id)
	return scanConcept(row)
}

// CoordinateByID resolves a concept's coordinate, serving repeated lookups
// from the in-memory cache.
func (s *Store) CoordinateByID(ctx context.Context, id int64) (types.Coordinate, error) {
	if coord, ok := s.coordCache.Get(id); ok {
		return coord, nil
	}
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return types.Coordinate{}, err
	}
	s.coordCache.Add(id, c.Coordinate)
	return c.Coordinate, nil
}

// ListConcepts returns concepts in insertion order. An empty contextName
// selects every context.
func (s *Store) ListConcepts(ctx context.Context, contextName string) ([]*types.Concept, error) {
	query := `SELECT ` + conceptColumns + ` FROM concepts`
	args := []interface{}{}
	if contextName != "" {
		query += ` WHERE context = ?`
		args = append(args, contextName)
	}
	query += ` ORDER BY id`

	rows, err := s.querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	concepts := make([]*types.Concept, 0)
	for rows.Next() {
		c, err := scanConceptRow(rows)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// CountConcepts returns the total number of stored concepts.
func (s *Store) CountConcepts(ctx context.Context) (int, error) {
	var count int
	err := s.querier().QueryRowContext(ctx, "SELECT COUNT(*) FROM concepts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count concepts: %w", err)
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for concept scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConcept(row *sql.Row) (*types.Concept, error) {
	c, err := scanConceptFrom(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

func scanConceptRow(rows *sql.Rows) (*types.Concept, error) {
	return scanConceptFrom(rows)
}

func scanConceptFrom(sc rowScanner) (*types.Concept, error) {
	var c types.Concept
	var blob []byte
	err := sc.Scan(
		&c.ID, &c.Text, &c.Context,
		&c.Coordinate.Love, &c.Coordinate.Justice, &c.Coordinate.Power, &c.Coordinate.Wisdom,
		&blob, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		c.Embedding = deserializeVector(blob)
	}
	fillDerived(&c)
	return &c, nil
}

// fillDerived recomputes the derived metrics from the coordinate.
func fillDerived(c *types.Concept) {
	c.AnchorDistance = coordinate.Distance(c.Coordinate, types.PrimaryAnchor)
	c.Resonance = coordinate.Resonance(c.Coordinate)
	c.Balance = coordinate.Balance(c.Coordinate)
}

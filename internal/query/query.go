package query

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/internal/embedder"
	"github.com/dshills/semspace/internal/storage"
	"github.com/dshills/semspace/pkg/types"
)

// Mode identifies how a semantic search was satisfied.
type Mode string

const (
	// ModeEmbedding ranks by embedding cosine similarity.
	ModeEmbedding Mode = "embedding"
	// ModeCoordinate degrades to coordinate proximity.
	ModeCoordinate Mode = "coordinate"
)

// Result is one matched concept together with the metric that justified
// its inclusion. Distance is set for proximity and anchor searches, Score
// for resonance and semantic searches.
type Result struct {
	Concept  *types.Concept
	Distance float64
	Score    float64
	Mode     Mode
}

// Options narrows a search.
type Options struct {
	// Context restricts results to one scoring context; empty means all.
	Context string
	// Limit caps the result count; <= 0 means unlimited.
	Limit int
}

// Engine runs distance-based retrieval over a concept store. Reads observe
// the last committed state; an empty result set is valid, never an error.
type Engine struct {
	store *storage.Store
}

// New creates a query engine over a store.
func New(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// Proximity returns concepts within maxDistance of target, ascending by
// distance, ties broken by insertion order. A target equal to a stored
// concept's own coordinates yields that concept first at distance 0.
func (e *Engine) Proximity(ctx context.Context, target types.Coordinate, maxDistance float64, opts Options) ([]Result, error) {
	concepts, err := e.store.ListConcepts(ctx, opts.Context)
	if err != nil {
		return nil, fmt.Errorf("proximity search: %w", err)
	}

	results := make([]Result, 0)
	for _, c := range concepts {
		d := coordinate.Distance(target, c.Coordinate)
		if d <= maxDistance {
			results = append(results, Result{Concept: c, Distance: d})
		}
	}
	// Stable sort preserves insertion order for equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return truncate(results, opts.Limit), nil
}

// ProximityToConcept runs a proximity search centered on a stored
// concept's own coordinates, resolved through the coordinate cache.
func (e *Engine) ProximityToConcept(ctx context.Context, conceptID int64, maxDistance float64, opts Options) ([]Result, error) {
	target, err := e.store.CoordinateByID(ctx, conceptID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Result{}, nil
		}
		return nil, err
	}
	return e.Proximity(ctx, target, maxDistance, opts)
}

// ByResonance returns concepts with resonance >= minResonance, descending
// by resonance.
func (e *Engine) ByResonance(ctx context.Context, minResonance float64, opts Options) ([]Result, error) {
	concepts, err := e.store.ListConcepts(ctx, opts.Context)
	if err != nil {
		return nil, fmt.Errorf("resonance search: %w", err)
	}

	results := make([]Result, 0)
	for _, c := range concepts {
		if c.Resonance >= minResonance {
			results = append(results, Result{Concept: c, Score: c.Resonance})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return truncate(results, opts.Limit), nil
}

// NearAnchor returns concepts nearest a named anchor, ascending by
// distance. An unknown anchor name yields an empty result.
func (e *Engine) NearAnchor(ctx context.Context, anchorName string, maxDistance float64, limit int) ([]Result, error) {
	anchor, err := e.store.GetAnchor(ctx, anchorName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Result{}, nil
		}
		return nil, fmt.Errorf("anchor search: %w", err)
	}
	return e.Proximity(ctx, anchor.Coordinate, maxDistance, Options{Limit: limit})
}

// Semantic ranks concepts against query text. When an embedding provider
// is configured and stored concepts carry vectors, it ranks by cosine
// similarity; otherwise it computes the query's own coordinates and
// degrades to proximity search with the full-space radius.
func (e *Engine) Semantic(ctx context.Context, queryText string, limit int) ([]Result, error) {
	emb := e.store.Engine().Embedder()
	if emb != nil {
		results, err := e.semanticByEmbedding(ctx, emb, queryText, limit)
		if err == nil && results != nil {
			return results, nil
		}
		// Provider failure or no stored vectors: fall through to the
		// coordinate path rather than failing the search.
	}

	target := e.store.Engine().Calculate(ctx, queryText, "")
	results, err := e.Proximity(ctx, target, coordinate.MaxDistance, Options{Limit: limit})
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Mode = ModeCoordinate
	}
	return results, nil
}

// semanticByEmbedding returns nil results (no error) when no stored
// concept carries an embedding, signaling the caller to degrade.
func (e *Engine) semanticByEmbedding(ctx context.Context, emb embedder.Embedder, queryText string, limit int) ([]Result, error) {
	queryEmb, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: queryText})
	if err != nil {
		return nil, err
	}

	concepts, err := e.store.ListConcepts(ctx, "")
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0)
	for _, c := range concepts {
		if len(c.Embedding) == 0 {
			continue
		}
		score := embedder.CosineSimilarity(queryEmb.Vector, c.Embedding)
		results = append(results, Result{Concept: c, Score: score, Mode: ModeEmbedding})
	}
	if len(results) == 0 {
		return nil, nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return truncate(results, limit), nil
}

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

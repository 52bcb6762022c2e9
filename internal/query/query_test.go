package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/internal/embedder"
	"github.com/dshills/semspace/internal/storage"
	"github.com/dshills/semspace/pkg/types"
)

func setupTestStore(t *testing.T, opts *storage.Options) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:", opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustStore(t *testing.T, store *storage.Store, text, contextName string) int64 {
	t.Helper()
	id, err := store.Store(context.Background(), text, contextName)
	require.NoError(t, err)
	return id
}

func TestProximityOrdering(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	loveID := mustStore(t, store, "love", "biblical")
	mustStore(t, store, "compassion", "biblical")
	mustStore(t, store, "power", "biblical")

	target := store.Engine().Calculate(ctx, "love", "biblical")
	results, err := engine.Proximity(ctx, target, coordinate.MaxDistance, Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The concept at the target's own coordinates comes first at distance 0.
	assert.Equal(t, loveID, results[0].Concept.ID)
	assert.Equal(t, 0.0, results[0].Distance)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
	assert.Equal(t, "power", results[2].Concept.Text)
}

func TestProximityTiesByInsertionOrder(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	// "kindness" carries the same weights in the biblical and general
	// profiles, so both concepts land on identical coordinates.
	first := mustStore(t, store, "kindness", "biblical")
	second := mustStore(t, store, "kindness", "general")

	target := store.Engine().Calculate(ctx, "kindness", "biblical")
	results, err := engine.Proximity(ctx, target, 0.001, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first, results[0].Concept.ID)
	assert.Equal(t, second, results[1].Concept.ID)
}

func TestProximityRadius(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "love", "biblical")
	mustStore(t, store, "power", "biblical")

	target := store.Engine().Calculate(ctx, "love", "biblical")
	results, err := engine.Proximity(ctx, target, 0.1, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "love", results[0].Concept.Text)
}

func TestProximityContextFilter(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "love", "biblical")
	mustStore(t, store, "care", "ethical")

	results, err := engine.Proximity(ctx, types.Midpoint, coordinate.MaxDistance, Options{Context: "ethical"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "care", results[0].Concept.Text)
}

func TestProximityEmptyStore(t *testing.T) {
	store := setupTestStore(t, nil)
	results, err := New(store).Proximity(context.Background(), types.Midpoint, coordinate.MaxDistance, Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProximityToConcept(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	loveID := mustStore(t, store, "love", "biblical")
	mustStore(t, store, "compassion", "biblical")

	results, err := engine.ProximityToConcept(ctx, loveID, coordinate.MaxDistance, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, loveID, results[0].Concept.ID)

	// Unknown id is an empty result, not an error.
	results, err = engine.ProximityToConcept(ctx, 99999, coordinate.MaxDistance, Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoveAndJusticeScenario(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	loveID := mustStore(t, store, "love", "biblical")
	justiceID := mustStore(t, store, "justice", "biblical")

	love, err := store.GetByID(ctx, loveID)
	require.NoError(t, err)
	justice, err := store.GetByID(ctx, justiceID)
	require.NoError(t, err)

	// Distinct virtues, distinct dominant axes.
	assert.Greater(t, love.Coordinate.Love, justice.Coordinate.Love)
	assert.Greater(t, justice.Coordinate.Justice, love.Coordinate.Justice)

	// Related but not identical: each finds the other within a moderate
	// radius.
	results, err := engine.ProximityToConcept(ctx, loveID, 0.6, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, justiceID, results[1].Concept.ID)
	assert.Greater(t, results[1].Distance, 0.2)
}

func TestByResonanceDescending(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "sin", "biblical")
	mustStore(t, store, "steadfast love and wisdom", "biblical")
	mustStore(t, store, "kindness", "biblical")

	results, err := engine.ByResonance(ctx, 0, Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
	// The virtue-rich concept outranks the negative one.
	assert.Equal(t, "steadfast love and wisdom", results[0].Concept.Text)
	assert.Equal(t, "sin", results[2].Concept.Text)
}

func TestByResonanceThreshold(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "sin wrath folly", "biblical")
	mustStore(t, store, "steadfast love and wisdom", "biblical")

	results, err := engine.ByResonance(ctx, 0.6, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Score, 0.6)
}

func TestNearAnchor(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "steadfast love and wisdom and justice and glory", "biblical")
	mustStore(t, store, "folly", "biblical")

	results, err := engine.NearAnchor(ctx, "primary", coordinate.MaxDistance, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Nearest to the all-ones corner first.
	assert.Equal(t, "steadfast love and wisdom and justice and glory", results[0].Concept.Text)
}

func TestNearAnchorUnknown(t *testing.T) {
	store := setupTestStore(t, nil)
	mustStore(t, store, "love", "biblical")

	results, err := New(store).NearAnchor(context.Background(), "no-such-anchor", coordinate.MaxDistance, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSemanticCoordinateFallback(t *testing.T) {
	// No embedder configured: semantic search degrades to proximity over
	// the query's own coordinates.
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "love", "general")
	mustStore(t, store, "power", "general")

	results, err := engine.Semantic(ctx, "love and kindness", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, ModeCoordinate, results[0].Mode)
	assert.Equal(t, "love", results[0].Concept.Text)
}

func TestSemanticEmbeddingPreferred(t *testing.T) {
	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	store := setupTestStore(t, &storage.Options{
		Engine:   coordinate.NewEngineWithEmbedder(emb),
		Embedder: emb,
	})
	engine := New(store)
	ctx := context.Background()

	mustStore(t, store, "love", "general")
	mustStore(t, store, "justice", "general")

	// Stored concepts carry vectors, so the embedding path wins. The local
	// provider is hash-based: the best match for "love" is "love" itself.
	results, err := engine.Semantic(ctx, "love", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ModeEmbedding, results[0].Mode)
	assert.Equal(t, "love", results[0].Concept.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)
}

func TestLimit(t *testing.T) {
	store := setupTestStore(t, nil)
	engine := New(store)
	ctx := context.Background()

	for _, text := range []string{"love", "mercy", "grace", "kindness"} {
		mustStore(t, store, text, "biblical")
	}

	results, err := engine.Proximity(ctx, types.Midpoint, coordinate.MaxDistance, Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

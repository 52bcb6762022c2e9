package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/semspace/internal/storage"
)

func setupTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedCluster stores four tightly grouped virtue concepts and one distant
// outlier, returning the outlier's id.
func seedCluster(t *testing.T, store *storage.Store) int64 {
	t.Helper()
	ctx := context.Background()
	for _, text := range []string{"love", "compassion", "mercy", "grace"} {
		_, err := store.Store(ctx, text, "biblical")
		require.NoError(t, err)
	}
	outlier, err := store.Store(ctx, "power", "biblical")
	require.NoError(t, err)
	return outlier
}

func TestDiscover(t *testing.T) {
	store := setupTestStore(t)
	outlier := seedCluster(t, store)
	ctx := context.Background()

	created, err := New(store).Discover(ctx, Options{
		MaxDistance:      0.3,
		MaxRelationships: 3,
	})
	require.NoError(t, err)
	// Four cluster members fully linked, the outlier untouched.
	assert.Equal(t, 6, created)

	count, err := store.CountRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	rels, err := store.ListRelationships(ctx)
	require.NoError(t, err)
	for _, r := range rels {
		assert.NotEqual(t, outlier, r.ConceptID)
		assert.NotEqual(t, outlier, r.RelatedID)
		assert.LessOrEqual(t, r.Distance, 0.3)
		assert.InDelta(t, 1/(1+r.Distance), r.Strength, 1e-12)
	}
}

func TestDiscoverIdempotent(t *testing.T) {
	store := setupTestStore(t)
	seedCluster(t, store)
	ctx := context.Background()

	opts := Options{MaxDistance: 0.3, MaxRelationships: 3}
	first, err := New(store).Discover(ctx, opts)
	require.NoError(t, err)
	assert.Greater(t, first, 0)

	second, err := New(store).Discover(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	count, err := store.CountRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, count)
}

func TestDiscoverNeighborCap(t *testing.T) {
	store := setupTestStore(t)
	seedCluster(t, store)
	ctx := context.Background()

	// With one neighbor per concept, the cluster contributes its mutual
	// nearest-neighbor pairs only.
	created, err := New(store).Discover(ctx, Options{
		MaxDistance:      0.3,
		MaxRelationships: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	rels, err := store.ListRelationships(ctx)
	require.NoError(t, err)
	perConcept := make(map[int64]int)
	for _, r := range rels {
		perConcept[r.ConceptID]++
		perConcept[r.RelatedID]++
	}
	for id, degree := range perConcept {
		assert.LessOrEqual(t, degree, 2, "concept %d over-linked", id)
	}
}

func TestDiscoverTooFewConcepts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := New(store).Discover(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	_, err = store.Store(ctx, "love", "biblical")
	require.NoError(t, err)
	created, err = New(store).Discover(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestDiscoverRefusesInsideTransaction(t *testing.T) {
	store := setupTestStore(t)
	seedCluster(t, store)
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx))
	defer func() { _ = store.Rollback() }()

	_, err := New(store).Discover(ctx, Options{})
	assert.Error(t, err)
}

func TestDiscoverContextScope(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"love", "mercy"} {
		_, err := store.Store(ctx, text, "biblical")
		require.NoError(t, err)
	}
	for _, text := range []string{"care", "empathy"} {
		_, err := store.Store(ctx, text, "ethical")
		require.NoError(t, err)
	}

	created, err := New(store).Discover(ctx, Options{Context: "biblical", MaxDistance: 0.3})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestClusters(t *testing.T) {
	store := setupTestStore(t)
	seedCluster(t, store)

	clusters, err := New(store).Clusters(context.Background(), ClusterOptions{
		MaxDistance:    0.3,
		MinClusterSize: 2,
	})
	require.NoError(t, err)
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	assert.Equal(t, 4, cluster.Size())
	// A virtue cluster centers high on the love axis.
	assert.Greater(t, cluster.Centroid.Love, 0.8)
	assert.True(t, cluster.Centroid.Valid())

	texts := make(map[string]bool)
	for _, m := range cluster.Members {
		texts[m.Text] = true
	}
	assert.True(t, texts["love"] && texts["compassion"] && texts["mercy"] && texts["grace"])
	assert.False(t, texts["power"])
}

func TestClustersSizeFilter(t *testing.T) {
	store := setupTestStore(t)
	seedCluster(t, store)

	clusters, err := New(store).Clusters(context.Background(), ClusterOptions{
		MaxDistance:    0.3,
		MinClusterSize: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestClustersEmptyStore(t *testing.T) {
	store := setupTestStore(t)
	clusters, err := New(store).Clusters(context.Background(), ClusterOptions{})
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

package discovery

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/internal/storage"
	"github.com/dshills/semspace/pkg/types"
)

// Options controls a discovery run.
type Options struct {
	// Context restricts the scope to one scoring context; empty means all.
	Context string
	// MaxDistance is the furthest pair worth linking.
	MaxDistance float64
	// MaxRelationships caps the neighbors kept per concept.
	MaxRelationships int
}

// DefaultOptions returns the values used when a field is unset.
func DefaultOptions() Options {
	return Options{
		MaxDistance:      0.5,
		MaxRelationships: 10,
	}
}

// Discoverer builds the derived concept-to-concept graph. A run is O(n^2)
// over the scoped catalog, which is acceptable at thousands of concepts; a
// spatial index over the 4D space is a possible extension if catalogs grow
// past that.
type Discoverer struct {
	store   *storage.Store
	workers int
}

// New creates a discoverer over a store.
func New(store *storage.Store) *Discoverer {
	return &Discoverer{
		store:   store,
		workers: runtime.NumCPU(),
	}
}

// neighbor is one candidate edge endpoint.
type neighbor struct {
	id       int64
	distance float64
}

// Discover computes pairwise distances within scope, keeps up to
// MaxRelationships nearest neighbors per concept within MaxDistance, and
// persists each surviving pair once as a directed edge with
// strength = 1/(1+distance). Returns the count of newly inserted edges;
// re-discovering existing edges is a no-op.
func (d *Discoverer) Discover(ctx context.Context, opts Options) (int, error) {
	if d.store.InTransaction() {
		return 0, fmt.Errorf("discovery cannot run inside an open transaction")
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultOptions().MaxDistance
	}
	if opts.MaxRelationships <= 0 {
		opts.MaxRelationships = DefaultOptions().MaxRelationships
	}

	concepts, err := d.store.ListConcepts(ctx, opts.Context)
	if err != nil {
		return 0, fmt.Errorf("discovery: %w", err)
	}
	if len(concepts) < 2 {
		return 0, nil
	}

	neighbors := d.nearestNeighbors(ctx, concepts, opts)

	// Persist in insertion order, skipping duplicate undirected pairs so
	// at most one edge exists per pair across the whole run.
	type pairKey struct{ lo, hi int64 }
	seen := make(map[pairKey]bool)
	created := 0

	err = d.store.Atomic(ctx, func() error {
		for _, c := range concepts {
			for _, n := range neighbors[c.ID] {
				key := pairKey{lo: c.ID, hi: n.id}
				if key.lo > key.hi {
					key.lo, key.hi = key.hi, key.lo
				}
				if seen[key] {
					continue
				}
				seen[key] = true

				inserted, err := d.store.UpsertRelationship(ctx, &types.Relationship{
					ConceptID: c.ID,
					RelatedID: n.id,
					Distance:  n.distance,
					Strength:  1 / (1 + n.distance),
					Type:      types.RelationProximity,
				})
				if err != nil {
					return err
				}
				if inserted {
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// nearestNeighbors computes each concept's capped neighbor list, sharding
// the O(n^2) scan across workers. Pure in-memory computation; safe to run
// concurrently against loaded rows.
func (d *Discoverer) nearestNeighbors(ctx context.Context, concepts []*types.Concept, opts Options) map[int64][]neighbor {
	lists := make([][]neighbor, len(concepts))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i := range concepts {
		i := i
		g.Go(func() error {
			self := concepts[i]
			candidates := make([]neighbor, 0)
			for j, other := range concepts {
				if i == j {
					continue
				}
				dist := coordinate.Distance(self.Coordinate, other.Coordinate)
				if dist <= opts.MaxDistance {
					candidates = append(candidates, neighbor{id: other.ID, distance: dist})
				}
			}
			sort.SliceStable(candidates, func(a, b int) bool {
				return candidates[a].distance < candidates[b].distance
			})
			if len(candidates) > opts.MaxRelationships {
				candidates = candidates[:opts.MaxRelationships]
			}
			lists[i] = candidates
			return nil
		})
	}
	// Workers never return errors; Wait just synchronizes.
	_ = g.Wait()

	byID := make(map[int64][]neighbor, len(concepts))
	for i, c := range concepts {
		byID[c.ID] = lists[i]
	}
	return byID
}

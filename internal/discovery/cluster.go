package discovery

import (
	"context"
	"fmt"
	"sort"

	"github.com/dshills/semspace/internal/coordinate"
	"github.com/dshills/semspace/pkg/types"
)

// ClusterOptions controls cluster extraction.
type ClusterOptions struct {
	// Context restricts the scope; empty means all.
	Context string
	// MaxDistance links two concepts into the same component.
	MaxDistance float64
	// MinClusterSize drops components below this size.
	MinClusterSize int
}

// Cluster is one connected component at or above the size threshold.
type Cluster struct {
	Members  []*types.Concept
	Centroid types.Coordinate
}

// Size returns the member count.
func (c *Cluster) Size() int {
	return len(c.Members)
}

// Clusters builds the proximity graph and extracts its connected
// components. Component extraction was chosen over fixed-k centroid
// partitioning: it needs no cluster-count guess and matches the edge
// semantics Discover persists. Clusters are returned largest first.
func (d *Discoverer) Clusters(ctx context.Context, opts ClusterOptions) ([]*Cluster, error) {
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultOptions().MaxDistance
	}
	if opts.MinClusterSize < 2 {
		opts.MinClusterSize = 2
	}

	concepts, err := d.store.ListConcepts(ctx, opts.Context)
	if err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}
	if len(concepts) == 0 {
		return []*Cluster{}, nil
	}

	// Union-find over concept indexes.
	parent := make([]int, len(concepts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			if coordinate.Distance(concepts[i].Coordinate, concepts[j].Coordinate) <= opts.MaxDistance {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]*types.Concept)
	for i, c := range concepts {
		root := find(i)
		groups[root] = append(groups[root], c)
	}

	clusters := make([]*Cluster, 0)
	for _, members := range groups {
		if len(members) < opts.MinClusterSize {
			continue
		}
		clusters = append(clusters, &Cluster{
			Members:  members,
			Centroid: centroid(members),
		})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size() > clusters[j].Size()
	})
	return clusters, nil
}

func centroid(members []*types.Concept) types.Coordinate {
	var sums [types.NumAxes]float64
	for _, m := range members {
		axes := m.Coordinate.Axes()
		for i := range sums {
			sums[i] += axes[i]
		}
	}
	for i := range sums {
		sums[i] /= float64(len(members))
	}
	return types.FromAxes(sums)
}

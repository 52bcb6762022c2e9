// Package discovery finds relationships between stored concepts based on
// coordinate proximity.
//
// Discover performs a pairwise scan over the concept set, keeps for each
// concept its nearest neighbors within a distance cap, and persists the
// resulting undirected edges in a single transaction. Edge strength decays
// with distance as 1/(1+d). The scan is sharded across workers; results
// are deterministic regardless of worker count.
//
// Clusters extracts connected components of the same proximity graph and
// reports each component's members and centroid.
package discovery

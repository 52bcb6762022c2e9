// Package query runs distance-based retrieval over the concept store:
// proximity within a radius, resonance thresholds, nearest-to-anchor, and
// semantic search.
//
// Semantic search prefers embedding cosine similarity when a provider is
// configured and stored concepts carry vectors; otherwise it computes the
// query's own coordinates and degrades to proximity search over the full
// space. Every result carries the concept's coordinate plus the metric
// that justified its inclusion, and an empty result set is a valid answer.
package query

// Package types defines the shared domain types for the semantic
// coordinate store: the four-axis Coordinate, stored Concepts, discovered
// Relationships, fixed Anchors, SacredNumbers, and the JSON interchange
// Snapshot format.
//
// Types here are plain data plus validation; all behavior lives in the
// internal packages that operate on them.
package types

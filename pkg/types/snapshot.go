package types

import "time"

// SnapshotVersion identifies the interchange document format.
const SnapshotVersion = "1.0.0"

// SnapshotMetadata describes an exported snapshot.
type SnapshotMetadata struct {
	Version       string    `json:"version"`
	ExportedAt    time.Time `json:"exported_at"`
	Concepts      int       `json:"concepts"`
	SacredNumbers int       `json:"sacred_numbers"`
	Anchors       int       `json:"anchors"`
	Relationships int       `json:"relationships"`
}

// Snapshot is the engine-independent interchange document holding every
// logical table. Top-level keys are order-independent.
type Snapshot struct {
	Metadata      SnapshotMetadata `json:"metadata"`
	Concepts      []*Concept       `json:"concepts"`
	SacredNumbers []*SacredNumber  `json:"sacred_numbers"`
	Anchors       []*Anchor        `json:"anchors"`
	Relationships []*Relationship  `json:"relationships"`
}

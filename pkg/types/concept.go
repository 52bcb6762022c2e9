package types

import (
	"errors"
	"strings"
	"time"
)

// Concept is a stored text fragment projected into the semantic space.
// The (Text, Context) pair is the unique key; storing the same pair again
// overwrites the previous coordinates (upsert), never partially updates.
type Concept struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Context string `json:"context"`

	Coordinate Coordinate `json:"coordinate"`
	Embedding  []float32  `json:"embedding,omitempty"`

	// Derived metrics, recomputed on every read. Never persisted.
	Resonance      float64 `json:"resonance"`
	Balance        float64 `json:"balance"`
	AnchorDistance float64 `json:"anchor_distance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the normalized (text, context) pair used as the upsert key.
func (c *Concept) Key() (text, context string) {
	return strings.TrimSpace(c.Text), strings.TrimSpace(c.Context)
}

// Validate checks the concept fields that storage requires.
func (c *Concept) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return errors.New("concept text cannot be empty")
	}
	if !c.Coordinate.Valid() {
		return errors.New("coordinate axes must be within [0, 1]")
	}
	return nil
}

// SacredNumber is a numeric value with canonical-set membership and a
// derived resonance score. Immutable once inserted except by explicit
// overwrite.
type SacredNumber struct {
	ID        int64   `json:"id"`
	Value     float64 `json:"value"`
	IsSacred  bool    `json:"is_sacred"`
	Resonance float64 `json:"resonance"`
}

// Anchor is a fixed, named seed point in the semantic space. Anchors are
// created at store initialization and never mutated.
type Anchor struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// RelationType tags how a relationship edge was produced.
type RelationType string

const (
	// RelationProximity marks edges discovered by pairwise distance.
	RelationProximity RelationType = "proximity"
	// RelationSemantic marks edges discovered by embedding similarity.
	RelationSemantic RelationType = "semantic"
)

// Relationship is a directed edge between two concepts. Strength decreases
// monotonically with distance. Self-loops are never stored and at most one
// edge exists per ordered pair.
type Relationship struct {
	ConceptID int64        `json:"concept_id"`
	RelatedID int64        `json:"related_id"`
	Distance  float64      `json:"distance"`
	Strength  float64      `json:"strength"`
	Type      RelationType `json:"type"`
}

// Validate checks edge invariants before persistence.
func (r *Relationship) Validate() error {
	if r.ConceptID == 0 || r.RelatedID == 0 {
		return errors.New("relationship endpoints are required")
	}
	if r.ConceptID == r.RelatedID {
		return errors.New("self-loops are not allowed")
	}
	if r.Distance < 0 {
		return errors.New("distance cannot be negative")
	}
	return nil
}

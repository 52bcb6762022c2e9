package coordinate

import (
	"math"

	"github.com/dshills/semspace/pkg/types"
)

// Derived metrics are stateless functions of coordinates. Every subsystem
// shares these formulas; profiles only vary the constant tables.

// Distance is the Euclidean distance between two coordinates in 4-space.
// The maximum possible distance in [0,1]^4 is 2.
func Distance(a, b types.Coordinate) float64 {
	aa, ba := a.Axes(), b.Axes()
	var sum float64
	for i := range aa {
		d := aa[i] - ba[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// MaxDistance is the largest possible distance between two points in the
// unit 4-cube.
const MaxDistance = 2.0

// Resonance is the normalized inverse distance to the primary anchor:
// 1 at the anchor, 0 at the far corner.
func Resonance(c types.Coordinate) float64 {
	r := 1 - Distance(c, types.PrimaryAnchor)/MaxDistance
	if r < 0 {
		return 0
	}
	return r
}

// Balance measures how evenly the four axes are developed: 1 for a uniform
// coordinate, approaching 0 as one axis dominates. The population standard
// deviation of four values in [0,1] is at most 0.5, which normalizes the
// result.
func Balance(c types.Coordinate) float64 {
	axes := c.Axes()
	var mean float64
	for _, v := range axes {
		mean += v
	}
	mean /= types.NumAxes

	var variance float64
	for _, v := range axes {
		d := v - mean
		variance += d * d
	}
	variance /= types.NumAxes

	b := 1 - math.Sqrt(variance)/0.5
	if b < 0 {
		return 0
	}
	return b
}

// Alignment is the cosine of the angle between a coordinate and the primary
// anchor: high when the axes pull in the anchor's direction regardless of
// magnitude. A zero coordinate has no direction and scores 0.
func Alignment(c types.Coordinate) float64 {
	axes := c.Axes()
	var dot, norm float64
	for _, v := range axes {
		dot += v
		norm += v * v
	}
	if norm == 0 {
		return 0
	}
	return dot / (math.Sqrt(norm) * MaxDistance)
}

// SelfAwareness blends wisdom with overall balance. A heuristic score, not
// a verified truth.
func SelfAwareness(c types.Coordinate) float64 {
	return 0.5*c.Wisdom + 0.5*Balance(c)
}

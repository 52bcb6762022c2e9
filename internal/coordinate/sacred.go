package coordinate

import "math"

// canonicalNumbers is the small fixed set treated as sacred. Membership is
// exact; resonance for other values decays with relative distance to the
// nearest member.
var canonicalNumbers = []float64{3, 7, 12, 40, 70}

// CanonicalNumbers returns a copy of the sacred number set.
func CanonicalNumbers() []float64 {
	out := make([]float64, len(canonicalNumbers))
	copy(out, canonicalNumbers)
	return out
}

// IsSacred reports whether v is a member of the canonical set.
func IsSacred(v float64) bool {
	for _, n := range canonicalNumbers {
		if v == n {
			return true
		}
	}
	return false
}

// NumberResonance scores a numeric value: 1 for canonical members, decaying
// toward 0 with relative distance to the nearest member. Heuristic only.
func NumberResonance(v float64) float64 {
	if IsSacred(v) {
		return 1
	}
	nearest := math.Inf(1)
	for _, n := range canonicalNumbers {
		if d := math.Abs(v-n) / n; d < nearest {
			nearest = d
		}
	}
	return 1 / (1 + nearest)
}

package types

// Axis identifies one of the four semantic dimensions.
type Axis int

const (
	AxisLove Axis = iota
	AxisJustice
	AxisPower
	AxisWisdom

	// NumAxes is the dimensionality of the semantic space.
	NumAxes = 4
)

func (a Axis) String() string {
	switch a {
	case AxisLove:
		return "love"
	case AxisJustice:
		return "justice"
	case AxisPower:
		return "power"
	case AxisWisdom:
		return "wisdom"
	default:
		return "unknown"
	}
}

// Coordinate is a point in the four-dimensional semantic space.
// Each axis value is clamped to [0, 1].
type Coordinate struct {
	Love    float64 `json:"love"`
	Justice float64 `json:"justice"`
	Power   float64 `json:"power"`
	Wisdom  float64 `json:"wisdom"`
}

// Midpoint is the neutral coordinate returned when no signal is available.
var Midpoint = Coordinate{Love: 0.5, Justice: 0.5, Power: 0.5, Wisdom: 0.5}

// PrimaryAnchor is the fixed reference point used for resonance.
var PrimaryAnchor = Coordinate{Love: 1, Justice: 1, Power: 1, Wisdom: 1}

// Axes returns the coordinate as an array in axis order.
func (c Coordinate) Axes() [NumAxes]float64 {
	return [NumAxes]float64{c.Love, c.Justice, c.Power, c.Wisdom}
}

// FromAxes builds a coordinate from an array in axis order.
func FromAxes(a [NumAxes]float64) Coordinate {
	return Coordinate{Love: a[0], Justice: a[1], Power: a[2], Wisdom: a[3]}
}

// Clamp returns a copy with every axis forced into [0, 1].
func (c Coordinate) Clamp() Coordinate {
	return Coordinate{
		Love:    clamp01(c.Love),
		Justice: clamp01(c.Justice),
		Power:   clamp01(c.Power),
		Wisdom:  clamp01(c.Wisdom),
	}
}

// Valid reports whether every axis is within [0, 1].
func (c Coordinate) Valid() bool {
	for _, v := range c.Axes() {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

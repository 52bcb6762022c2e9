// Package coordinate maps text onto the four-axis semantic space and
// provides the derived scalar metrics computed from coordinates.
//
// The engine is a deterministic keyword scorer: tokens and two-word phrases
// are matched against a context profile's weight table, signed per-axis
// contributions are summed, and each axis is squashed into [0, 1] with a
// bounded transform. With no signal the engine returns the neutral midpoint.
// When an embedding provider is attached, texts with no keyword signal fall
// back to cosine similarity against per-axis reference embeddings; the
// keyword scorer always takes precedence when it produces any signal.
//
// Context profiles are named configurations (keyword tables plus optional
// per-operation weighting factors) layered over one engine; there is no
// per-profile logic. Unknown profile names degrade to the general profile,
// and empty input degrades to the midpoint. Calculation never fails.
package coordinate

package coordinate

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/dshills/semspace/internal/embedder"
	"github.com/dshills/semspace/pkg/types"
)

// Engine computes four-axis coordinates for text. The zero-value Engine is
// not usable; construct with NewEngine or NewEngineWithEmbedder.
type Engine struct {
	profiles map[string]*Profile
	emb      embedder.Embedder

	// axisRefs holds lazily built reference embeddings, one per axis.
	axisRefs [types.NumAxes][]float32
}

// Reference passages embedded once per axis for the similarity fallback.
var axisReferenceTexts = [types.NumAxes]string{
	"love compassion mercy kindness care grace",
	"justice fairness righteousness law equity accountability",
	"power authority strength might sovereignty dominion",
	"wisdom understanding knowledge insight discernment truth",
}

// NewEngine creates an engine with the built-in profiles and no embedding
// fallback. Calculation is fully deterministic.
func NewEngine() *Engine {
	profiles := make(map[string]*Profile, len(builtinProfiles))
	for name, p := range builtinProfiles {
		profiles[name] = p
	}
	return &Engine{profiles: profiles}
}

// NewEngineWithEmbedder creates an engine that falls back to embedding
// similarity when the keyword scorer produces no signal.
func NewEngineWithEmbedder(emb embedder.Embedder) *Engine {
	e := NewEngine()
	e.emb = emb
	return e
}

// Embedder returns the attached embedding provider, or nil.
func (e *Engine) Embedder() embedder.Embedder {
	return e.emb
}

// Calculate maps (text, context) to a coordinate in [0,1]^4.
//
// The keyword path is pure: identical input always yields identical output,
// across processes and restarts. Empty or whitespace input, unknown context
// names, and embedding failures all degrade to safe defaults; Calculate
// never fails.
func (e *Engine) Calculate(ctx context.Context, text, contextName string) types.Coordinate {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return types.Midpoint
	}

	p := e.profile(contextName)
	sums, matched := scoreKeywords(p, tokens)
	if matched {
		return squash(sums)
	}

	if e.emb != nil {
		if coord, ok := e.embeddingFallback(ctx, text); ok {
			return coord
		}
	}
	return types.Midpoint
}

// scoreKeywords sums signed per-axis contributions for every unigram and
// adjacent-bigram match in the profile table.
func scoreKeywords(p *Profile, tokens []string) (sums [types.NumAxes]float64, matched bool) {
	for i, tok := range tokens {
		if w, ok := p.Keywords[tok]; ok {
			matched = true
			for a := range sums {
				sums[a] += w[a]
			}
		}
		if i+1 < len(tokens) {
			if w, ok := p.Keywords[tok+" "+tokens[i+1]]; ok {
				matched = true
				for a := range sums {
					sums[a] += w[a]
				}
			}
		}
	}
	return sums, matched
}

// squash maps each unbounded axis sum into [0,1]. tanh keeps repeated
// keywords from escaping range while preserving the neutral midpoint for a
// zero sum.
func squash(sums [types.NumAxes]float64) types.Coordinate {
	var axes [types.NumAxes]float64
	for i, s := range sums {
		axes[i] = 0.5 + 0.5*math.Tanh(s)
	}
	return types.FromAxes(axes).Clamp()
}

// embeddingFallback scores each axis by cosine similarity between the text
// embedding and a per-axis reference embedding.
func (e *Engine) embeddingFallback(ctx context.Context, text string) (types.Coordinate, bool) {
	if err := e.ensureAxisRefs(ctx); err != nil {
		return types.Coordinate{}, false
	}

	resp, err := e.emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
	if err != nil {
		return types.Coordinate{}, false
	}

	var axes [types.NumAxes]float64
	for i, ref := range e.axisRefs {
		sim := embedder.CosineSimilarity(resp.Vector, ref)
		// Map similarity [-1,1] onto the axis range.
		axes[i] = 0.5 + 0.5*sim
	}
	return types.FromAxes(axes).Clamp(), true
}

func (e *Engine) ensureAxisRefs(ctx context.Context) error {
	if e.axisRefs[0] != nil {
		return nil
	}
	resp, err := e.emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
		Texts: axisReferenceTexts[:],
	})
	if err != nil {
		return err
	}
	for i, emb := range resp.Embeddings {
		if i >= types.NumAxes {
			break
		}
		e.axisRefs[i] = emb.Vector
	}
	return nil
}

// ApplyWeighting multiplies a coordinate by the named operation's fixed
// per-axis factors from the profile's weighting table, re-clamped to [0,1].
// Unknown operations and profiles leave the coordinate unchanged.
func (e *Engine) ApplyWeighting(c types.Coordinate, contextName, operation string) types.Coordinate {
	p := e.profile(contextName)
	factors, ok := p.Weightings[operation]
	if !ok {
		return c
	}
	axes := c.Axes()
	for i := range axes {
		axes[i] *= factors[i]
	}
	return types.FromAxes(axes).Clamp()
}

// tokenize lowercases text and splits it on any non-letter, non-digit rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Package ranker scores corpus chunks against a query vector and returns
// the top results by cosine similarity.
package ranker

import (
	"errors"
	"math"
	"sort"

	"github.com/fernwehlabs/recalld/internal/corpus"
)

// DefaultTopK is the number of chunks retrieved per query unless
// configured otherwise.
const DefaultTopK = 5

// epsilon is added to the cosine denominator so degenerate (all-zero)
// vectors score 0 instead of dividing by zero. Numerical-stability
// constant, not a tunable.
const epsilon = 1e-8

// ErrNoCandidates is returned when Rank is called with no candidates.
// Callers are expected to check the empty-corpus precondition first; this
// error is a second line of defense, not a normal control-flow path.
var ErrNoCandidates = errors.New("no candidate chunks to rank")

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk corpus.Chunk
	Score float64
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of differing lengths score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)
}

// Rank scores every candidate against query and returns up to k results
// in descending score order. Ties keep the candidates' original order
// (stable sort), so identical inputs always produce identical output.
// Rank is a pure function of its inputs.
func Rank(query []float32, candidates []corpus.Chunk, k int) ([]ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if k <= 0 {
		k = DefaultTopK
	}

	scored := make([]ScoredChunk, len(candidates))
	for i, c := range candidates {
		scored[i] = ScoredChunk{
			Chunk: c,
			Score: CosineSimilarity(query, c.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Package embedder provides the vector-similarity collaborator the locator
// core optionally fuses into candidate scoring (spec.md §6.2). Vectors are
// L2-normalized so dot product equals cosine similarity, following the BGE
// convention for asymmetric retrieval: documents are embedded bare, queries
// get an instruction prefix.
package embedder

import (
	"context"
	"fmt"
	"math"
)

// Dim is the dimensionality every Embedder implementation must return.
// Windows and queries must share a single space for CosineSimilarity to
// be meaningful.
const Dim = 384

// QueryPrefix is prepended to search queries (never to document windows)
// per the BGE-small-en-v1.5 asymmetric retrieval convention.
const QueryPrefix = "Represent this sentence for searching relevant passages: "

// Embedder turns window/query text into L2-normalized vectors. The locator
// core never imports this package; the CLI embeds texts and hands
// locator.Locate a cosine-similarity closure for C5 vector fusion.
type Embedder interface {
	// Embed embeds a batch of document window texts, no instruction prefix.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds one search query, with the instruction prefix.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// L2Normalize scales v in-place to unit length. A near-zero vector is left
// unchanged rather than risk dividing by a vanishing norm.
func L2Normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm < 1e-10 {
		return
	}
	inv := float32(1.0 / norm)
	for i := range v {
		v[i] *= inv
	}
}

// CosineSimilarity computes the dot product of two equal-length vectors.
// Callers that already L2-normalize their vectors get true cosine
// similarity for free; this function itself does not normalize.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedder: dimension mismatch (%d vs %d)", len(a), len(b))
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot, nil
}

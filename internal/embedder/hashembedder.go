package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// HashEmbedder is a deterministic, network-free Embedder for tests and for
// the CLI when embedder.enabled is set. It has no semantic notion of
// similarity beyond shared tokens, but it is stable across runs and lets
// C5's vector-fusion code path exercise real cosine-similarity arithmetic
// without a model dependency.
type HashEmbedder struct{}

// NewHashEmbedder returns a ready-to-use HashEmbedder.
func NewHashEmbedder() *HashEmbedder { return &HashEmbedder{} }

// Embed implements Embedder.
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t)
	}
	return out, nil
}

// EmbedQuery implements Embedder.
func (h *HashEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return hashVector(QueryPrefix + query)[:Dim], nil
}

// hashVector builds a bag-of-words hashed vector: each lowercase token
// hashes into one dimension, bucket is incremented, then the whole vector
// is L2-normalized. Two texts sharing tokens land closer in cosine space
// than two that don't, which is enough signal for deterministic tests.
func hashVector(text string) []float32 {
	vec := make([]float32, Dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(tok))
		idx := binary.BigEndian.Uint32(sum[:4]) % uint32(Dim)
		vec[idx]++
	}
	L2Normalize(vec)
	return vec
}

var _ Embedder = (*HashEmbedder)(nil)

package embedder

import (
	"context"
	"testing"
)

func TestHashEmbedderIsDeterministic(t *testing.T) {
	h := NewHashEmbedder()
	ctx := context.Background()

	v1, err := h.Embed(ctx, []string{"General Conditions of the Contract"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	v2, err := h.Embed(ctx, []string{"General Conditions of the Contract"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(v1) != len(v2) {
		t.Fatalf("len(v1) = %d, len(v2) = %d", len(v1), len(v2))
	}
	for i := range v1[0] {
		if v1[0][i] != v2[0][i] {
			t.Errorf("Embed() not deterministic at index %d: %v != %v", i, v1[0][i], v2[0][i])
		}
	}
	if len(v1[0]) != Dim {
		t.Errorf("len(v1[0]) = %d, want %d", len(v1[0]), Dim)
	}
}

func TestHashEmbedderSimilarTextsScoreCloserThanUnrelatedText(t *testing.T) {
	h := NewHashEmbedder()
	ctx := context.Background()

	vecs, err := h.Embed(ctx, []string{
		"Division 1 General Requirements",
		"General Requirements Division One",
		"Appendix F Wage Rates",
	})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	simRelated, err := CosineSimilarity(vecs[0], vecs[1])
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	simUnrelated, err := CosineSimilarity(vecs[0], vecs[2])
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}

	if simRelated <= simUnrelated {
		t.Errorf("simRelated %v should exceed simUnrelated %v", simRelated, simUnrelated)
	}
}

func TestHashEmbedderEmbedQueryAppliesPrefix(t *testing.T) {
	h := NewHashEmbedder()
	ctx := context.Background()

	queryVec, err := h.EmbedQuery(ctx, "scope of work")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(queryVec) != Dim {
		t.Errorf("len(queryVec) = %d, want %d", len(queryVec), Dim)
	}

	plainVec, err := h.Embed(ctx, []string{QueryPrefix + "scope of work"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	for i := range queryVec {
		if plainVec[0][i] != queryVec[i] {
			t.Errorf("EmbedQuery() mismatch at index %d: %v != %v", i, queryVec[i], plainVec[0][i])
		}
	}
}

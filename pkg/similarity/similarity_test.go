package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/geoffsee/proseva-sub005/pkg/common"
)

func records(vectors ...[]float32) []common.EmbeddingRecord {
	out := make([]common.EmbeddingRecord, len(vectors))
	for i, v := range vectors {
		out[i] = common.EmbeddingRecord{
			Node:   common.Node{ID: int64(i + 1), Source: "va_code", SourceID: "s", NodeType: "section"},
			Vector: v,
		}
	}
	return out
}

func TestRankAll_CosineValues(t *testing.T) {
	b := []float32{0.9, 0.1, 0, 0}
	c := []float32{0, 0, 1, 0}
	d := []float32{0.5, 0.5, 0.5, 0.5}

	engine, err := NewEngine(records(b, c, d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query := []float32{1, 0, 0, 0}
	ranked, err := engine.RankAll(query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}

	// B, D, C by descending cosine.
	if ranked[0].Index != 0 || ranked[1].Index != 2 || ranked[2].Index != 1 {
		t.Fatalf("unexpected order: %+v", ranked)
	}

	wantB := 0.9 / math.Sqrt(0.82)
	if math.Abs(ranked[0].Score-wantB) > 1e-9 {
		t.Fatalf("cosine(A,B): got %v, want %v", ranked[0].Score, wantB)
	}
	if math.Abs(ranked[1].Score-0.5) > 1e-9 {
		t.Fatalf("cosine(A,D): got %v, want 0.5", ranked[1].Score)
	}
	if ranked[2].Score != 0 {
		t.Fatalf("cosine(A,C): got %v, want 0", ranked[2].Score)
	}
}

func TestRankAll_SelfSimilarity(t *testing.T) {
	a := []float32{1, 0, 0, 0}
	engine, err := NewEngine(records(a))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ranked, err := engine.RankAll(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ranked[0].Score-1.0) > 1e-9 {
		t.Fatalf("cosine(A,A): got %v, want 1.0", ranked[0].Score)
	}
}

func TestRankAll_DimensionMismatch(t *testing.T) {
	engine, err := NewEngine(records([]float32{1, 0, 0, 0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = engine.RankAll([]float32{1, 0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRankAll_ZeroVectors(t *testing.T) {
	engine, err := NewEngine(records(
		[]float32{0, 0, 0},
		[]float32{1, 0, 0},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Zero corpus vector never scores NaN.
	ranked, err := engine.RankAll([]float32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range ranked {
		if math.IsNaN(r.Score) {
			t.Fatal("unexpected NaN score")
		}
	}
	if ranked[0].Index != 1 || ranked[0].Score != 1.0 {
		t.Fatalf("unexpected top result: %+v", ranked[0])
	}

	// Zero query scores 0 against everything, corpus order preserved.
	ranked, err = engine.RankAll([]float32{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range ranked {
		if r.Score != 0 {
			t.Fatalf("expected 0 score, got %v", r.Score)
		}
		if r.Index != i {
			t.Fatalf("expected corpus-order ties, got %+v", ranked)
		}
	}
}

func TestRankAll_EmptyCorpus(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ranked, err := engine.RankAll([]float32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d entries", len(ranked))
	}
}

func TestNewEngine_InconsistentDimensions(t *testing.T) {
	_, err := NewEngine(records(
		[]float32{1, 0, 0},
		[]float32{1, 0},
	))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

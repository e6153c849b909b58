// Package similarity provides exact full-corpus cosine similarity ranking
// over a packed embedding buffer.
//
// The engine copies all corpus vectors into one flat float32 buffer at
// construction and precomputes per-vector norms, so ranking a query is a
// single allocation-free pass over contiguous memory.
package similarity

import (
	"errors"
	"math"
	"sort"

	"github.com/geoffsee/proseva-sub005/pkg/common"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Scored is one (score, corpus index) pair of a ranking.
type Scored struct {
	Index int
	Score float64
}

// Engine ranks query vectors against a packed, immutable corpus of
// embeddings. It is safe for concurrent use after construction.
type Engine struct {
	dim   int
	count int
	data  []float32
	norms []float64
}

// NewEngine packs the embedding records into the engine's flat buffer.
// The corpus dimension is taken from the first record; a record with a
// different vector length is a corpus inconsistency and returns
// ErrDimensionMismatch. An empty corpus is valid and has dimension 0.
func NewEngine(records []common.EmbeddingRecord) (*Engine, error) {
	e := &Engine{}
	if len(records) == 0 {
		return e, nil
	}

	e.dim = len(records[0].Vector)
	e.count = len(records)
	e.data = make([]float32, 0, e.dim*e.count)
	e.norms = make([]float64, e.count)

	for i, rec := range records {
		if len(rec.Vector) != e.dim {
			return nil, ErrDimensionMismatch
		}
		e.data = append(e.data, rec.Vector...)
		var sum float64
		for _, v := range rec.Vector {
			sum += float64(v) * float64(v)
		}
		e.norms[i] = math.Sqrt(sum)
	}
	return e, nil
}

// Dimension returns the shared vector dimension, 0 for an empty corpus.
func (e *Engine) Dimension() int {
	return e.dim
}

// Len returns the number of packed vectors.
func (e *Engine) Len() int {
	return e.count
}

// RankAll computes cosine similarity between the query and every corpus
// vector and returns all pairs ranked descending by score, ties broken by
// corpus order. The cosine of a zero vector against anything is 0, never
// NaN. A query whose length differs from the corpus dimension returns
// ErrDimensionMismatch.
func (e *Engine) RankAll(query []float32) ([]Scored, error) {
	if e.count == 0 {
		return nil, nil
	}
	if len(query) != e.dim {
		return nil, ErrDimensionMismatch
	}

	var qSum float64
	for _, v := range query {
		qSum += float64(v) * float64(v)
	}
	qNorm := math.Sqrt(qSum)

	out := make([]Scored, e.count)
	for i := 0; i < e.count; i++ {
		out[i].Index = i
		if qNorm == 0 || e.norms[i] == 0 {
			continue
		}
		base := i * e.dim
		var dot float64
		for j := 0; j < e.dim; j++ {
			dot += float64(e.data[base+j]) * float64(query[j])
		}
		out[i].Score = dot / (qNorm * e.norms[i])
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out, nil
}

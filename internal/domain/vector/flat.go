// Package vector provides an exact top-k inner-product index over
// fixed-dimension float32 vectors. With L2-normalized vectors the inner
// product is the cosine similarity, so a brute-force scan gives exact
// cosine ranking. At per-document scale (tens to low hundreds of vectors)
// this beats any approximate structure on both simplicity and accuracy.
package vector

import (
	"fmt"
	"sort"

	"github.com/docsense/docsense/internal/domain"
)

// NoMatch is the sentinel index returned in Search result slots that hold
// no vector (k larger than the index size).
const NoMatch = -1

// Flat is a brute-force inner-product index. Vectors are stored row-major
// in a single contiguous slice.
type Flat struct {
	dim  int
	data []float32
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("flat index: dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.data) / f.dim }

// Add appends vectors to the index in order. Every vector must match the
// index dimension.
func (f *Flat) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("flat index: vector %d has dim %d, want %d: %w",
				i, len(v), f.dim, domain.ErrVectorDimMismatch)
		}
	}
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	return nil
}

// Hit is one Search result slot: the position of a stored vector and its
// inner-product score against the query. Index is NoMatch for unfilled slots.
type Hit struct {
	Index int
	Score float32
}

// Search returns the k highest-inner-product vectors for the query, best
// first. The result always has exactly k slots; when the index holds fewer
// than k vectors the tail slots carry Index == NoMatch.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("flat index: query has dim %d, want %d: %w",
			len(query), f.dim, domain.ErrVectorDimMismatch)
	}
	if k <= 0 {
		return nil, fmt.Errorf("flat index: k must be positive, got %d", k)
	}

	n := f.Len()
	hits := make([]Hit, 0, n)
	for i := 0; i < n; i++ {
		row := f.data[i*f.dim : (i+1)*f.dim]
		var score float32
		for j, q := range query {
			score += row[j] * q
		}
		hits = append(hits, Hit{Index: i, Score: score})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if len(hits) > k {
		hits = hits[:k]
	}
	for len(hits) < k {
		hits = append(hits, Hit{Index: NoMatch})
	}
	return hits, nil
}

// Row returns the i-th stored vector as a view into the index data.
func (f *Flat) Row(i int) []float32 {
	return f.data[i*f.dim : (i+1)*f.dim]
}

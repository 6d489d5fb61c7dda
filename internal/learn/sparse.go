package learn

import (
	"math"
	"sort"
)

// Sparse is a sparse vector with strictly increasing indices.
type Sparse struct {
	Index []int     `json:"index"`
	Value []float64 `json:"value"`
}

// NewSparse builds a sparse vector from index to value pairs.
// Zero values are dropped.
func NewSparse(values map[int]float64) Sparse {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	s := Sparse{Index: idx, Value: make([]float64, len(idx))}
	for k, i := range idx {
		s.Value[k] = values[i]
	}
	return s
}

// Len returns the number of non-zero entries.
func (s Sparse) Len() int {
	return len(s.Index)
}

// Dot returns the inner product of two sparse vectors.
func (s Sparse) Dot(o Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(s.Index) && j < len(o.Index) {
		switch {
		case s.Index[i] == o.Index[j]:
			sum += s.Value[i] * o.Value[j]
			i++
			j++
		case s.Index[i] < o.Index[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// DotDense returns the inner product with a dense vector.
func (s Sparse) DotDense(d []float64) float64 {
	var sum float64
	for k, i := range s.Index {
		if i < len(d) {
			sum += s.Value[k] * d[i]
		}
	}
	return sum
}

// Norm returns the Euclidean norm.
func (s Sparse) Norm() float64 {
	var sum float64
	for _, v := range s.Value {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two sparse vectors.
// Zero vectors have similarity 0 with everything.
func Cosine(a, b Sparse) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// Normalise scales raw counts by their Euclidean norm plus epsilon.
// An all-zero input yields all zeros.
func Normalise[K comparable](raw map[K]float64, epsilon float64) map[K]float64 {
	var sum float64
	for _, v := range raw {
		sum += v * v
	}
	norm := math.Sqrt(sum) + epsilon

	out := make(map[K]float64, len(raw))
	for k, v := range raw {
		if norm == 0 {
			out[k] = 0
			continue
		}
		out[k] = v / norm
	}
	return out
}

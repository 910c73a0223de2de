package linalg

import "math"

// Sparse is a map-backed vector for high-dimensional parameters with few
// non-zero components. Zero components are not stored.
type Sparse struct {
	n    int
	data map[int]float64
}

// NewSparse creates a sparse vector of length n from the given non-zero
// components. Explicit zeros are dropped.
func NewSparse(n int, values map[int]float64) *Sparse {
	data := make(map[int]float64, len(values))
	for i, v := range values {
		if v != 0 {
			data[i] = v
		}
	}
	return &Sparse{n: n, data: data}
}

func (s *Sparse) Len() int { return s.n }

func (s *Sparse) At(i int) float64 {
	if i < 0 || i >= s.n {
		panic("linalg: sparse index out of range")
	}
	return s.data[i]
}

func (s *Sparse) Norm() float64 {
	var sum float64
	for _, v := range s.data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s *Sparse) Dot(other Vector) float64 {
	var sum float64
	for i, v := range s.data {
		sum += v * other.At(i)
	}
	return sum
}

func (s *Sparse) WeightedDot(m Matrix, other Vector) float64 {
	return s.Dot(m.Apply(other))
}

func (s *Sparse) Scale(f float64) Vector {
	out := make(map[int]float64, len(s.data))
	for i, v := range s.data {
		out[i] = f * v
	}
	return &Sparse{n: s.n, data: out}
}

// Add falls back to a dense result: the sum of a sparse vector and an
// arbitrary Vector has no sparsity guarantee.
func (s *Sparse) Add(other Vector) Vector {
	out := make([]float64, s.n)
	for i := range out {
		out[i] = s.data[i] + other.At(i)
	}
	return &Dense{data: out}
}

func (s *Sparse) Sub(other Vector) Vector {
	out := make([]float64, s.n)
	for i := range out {
		out[i] = s.data[i] - other.At(i)
	}
	return &Dense{data: out}
}

func (s *Sparse) Clone() Vector {
	return NewSparse(s.n, s.data)
}

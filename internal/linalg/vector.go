// Package linalg provides the minimal vector-space operations the
// optimization engine relies on. Solvers only see the Vector and Matrix
// interfaces; concrete backends (dense slice, sparse map) implement them
// once and can be swapped without touching any algorithm.
package linalg

import "math"

// Vector is the parameter/gradient type consumed by solvers.
// Implementations must treat receivers as immutable: every operation
// returns a fresh vector.
type Vector interface {
	// Len returns the number of components.
	Len() int

	// At returns the i-th component. Indices outside [0, Len) panic.
	At(i int) float64

	// Norm returns the Euclidean norm.
	Norm() float64

	// Dot returns the inner product with other.
	Dot(other Vector) float64

	// WeightedDot returns the bilinear form vᵀ·M·other.
	WeightedDot(m Matrix, other Vector) float64

	// Scale returns s·v as a new vector.
	Scale(s float64) Vector

	// Add returns v+other as a new vector.
	Add(other Vector) Vector

	// Sub returns v-other as a new vector.
	Sub(other Vector) Vector

	// Clone returns an independent copy.
	Clone() Vector
}

// Matrix is the Hessian type consumed by solvers.
type Matrix interface {
	// Dims returns the row and column counts.
	Dims() (rows, cols int)

	// Apply returns the matrix-vector product M·v.
	Apply(v Vector) Vector
}

// Dense is a slice-backed vector.
type Dense struct {
	data []float64
}

// NewDense creates a dense vector from the given components.
// The slice is copied; the caller keeps ownership of values.
func NewDense(values []float64) *Dense {
	data := make([]float64, len(values))
	copy(data, values)
	return &Dense{data: data}
}

// Zeros creates a dense zero vector of length n.
func Zeros(n int) *Dense {
	return &Dense{data: make([]float64, n)}
}

// Values returns a copy of the underlying components.
func (d *Dense) Values() []float64 {
	out := make([]float64, len(d.data))
	copy(out, d.data)
	return out
}

func (d *Dense) Len() int { return len(d.data) }

func (d *Dense) At(i int) float64 { return d.data[i] }

func (d *Dense) Norm() float64 {
	var sum float64
	for _, v := range d.data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (d *Dense) Dot(other Vector) float64 {
	var sum float64
	for i, v := range d.data {
		sum += v * other.At(i)
	}
	return sum
}

func (d *Dense) WeightedDot(m Matrix, other Vector) float64 {
	return d.Dot(m.Apply(other))
}

func (d *Dense) Scale(s float64) Vector {
	out := make([]float64, len(d.data))
	for i, v := range d.data {
		out[i] = s * v
	}
	return &Dense{data: out}
}

func (d *Dense) Add(other Vector) Vector {
	out := make([]float64, len(d.data))
	for i, v := range d.data {
		out[i] = v + other.At(i)
	}
	return &Dense{data: out}
}

func (d *Dense) Sub(other Vector) Vector {
	out := make([]float64, len(d.data))
	for i, v := range d.data {
		out[i] = v - other.At(i)
	}
	return &Dense{data: out}
}

func (d *Dense) Clone() Vector {
	return NewDense(d.data)
}

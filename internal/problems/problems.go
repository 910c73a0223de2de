// Package problems provides analytic benchmark operators with known
// minimizers, used by the CLI, the server and the tests. Each operator
// implements the subset of evaluation capabilities it supports.
package problems

import (
	"fmt"
	"sort"

	"github.com/cwbudde/descent/internal/linalg"
)

// Rosenbrock is the classic banana valley
//
//	f(x, y) = (a-x)² + b(y-x²)²
//
// with its minimum of 0 at (a, a²).
type Rosenbrock struct {
	A, B float64
}

// NewRosenbrock creates the standard a=1, b=100 instance.
func NewRosenbrock() *Rosenbrock {
	return &Rosenbrock{A: 1, B: 100}
}

func (r *Rosenbrock) Cost(p linalg.Vector) (float64, error) {
	x, y := p.At(0), p.At(1)
	dx := r.A - x
	dy := y - x*x
	return dx*dx + r.B*dy*dy, nil
}

func (r *Rosenbrock) Gradient(p linalg.Vector) (linalg.Vector, error) {
	x, y := p.At(0), p.At(1)
	return linalg.NewDense([]float64{
		-2*(r.A-x) - 4*r.B*x*(y-x*x),
		2 * r.B * (y - x*x),
	}), nil
}

func (r *Rosenbrock) Hessian(p linalg.Vector) (linalg.Matrix, error) {
	x, y := p.At(0), p.At(1)
	return linalg.NewDenseMatrix(2, 2, []float64{
		2 - 4*r.B*y + 12*r.B*x*x, -4 * r.B * x,
		-4 * r.B * x, 2 * r.B,
	}), nil
}

// Minimizer returns the known global minimizer.
func (r *Rosenbrock) Minimizer() linalg.Vector {
	return linalg.NewDense([]float64{r.A, r.A * r.A})
}

// Sphere is f(x) = Σ xᵢ² with its minimum of 0 at the origin, in any
// dimension.
type Sphere struct{}

func (Sphere) Cost(p linalg.Vector) (float64, error) {
	return p.Dot(p), nil
}

func (Sphere) Gradient(p linalg.Vector) (linalg.Vector, error) {
	return p.Scale(2), nil
}

func (Sphere) Hessian(p linalg.Vector) (linalg.Matrix, error) {
	return linalg.Identity(p.Len(), 2), nil
}

// Quadratic is the axis-aligned bowl f(x) = Σ wᵢ(xᵢ-cᵢ)² with its minimum
// of 0 at the center c.
type Quadratic struct {
	Center  []float64
	Weights []float64
}

// NewQuadratic creates a bowl centered at (1, -2) with weights (1, 4).
func NewQuadratic() *Quadratic {
	return &Quadratic{
		Center:  []float64{1, -2},
		Weights: []float64{1, 4},
	}
}

func (q *Quadratic) Cost(p linalg.Vector) (float64, error) {
	var sum float64
	for i, c := range q.Center {
		d := p.At(i) - c
		sum += q.Weights[i] * d * d
	}
	return sum, nil
}

func (q *Quadratic) Gradient(p linalg.Vector) (linalg.Vector, error) {
	out := make([]float64, len(q.Center))
	for i, c := range q.Center {
		out[i] = 2 * q.Weights[i] * (p.At(i) - c)
	}
	return linalg.NewDense(out), nil
}

func (q *Quadratic) Hessian(p linalg.Vector) (linalg.Matrix, error) {
	n := len(q.Center)
	data := make([]float64, n*n)
	for i, w := range q.Weights {
		data[i*n+i] = 2 * w
	}
	return linalg.NewDenseMatrix(n, n, data), nil
}

// registry maps problem names to operator constructors.
var registry = map[string]func() any{
	"rosenbrock": func() any { return NewRosenbrock() },
	"sphere":     func() any { return Sphere{} },
	"quadratic":  func() any { return NewQuadratic() },
}

// Get returns the operator registered under name.
func Get(name string) (any, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names returns all registered problem names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

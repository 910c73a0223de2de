// Package linesearch provides step-length selection along a fixed descent
// direction, consumed by composite solvers through the opt.LineSearch
// contract.
package linesearch

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
)

// ErrNotDescent is returned when the supplied direction has a non-negative
// directional derivative.
var ErrNotDescent = errors.New("direction is not a descent direction")

// Backtracking halves the step until the Armijo sufficient-decrease
// condition holds:
//
//	f(x + t·d) <= f(x) + c·t·gᵀd
type Backtracking struct {
	initStep  float64
	c         float64 // sufficient-decrease constant
	shrink    float64 // contraction factor per rejected step
	maxShrink int
}

// NewBacktracking creates a line search with initial step 1, c = 1e-4,
// contraction 0.5 and at most 50 contractions.
func NewBacktracking() *Backtracking {
	return &Backtracking{
		initStep:  1.0,
		c:         1e-4,
		shrink:    0.5,
		maxShrink: 50,
	}
}

// WithInitStep sets the first step length tried.
func (b *Backtracking) WithInitStep(t float64) *Backtracking {
	b.initStep = t
	return b
}

// Search returns a step length satisfying the Armijo condition.
// Requires the cost and gradient capabilities.
func (b *Backtracking) Search(prob *opt.Problem, param, dir linalg.Vector) (float64, error) {
	cost, err := prob.Cost(param)
	if err != nil {
		return 0, err
	}
	grad, err := prob.Gradient(param)
	if err != nil {
		return 0, err
	}

	slope := grad.Dot(dir)
	if slope >= 0 {
		return 0, fmt.Errorf("directional derivative %g: %w", slope, ErrNotDescent)
	}

	t := b.initStep
	for i := 0; i < b.maxShrink; i++ {
		trial, err := prob.Cost(param.Add(dir.Scale(t)))
		if err != nil {
			return 0, err
		}
		if !math.IsNaN(trial) && trial <= cost+b.c*t*slope {
			return t, nil
		}
		t *= b.shrink
	}

	return 0, fmt.Errorf("no acceptable step after %d contractions", b.maxShrink)
}

var _ opt.LineSearch = (*Backtracking)(nil)

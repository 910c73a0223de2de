package linesearch

import (
	"errors"
	"testing"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
)

// parabola is f(x) = x² with gradient 2x.
type parabola struct{}

func (parabola) Cost(p linalg.Vector) (float64, error) {
	return p.At(0) * p.At(0), nil
}

func (parabola) Gradient(p linalg.Vector) (linalg.Vector, error) {
	return linalg.NewDense([]float64{2 * p.At(0)}), nil
}

func TestBacktrackingAcceptsFullNewtonStep(t *testing.T) {
	// At x = 4 the Newton step is -4; the full step lands on the
	// minimizer and satisfies Armijo immediately.
	prob := opt.NewProblem(parabola{})

	step, err := NewBacktracking().Search(prob,
		linalg.NewDense([]float64{4}),
		linalg.NewDense([]float64{-4}))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if step != 1 {
		t.Errorf("step = %f, want 1", step)
	}
}

func TestBacktrackingShrinksOvershootingStep(t *testing.T) {
	// Direction -16 from x = 4 overshoots badly; the search must
	// contract until sufficient decrease holds.
	prob := opt.NewProblem(parabola{})
	x := linalg.NewDense([]float64{4})
	dir := linalg.NewDense([]float64{-16})

	step, err := NewBacktracking().Search(prob, x, dir)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// Verify the Armijo condition at the returned step.
	fx := 16.0
	slope := 8.0 * -16.0
	trial := x.Add(dir.Scale(step))
	ftrial := trial.At(0) * trial.At(0)
	if ftrial > fx+1e-4*step*slope {
		t.Errorf("step %f violates sufficient decrease: f = %f", step, ftrial)
	}
}

func TestBacktrackingRejectsAscentDirection(t *testing.T) {
	prob := opt.NewProblem(parabola{})

	_, err := NewBacktracking().Search(prob,
		linalg.NewDense([]float64{4}),
		linalg.NewDense([]float64{1})) // uphill
	if !errors.Is(err, ErrNotDescent) {
		t.Errorf("expected ErrNotDescent, got %v", err)
	}
}

func TestBacktrackingCountsEvaluations(t *testing.T) {
	prob := opt.NewProblem(parabola{})

	if _, err := NewBacktracking().Search(prob,
		linalg.NewDense([]float64{4}),
		linalg.NewDense([]float64{-4})); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// One cost at the base point, one gradient, one accepted trial.
	if prob.CostEvals() != 2 {
		t.Errorf("CostEvals = %d, want 2", prob.CostEvals())
	}
	if prob.GradientEvals() != 1 {
		t.Errorf("GradientEvals = %d, want 1", prob.GradientEvals())
	}
}

func TestBacktrackingOrthogonalDirection(t *testing.T) {
	// Zero slope counts as non-descent.
	prob := opt.NewProblem(parabola{})

	_, err := NewBacktracking().Search(prob,
		linalg.NewDense([]float64{0}),
		linalg.NewDense([]float64{1}))
	if !errors.Is(err, ErrNotDescent) {
		t.Errorf("expected ErrNotDescent at a stationary point, got %v", err)
	}
}

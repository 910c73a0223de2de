package newton

import (
	"math"
	"testing"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
	"github.com/cwbudde/descent/internal/problems"
	"github.com/cwbudde/descent/internal/solver/linesearch"
)

func TestNewtonCGConvergesOnQuadratic(t *testing.T) {
	// Smooth unimodal cost with known minimizer (1, -2), started near
	// but not at it. Must converge, not exhaust the ceiling.
	solver := NewNewtonCG(linesearch.NewBacktracking())

	exec, err := opt.NewExecutor(problems.NewQuadratic(), solver)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	exec.Configure(func(s *opt.IterState) {
		s.Param = linalg.NewDense([]float64{2.5, -1})
		s.MaxIters = 100
	})

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.State.Reason != opt.Converged {
		t.Errorf("Reason = %s, want converged", result.State.Reason)
	}
	if result.State.BestCost > 1e-6 {
		t.Errorf("BestCost = %g, want <= 1e-6", result.State.BestCost)
	}
	if math.Abs(result.State.BestParam.At(0)-1) > 1e-3 ||
		math.Abs(result.State.BestParam.At(1)+2) > 1e-3 {
		t.Errorf("BestParam = (%f, %f), want near (1, -2)",
			result.State.BestParam.At(0), result.State.BestParam.At(1))
	}
}

func TestNewtonCGQuadraticConvergesFast(t *testing.T) {
	// On a convex quadratic the CG direction is the exact Newton step
	// and the full step is accepted, so convergence takes very few
	// iterations.
	solver := NewNewtonCG(linesearch.NewBacktracking())

	exec, err := opt.NewExecutor(problems.NewQuadratic(), solver)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	exec.Configure(func(s *opt.IterState) {
		s.Param = linalg.NewDense([]float64{50, 50})
		s.MaxIters = 100
	})

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State.Iter > 5 {
		t.Errorf("Iter = %d, expected a handful of iterations on a quadratic", result.State.Iter)
	}
}

func TestNewtonCGReducesRosenbrockCost(t *testing.T) {
	solver := NewNewtonCG(linesearch.NewBacktracking())

	exec, err := opt.NewExecutor(problems.NewRosenbrock(), solver)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	exec.Configure(func(s *opt.IterState) {
		s.Param = linalg.NewDense([]float64{-1.2, 1.0})
		s.MaxIters = 100
	})

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	initial, _ := problems.NewRosenbrock().Cost(linalg.NewDense([]float64{-1.2, 1.0}))
	if result.State.BestCost >= initial {
		t.Errorf("BestCost = %g did not improve on initial %g", result.State.BestCost, initial)
	}
}

func TestNewtonDirectionSolvesSystem(t *testing.T) {
	// For H = diag(2, 8) and g = (2, 8) the Newton direction is
	// -H⁻¹g = (-1, -1).
	solver := NewNewtonCG(linesearch.NewBacktracking())
	g := linalg.NewDense([]float64{2, 8})
	h := linalg.NewDenseMatrix(2, 2, []float64{2, 0, 0, 8})

	d := solver.newtonDirection(g, h)
	if math.Abs(d.At(0)+1) > 1e-8 || math.Abs(d.At(1)+1) > 1e-8 {
		t.Errorf("direction = (%f, %f), want (-1, -1)", d.At(0), d.At(1))
	}
}

func TestNewtonDirectionNegativeCurvatureFallsBack(t *testing.T) {
	// Concave model: the fallback must be steepest descent.
	solver := NewNewtonCG(linesearch.NewBacktracking())
	g := linalg.NewDense([]float64{3, 0})
	h := linalg.Identity(2, -1)

	d := solver.newtonDirection(g, h)
	if d.At(0) != -3 || d.At(1) != 0 {
		t.Errorf("direction = (%f, %f), want (-3, 0)", d.At(0), d.At(1))
	}
}

func TestNewtonCGRequiresAllCapabilities(t *testing.T) {
	caps := NewNewtonCG(linesearch.NewBacktracking()).Requires()
	want := map[opt.Capability]bool{opt.CapCost: true, opt.CapGradient: true, opt.CapHessian: true}
	if len(caps) != len(want) {
		t.Fatalf("Requires() = %v", caps)
	}
	for _, c := range caps {
		if !want[c] {
			t.Errorf("unexpected capability %s", c)
		}
	}
}

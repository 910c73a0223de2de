package swarm

import (
	"testing"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
	"github.com/cwbudde/descent/internal/problems"
)

func TestMayflyOnSphere(t *testing.T) {
	// popSize must be >= 20 for mayfly v0.1.0
	solver := NewMayfly(100, 20, 42, -10, 10)

	exec, err := opt.NewExecutor(problems.Sphere{}, solver)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	exec.Configure(func(s *opt.IterState) {
		s.Param = linalg.NewDense(make([]float64, 3))
		s.MaxIters = 10
	})

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Single-shot: the whole population search counts as one iteration.
	if result.State.Iter != 1 {
		t.Errorf("Iter = %d, want 1", result.State.Iter)
	}
	if result.State.Reason != opt.MaxIterationsReached {
		t.Errorf("Reason = %s, want max iterations reached", result.State.Reason)
	}

	// Should converge close to the origin.
	if result.State.BestCost > 0.1 {
		t.Errorf("BestCost = %f, expected near 0", result.State.BestCost)
	}
}

func TestMayflyDeterministic(t *testing.T) {
	run := func() float64 {
		solver := NewMayfly(50, 20, 123, -5, 5)
		exec, err := opt.NewExecutor(problems.Sphere{}, solver)
		if err != nil {
			t.Fatalf("NewExecutor failed: %v", err)
		}
		exec.Configure(func(s *opt.IterState) {
			s.Param = linalg.NewDense(make([]float64, 2))
			s.MaxIters = 1
		})
		result, err := exec.Run()
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return result.State.BestCost
	}

	if cost1, cost2 := run(), run(); cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}

func TestMayflyRequiresCostOnly(t *testing.T) {
	caps := NewMayfly(10, 20, 1, -1, 1).Requires()
	if len(caps) != 1 || caps[0] != opt.CapCost {
		t.Errorf("Requires() = %v, want [cost]", caps)
	}
}

func TestMayflyWithoutInitialParam(t *testing.T) {
	solver := NewMayfly(10, 20, 1, -1, 1)

	_, err := solver.NextIter(opt.NewProblem(problems.Sphere{}), opt.NewIterState())
	if err == nil {
		t.Error("NextIter should fail without a configured parameter")
	}
}

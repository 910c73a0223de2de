package opt

import (
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/descent/internal/linalg"
)

// stubSolver evaluates the cost once per iteration and never terminates on
// its own unless a reason is injected.
type stubSolver struct {
	reasonAfter int               // iterations after which Terminate fires
	reason      TerminationReason // the reason to fire
	failAt      int               // iteration index at which NextIter fails (-1 = never)
}

func newStubSolver() *stubSolver {
	return &stubSolver{failAt: -1}
}

func (s *stubSolver) Name() string { return "Stub" }

func (s *stubSolver) Requires() []Capability { return []Capability{CapCost} }

func (s *stubSolver) NextIter(prob *Problem, state *IterState) (*IterData, error) {
	if s.failAt >= 0 && state.Iter == s.failAt {
		return nil, errors.New("injected failure")
	}
	next := state.Param.Scale(0.5)
	cost, err := prob.Cost(next)
	if err != nil {
		return nil, err
	}
	return NewIterData().WithParam(next).WithCost(cost), nil
}

func (s *stubSolver) Terminate(state *IterState) TerminationReason {
	if s.reason != NotTerminated && state.Iter >= s.reasonAfter {
		return s.reason
	}
	return NotTerminated
}

// recordingObserver captures the iteration indices it was notified at.
type recordingObserver struct {
	mu    sync.Mutex
	iters []int
	costs []float64
	err   error
}

func (o *recordingObserver) Observe(state *IterState) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.iters = append(o.iters, state.Iter)
	o.costs = append(o.costs, state.BestCost)
	return o.err
}

func newTestExecutor(t *testing.T, solver Solver, maxIters int) *Executor {
	t.Helper()
	exec, err := NewExecutor(fullOp{}, solver)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	return exec.Configure(func(s *IterState) {
		s.Param = linalg.NewDense([]float64{8, 8})
		s.MaxIters = maxIters
	})
}

func TestExecutorCeilingSafetyNet(t *testing.T) {
	// A solver whose Terminate never fires must run exactly MaxIters
	// iterations and end with the ceiling reason.
	exec := newTestExecutor(t, newStubSolver(), 7)

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State.Iter != 7 {
		t.Errorf("Iter = %d, want 7", result.State.Iter)
	}
	if result.State.Reason != MaxIterationsReached {
		t.Errorf("Reason = %s, want max iterations reached", result.State.Reason)
	}
}

func TestExecutorMonotonicIteration(t *testing.T) {
	obs := &recordingObserver{}
	exec := newTestExecutor(t, newStubSolver(), 5)
	exec.AddObserver(obs, ObserveAlways())

	if _, err := exec.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, iter := range obs.iters {
		if iter != i+1 {
			t.Errorf("observation %d saw iter %d, want %d", i, iter, i+1)
		}
	}
}

func TestExecutorBestCostMonotonicity(t *testing.T) {
	obs := &recordingObserver{}
	exec := newTestExecutor(t, newStubSolver(), 10)
	exec.AddObserver(obs, ObserveAlways())

	if _, err := exec.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := 1; i < len(obs.costs); i++ {
		if obs.costs[i] > obs.costs[i-1] {
			t.Errorf("best cost rose from %f to %f at iteration %d", obs.costs[i-1], obs.costs[i], i+1)
		}
	}
}

func TestExecutorStopsOnSolverReason(t *testing.T) {
	solver := newStubSolver()
	solver.reason = Converged
	solver.reasonAfter = 3

	exec := newTestExecutor(t, solver, 100)
	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State.Reason != Converged {
		t.Errorf("Reason = %s, want converged", result.State.Reason)
	}
	if result.State.Iter != 3 {
		t.Errorf("Iter = %d, want 3 (no iterations after termination)", result.State.Iter)
	}
}

func TestExecutorAbortsOnSolverError(t *testing.T) {
	solver := newStubSolver()
	solver.failAt = 2

	exec := newTestExecutor(t, solver, 100)
	result, err := exec.Run()
	if err == nil {
		t.Fatal("Run should return the solver error")
	}
	if result == nil {
		t.Fatal("aborted run must still return the partial result")
	}
	if result.State.Reason != Aborted {
		t.Errorf("Reason = %s, want aborted", result.State.Reason)
	}
	if result.State.Iter != 2 {
		t.Errorf("Iter = %d, want 2 completed iterations before the abort", result.State.Iter)
	}
}

func TestExecutorTargetCost(t *testing.T) {
	// Halving from 128 (cost = pᵀp) crosses the target well before the
	// ceiling.
	exec := newTestExecutor(t, newStubSolver(), 1000)
	exec.Configure(func(s *IterState) {
		s.TargetCost = 1.0
	})

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State.Reason != TargetCostReached {
		t.Errorf("Reason = %s, want target cost reached", result.State.Reason)
	}
	if result.State.Cost > 1.0 {
		t.Errorf("Cost = %f, want <= 1", result.State.Cost)
	}
}

func TestExecutorEvaluationCounting(t *testing.T) {
	// Each stub iteration calls cost exactly once.
	exec := newTestExecutor(t, newStubSolver(), 6)

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Problem.CostEvals() != 6 {
		t.Errorf("CostEvals = %d, want 6", result.Problem.CostEvals())
	}
}

func TestExecutorRejectsMissingCapability(t *testing.T) {
	// stubSolver requires cost; an operator without it must be rejected
	// at composition time.
	type gradOnly struct{ GradientFunction }

	_, err := NewExecutor(gradOnly{}, newStubSolver())
	if !errors.Is(err, &CapabilityError{}) {
		t.Errorf("expected CapabilityError, got %v", err)
	}
}

func TestExecutorObserverModes(t *testing.T) {
	always := &recordingObserver{}
	every := &recordingObserver{}
	never := &recordingObserver{}

	exec := newTestExecutor(t, newStubSolver(), 6)
	exec.AddObserver(always, ObserveAlways())
	exec.AddObserver(every, ObserveEvery(3))
	exec.AddObserver(never, ObserveNever())

	if _, err := exec.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(always.iters) != 6 {
		t.Errorf("always observer saw %d notifications, want 6", len(always.iters))
	}
	if len(every.iters) != 2 {
		t.Errorf("every-3 observer saw %d notifications, want 2", len(every.iters))
	}
	if len(never.iters) != 0 {
		t.Errorf("never observer saw %d notifications, want 0", len(never.iters))
	}
}

func TestExecutorObserverErrorsDoNotAbort(t *testing.T) {
	obs := &recordingObserver{err: errors.New("observer broke")}

	exec := newTestExecutor(t, newStubSolver(), 4)
	exec.AddObserver(obs, ObserveAlways())

	result, err := exec.Run()
	if err != nil {
		t.Fatalf("observer error aborted the run: %v", err)
	}
	if result.State.Iter != 4 {
		t.Errorf("Iter = %d, want 4", result.State.Iter)
	}
}

// Solvers must be safe to hand across goroutine boundaries for parallel
// multi-start runs; each run's own state is never shared.
func TestExecutorParallelMultiStart(t *testing.T) {
	starts := [][]float64{{8, 8}, {-4, 4}, {16, -2}, {1, 1}}

	var wg sync.WaitGroup
	results := make([]*Result, len(starts))
	errs := make([]error, len(starts))

	for i, start := range starts {
		wg.Add(1)
		go func(i int, start []float64) {
			defer wg.Done()
			exec, err := NewExecutor(fullOp{}, newStubSolver())
			if err != nil {
				errs[i] = err
				return
			}
			exec.Configure(func(s *IterState) {
				s.Param = linalg.NewDense(start)
				s.MaxIters = 20
			})
			results[i], errs[i] = exec.Run()
		}(i, start)
	}
	wg.Wait()

	for i := range starts {
		if errs[i] != nil {
			t.Fatalf("run %d failed: %v", i, errs[i])
		}
		if results[i].State.Iter != 20 {
			t.Errorf("run %d: Iter = %d, want 20", i, results[i].State.Iter)
		}
	}
}

package opt

import (
	"fmt"
	"log/slog"
)

// Executor owns the problem wrapper and the iteration state and drives the
// fixed iteration protocol against a solver:
//
//  1. ask the solver for one iteration's delta
//  2. merge the delta into the state (best-cost bookkeeping happens here)
//  3. increment the iteration counter by exactly one
//  4. evaluate termination (target cost, then the solver's predicate)
//  5. notify observers synchronously, in registration order
//
// The loop exits when the state carries a terminal reason or the iteration
// ceiling fires. Execution is single-threaded; no two NextIter calls for
// the same run ever overlap.
type Executor struct {
	problem   *Problem
	solver    Solver
	state     *IterState
	observers []observerEntry
}

type observerEntry struct {
	observer Observer
	mode     ObserverMode
}

// Result is handed back to the caller once the run stops: the final state
// plus the problem wrapper exposing evaluation counts. On an aborted run
// it is returned alongside the error so the state stays inspectable.
type Result struct {
	State   *IterState
	Problem *Problem
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: best cost %g after %d iterations (%d cost, %d gradient, %d hessian evals)",
		r.State.Reason, r.State.BestCost, r.State.Iter,
		r.Problem.CostEvals(), r.Problem.GradientEvals(), r.Problem.HessianEvals())
}

// NewExecutor wraps the operator and pairs it with the solver. Returns a
// CapabilityError if the operator lacks a capability the solver declares.
func NewExecutor(op any, solver Solver) (*Executor, error) {
	problem := NewProblem(op)
	if err := problem.Require(solver.Requires()...); err != nil {
		return nil, fmt.Errorf("solver %s: %w", solver.Name(), err)
	}
	return &Executor{
		problem: problem,
		solver:  solver,
		state:   NewIterState(),
	}, nil
}

// Configure applies the one-time run configuration (initial parameter,
// iteration ceiling, target cost) to the state before the first pass.
func (e *Executor) Configure(fn func(*IterState)) *Executor {
	fn(e.state)
	return e
}

// AddObserver registers an observer with the given notification mode.
// Observers are notified in registration order.
func (e *Executor) AddObserver(obs Observer, mode ObserverMode) *Executor {
	e.observers = append(e.observers, observerEntry{observer: obs, mode: mode})
	return e
}

// Run drives the iteration loop until termination. On a solver or operator
// failure the state records Aborted and the original error is returned
// together with the partial result.
func (e *Executor) Run() (*Result, error) {
	result := &Result{State: e.state, Problem: e.problem}

	for !e.state.Terminated() {
		// Ceiling backstop, independent of the solver's own predicate.
		if e.state.Iter >= e.state.MaxIters {
			e.state.Reason = MaxIterationsReached
			break
		}

		data, err := e.solver.NextIter(e.problem, e.state)
		if err != nil {
			e.state.Reason = Aborted
			return result, fmt.Errorf("solver %s failed at iteration %d: %w", e.solver.Name(), e.state.Iter, err)
		}

		newBest := e.state.Update(data)
		e.state.Iter++

		if !e.state.Terminated() {
			if e.state.Cost <= e.state.TargetCost {
				e.state.Reason = TargetCostReached
			} else {
				e.state.Reason = e.solver.Terminate(e.state)
			}
		}

		e.notifyObservers(newBest)
	}

	return result, nil
}

// notifyObservers invokes every registered observer whose mode matches.
// Observer failures are logged and ignored.
func (e *Executor) notifyObservers(newBest bool) {
	for _, entry := range e.observers {
		if !entry.mode.shouldNotify(e.state, newBest) {
			continue
		}
		if err := entry.observer.Observe(e.state); err != nil {
			slog.Warn("Observer failed", "solver", e.solver.Name(), "iter", e.state.Iter, "error", err)
		}
	}
}

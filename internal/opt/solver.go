package opt

import "github.com/cwbudde/descent/internal/linalg"

// Solver is the contract every algorithm implements. Implementations must
// be deterministic given identical state and operator responses, and safe
// to hand across goroutine boundaries so callers can run independent
// multi-start optimizations in parallel.
type Solver interface {
	// Name identifies the algorithm for logging and reporting.
	Name() string

	// Requires lists the operator capabilities the algorithm calls.
	// The executor checks them at composition time.
	Requires() []Capability

	// NextIter produces one iteration's delta from the current state.
	// It may call operator capabilities through prob any number of
	// times. It fails only by propagating an operator failure or a
	// domain-specific numerical failure.
	NextIter(prob *Problem, state *IterState) (*IterData, error)

	// Terminate is a pure predicate over the already-updated state,
	// called once per completed iteration. Returning anything other
	// than NotTerminated stops the run.
	Terminate(state *IterState) TerminationReason
}

// TrustRegionSolver is implemented by subproblem solvers an enclosing
// trust-region driver parameterizes before each delegated step.
type TrustRegionSolver interface {
	Solver

	SetRadius(radius float64)
	SetGrad(grad linalg.Vector)
	SetHessian(hessian linalg.Matrix)
}

// LineSearch picks a step length along a fixed descent direction.
// Composite solvers consume it only through this contract.
type LineSearch interface {
	// Search returns a step length t such that param + t·dir satisfies
	// the implementation's acceptance condition.
	Search(prob *Problem, param, dir linalg.Vector) (float64, error)
}

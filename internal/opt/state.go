package opt

import (
	"math"

	"github.com/cwbudde/descent/internal/linalg"
)

// IterState is the single mutable record of optimization progress. It is
// created with sentinel values (NaN cost, +Inf best cost), configured once
// before the first executor pass, and afterwards mutated only by the
// executor merging IterData returned from the solver.
type IterState struct {
	// Param is the current parameter vector (nil until configured).
	Param linalg.Vector

	// Cost is the cost at Param. NaN until a solver reports one.
	Cost float64

	// Grad is the most recently merged gradient, if any.
	Grad linalg.Vector

	// Hessian is the most recently merged Hessian, if any.
	Hessian linalg.Matrix

	// BestParam and BestCost track the lowest cost ever merged.
	BestParam linalg.Vector
	BestCost  float64

	// Iter is the number of completed executor passes.
	Iter int

	// MaxIters is the iteration ceiling enforced by the executor.
	MaxIters int

	// TargetCost stops the run once Cost falls to or below it.
	// Defaults to -Inf (disabled).
	TargetCost float64

	// Reason is NotTerminated while the run is live and one-way
	// transitions to a terminal reason exactly once.
	Reason TerminationReason
}

// NewIterState creates a state with sentinel values. Callers normally
// override MaxIters and TargetCost via Executor.Configure.
func NewIterState() *IterState {
	return &IterState{
		Cost:       math.NaN(),
		BestCost:   math.Inf(1),
		MaxIters:   math.MaxInt,
		TargetCost: math.Inf(-1),
		Reason:     NotTerminated,
	}
}

// Update merges a solver's sparse delta into the state. Only fields the
// delta carries overwrite; everything else is untouched. Best-so-far
// bookkeeping happens here and nowhere else. Returns true if the merge
// produced a new best cost.
func (s *IterState) Update(data *IterData) bool {
	if data == nil {
		return false
	}

	if data.Param != nil {
		s.Param = data.Param
	}
	if data.HasCost {
		s.Cost = data.Cost
	}
	if data.Grad != nil {
		s.Grad = data.Grad
	}
	if data.Hessian != nil {
		s.Hessian = data.Hessian
	}

	newBest := false
	// BestCost starts at +Inf, so the first finite cost always wins.
	// NaN costs never displace a best.
	if data.HasCost && data.Cost < s.BestCost {
		s.BestCost = data.Cost
		if s.Param != nil {
			s.BestParam = s.Param.Clone()
		}
		newBest = true
	}

	// Termination is one-way: a solver-forced reason sticks only while
	// the state is still live.
	if data.Reason != NotTerminated && s.Reason == NotTerminated {
		s.Reason = data.Reason
	}

	return newBest
}

// Terminated reports whether the state carries a terminal reason.
func (s *IterState) Terminated() bool {
	return s.Reason.Terminated()
}

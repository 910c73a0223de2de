// Package swarm adapts the external mayfly population optimizer to the
// Solver contract, for derivative-free global runs.
package swarm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
)

// MayflyAdapter runs the external mayfly optimizer as a single-shot,
// cost-only solver: one engine iteration performs the entire population
// search and reports its global best.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
	lower    float64
	upper    float64
}

// NewMayfly creates a mayfly adapter. lower and upper bound every
// dimension (the external library uses scalar bounds).
func NewMayfly(maxIters, popSize int, seed int64, lower, upper float64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
		lower:    lower,
		upper:    upper,
	}
}

func (m *MayflyAdapter) Name() string { return "Mayfly" }

func (m *MayflyAdapter) Requires() []opt.Capability {
	return []opt.Capability{opt.CapCost}
}

func (m *MayflyAdapter) NextIter(prob *opt.Problem, state *opt.IterState) (*opt.IterData, error) {
	if state.Param == nil {
		return nil, fmt.Errorf("mayfly: initial parameter not configured")
	}
	dim := state.Param.Len()

	// The external library takes a plain objective; operator failures
	// surface as +Inf so the search steers away from them.
	eval := func(x []float64) float64 {
		cost, err := prob.Cost(linalg.NewDense(x))
		if err != nil {
			return math.Inf(1)
		}
		return cost
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = m.lower
	config.UpperBound = m.upper
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return opt.NewIterData().
		WithParam(linalg.NewDense(result.GlobalBest.Position)).
		WithCost(result.GlobalBest.Cost), nil
}

// Terminate stops after the single population run.
func (m *MayflyAdapter) Terminate(state *opt.IterState) opt.TerminationReason {
	if state.Iter >= 1 {
		return opt.MaxIterationsReached
	}
	return opt.NotTerminated
}

var _ opt.Solver = (*MayflyAdapter)(nil)

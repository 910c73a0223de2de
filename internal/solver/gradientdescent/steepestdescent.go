// Package gradientdescent implements steepest descent with a pluggable
// line search.
package gradientdescent

import "github.com/cwbudde/descent/internal/opt"

// SteepestDescent walks along the negative gradient, delegating step
// length selection to a line search.
type SteepestDescent struct {
	linesearch opt.LineSearch
	gradTol    float64
}

// NewSteepestDescent creates a steepest-descent solver with gradient
// tolerance 1e-8.
func NewSteepestDescent(ls opt.LineSearch) *SteepestDescent {
	return &SteepestDescent{
		linesearch: ls,
		gradTol:    1e-8,
	}
}

// WithGradTol sets the gradient norm below which the solver converges.
func (s *SteepestDescent) WithGradTol(tol float64) *SteepestDescent {
	s.gradTol = tol
	return s
}

func (s *SteepestDescent) Name() string { return "SteepestDescent" }

func (s *SteepestDescent) Requires() []opt.Capability {
	return []opt.Capability{opt.CapCost, opt.CapGradient}
}

func (s *SteepestDescent) NextIter(prob *opt.Problem, state *opt.IterState) (*opt.IterData, error) {
	param := state.Param

	grad, err := prob.Gradient(param)
	if err != nil {
		return nil, err
	}
	if grad.Norm() < s.gradTol {
		cost, err := prob.Cost(param)
		if err != nil {
			return nil, err
		}
		return opt.NewIterData().
			WithCost(cost).
			WithGrad(grad).
			WithReason(opt.Converged), nil
	}

	dir := grad.Scale(-1)
	step, err := s.linesearch.Search(prob, param, dir)
	if err != nil {
		return nil, err
	}

	next := param.Add(dir.Scale(step))
	cost, err := prob.Cost(next)
	if err != nil {
		return nil, err
	}
	newGrad, err := prob.Gradient(next)
	if err != nil {
		return nil, err
	}

	return opt.NewIterData().
		WithParam(next).
		WithCost(cost).
		WithGrad(newGrad), nil
}

func (s *SteepestDescent) Terminate(state *opt.IterState) opt.TerminationReason {
	if state.Grad != nil && state.Grad.Norm() < s.gradTol {
		return opt.Converged
	}
	return opt.NotTerminated
}

var _ opt.Solver = (*SteepestDescent)(nil)

// Package newton implements Newton-type solvers.
package newton

import (
	"math"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
)

// NewtonCG approximates the Newton direction by running conjugate
// gradients on H·d = -g, bailing out on negative curvature, then picks the
// step length with a line search. It is a composite solver: the line
// search is consumed purely through its contract, no engine support
// needed.
type NewtonCG struct {
	linesearch opt.LineSearch
	gradTol    float64
	cgTol      float64
	maxCG      int
}

// NewNewtonCG creates a Newton-CG solver delegating to the given line
// search, with gradient tolerance 1e-8.
func NewNewtonCG(ls opt.LineSearch) *NewtonCG {
	return &NewtonCG{
		linesearch: ls,
		gradTol:    1e-8,
		cgTol:      1e-10,
		maxCG:      0, // 0 = 2×dimension
	}
}

// WithGradTol sets the gradient norm below which the solver converges.
func (n *NewtonCG) WithGradTol(tol float64) *NewtonCG {
	n.gradTol = tol
	return n
}

func (n *NewtonCG) Name() string { return "NewtonCG" }

func (n *NewtonCG) Requires() []opt.Capability {
	return []opt.Capability{opt.CapCost, opt.CapGradient, opt.CapHessian}
}

func (n *NewtonCG) NextIter(prob *opt.Problem, state *opt.IterState) (*opt.IterData, error) {
	param := state.Param

	grad, err := prob.Gradient(param)
	if err != nil {
		return nil, err
	}
	if grad.Norm() < n.gradTol {
		cost, err := prob.Cost(param)
		if err != nil {
			return nil, err
		}
		return opt.NewIterData().
			WithCost(cost).
			WithGrad(grad).
			WithReason(opt.Converged), nil
	}

	hessian, err := prob.Hessian(param)
	if err != nil {
		return nil, err
	}

	dir := n.newtonDirection(grad, hessian)

	step, err := n.linesearch.Search(prob, param, dir)
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

// Terminate converges once the merged gradient norm drops below the
// tolerance.
func (n *NewtonCG) Terminate(state *opt.IterState) opt.TerminationReason {
	if state.Grad != nil && state.Grad.Norm() < n.gradTol {
		return opt.Converged
	}
	return opt.NotTerminated
}

// newtonDirection solves H·d = -g approximately with conjugate gradients.
// If the first CG direction already hits negative curvature the steepest
// descent direction is returned instead, keeping the result a descent
// direction.
func (n *NewtonCG) newtonDirection(grad linalg.Vector, hessian linalg.Matrix) linalg.Vector {
	dim := grad.Len()
	maxIters := n.maxCG
	if maxIters <= 0 {
		maxIters = 2 * dim
	}

	d := linalg.Vector(linalg.Zeros(dim))
	r := grad.Clone()      // residual H·d + g, starts at g
	p := grad.Scale(-1)    // search direction
	rr := r.Dot(r)
	tol := n.cgTol * math.Sqrt(rr)

	for i := 0; i < maxIters; i++ {
		hp := hessian.Apply(p)
		curvature := p.Dot(hp)
		if curvature <= 0 {
			if i == 0 {
				return grad.Scale(-1)
			}
			break
		}

		alpha := rr / curvature
		d = d.Add(p.Scale(alpha))
		r = r.Add(hp.Scale(alpha))

		rrNext := r.Dot(r)
		if math.Sqrt(rrNext) <= tol {
			break
		}

		p = r.Scale(-1).Add(p.Scale(rrNext / rr))
		rr = rrNext
	}

	return d
}

var _ opt.Solver = (*NewtonCG)(nil)

package trustregion

import (
	"fmt"
	"math"

	"github.com/cwbudde/descent/internal/opt"
)

// TrustRegion is the outer trust-region driver. Each iteration it
// evaluates cost, gradient and Hessian at the current parameter, installs
// them on the subproblem solver, delegates a single step, and accepts or
// rejects the step based on the ratio of actual to predicted reduction,
// growing or shrinking the radius accordingly.
type TrustRegion struct {
	subproblem opt.TrustRegionSolver

	radius    float64
	maxRadius float64
	eta       float64 // acceptance threshold for the reduction ratio
	gradTol   float64
}

// NewTrustRegion creates a driver delegating to the given subproblem
// solver with default radius 1, max radius 100 and eta 0.125.
func NewTrustRegion(subproblem opt.TrustRegionSolver) *TrustRegion {
	return &TrustRegion{
		subproblem: subproblem,
		radius:     1.0,
		maxRadius:  100.0,
		eta:        0.125,
		gradTol:    1e-8,
	}
}

// WithRadius sets the initial trust-region radius.
func (tr *TrustRegion) WithRadius(radius float64) *TrustRegion {
	tr.radius = radius
	return tr
}

// WithMaxRadius caps how far the radius can grow.
func (tr *TrustRegion) WithMaxRadius(maxRadius float64) *TrustRegion {
	tr.maxRadius = maxRadius
	return tr
}

// WithEta sets the reduction-ratio threshold below which steps are
// rejected. Must lie in [0, 0.25).
func (tr *TrustRegion) WithEta(eta float64) *TrustRegion {
	tr.eta = eta
	return tr
}

// WithGradTol sets the gradient norm below which the driver declares
// convergence.
func (tr *TrustRegion) WithGradTol(tol float64) *TrustRegion {
	tr.gradTol = tol
	return tr
}

func (tr *TrustRegion) Name() string {
	return fmt.Sprintf("TrustRegion(%s)", tr.subproblem.Name())
}

func (tr *TrustRegion) Requires() []opt.Capability {
	return []opt.Capability{opt.CapCost, opt.CapGradient, opt.CapHessian}
}

func (tr *TrustRegion) NextIter(prob *opt.Problem, state *opt.IterState) (*opt.IterData, error) {
	param := state.Param

	cost, err := prob.Cost(param)
	if err != nil {
		return nil, err
	}
	grad, err := prob.Gradient(param)
	if err != nil {
		return nil, err
	}

	// Stationary point: declare convergence instead of handing the
	// subproblem a zero gradient it cannot divide by.
	if grad.Norm() < tr.gradTol {
		return opt.NewIterData().
			WithCost(cost).
			WithGrad(grad).
			WithReason(opt.Converged), nil
	}

	hessian, err := prob.Hessian(param)
	if err != nil {
		return nil, err
	}

	tr.subproblem.SetRadius(tr.radius)
	tr.subproblem.SetGrad(grad)
	tr.subproblem.SetHessian(hessian)

	sub, err := tr.subproblem.NextIter(prob, state)
	if err != nil {
		return nil, err
	}
	step := sub.Param
	if step == nil {
		return nil, fmt.Errorf("subproblem %s returned no step", tr.subproblem.Name())
	}

	candidate := param.Add(step)
	newCost, err := prob.Cost(candidate)
	if err != nil {
		return nil, err
	}

	// Predicted reduction of the quadratic model: -(gᵀp + ½ pᵀHp).
	predicted := -(grad.Dot(step) + 0.5*step.WeightedDot(hessian, step))
	actual := cost - newCost

	rho := math.Inf(-1)
	if predicted > 0 {
		rho = actual / predicted
	}

	stepNorm := step.Norm()
	if rho < 0.25 {
		tr.radius = 0.25 * stepNorm
	} else if rho > 0.75 && stepNorm >= 0.999*tr.radius {
		tr.radius = math.Min(2*tr.radius, tr.maxRadius)
	}

	if rho <= tr.eta {
		// Step rejected: keep the current parameter, report the cost
		// so best-so-far bookkeeping still sees it.
		return opt.NewIterData().
			WithParam(param).
			WithCost(cost).
			WithGrad(grad).
			WithHessian(hessian), nil
	}

	// Step accepted: re-evaluate the gradient at the new point so the
	// merged state stays consistent and Terminate sees a current norm.
	newGrad, err := prob.Gradient(candidate)
	if err != nil {
		return nil, err
	}

	return opt.NewIterData().
		WithParam(candidate).
		WithCost(newCost).
		WithGrad(newGrad), nil
}

// Terminate fires once the merged gradient falls below the tolerance.
// The executor's iteration ceiling is the backstop for everything else.
func (tr *TrustRegion) Terminate(state *opt.IterState) opt.TerminationReason {
	if state.Grad != nil && state.Grad.Norm() < tr.gradTol {
		return opt.Converged
	}
	return opt.NotTerminated
}

var (
	_ opt.Solver            = (*TrustRegion)(nil)
	_ opt.TrustRegionSolver = (*CauchyPoint)(nil)
)

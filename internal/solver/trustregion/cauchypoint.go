// Package trustregion implements trust-region optimization: the Cauchy
// point subproblem solver and the outer driver that feeds it.
//
// Reference: Jorge Nocedal and Stephen J. Wright (2006). Numerical
// Optimization. Springer. ISBN 0-387-30303-0.
package trustregion

import (
	"math"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
)

// CauchyPoint minimizes the quadratic model of the cost along the steepest
// descent direction within the trust-region radius. It is a single-shot
// subproblem solver: one iteration computes the step, and Terminate fires
// immediately afterwards to hand control back to the enclosing driver.
//
// The gradient snapshot must be non-zero; excluding the zero-gradient case
// is the caller's responsibility (the outer driver treats it as
// convergence before ever delegating here).
type CauchyPoint struct {
	radius  float64
	grad    linalg.Vector
	hessian linalg.Matrix
}

// NewCauchyPoint creates a Cauchy-point solver with an unset radius.
// The enclosing driver parameterizes it via the setters before each step.
func NewCauchyPoint() *CauchyPoint {
	return &CauchyPoint{radius: math.NaN()}
}

func (c *CauchyPoint) Name() string { return "CauchyPoint" }

// Requires is empty: the solver works purely on the snapshots installed
// through the setters.
func (c *CauchyPoint) Requires() []opt.Capability { return nil }

// NextIter computes the Cauchy step
//
//	p = -τ · radius/‖g‖ · g
//
// where τ = 1 on non-positive curvature along the gradient direction and
// τ = min(1, ‖g‖³ / (radius · gᵀHg)) otherwise.
func (c *CauchyPoint) NextIter(_ *opt.Problem, _ *opt.IterState) (*opt.IterData, error) {
	gradNorm := c.grad.Norm()
	wdp := c.grad.WeightedDot(c.hessian, c.grad)

	tau := 1.0
	if wdp > 0 {
		tau = math.Min(1, math.Pow(gradNorm, 3)/(c.radius*wdp))
	}

	step := c.grad.Scale(-tau * c.radius / gradNorm)
	return opt.NewIterData().WithParam(step), nil
}

// Terminate stops after exactly one iteration, signaling the subproblem is
// solved rather than that optimization is done.
func (c *CauchyPoint) Terminate(state *opt.IterState) opt.TerminationReason {
	if state.Iter >= 1 {
		return opt.MaxIterationsReached
	}
	return opt.NotTerminated
}

// SetRadius installs the trust-region radius for the next step.
func (c *CauchyPoint) SetRadius(radius float64) { c.radius = radius }

// SetGrad installs the gradient snapshot for the next step.
func (c *CauchyPoint) SetGrad(grad linalg.Vector) { c.grad = grad }

// SetHessian installs the Hessian snapshot for the next step.
func (c *CauchyPoint) SetHessian(hessian linalg.Matrix) { c.hessian = hessian }

package opt

import "github.com/cwbudde/descent/internal/linalg"

// Problem wraps the user operator for the duration of a run. It forwards
// capability calls unchanged and counts every attempted call, including
// ones that fail. Counters only increase and are never reset mid-run.
//
// The wrapper owns the operator exclusively while the executor runs; it is
// handed back to the caller with the final state so evaluation budgets can
// be inspected.
type Problem struct {
	op any

	costEvals     int
	gradientEvals int
	hessianEvals  int
}

// NewProblem wraps the given operator. The operator may implement any
// subset of CostFunction, GradientFunction and HessianFunction; Require
// checks the subset a solver needs.
func NewProblem(op any) *Problem {
	return &Problem{op: op}
}

// Require verifies the operator implements every listed capability.
// Returns a CapabilityError naming the first missing one.
func (p *Problem) Require(caps ...Capability) error {
	for _, c := range caps {
		var ok bool
		switch c {
		case CapCost:
			_, ok = p.op.(CostFunction)
		case CapGradient:
			_, ok = p.op.(GradientFunction)
		case CapHessian:
			_, ok = p.op.(HessianFunction)
		}
		if !ok {
			return &CapabilityError{Capability: c}
		}
	}
	return nil
}

// Cost forwards to the operator's cost capability, counting the call.
func (p *Problem) Cost(param linalg.Vector) (float64, error) {
	p.costEvals++
	cf, ok := p.op.(CostFunction)
	if !ok {
		return 0, &CapabilityError{Capability: CapCost}
	}
	return cf.Cost(param)
}

// Gradient forwards to the operator's gradient capability, counting the call.
func (p *Problem) Gradient(param linalg.Vector) (linalg.Vector, error) {
	p.gradientEvals++
	gf, ok := p.op.(GradientFunction)
	if !ok {
		return nil, &CapabilityError{Capability: CapGradient}
	}
	return gf.Gradient(param)
}

// Hessian forwards to the operator's Hessian capability, counting the call.
func (p *Problem) Hessian(param linalg.Vector) (linalg.Matrix, error) {
	p.hessianEvals++
	hf, ok := p.op.(HessianFunction)
	if !ok {
		return nil, &CapabilityError{Capability: CapHessian}
	}
	return hf.Hessian(param)
}

// CostEvals returns the number of attempted cost evaluations.
func (p *Problem) CostEvals() int { return p.costEvals }

// GradientEvals returns the number of attempted gradient evaluations.
func (p *Problem) GradientEvals() int { return p.gradientEvals }

// HessianEvals returns the number of attempted Hessian evaluations.
func (p *Problem) HessianEvals() int { return p.hessianEvals }

// Operator returns the wrapped operator.
func (p *Problem) Operator() any { return p.op }

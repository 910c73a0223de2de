// Package opt implements the iteration engine: operator capabilities, the
// counting problem wrapper, the mutable iteration state, the solver
// contract, and the executor that drives them.
package opt

import "github.com/cwbudde/descent/internal/linalg"

// CostFunction is the cost-evaluation capability of an operator.
// Implementations must not mutate themselves during evaluation.
type CostFunction interface {
	Cost(param linalg.Vector) (float64, error)
}

// GradientFunction is the gradient-evaluation capability of an operator.
type GradientFunction interface {
	Gradient(param linalg.Vector) (linalg.Vector, error)
}

// HessianFunction is the Hessian-evaluation capability of an operator.
type HessianFunction interface {
	Hessian(param linalg.Vector) (linalg.Matrix, error)
}

// Capability names one operator evaluation capability a solver may require.
type Capability string

const (
	CapCost     Capability = "cost"
	CapGradient Capability = "gradient"
	CapHessian  Capability = "hessian"
)

// CapabilityError reports an operator that lacks a capability the chosen
// solver requires. It is a composition error, detected before the first
// iteration.
type CapabilityError struct {
	Capability Capability
}

func (e *CapabilityError) Error() string {
	return "operator does not implement capability: " + string(e.Capability)
}

func (e *CapabilityError) Is(target error) bool {
	_, ok := target.(*CapabilityError)
	return ok
}

package opt

import "github.com/cwbudde/descent/internal/linalg"

// IterData is the sparse per-iteration output of a solver. Absent fields
// leave the corresponding state fields untouched, so a solver only reports
// what it actually computed that step.
type IterData struct {
	Param   linalg.Vector
	Cost    float64
	HasCost bool
	Grad    linalg.Vector
	Hessian linalg.Matrix

	// Reason lets a solver force termination from inside NextIter.
	Reason TerminationReason
}

// NewIterData creates an empty delta; chain the With* builders to fill it.
func NewIterData() *IterData {
	return &IterData{Reason: NotTerminated}
}

// WithParam sets the new parameter vector.
func (d *IterData) WithParam(p linalg.Vector) *IterData {
	d.Param = p
	return d
}

// WithCost sets the cost of the new parameter vector.
func (d *IterData) WithCost(c float64) *IterData {
	d.Cost = c
	d.HasCost = true
	return d
}

// WithGrad sets the gradient at the new parameter vector.
func (d *IterData) WithGrad(g linalg.Vector) *IterData {
	d.Grad = g
	return d
}

// WithHessian sets the Hessian at the new parameter vector.
func (d *IterData) WithHessian(h linalg.Matrix) *IterData {
	d.Hessian = h
	return d
}

// WithReason forces a termination reason.
func (d *IterData) WithReason(r TerminationReason) *IterData {
	d.Reason = r
	return d
}

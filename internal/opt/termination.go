package opt

// TerminationReason describes why a run stopped. Once a state carries any
// reason other than NotTerminated the executor stops advancing it; the
// reason is never reset.
type TerminationReason int

const (
	// NotTerminated means the run should continue.
	NotTerminated TerminationReason = iota

	// MaxIterationsReached means the iteration ceiling fired.
	MaxIterationsReached

	// TargetCostReached means the configured target cost was met.
	TargetCostReached

	// Converged means the solver's own convergence criterion fired.
	Converged

	// Aborted means an operator or solver failure ended the run.
	Aborted
)

// Terminated reports whether the reason stops the run.
func (r TerminationReason) Terminated() bool {
	return r != NotTerminated
}

func (r TerminationReason) String() string {
	switch r {
	case NotTerminated:
		return "not terminated"
	case MaxIterationsReached:
		return "max iterations reached"
	case TargetCostReached:
		return "target cost reached"
	case Converged:
		return "converged"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

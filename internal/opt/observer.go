package opt

import "log/slog"

// Observer receives a read-only view of the state after each completed
// iteration. Notification is synchronous and in registration order; a
// returned error is logged and ignored, never aborting the run.
type Observer interface {
	Observe(state *IterState) error
}

type observerKind int

const (
	observeNever observerKind = iota
	observeAlways
	observeEvery
	observeNewBest
)

// ObserverMode controls how often a registered observer is notified.
type ObserverMode struct {
	kind  observerKind
	every int
}

// ObserveNever silences an observer without unregistering it.
func ObserveNever() ObserverMode { return ObserverMode{kind: observeNever} }

// ObserveAlways notifies after every iteration.
func ObserveAlways() ObserverMode { return ObserverMode{kind: observeAlways} }

// ObserveEvery notifies after every n-th iteration.
func ObserveEvery(n int) ObserverMode {
	if n < 1 {
		n = 1
	}
	return ObserverMode{kind: observeEvery, every: n}
}

// ObserveNewBest notifies only when the iteration improved the best cost.
func ObserveNewBest() ObserverMode { return ObserverMode{kind: observeNewBest} }

func (m ObserverMode) shouldNotify(state *IterState, newBest bool) bool {
	switch m.kind {
	case observeAlways:
		return true
	case observeEvery:
		return state.Iter%m.every == 0
	case observeNewBest:
		return newBest
	default:
		return false
	}
}

// SlogObserver logs iteration progress through a structured logger.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates an observer logging to the given logger, or to
// slog.Default() if logger is nil.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

// Observe logs the iteration index, current and best cost, and the
// gradient norm when a gradient is present.
func (o *SlogObserver) Observe(state *IterState) error {
	attrs := []any{
		"iter", state.Iter,
		"cost", state.Cost,
		"best_cost", state.BestCost,
	}
	if state.Grad != nil {
		attrs = append(attrs, "grad_norm", state.Grad.Norm())
	}
	o.logger.Info("Iteration complete", attrs...)
	return nil
}

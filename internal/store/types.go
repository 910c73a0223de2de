package store

import (
	"fmt"
	"time"
)

// JobConfig holds the configuration of an optimization run (checkpoint
// copy). Defined here rather than in the server package to avoid import
// cycles.
type JobConfig struct {
	// Problem is the registered benchmark problem name.
	Problem string `json:"problem"`

	// Solver selects the algorithm (newton-cg, steepest-descent,
	// trust-region, mayfly).
	Solver string `json:"solver"`

	// InitParam is the initial parameter vector.
	InitParam []float64 `json:"initParam"`

	// MaxIters is the iteration ceiling.
	MaxIters int `json:"maxIters"`

	// TargetCost stops the run early when reached. Nil disables it.
	TargetCost *float64 `json:"targetCost,omitempty"`

	// GradTol is the convergence tolerance for gradient-based solvers.
	GradTol float64 `json:"gradTol,omitempty"`

	// Seed, PopSize, LowerBound and UpperBound configure the mayfly
	// solver; ignored by the others.
	Seed       int64   `json:"seed,omitempty"`
	PopSize    int     `json:"popSize,omitempty"`
	LowerBound float64 `json:"lowerBound,omitempty"`
	UpperBound float64 `json:"upperBound,omitempty"`

	// CheckpointInterval saves a checkpoint every N seconds (0 = disabled).
	CheckpointInterval int `json:"checkpointInterval,omitempty"`
}

// Checkpoint is a saved snapshot of an optimization run that can be
// resumed later. It persists the best parameters and run bookkeeping, not
// the solver's internal working state: a resumed run warm-starts from the
// best point with a fresh solver, so the best cost never regresses even
// though the continuation is not bit-identical to an uninterrupted run.
type Checkpoint struct {
	// JobID is the unique identifier for this run.
	JobID string `json:"jobId"`

	// BestParams and BestCost are the lowest-cost point found so far.
	BestParams []float64 `json:"bestParams"`
	BestCost   float64   `json:"bestCost"`

	// Iteration is the completed iteration count at checkpoint time.
	Iteration int `json:"iteration"`

	// Evaluation counters from the problem wrapper.
	CostEvals     int `json:"costEvals"`
	GradientEvals int `json:"gradientEvals"`
	HessianEvals  int `json:"hessianEvals"`

	// Reason is the termination reason string, "not terminated" while
	// the run is still live.
	Reason string `json:"reason"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config is kept for compatibility validation during resume.
	Config JobConfig `json:"config"`
}

// NewCheckpoint creates a checkpoint from run state.
func NewCheckpoint(jobID string, bestParams []float64, bestCost float64, iteration int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:      jobID,
		BestParams: bestParams,
		BestCost:   bestCost,
		Iteration:  iteration,
		Timestamp:  time.Now(),
		Config:     config,
	}
}

// CheckpointInfo is checkpoint metadata without the parameter payload,
// used for efficient listings.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestCost  float64   `json:"bestCost"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Problem   string    `json:"problem"`
	Solver    string    `json:"solver"`
}

// ToInfo strips a checkpoint down to its metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestCost:  c.BestCost,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Problem:   c.Config.Problem,
		Solver:    c.Config.Solver,
	}
}

// Validate checks the checkpoint for missing or inconsistent fields.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestParams) == 0 {
		return &ValidationError{Field: "BestParams", Reason: "cannot be empty"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if c.Config.Solver == "" {
		return &ValidationError{Field: "Config.Solver", Reason: "cannot be empty"}
	}
	if c.Config.MaxIters <= 0 {
		return &ValidationError{Field: "Config.MaxIters", Reason: "must be positive"}
	}
	if len(c.Config.InitParam) != len(c.BestParams) {
		return &ValidationError{
			Field:  "BestParams",
			Reason: fmt.Sprintf("length %d does not match initial parameter length %d", len(c.BestParams), len(c.Config.InitParam)),
		}
	}
	return nil
}

// IsCompatible checks whether this checkpoint can seed a run with the
// given configuration.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Problem != config.Problem {
		return &CompatibilityError{Field: "Problem", Expected: c.Config.Problem, Actual: config.Problem}
	}
	if c.Config.Solver != config.Solver {
		return &CompatibilityError{Field: "Solver", Expected: c.Config.Solver, Actual: config.Solver}
	}
	if len(c.Config.InitParam) != len(config.InitParam) {
		return &CompatibilityError{
			Field:    "InitParam",
			Expected: fmt.Sprintf("%d components", len(c.Config.InitParam)),
			Actual:   fmt.Sprintf("%d components", len(config.InitParam)),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// CompatibilityError represents a checkpoint/config mismatch on resume.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}

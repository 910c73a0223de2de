package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
	"github.com/cwbudde/descent/internal/problems"
	"github.com/cwbudde/descent/internal/solver/gradientdescent"
	"github.com/cwbudde/descent/internal/solver/linesearch"
	"github.com/cwbudde/descent/internal/solver/newton"
	"github.com/cwbudde/descent/internal/solver/swarm"
	"github.com/cwbudde/descent/internal/solver/trustregion"
	"github.com/cwbudde/descent/internal/store"
)

// BuildSolver constructs the solver named by the configuration.
func BuildSolver(config JobConfig) (opt.Solver, error) {
	switch config.Solver {
	case "newton-cg":
		s := newton.NewNewtonCG(linesearch.NewBacktracking())
		if config.GradTol > 0 {
			s = s.WithGradTol(config.GradTol)
		}
		return s, nil

	case "steepest-descent":
		s := gradientdescent.NewSteepestDescent(linesearch.NewBacktracking())
		if config.GradTol > 0 {
			s = s.WithGradTol(config.GradTol)
		}
		return s, nil

	case "trust-region":
		s := trustregion.NewTrustRegion(trustregion.NewCauchyPoint())
		if config.GradTol > 0 {
			s = s.WithGradTol(config.GradTol)
		}
		return s, nil

	case "mayfly":
		popSize := config.PopSize
		if popSize <= 0 {
			popSize = 30
		}
		lower, upper := config.LowerBound, config.UpperBound
		if lower == 0 && upper == 0 {
			lower, upper = -10, 10
		}
		return swarm.NewMayfly(config.MaxIters, popSize, config.Seed, lower, upper), nil

	default:
		return nil, fmt.Errorf("unknown solver: %s (available: newton-cg, steepest-descent, trust-region, mayfly)", config.Solver)
	}
}

// cancellableSolver checks the context before each iteration so a running
// job can be cancelled between solver steps.
type cancellableSolver struct {
	opt.Solver
	ctx context.Context
}

func (c *cancellableSolver) NextIter(prob *opt.Problem, state *opt.IterState) (*opt.IterData, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}
	return c.Solver.NextIter(prob, state)
}

// jobObserver mirrors executor progress into the job manager, broadcasts
// it to SSE clients and saves periodic checkpoints.
type jobObserver struct {
	jm       *JobManager
	store    store.Store
	jobID    string
	config   JobConfig
	interval time.Duration
	lastSave time.Time
}

func (o *jobObserver) Observe(state *opt.IterState) error {
	bestParams := vectorValues(state.BestParam)

	o.jm.UpdateJob(o.jobID, func(j *Job) {
		j.Iterations = state.Iter
		j.BestCost = state.BestCost
		j.BestParams = bestParams
		j.Reason = state.Reason.String()
	})

	o.jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     o.jobID,
		State:     StateRunning,
		Iteration: state.Iter,
		Cost:      state.Cost,
		BestCost:  state.BestCost,
		Timestamp: time.Now(),
	})

	if o.store != nil && o.interval > 0 && time.Since(o.lastSave) >= o.interval {
		o.lastSave = time.Now()
		if err := saveJobCheckpoint(o.store, o.jobID, o.config, state, nil); err != nil {
			slog.Error("Failed to save checkpoint", "job_id", o.jobID, "error", err)
		}
	}
	return nil
}

// runJob executes an optimization job in the background.
// If checkpointStore is not nil and the job has checkpointInterval > 0,
// periodic checkpoints are saved. With a non-empty traceDir, the cost
// history is written to <traceDir>/jobs/<jobID>/trace.jsonl.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, traceDir, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem, "solver", job.Config.Solver)

	op, err := problems.Get(job.Config.Problem)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	solver, err := BuildSolver(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	executor, err := opt.NewExecutor(op, &cancellableSolver{Solver: solver, ctx: ctx})
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	config := job.Config
	executor.Configure(func(state *opt.IterState) {
		state.Param = linalg.NewDense(config.InitParam)
		if config.MaxIters > 0 {
			state.MaxIters = config.MaxIters
		}
		if config.TargetCost != nil {
			state.TargetCost = *config.TargetCost
		}
	})

	progress := &jobObserver{
		jm:       jm,
		store:    checkpointStore,
		jobID:    jobID,
		config:   config,
		interval: time.Duration(config.CheckpointInterval) * time.Second,
		lastSave: time.Now(),
	}
	executor.AddObserver(progress, opt.ObserveAlways())

	if traceDir != "" {
		tw, err := store.NewTraceWriter(traceDir, jobID, false)
		if err != nil {
			slog.Warn("Failed to open trace writer", "job_id", jobID, "error", err)
		} else {
			defer tw.Close()
			executor.AddObserver(store.NewTraceObserver(tw, false), opt.ObserveAlways())
		}
	}

	start := time.Now()
	result, err := executor.Run()
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			markJobCancelled(jm, jobID)
			return err
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	state := result.State
	bestParams := vectorValues(state.BestParam)

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestParams = bestParams
		j.BestCost = state.BestCost
		j.Iterations = state.Iter
		j.CostEvals = result.Problem.CostEvals()
		j.GradientEvals = result.Problem.GradientEvals()
		j.HessianEvals = result.Problem.HessianEvals()
		j.Reason = state.Reason.String()
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	// Persist the final state so the run can be inspected or resumed later.
	if checkpointStore != nil {
		if err := saveJobCheckpoint(checkpointStore, jobID, config, state, result.Problem); err != nil {
			slog.Error("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"iterations", state.Iter,
		"best_cost", state.BestCost,
		"reason", state.Reason.String(),
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: state.Iter,
		Cost:      state.Cost,
		BestCost:  state.BestCost,
		Reason:    state.Reason.String(),
		Timestamp: time.Now(),
	})

	return nil
}

// saveJobCheckpoint snapshots the current run state into the store. The
// problem wrapper is optional; when present its evaluation counters are
// recorded too.
func saveJobCheckpoint(checkpointStore store.Store, jobID string, config JobConfig, state *opt.IterState, prob *opt.Problem) error {
	bestParams := vectorValues(state.BestParam)
	if len(bestParams) == 0 {
		slog.Debug("Skipping checkpoint, no best params yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(jobID, bestParams, state.BestCost, state.Iter, config)
	checkpoint.Reason = state.Reason.String()
	if prob != nil {
		checkpoint.CostEvals = prob.CostEvals()
		checkpoint.GradientEvals = prob.GradientEvals()
		checkpoint.HessianEvals = prob.HessianEvals()
	}

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "job_id", jobID, "iteration", state.Iter, "best_cost", state.BestCost)
	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: time.Now(),
	})
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

func vectorValues(v linalg.Vector) []float64 {
	if v == nil {
		return nil
	}
	values := make([]float64, v.Len())
	for i := range values {
		values[i] = v.At(i)
	}
	return values
}

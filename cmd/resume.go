package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
	"github.com/cwbudde/descent/internal/problems"
	"github.com/cwbudde/descent/internal/server"
	"github.com/cwbudde/descent/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeIters   int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Loads the checkpoint for the given job and continues the run from the
best point found so far. The solver restarts fresh, so the continuation is
not bit-identical to an uninterrupted run, but the best cost never regresses.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "New iteration ceiling (0 = keep the checkpointed one)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not usable: %w", err)
	}

	config := checkpoint.Config
	if resumeIters > 0 {
		config.MaxIters = resumeIters
	}
	if checkpoint.Iteration >= config.MaxIters {
		return fmt.Errorf("checkpoint already at iteration %d of %d, raise --iters to continue",
			checkpoint.Iteration, config.MaxIters)
	}

	slog.Info("Resuming job",
		"job_id", jobID,
		"problem", config.Problem,
		"solver", config.Solver,
		"iteration", checkpoint.Iteration,
		"best_cost", checkpoint.BestCost,
	)

	op, err := problems.Get(config.Problem)
	if err != nil {
		return err
	}

	solver, err := server.BuildSolver(config)
	if err != nil {
		return err
	}

	executor, err := opt.NewExecutor(op, solver)
	if err != nil {
		return fmt.Errorf("failed to set up executor: %w", err)
	}

	// Warm-start from the checkpointed best point, carrying over the
	// iteration count and best-cost bookkeeping.
	executor.Configure(func(state *opt.IterState) {
		state.Param = linalg.NewDense(checkpoint.BestParams)
		state.BestParam = linalg.NewDense(checkpoint.BestParams)
		state.BestCost = checkpoint.BestCost
		state.Iter = checkpoint.Iteration
		state.MaxIters = config.MaxIters
		if config.TargetCost != nil {
			state.TargetCost = *config.TargetCost
		}
	})

	executor.AddObserver(opt.NewSlogObserver(logger), opt.ObserveAlways())

	tw, err := store.NewTraceWriter(resumeDataDir, jobID, true)
	if err != nil {
		slog.Warn("Failed to open trace writer", "job_id", jobID, "error", err)
	} else {
		defer tw.Close()
		executor.AddObserver(store.NewTraceObserver(tw, false), opt.ObserveAlways())
	}

	start := time.Now()
	result, err := executor.Run()
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	state := result.State
	updated := store.NewCheckpoint(jobID, vectorValues(state.BestParam), state.BestCost, state.Iter, config)
	updated.Reason = state.Reason.String()
	updated.CostEvals = checkpoint.CostEvals + result.Problem.CostEvals()
	updated.GradientEvals = checkpoint.GradientEvals + result.Problem.GradientEvals()
	updated.HessianEvals = checkpoint.HessianEvals + result.Problem.HessianEvals()
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save updated checkpoint: %w", err)
	}

	slog.Info("Resume complete",
		"job_id", jobID,
		"elapsed", time.Since(start),
		"iterations", state.Iter,
		"best_cost", state.BestCost,
		"reason", state.Reason.String(),
	)

	fmt.Println(result.String())
	return nil
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

package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/descent/internal/linalg"
	"github.com/cwbudde/descent/internal/opt"
	"github.com/cwbudde/descent/internal/problems"
	"github.com/cwbudde/descent/internal/server"
	"github.com/cwbudde/descent/internal/store"
	"github.com/spf13/cobra"
)

var (
	problemName  string
	solverName   string
	initParam    string
	maxIters     int
	targetCost   float64
	gradTol      float64
	seed         int64
	popSize      int
	lowerBound   float64
	upperBound   float64
	observeEvery int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot optimization",
	Long:  `Runs an optimization locally and prints the final result.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&problemName, "problem", "", "Problem name (required)")
	runCmd.Flags().StringVar(&solverName, "solver", "newton-cg", "Solver: newton-cg, steepest-descent, trust-region, mayfly")
	runCmd.Flags().StringVar(&initParam, "init", "", "Initial parameters, comma-separated (required)")
	runCmd.Flags().IntVar(&maxIters, "iters", 100, "Max iterations")
	runCmd.Flags().Float64Var(&targetCost, "target-cost", 0, "Stop when cost drops to this value")
	runCmd.Flags().Float64Var(&gradTol, "grad-tol", 0, "Gradient norm convergence tolerance (0 = solver default)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed (mayfly)")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size (mayfly)")
	runCmd.Flags().Float64Var(&lowerBound, "lower", -10, "Search lower bound (mayfly)")
	runCmd.Flags().Float64Var(&upperBound, "upper", 10, "Search upper bound (mayfly)")
	runCmd.Flags().IntVar(&observeEvery, "observe-every", 1, "Log progress every N iterations (0 = silent)")

	runCmd.MarkFlagRequired("problem")
	runCmd.MarkFlagRequired("init")
	rootCmd.AddCommand(runCmd)
}

// parseParams parses a comma-separated list of floats.
func parseParams(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	params, err := parseParams(initParam)
	if err != nil {
		return err
	}

	config := store.JobConfig{
		Problem:    problemName,
		Solver:     solverName,
		InitParam:  params,
		MaxIters:   maxIters,
		GradTol:    gradTol,
		Seed:       seed,
		PopSize:    popSize,
		LowerBound: lowerBound,
		UpperBound: upperBound,
	}

	slog.Info("Starting optimization", "problem", problemName, "solver", solverName, "iters", maxIters)

	op, err := problems.Get(problemName)
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

	executor.Configure(func(state *opt.IterState) {
		state.Param = linalg.NewDense(params)
		state.MaxIters = maxIters
		if cmd.Flags().Changed("target-cost") {
			state.TargetCost = targetCost
		}
	})

	if observeEvery > 0 {
		executor.AddObserver(opt.NewSlogObserver(logger), opt.ObserveEvery(observeEvery))
	}

	start := time.Now()
	result, err := executor.Run()
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	elapsed := time.Since(start)

	state := result.State
	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"iterations", state.Iter,
		"best_cost", state.BestCost,
		"reason", state.Reason.String(),
		"cost_evals", result.Problem.CostEvals(),
		"gradient_evals", result.Problem.GradientEvals(),
		"hessian_evals", result.Problem.HessianEvals(),
	)

	fmt.Println(result.String())
	return nil
}

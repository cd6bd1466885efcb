// File: cmd/analyze.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/outbreak-cli/internal/config"
	"github.com/xkilldash9x/outbreak-cli/internal/observability"
	"github.com/xkilldash9x/outbreak-cli/internal/plot"
	"github.com/xkilldash9x/outbreak-cli/internal/reporting"
	"github.com/xkilldash9x/outbreak-cli/internal/store"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

// newAnalyzeCmd creates and configures the `analyze` command.
func newAnalyzeCmd(provider storeProvider) *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Runs many independent trials and writes per-trial summary statistics",
		Long: `Runs the configured number of independent trials, each on a freshly generated
population, and writes the mean daily infected count, the mean daily death count and
the sample standard deviation of daily deaths for every trial.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runAnalyze(ctx, observability.GetLogger(), cfg, cmd.OutOrStdout(), provider)
		},
	}

	addSimulationFlags(analyzeCmd)
	defaults := config.NewDefaultConfig()
	f := analyzeCmd.Flags()
	f.StringP("output", "o", defaults.Output.AnalyzeFile, "file for the summary table ('stdout' to print it)")
	f.IntP("trials", "n", defaults.Simulation.Trials, "number of independent trials")
	f.Int("concurrency", defaults.Engine.Concurrency, "trials run in parallel")
	bindFlag(analyzeCmd, "output", "output.analyze_file")
	bindFlag(analyzeCmd, "trials", "simulation.trials")
	bindFlag(analyzeCmd, "concurrency", "engine.concurrency")
	return analyzeCmd
}

// runAnalyze contains the core, testable logic of the analyze command.
func runAnalyze(ctx context.Context, logger *zap.Logger, cfg *config.Config, out io.Writer, provider storeProvider) error {
	sim := cfg.Simulation
	runID := uuid.New()
	logger = logger.With(zap.Stringer("run_id", runID))

	seed, err := resolveSeed(sim.Seed, logger)
	if err != nil {
		return err
	}

	runner, err := trials.NewRunner(trials.Options{
		Trials:           sim.Trials,
		Concurrency:      cfg.Engine.Concurrency,
		Seed:             seed,
		Params:           simulationParams(sim),
		ProgressInterval: cfg.Engine.ProgressInterval,
	}, logger)
	if err != nil {
		return err
	}

	summaries, err := runner.Run(ctx, trials.PopulationOf(sim.Population, sim.Infected, sim.VaccinatedCount()))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Analysis aborted", zap.Error(err))
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	err = writeTable(logger, cfg.Output.Format, cfg.Output.AnalyzeFile, func(w reporting.TableWriter) error {
		return w.WriteSummaries(summaries)
	})
	if err != nil {
		return err
	}

	if err := printAggregate(out, summaries, seed); err != nil {
		return err
	}

	if cfg.Output.PlotFile != "" {
		err := renderPlot(logger, cfg.Output.PlotFile, func(w io.Writer) error {
			return plot.Summaries(w, summaries)
		})
		if err != nil {
			return err
		}
	}

	return persistRun(ctx, logger, cfg, provider, store.Run{
		ID:         runID,
		Kind:       store.KindAnalyze,
		Seed:       seed,
		Parameters: newRunParameters(sim, sim.Trials),
		CreatedAt:  time.Now(),
		Summaries:  summaries,
	})
}

// printAggregate writes the across-trial averages of the per-trial statistics.
func printAggregate(w io.Writer, summaries []trials.Summary, seed int64) error {
	infected := make([]float64, len(summaries))
	deaths := make([]float64, len(summaries))
	for i, s := range summaries {
		infected[i] = s.MeanInfected
		deaths[i] = s.MeanDeaths
	}
	_, err := fmt.Fprintf(w, "Trials: %d\nSeed: %d\nMean daily infected: %.2f\nMean daily deaths: %.2f\nStd dev of trial mean deaths: %.2f\n",
		len(summaries), seed, trials.Mean(infected), trials.Mean(deaths), trials.SampleStdDev(deaths))
	return err
}

// File: cmd/simulate.go
package cmd

import (
	"context"
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

// newSimulateCmd creates and configures the `simulate` command.
func newSimulateCmd(provider storeProvider) *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs a single trial and writes the daily health-state table",
		Long: `Simulates one population over the configured number of days, writes one row
of health-state counts per day and prints a summary including the case fatality rate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runSimulate(ctx, observability.GetLogger(), cfg, cmd.OutOrStdout(), provider)
		},
	}

	addSimulationFlags(simulateCmd)
	defaults := config.NewDefaultConfig()
	simulateCmd.Flags().StringP("output", "o", defaults.Output.SimulateFile, "file for the daily table ('stdout' to print it)")
	bindFlag(simulateCmd, "output", "output.simulate_file")
	return simulateCmd
}

// addSimulationFlags registers the flags shared by simulate and analyze.
func addSimulationFlags(c *cobra.Command) {
	d := config.NewDefaultConfig()
	f := c.Flags()

	f.Int("population", d.Simulation.Population, "number of individuals")
	f.Int("infected", d.Simulation.Infected, "individuals infected on day zero")
	f.Int("vaccinated", d.Simulation.Vaccinated, "individuals vaccinated on day zero")
	f.Float64("vprob", d.Simulation.VaccinationRate, "fraction of the population vaccinated on day zero (alternative to --vaccinated)")
	f.Float64("tprob", d.Simulation.TransmissionProbability, "per-encounter transmission probability")
	f.Float64("dprob", d.Simulation.DeathProbability, "daily death probability while infected")
	f.Int("days", d.Simulation.Days, "number of days to simulate")
	f.Int64("seed", d.Simulation.Seed, "random seed; 0 draws a fresh one")
	f.StringP("format", "f", d.Output.Format, "table format: csv, json or text")
	f.String("plot", d.Output.PlotFile, "also render a PNG chart to this file")

	bindFlag(c, "population", "simulation.population")
	bindFlag(c, "infected", "simulation.infected")
	bindFlag(c, "vaccinated", "simulation.vaccinated")
	bindFlag(c, "vprob", "simulation.vaccination_rate")
	bindFlag(c, "tprob", "simulation.transmission_probability")
	bindFlag(c, "dprob", "simulation.death_probability")
	bindFlag(c, "days", "simulation.days")
	bindFlag(c, "seed", "simulation.seed")
	bindFlag(c, "format", "output.format")
	bindFlag(c, "plot", "output.plot_file")
}

// runSimulate contains the core, testable logic of the simulate command.
func runSimulate(ctx context.Context, logger *zap.Logger, cfg *config.Config, out io.Writer, provider storeProvider) error {
	sim := cfg.Simulation
	runID := uuid.New()
	logger = logger.With(zap.Stringer("run_id", runID))

	seed, err := resolveSeed(sim.Seed, logger)
	if err != nil {
		return err
	}

	runner, err := trials.NewRunner(trials.Options{
		Trials:      1,
		Concurrency: 1,
		Seed:        seed,
		Params:      simulationParams(sim),
	}, logger)
	if err != nil {
		return err
	}

	vaccinated := sim.VaccinatedCount()
	logger.Info("Starting simulation",
		zap.Int("population", sim.Population),
		zap.Int("infected", sim.Infected),
		zap.Int("vaccinated", vaccinated),
		zap.Int("days", sim.Days),
	)

	rows, _, err := runner.Trial(0, trials.PopulationOf(sim.Population, sim.Infected, vaccinated))
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	err = writeTable(logger, cfg.Output.Format, cfg.Output.SimulateFile, func(w reporting.TableWriter) error {
		return w.WriteDaily(rows)
	})
	if err != nil {
		return err
	}

	report, err := reporting.NewReport(sim.Population, vaccinated, sim.Infected, simulationParams(sim), seed, rows)
	if err != nil {
		return err
	}
	if err := report.Print(out); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if cfg.Output.PlotFile != "" {
		err := renderPlot(logger, cfg.Output.PlotFile, func(w io.Writer) error {
			return plot.DailyCounts(w, rows)
		})
		if err != nil {
			return err
		}
	}

	return persistRun(ctx, logger, cfg, provider, store.Run{
		ID:         runID,
		Kind:       store.KindSimulate,
		Seed:       seed,
		Parameters: newRunParameters(sim, 1),
		CreatedAt:  time.Now(),
		Daily:      rows,
	})
}

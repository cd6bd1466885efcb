// File: cmd/plot.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/outbreak-cli/internal/config"
	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/observability"
	"github.com/xkilldash9x/outbreak-cli/internal/plot"
	"github.com/xkilldash9x/outbreak-cli/internal/reporting"
)

type plotOptions struct {
	input   string
	output  string
	summary bool
	runID   string
}

// newPlotCmd creates and configures the `plot` command.
func newPlotCmd(provider storeProvider) *cobra.Command {
	var opts plotOptions

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Renders a PNG chart from a previously written table",
		Long: `Reads a CSV table written by simulate (or by analyze with --summary) and renders
it as a PNG chart. With --run-id the daily table of a persisted simulate run is loaded
from the database instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runPlot(ctx, observability.GetLogger(), cfg, opts, provider)
		},
	}

	plotCmd.Flags().StringVarP(&opts.input, "input", "i", "", "CSV table to read (default: the configured simulate or analyze file)")
	plotCmd.Flags().StringVarP(&opts.output, "output", "o", "outbreak.png", "PNG file to write")
	plotCmd.Flags().BoolVar(&opts.summary, "summary", false, "the input is a summary table from analyze")
	plotCmd.Flags().StringVar(&opts.runID, "run-id", "", "load the daily table of a persisted simulate run")
	plotCmd.MarkFlagsMutuallyExclusive("run-id", "input")
	plotCmd.MarkFlagsMutuallyExclusive("run-id", "summary")
	return plotCmd
}

// runPlot contains the core, testable logic of the plot command.
func runPlot(ctx context.Context, logger *zap.Logger, cfg *config.Config, opts plotOptions, provider storeProvider) error {
	if opts.runID != "" {
		rows, err := loadRun(ctx, cfg, provider, opts.runID)
		if err != nil {
			return err
		}
		return renderPlot(logger, opts.output, func(w io.Writer) error { return plot.DailyCounts(w, rows) })
	}

	input := opts.input
	if input == "" {
		input = cfg.Output.SimulateFile
		if opts.summary {
			input = cfg.Output.AnalyzeFile
		}
	}
	input, err := expandPath(input)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	if opts.summary {
		summaries, err := reporting.ReadSummaries(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", input, err)
		}
		return renderPlot(logger, opts.output, func(w io.Writer) error { return plot.Summaries(w, summaries) })
	}

	rows, err := reporting.ReadDaily(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	return renderPlot(logger, opts.output, func(w io.Writer) error { return plot.DailyCounts(w, rows) })
}

func loadRun(ctx context.Context, cfg *config.Config, provider storeProvider, rawID string) ([]epidemic.DailyCounts, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", rawID, err)
	}

	runs, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	return runs.GetDailyCounts(ctx, id)
}

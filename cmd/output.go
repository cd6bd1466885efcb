// File: cmd/output.go
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/outbreak-cli/internal/config"
	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/reporting"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

// runParameters is what gets stored alongside a persisted run.
type runParameters struct {
	Population              int     `json:"population"`
	Infected                int     `json:"infected"`
	Vaccinated              int     `json:"vaccinated"`
	TransmissionProbability float64 `json:"transmission_probability"`
	DeathProbability        float64 `json:"death_probability"`
	Days                    int     `json:"days"`
	Trials                  int     `json:"trials"`
}

func newRunParameters(sim config.SimulationConfig, trialCount int) runParameters {
	return runParameters{
		Population:              sim.Population,
		Infected:                sim.Infected,
		Vaccinated:              sim.VaccinatedCount(),
		TransmissionProbability: sim.TransmissionProbability,
		DeathProbability:        sim.DeathProbability,
		Days:                    sim.Days,
		Trials:                  trialCount,
	}
}

func simulationParams(sim config.SimulationConfig) epidemic.Params {
	return epidemic.Params{
		TransmissionProbability: sim.TransmissionProbability,
		DeathProbability:        sim.DeathProbability,
		Days:                    sim.Days,
	}
}

// resolveSeed returns the configured seed, or draws and logs a fresh one so the run
// can be repeated.
func resolveSeed(configured int64, logger *zap.Logger) (int64, error) {
	if configured != 0 {
		return configured, nil
	}
	seed, err := trials.NewSeed()
	if err != nil {
		return 0, fmt.Errorf("failed to draw a seed: %w", err)
	}
	logger.Info("No seed configured; drew one. Pass --seed to reproduce this run.", zap.Int64("seed", seed))
	return seed, nil
}

func expandPath(path string) (string, error) {
	if path == "" || path == "stdout" {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return expanded, nil
}

// writeTable opens a TableWriter for path and hands it to write.
func writeTable(logger *zap.Logger, format, path string, write func(reporting.TableWriter) error) error {
	path, err := expandPath(path)
	if err != nil {
		return err
	}
	w, err := reporting.New(format, path)
	if err != nil {
		return fmt.Errorf("failed to initialize table writer: %w", err)
	}
	if err := write(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close table output: %w", err)
	}
	if path != "" && path != "stdout" {
		logger.Info("Table written", zap.String("path", path), zap.String("format", format))
	}
	return nil
}

// renderPlot writes a PNG produced by render to path.
func renderPlot(logger *zap.Logger, path string, render func(io.Writer) error) (err error) {
	path, err = expandPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := render(f); err != nil {
		return err
	}
	logger.Info("Plot written", zap.String("path", path))
	return nil
}

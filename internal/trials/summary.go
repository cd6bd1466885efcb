package trials

import (
	"math"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
)

// Summary holds the per-trial statistics reported by an aggregate run.
type Summary struct {
	Trial        int     `json:"trial"`
	MeanInfected float64 `json:"mean_infected"`
	MeanDeaths   float64 `json:"mean_deaths"`
	// DeathsStdDev is the sample standard deviation (N-1). It is NaN for a one-day trial.
	DeathsStdDev float64 `json:"deaths_stddev"`
}

// Summarize reduces one trial's daily table to its summary row.
func Summarize(trial int, rows []epidemic.DailyCounts) Summary {
	infected := make([]float64, len(rows))
	dead := make([]float64, len(rows))
	for i, r := range rows {
		infected[i] = float64(r.Infected)
		dead[i] = float64(r.Dead)
	}
	return Summary{
		Trial:        trial,
		MeanInfected: Mean(infected),
		MeanDeaths:   Mean(dead),
		DeathsStdDev: SampleStdDev(dead),
	}
}

// Mean is the arithmetic mean; NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev divides by N-1; NaN when fewer than two values exist.
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

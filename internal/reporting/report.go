package reporting

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
)

// Report is the human readable summary of a single simulated trial.
type Report struct {
	Population              int
	Vaccinated              int
	InitialInfected         int
	TransmissionProbability float64
	DeathProbability        float64
	Days                    int
	Seed                    int64
	// Final is the last day's counts.
	Final epidemic.Counts
}

// NewReport builds a Report from the configuration of a trial and its daily table.
func NewReport(population, vaccinated, infected int, params epidemic.Params, seed int64, rows []epidemic.DailyCounts) (Report, error) {
	if len(rows) == 0 {
		return Report{}, errors.New("cannot report on an empty daily table")
	}
	return Report{
		Population:              population,
		Vaccinated:              vaccinated,
		InitialInfected:         infected,
		TransmissionProbability: params.TransmissionProbability,
		DeathProbability:        params.DeathProbability,
		Days:                    params.Days,
		Seed:                    seed,
		Final:                   rows[len(rows)-1].Counts,
	}, nil
}

// CaseFatalityRate is deaths over recoveries at the end of the period, rounded to two
// decimals. ok is false when nobody recovered and the rate is undefined.
func (r Report) CaseFatalityRate() (rate float64, ok bool) {
	if r.Final.Recovered == 0 {
		return 0, false
	}
	raw := float64(r.Final.Dead) / float64(r.Final.Recovered)
	return math.Round(raw*100) / 100, true
}

// Print writes the report as aligned "label: value" lines.
func (r Report) Print(w io.Writer) error {
	p := message.NewPrinter(language.English)
	cfr := "N/A"
	if rate, ok := r.CaseFatalityRate(); ok {
		cfr = p.Sprintf("%.2f", rate)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	lines := [][2]string{
		{"Population:", p.Sprintf("%d", r.Population)},
		{"Vaccinated:", p.Sprintf("%d", r.Vaccinated)},
		{"Transmission Probability:", fmt.Sprint(r.TransmissionProbability)},
		{"Death Probability:", fmt.Sprint(r.DeathProbability)},
		{"Initial Infections:", p.Sprintf("%d", r.InitialInfected)},
		{"Simulation Period:", p.Sprintf("%d days", r.Days)},
		{"Seed:", fmt.Sprint(r.Seed)},
		{"Number of Recovered:", p.Sprintf("%d", r.Final.Recovered)},
		{"Number of Dead:", p.Sprintf("%d", r.Final.Dead)},
		{"Case Fatality Rate:", cfr},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

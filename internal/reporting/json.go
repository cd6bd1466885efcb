package reporting

import (
	"io"
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonSummary mirrors trials.Summary with a nullable deviation, since JSON has no NaN.
type jsonSummary struct {
	Trial        int      `json:"trial"`
	MeanInfected float64  `json:"mean_infected"`
	MeanDeaths   float64  `json:"mean_deaths"`
	DeathsStdDev *float64 `json:"deaths_stddev"`
}

type jsonWriter struct {
	out io.WriteCloser
	enc *jsoniter.Encoder
}

func newJSONWriter(out io.WriteCloser) *jsonWriter {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &jsonWriter{out: out, enc: enc}
}

func (j *jsonWriter) WriteDaily(rows []epidemic.DailyCounts) error {
	if rows == nil {
		rows = []epidemic.DailyCounts{}
	}
	return j.enc.Encode(rows)
}

func (j *jsonWriter) WriteSummaries(rows []trials.Summary) error {
	out := make([]jsonSummary, len(rows))
	for i, s := range rows {
		out[i] = jsonSummary{
			Trial:        s.Trial,
			MeanInfected: s.MeanInfected,
			MeanDeaths:   s.MeanDeaths,
			DeathsStdDev: optional(s.DeathsStdDev),
		}
	}
	return j.enc.Encode(out)
}

func (j *jsonWriter) Close() error {
	return j.out.Close()
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

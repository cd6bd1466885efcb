// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/reporting"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func sampleDaily() []epidemic.DailyCounts {
	return []epidemic.DailyCounts{
		{Day: 0, Counts: epidemic.Counts{Susceptible: 15, Infected: 3, Vaccinated: 2}},
		{Day: 1, Counts: epidemic.Counts{Susceptible: 12, Infected: 5, Recovered: 1, Vaccinated: 2}},
		{Day: 2, Counts: epidemic.Counts{Susceptible: 10, Infected: 5, Recovered: 2, Dead: 1, Vaccinated: 2}},
	}
}

func sampleSummaries() []trials.Summary {
	return []trials.Summary{
		{Trial: 0, MeanInfected: 15.6, MeanDeaths: 0.4, DeathsStdDev: math.Sqrt(0.8)},
		{Trial: 1, MeanInfected: 4, MeanDeaths: 1, DeathsStdDev: math.NaN()},
	}
}

// -- Construction --

func TestNew_Stdout(t *testing.T) {
	for _, path := range []string{"", "stdout"} {
		w, err := reporting.New(reporting.FormatCSV, path)
		require.NoError(t, err)
		assert.NotNil(t, w)
		assert.NoError(t, w.Close(), "closing stdout must be a no-op")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulate.csv")

	w, err := reporting.New(reporting.FormatCSV, path)
	require.NoError(t, err)
	require.NoError(t, w.WriteDaily(sampleDaily()))
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Day,Susceptible,Infected,Recovered,Dead,Vaccinated\n"))
}

func TestNew_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xml")
	w, err := reporting.New("xml", path)
	assert.Nil(t, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: xml")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file is created for an unsupported format")
}

func TestNew_BadPath(t *testing.T) {
	_, err := reporting.New(reporting.FormatCSV, filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

// -- Formats --

func TestCSVWriter(t *testing.T) {
	out := &closeRecorder{}
	w, err := reporting.NewWriter(reporting.FormatCSV, out)
	require.NoError(t, err)

	require.NoError(t, w.WriteDaily(sampleDaily()))
	require.NoError(t, w.Close())
	assert.True(t, out.closed)

	want := "Day,Susceptible,Infected,Recovered,Dead,Vaccinated\n" +
		"0,15,3,0,0,2\n" +
		"1,12,5,1,0,2\n" +
		"2,10,5,2,1,2\n"
	assert.Equal(t, want, out.String())
}

func TestCSVWriter_Summaries(t *testing.T) {
	out := &closeRecorder{}
	w, err := reporting.NewWriter(reporting.FormatCSV, out)
	require.NoError(t, err)
	require.NoError(t, w.WriteSummaries(sampleSummaries()))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Trial,MeanInfected,MeanDeaths,DeathsStdDev", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,15.6,0.4,0.894"))
	assert.Equal(t, "1,4,1,NaN", lines[2])
}

func TestJSONWriter(t *testing.T) {
	out := &closeRecorder{}
	w, err := reporting.NewWriter(reporting.FormatJSON, out)
	require.NoError(t, err)
	require.NoError(t, w.WriteSummaries(sampleSummaries()))
	require.NoError(t, w.Close())

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, 15.6, decoded[0]["mean_infected"])
	assert.InDelta(t, math.Sqrt(0.8), decoded[0]["deaths_stddev"], 1e-12)
	assert.Nil(t, decoded[1]["deaths_stddev"], "NaN must encode as null")
}

func TestJSONWriter_Daily(t *testing.T) {
	out := &closeRecorder{}
	w, err := reporting.NewWriter(reporting.FormatJSON, out)
	require.NoError(t, err)
	require.NoError(t, w.WriteDaily(sampleDaily()))

	var decoded []epidemic.DailyCounts
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, sampleDaily(), decoded)

	out.Reset()
	require.NoError(t, w.WriteDaily(nil))
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestTextWriter(t *testing.T) {
	out := &closeRecorder{}
	w, err := reporting.NewWriter(reporting.FormatText, out)
	require.NoError(t, err)
	require.NoError(t, w.WriteDaily(sampleDaily()))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"Day", "Susceptible", "Infected", "Recovered", "Dead", "Vaccinated"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2", "10", "5", "2", "1", "2"}, strings.Fields(lines[3]))
	// Right alignment keeps every row the same width.
	assert.Equal(t, len(lines[0]), len(lines[3]))
}

// -- Reading back --

func TestReadDaily_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := reporting.NewWriter(reporting.FormatCSV, nopCloser(&buf))
	require.NoError(t, err)
	require.NoError(t, w.WriteDaily(sampleDaily()))
	require.NoError(t, w.Close())

	rows, err := reporting.ReadDaily(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleDaily(), rows)
}

func TestReadSummaries_NaN(t *testing.T) {
	in := "Trial,MeanInfected,MeanDeaths,DeathsStdDev\n0,2.5,1,NaN\n"
	rows, err := reporting.ReadSummaries(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.5, rows[0].MeanInfected)
	assert.True(t, math.IsNaN(rows[0].DeathsStdDev))
}

func TestReadDaily_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"wrong header": "Trial,MeanInfected,MeanDeaths,DeathsStdDev\n",
		"short row":    "Day,Susceptible,Infected,Recovered,Dead,Vaccinated\n0,1,2\n",
		"not a number": "Day,Susceptible,Infected,Recovered,Dead,Vaccinated\n0,1,x,0,0,0\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := reporting.ReadDaily(strings.NewReader(in))
			assert.ErrorIs(t, err, reporting.ErrBadTable)
		})
	}
}

type nopWC struct{ io.Writer }

func (nopWC) Close() error { return nil }

func nopCloser(w io.Writer) io.WriteCloser { return nopWC{w} }

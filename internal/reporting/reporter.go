// -- internal/reporting/reporter.go --
package reporting

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatText = "text"
)

// Column headers for the two tables.
var (
	DailyHeader   = []string{"Day", "Susceptible", "Infected", "Recovered", "Dead", "Vaccinated"}
	SummaryHeader = []string{"Trial", "MeanInfected", "MeanDeaths", "DeathsStdDev"}
)

// TableWriter writes simulation tables to an output.
type TableWriter interface {
	// WriteDaily writes one row per simulated day.
	WriteDaily(rows []epidemic.DailyCounts) error
	// WriteSummaries writes one row per trial.
	WriteSummaries(rows []trials.Summary) error
	// Close flushes and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a TableWriter for format writing to outputPath. An empty path or
// "stdout" writes to standard output.
func New(format, outputPath string) (TableWriter, error) {
	if !supported(format) {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	return NewWriter(format, writer)
}

// NewWriter wraps an already open writer. The TableWriter takes ownership of w.
func NewWriter(format string, w io.WriteCloser) (TableWriter, error) {
	switch format {
	case FormatCSV:
		return newCSVWriter(w), nil
	case FormatJSON:
		return newJSONWriter(w), nil
	case FormatText:
		return newTextWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func supported(format string) bool {
	return format == FormatCSV || format == FormatJSON || format == FormatText
}

func dailyCells(row epidemic.DailyCounts) []string {
	return []string{
		strconv.Itoa(row.Day),
		strconv.Itoa(row.Susceptible),
		strconv.Itoa(row.Infected),
		strconv.Itoa(row.Recovered),
		strconv.Itoa(row.Dead),
		strconv.Itoa(row.Vaccinated),
	}
}

func summaryCells(s trials.Summary) []string {
	return []string{
		strconv.Itoa(s.Trial),
		formatFloat(s.MeanInfected),
		formatFloat(s.MeanDeaths),
		formatFloat(s.DeathsStdDev),
	}
}

// formatFloat renders NaN as "NaN", which strconv.ParseFloat reads back.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

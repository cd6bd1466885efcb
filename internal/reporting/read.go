package reporting

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

// ErrBadTable is returned when a CSV table cannot be read back.
var ErrBadTable = errors.New("malformed table")

// ReadDaily parses a daily table previously written in CSV format.
func ReadDaily(r io.Reader) ([]epidemic.DailyCounts, error) {
	records, err := readTable(r, DailyHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]epidemic.DailyCounts, 0, len(records))
	for i, rec := range records {
		var v [6]int
		for col, cell := range rec {
			n, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %s: %v", ErrBadTable, i+2, DailyHeader[col], err)
			}
			v[col] = n
		}
		rows = append(rows, epidemic.DailyCounts{
			Day: v[0],
			Counts: epidemic.Counts{
				Susceptible: v[1],
				Infected:    v[2],
				Recovered:   v[3],
				Dead:        v[4],
				Vaccinated:  v[5],
			},
		})
	}
	return rows, nil
}

// ReadSummaries parses a summary table previously written in CSV format.
func ReadSummaries(r io.Reader) ([]trials.Summary, error) {
	records, err := readTable(r, SummaryHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]trials.Summary, 0, len(records))
	for i, rec := range records {
		trial, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d, column Trial: %v", ErrBadTable, i+2, err)
		}
		var f [3]float64
		for col := 1; col < len(rec); col++ {
			f[col-1], err = strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %s: %v", ErrBadTable, i+2, SummaryHeader[col], err)
			}
		}
		rows = append(rows, trials.Summary{
			Trial:        trial,
			MeanInfected: f[0],
			MeanDeaths:   f[1],
			DeathsStdDev: f[2],
		})
	}
	return rows, nil
}

// readTable checks the header row and returns the remaining records.
func readTable(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	got, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrBadTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTable, err)
	}
	for i := range header {
		if strings.TrimSpace(got[i]) != header[i] {
			return nil, fmt.Errorf("%w: expected header %v, got %v", ErrBadTable, header, got)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTable, err)
	}
	return records, nil
}

package reporting

import (
	"encoding/csv"
	"io"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

type csvWriter struct {
	out io.WriteCloser
	w   *csv.Writer
}

func newCSVWriter(out io.WriteCloser) *csvWriter {
	return &csvWriter{out: out, w: csv.NewWriter(out)}
}

func (c *csvWriter) WriteDaily(rows []epidemic.DailyCounts) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, DailyHeader)
	for _, row := range rows {
		records = append(records, dailyCells(row))
	}
	return c.w.WriteAll(records)
}

func (c *csvWriter) WriteSummaries(rows []trials.Summary) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, SummaryHeader)
	for _, row := range rows {
		records = append(records, summaryCells(row))
	}
	return c.w.WriteAll(records)
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}

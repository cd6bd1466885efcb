package reporting

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/trials"
)

// textWriter renders aligned columns for reading in a terminal.
type textWriter struct {
	out io.WriteCloser
	tw  *tabwriter.Writer
}

func newTextWriter(out io.WriteCloser) *textWriter {
	return &textWriter{out: out, tw: tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)}
}

func (t *textWriter) WriteDaily(rows []epidemic.DailyCounts) error {
	if err := t.line(DailyHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := t.line(dailyCells(row)); err != nil {
			return err
		}
	}
	return t.tw.Flush()
}

func (t *textWriter) WriteSummaries(rows []trials.Summary) error {
	if err := t.line(SummaryHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := t.line(summaryCells(row)); err != nil {
			return err
		}
	}
	return t.tw.Flush()
}

// AlignRight needs a trailing tab to close the last cell.
func (t *textWriter) line(cells []string) error {
	_, err := fmt.Fprintln(t.tw, strings.Join(cells, "\t")+"\t")
	return err
}

func (t *textWriter) Close() error {
	if err := t.tw.Flush(); err != nil {
		t.out.Close()
		return err
	}
	return t.out.Close()
}

package pnl

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// Report collects the attribution output for one underlying/side pair plus
// the degraded vs clean row accounting the batch layer surfaces. Rows holds
// both clean and degraded-but-kept decompositions, so Clean + Degraded equals
// len(Rows) and Clean + Degraded + Skipped equals the paired strike count.
type Report struct {
	Underlying eventmodels.InstrumentID
	Side       eventmodels.OptionType
	From       time.Time
	To         time.Time

	Rows     []eventmodels.PnLDecomposition
	Clean    int
	Skipped  int
	Degraded int
}

// Summary holds distribution statistics over the per-strike error
// percentages.
type Summary struct {
	BaseMeanErrorPct       float64
	BaseMedianErrorPct     float64
	BaseStdevErrorPct      float64
	ExtendedMeanErrorPct   float64
	ExtendedMedianErrorPct float64
	ExtendedStdevErrorPct  float64
}

func (r *Report) Summarize() (Summary, error) {
	if len(r.Rows) == 0 {
		return Summary{}, fmt.Errorf("Report.Summarize: no rows to summarize")
	}

	base := make([]float64, 0, len(r.Rows))
	extended := make([]float64, 0, len(r.Rows))
	for _, row := range r.Rows {
		base = append(base, row.BaseErrorPct)
		extended = append(extended, row.ExtendedErrorPct)
	}

	var (
		s   Summary
		err error
	)

	if s.BaseMeanErrorPct, err = stats.Mean(base); err != nil {
		return Summary{}, fmt.Errorf("Report.Summarize: base mean: %w", err)
	}
	if s.BaseMedianErrorPct, err = stats.Median(base); err != nil {
		return Summary{}, fmt.Errorf("Report.Summarize: base median: %w", err)
	}
	if s.BaseStdevErrorPct, err = stats.StandardDeviation(base); err != nil {
		return Summary{}, fmt.Errorf("Report.Summarize: base stdev: %w", err)
	}
	if s.ExtendedMeanErrorPct, err = stats.Mean(extended); err != nil {
		return Summary{}, fmt.Errorf("Report.Summarize: extended mean: %w", err)
	}
	if s.ExtendedMedianErrorPct, err = stats.Median(extended); err != nil {
		return Summary{}, fmt.Errorf("Report.Summarize: extended median: %w", err)
	}
	if s.ExtendedStdevErrorPct, err = stats.StandardDeviation(extended); err != nil {
		return Summary{}, fmt.Errorf("Report.Summarize: extended stdev: %w", err)
	}

	return s, nil
}

func (r *Report) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	display.WriteString(fmt.Sprintf("PnL attribution %s %s: %s -> %s\n", r.Underlying, r.Side, r.From.Format(time.RFC3339), r.To.Format(time.RFC3339)))

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Strike", "Actual", "Base", "Extended", "Base Err %", "Ext Err %"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	for _, row := range r.Rows {
		table.Append([]string{
			p.Sprintf("%.2f", row.Strike),
			p.Sprintf("%.6f", row.ActualPnL),
			p.Sprintf("%.6f", row.BaseExplained),
			p.Sprintf("%.6f", row.ExtendedExplained),
			p.Sprintf("%.2f", row.BaseErrorPct),
			p.Sprintf("%.2f", row.ExtendedErrorPct),
		})
	}

	table.Render()
	display.WriteString(fmt.Sprintf("clean=%d degraded=%d skipped=%d\n", r.Clean, r.Degraded, r.Skipped))

	return display.String()
}

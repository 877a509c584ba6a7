package run

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/greeks"
	"github.com/jiaming2012/option-risk/src/utils"
	"github.com/jiaming2012/option-risk/src/worker"
)

type RunArgs struct {
	SnapshotPath    string
	ConstantsPath   string
	GreekConfigPath string
	LogLevel        string
	Workers         int
}

func Run(ctx context.Context, args RunArgs) error {
	level, err := log.ParseLevel(args.LogLevel)
	if err != nil {
		return fmt.Errorf("run: parse log level %s: %w", args.LogLevel, err)
	}
	log.SetLevel(level)

	projectDir := os.Getenv("PROJECT_DIR")
	if projectDir == "" {
		projectDir = "."
	}
	if err := utils.InitEnvironmentVariables(projectDir); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	snapshot, err := utils.ImportMarketSnapshot(args.SnapshotPath)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	constants, err := utils.LoadInstrumentConstants(args.ConstantsPath)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	cfg := greeks.DefaultConfiguration()
	if args.GreekConfigPath != "" {
		if cfg, err = greeks.LoadConfiguration(args.GreekConfigPath); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(cfg, constants)
	if args.Workers > 0 {
		processor.NumWorkers = args.Workers
	}

	result, err := processor.Run(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Print(renderBatch(result))
	log.Infof("run %s: %d clean, %d degraded, %d skipped", result.RunID, result.Clean, result.Degraded, result.Skipped)

	return nil
}

// renderBatch prints one line per row with the protected greek set in future
// space, then the aggregate row with not-computed entries shown as "-".
func renderBatch(result *worker.BatchResult) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Symbol", "Strike", "Sigma", "Model Px", "Delta", "Gamma", "Vega", "Theta", "Speed", "Status"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	cell := func(vec *eventmodels.GreekVector, kind eventmodels.GreekKind) string {
		if vec == nil {
			return "-"
		}

		v, ok := vec.Get(kind, eventmodels.FutureSpace)
		if !ok || !v.Computed {
			return "-"
		}

		return p.Sprintf("%.6f", v.Display())
	}

	status := func(row worker.RowResult) string {
		switch {
		case row.Err != nil:
			return "skipped"
		case row.Degraded():
			return "degraded"
		default:
			return "ok"
		}
	}

	for _, row := range result.Rows {
		table.Append([]string{
			row.Quote.Symbol,
			p.Sprintf("%.2f", row.Quote.Strike),
			p.Sprintf("%.6f", row.ImpliedVol.Sigma),
			p.Sprintf("%.6f", row.ImpliedVol.ModelPrice),
			cell(row.Greeks, eventmodels.Delta),
			cell(row.Greeks, eventmodels.Gamma),
			cell(row.Greeks, eventmodels.Vega),
			cell(row.Greeks, eventmodels.Theta),
			cell(row.Greeks, eventmodels.Speed),
			status(row),
		})
	}

	table.Append([]string{
		"TOTAL", "", "", "",
		cell(result.Aggregate, eventmodels.Delta),
		cell(result.Aggregate, eventmodels.Gamma),
		cell(result.Aggregate, eventmodels.Vega),
		cell(result.Aggregate, eventmodels.Theta),
		cell(result.Aggregate, eventmodels.Speed),
		"",
	})

	table.Render()

	return display.String()
}

package run

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-risk/src/eventmodels"
	"github.com/jiaming2012/option-risk/src/pnl"
	"github.com/jiaming2012/option-risk/src/utils"
)

type RunArgs struct {
	Snapshot1Path string
	Snapshot2Path string
	Underlying    string
	Side          string
	ConstantsPath string
	OutDir        string
	LogLevel      string
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

	side := eventmodels.OptionType(args.Side)
	if side != eventmodels.Call && side != eventmodels.Put {
		return fmt.Errorf("run: side must be call or put, found %s", args.Side)
	}

	snap1, err := utils.ImportMarketSnapshot(args.Snapshot1Path)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	snap2, err := utils.ImportMarketSnapshot(args.Snapshot2Path)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if !snap1.Timestamp.Before(snap2.Timestamp) {
		return fmt.Errorf("run: snapshot order is wrong: %s is not before %s", snap1.Timestamp, snap2.Timestamp)
	}

	constants, err := utils.LoadInstrumentConstants(args.ConstantsPath)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	report, err := pnl.AttributeSnapshots(ctx, snap1, snap2, eventmodels.InstrumentID(args.Underlying), side, constants, nil)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Print(report.String())

	if summary, err := report.Summarize(); err == nil {
		log.Infof("base error: mean %.2f%% median %.2f%% stdev %.2f%%", summary.BaseMeanErrorPct, summary.BaseMedianErrorPct, summary.BaseStdevErrorPct)
		log.Infof("extended error: mean %.2f%% median %.2f%% stdev %.2f%%", summary.ExtendedMeanErrorPct, summary.ExtendedMedianErrorPct, summary.ExtendedStdevErrorPct)
	}

	if args.OutDir != "" {
		fname := fmt.Sprintf("pnl_%s_%s_%s.csv", args.Underlying, args.Side, time.Now().Format("20060102_150405"))
		if _, err := utils.ExportPnLDecompositions(report.Rows, args.OutDir, fname); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	return nil
}

package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/jiaming2012/option-risk/src/cmd/pnl_attribution/run"
)

var rootCmd = &cobra.Command{
	Use:   "pnl_attribution",
	Short: "Attributes realized PnL between two snapshots to greek terms",
	Long: `Reads two dated market snapshot CSVs for the same option universe,
pairs them on exact strike match, re-solves implied vols at both states and
decomposes each strike's realized price change into Taylor terms weighted by
the greeks at the first state.`,
	Run: func(cmd *cobra.Command, args []string) {
		snapshot1, err := cmd.Flags().GetString("snapshot1")
		if err != nil {
			log.Fatalf("error getting snapshot1: %v", err)
		}

		snapshot2, err := cmd.Flags().GetString("snapshot2")
		if err != nil {
			log.Fatalf("error getting snapshot2: %v", err)
		}

		underlying, err := cmd.Flags().GetString("underlying")
		if err != nil {
			log.Fatalf("error getting underlying: %v", err)
		}

		side, err := cmd.Flags().GetString("side")
		if err != nil {
			log.Fatalf("error getting side: %v", err)
		}

		constants, err := cmd.Flags().GetString("constants")
		if err != nil {
			log.Fatalf("error getting constants: %v", err)
		}

		outDir, err := cmd.Flags().GetString("out-dir")
		if err != nil {
			log.Fatalf("error getting out-dir: %v", err)
		}

		logLevel, err := cmd.Flags().GetString("log-level")
		if err != nil {
			log.Fatalf("error getting log-level: %v", err)
		}

		if err := run.Run(context.Background(), run.RunArgs{
			Snapshot1Path: snapshot1,
			Snapshot2Path: snapshot2,
			Underlying:    underlying,
			Side:          side,
			ConstantsPath: constants,
			OutDir:        outDir,
			LogLevel:      logLevel,
		}); err != nil {
			log.Fatalf("error running command: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("snapshot1", "", "Path to the earlier snapshot CSV. This flag is required.")
	rootCmd.PersistentFlags().String("snapshot2", "", "Path to the later snapshot CSV. This flag is required.")
	rootCmd.PersistentFlags().StringP("underlying", "u", "", "Underlying future symbol to attribute, e.g. 'TYZ4'. This flag is required.")
	rootCmd.PersistentFlags().String("side", "call", "Option side to attribute: call or put.")
	rootCmd.PersistentFlags().StringP("constants", "c", "", "Path to the instrument constants YAML. This flag is required.")
	rootCmd.PersistentFlags().String("out-dir", "", "Optional directory for the CSV export of the decomposition rows.")
	rootCmd.PersistentFlags().String("log-level", "info", "Logrus level: debug, info, warn or error.")

	rootCmd.MarkPersistentFlagRequired("snapshot1")
	rootCmd.MarkPersistentFlagRequired("snapshot2")
	rootCmd.MarkPersistentFlagRequired("underlying")
	rootCmd.MarkPersistentFlagRequired("constants")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}

package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/jiaming2012/option-risk/src/cmd/riskengine/run"
)

var rootCmd = &cobra.Command{
	Use:   "riskengine",
	Short: "Solves implied vols and computes Bachelier greeks for one snapshot",
	Long: `Reads a market snapshot CSV of bond future option quotes, solves the
implied normal volatility for every row, computes the closed-form greek set
in future and yield space, and prints the per-row and aggregate results.`,
	Run: func(cmd *cobra.Command, args []string) {
		snapshot, err := cmd.Flags().GetString("snapshot")
		if err != nil {
			log.Fatalf("error getting snapshot: %v", err)
		}

		constants, err := cmd.Flags().GetString("constants")
		if err != nil {
			log.Fatalf("error getting constants: %v", err)
		}

		greekConfig, err := cmd.Flags().GetString("greek-config")
		if err != nil {
			log.Fatalf("error getting greek-config: %v", err)
		}

		logLevel, err := cmd.Flags().GetString("log-level")
		if err != nil {
			log.Fatalf("error getting log-level: %v", err)
		}

		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			log.Fatalf("error getting workers: %v", err)
		}

		if err := run.Run(context.Background(), run.RunArgs{
			SnapshotPath:    snapshot,
			ConstantsPath:   constants,
			GreekConfigPath: greekConfig,
			LogLevel:        logLevel,
			Workers:         workers,
		}); err != nil {
			log.Fatalf("error running command: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringP("snapshot", "s", "", "Path to the market snapshot CSV. This flag is required.")
	rootCmd.PersistentFlags().StringP("constants", "c", "", "Path to the instrument constants YAML (dv01/convexity per underlying). This flag is required.")
	rootCmd.PersistentFlags().String("greek-config", "", "Optional path to the greek enablement YAML. Defaults to the full set.")
	rootCmd.PersistentFlags().String("log-level", "info", "Logrus level: debug, info, warn or error.")
	rootCmd.PersistentFlags().Int("workers", 0, "Worker pool size. Defaults to the CPU core count.")

	rootCmd.MarkPersistentFlagRequired("snapshot")
	rootCmd.MarkPersistentFlagRequired("constants")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charmingdata/stock-market-trading/internal/logger"
	"github.com/charmingdata/stock-market-trading/internal/storage/archive"
)

var runsDate string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived simulation runs",
	Long: `Lists the output files archived by previous simulate runs, newest
prefix first when filtered by --date.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDate, "date", "", "only list runs archived on this date (YYYY-MM-DD)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled {
		return fmt.Errorf("archiving is disabled in the configuration")
	}

	store, err := newArchiveStorage(cfg)
	if err != nil {
		return err
	}

	keys, err := archive.NewArchiver(store, log).ListRuns(cmd.Context(), runsDate)
	if err != nil {
		return fmt.Errorf("listing archived runs: %w", err)
	}
	if len(keys) == 0 {
		fmt.Println("no archived runs found")
		return nil
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

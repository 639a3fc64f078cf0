package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/app"
	"github.com/charmingdata/stock-market-trading/internal/logger"
	"github.com/charmingdata/stock-market-trading/internal/report"
)

var (
	outMonth string
	outType  string
	outCSV   bool
)

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "Attribute an outcome to every opened position",
	Long: `Runs the simulation, classifies each opened position as succeeded,
failed or unknown with its schedule-derived dollar result, and prints
the portfolio P&L summary. Open positions are marked at the snapshot
table's current prices.`,
	RunE: runOutcomes,
}

func init() {
	outcomesCmd.Flags().StringVar(&outMonth, "month", "", "initial-fill month filter, e.g. April (overrides config)")
	outcomesCmd.Flags().StringVar(&outType, "type", "", "position type filter: All, Long or Short (overrides config)")
	outcomesCmd.Flags().BoolVar(&outCSV, "csv", false, "also write outcomes.csv to the output directory")
	rootCmd.AddCommand(outcomesCmd)
}

func runOutcomes(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a := app.New(cfg, log, nil)
	out, err := a.Outcomes(cmd.Context(), app.Overrides{Month: outMonth}, outType)
	if err != nil {
		return fmt.Errorf("outcome attribution failed: %w", err)
	}

	fmt.Print(report.RenderOutcomesText(out.Records))
	fmt.Println()
	fmt.Print(report.RenderPnLText(out.Summary))

	if outCSV {
		if err := os.MkdirAll(cfg.Data.OutputDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		path := filepath.Join(cfg.Data.OutputDir, "outcomes.csv")
		if err := os.WriteFile(path, []byte(report.RenderOutcomesCSV(out.Records)), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info("wrote output table", zap.String("path", path))
	}
	return nil
}

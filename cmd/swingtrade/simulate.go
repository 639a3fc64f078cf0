package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/app"
	"github.com/charmingdata/stock-market-trading/internal/config"
	"github.com/charmingdata/stock-market-trading/internal/logger"
	"github.com/charmingdata/stock-market-trading/internal/report"
	"github.com/charmingdata/stock-market-trading/internal/storage/archive"
)

var (
	simMonth  string
	simWindow int
	simSize   float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay price history against the setup catalog",
	Long: `Loads the setup and price tables, replays each trading day in order
executing entries, profit targets and stop-losses, and writes the
executed and standardized trade ledgers to the output directory.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simMonth, "month", "", "setup observation month filter (overrides config)")
	simulateCmd.Flags().IntVar(&simWindow, "window", 0, "entry window in business days (overrides config)")
	simulateCmd.Flags().Float64Var(&simSize, "size", 0, "standardized position size in dollars (overrides config)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a := app.New(cfg, log, nil)
	out, err := a.Simulate(cmd.Context(), app.Overrides{
		Month:      simMonth,
		WindowDays: simWindow,
		Size:       simSize,
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	tradesCSV := report.RenderTradesCSV(out.Result.Trades)
	standardizedCSV := report.RenderStandardizedCSV(out.Standardized)

	if err := os.MkdirAll(cfg.Data.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outputs := map[string]string{
		"executed-trades.csv":              tradesCSV,
		"standardized-executed-trades.csv": standardizedCSV,
	}
	for name, content := range outputs {
		path := filepath.Join(cfg.Data.OutputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info("wrote output table", zap.String("path", path))
	}

	if cfg.Archive.Enabled {
		runID, err := archiveOutputs(cmd, cfg, log, outputs)
		if err != nil {
			return err
		}
		log.Info("run archived", zap.String("run_id", runID))
	}

	fmt.Print(report.RenderRunSummary(out.Result))
	return nil
}

func archiveOutputs(cmd *cobra.Command, cfg *config.Config, log *zap.Logger, outputs map[string]string) (string, error) {
	store, err := newArchiveStorage(cfg)
	if err != nil {
		return "", err
	}
	return archive.NewArchiver(store, log).ArchiveRun(cmd.Context(), outputs)
}

func newArchiveStorage(cfg *config.Config) (archive.Storage, error) {
	store, err := archive.NewStorage(cfg.Archive.Type, cfg.Archive.Path, archive.S3Config{
		Bucket:    cfg.Archive.S3.Bucket,
		Endpoint:  cfg.Archive.S3.Endpoint,
		Region:    cfg.Archive.S3.Region,
		AccessKey: cfg.Archive.S3.AccessKey,
		SecretKey: cfg.Archive.S3.SecretKey,
		Prefix:    cfg.Archive.S3.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("creating archive storage: %w", err)
	}
	return store, nil
}

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/app"
	"github.com/charmingdata/stock-market-trading/internal/logger"
	"github.com/charmingdata/stock-market-trading/internal/prices/yahoo"
)

var (
	fetchFrom     string
	fetchTo       string
	fetchSnapshot bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch daily bars or current quotes for the catalog's tickers",
	Long: `Fetches daily OHLCV history (or, with --snapshot, the latest quotes)
from Yahoo Finance for every ticker in the setup catalog and writes
the corresponding input CSV.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "history start date, YYYY-MM-DD (required without --snapshot)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "history end date, YYYY-MM-DD (default today)")
	fetchCmd.Flags().BoolVar(&fetchSnapshot, "snapshot", false, "fetch latest quotes instead of history")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a := app.New(cfg, log, nil)
	cat, err := a.LoadCatalog("All")
	if err != nil {
		return fmt.Errorf("loading setup catalog: %w", err)
	}
	tickers := cat.Tickers()
	if len(tickers) == 0 {
		return fmt.Errorf("setup catalog has no tickers")
	}

	client := yahoo.New(log)

	if fetchSnapshot {
		return fetchQuotes(cmd, client, tickers, cfg.Data.SnapshotPath, log)
	}
	return fetchHistory(cmd, client, tickers, cfg.Data.PricesPath, log)
}

func fetchHistory(cmd *cobra.Command, client *yahoo.Client, tickers []string, path string, log *zap.Logger) error {
	if fetchFrom == "" {
		return fmt.Errorf("--from is required for history fetches")
	}
	start, err := time.Parse("2006-01-02", fetchFrom)
	if err != nil {
		return fmt.Errorf("parsing --from: %w", err)
	}
	end := time.Now().UTC()
	if fetchTo != "" {
		end, err = time.Parse("2006-01-02", fetchTo)
		if err != nil {
			return fmt.Errorf("parsing --to: %w", err)
		}
	}

	var sb strings.Builder
	sb.WriteString("Date,Ticker,Open,High,Low,Close,Volume\n")
	var fetched int
	for _, ticker := range tickers {
		bars, err := client.FetchHistory(cmd.Context(), ticker, start, end)
		if err != nil {
			log.Warn("skipping ticker, history fetch failed",
				zap.String("ticker", ticker), zap.Error(err))
			continue
		}
		for _, bar := range bars {
			sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.4f,%.4f,%d\n",
				bar.Date.Format("2006-01-02"), bar.Ticker,
				bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
		}
		fetched++
	}
	if fetched == 0 {
		return fmt.Errorf("no history fetched for any ticker")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info("wrote price history",
		zap.String("path", path),
		zap.Int("tickers", fetched))
	return nil
}

func fetchQuotes(cmd *cobra.Command, client *yahoo.Client, tickers []string, path string, log *zap.Logger) error {
	var sb strings.Builder
	sb.WriteString("Date,Ticker,Close\n")
	var fetched int
	for _, ticker := range tickers {
		quote, err := client.FetchQuote(cmd.Context(), ticker)
		if err != nil {
			log.Warn("skipping ticker, quote fetch failed",
				zap.String("ticker", ticker), zap.Error(err))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f\n",
			quote.Time.Format("2006-01-02"), quote.Ticker, quote.Price))
		fetched++
	}
	if fetched == 0 {
		return fmt.Errorf("no quotes fetched for any ticker")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info("wrote price snapshot",
		zap.String("path", path),
		zap.Int("tickers", fetched))
	return nil
}

// Package app wires the input tables, simulator, standardizer and
// attribution into one pipeline shared by the CLI and the HTTP API.
package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/catalog"
	"github.com/charmingdata/stock-market-trading/internal/config"
	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/charmingdata/stock-market-trading/internal/ingest"
	"github.com/charmingdata/stock-market-trading/internal/metrics"
	"github.com/charmingdata/stock-market-trading/internal/outcome"
	"github.com/charmingdata/stock-market-trading/internal/prices"
	"github.com/charmingdata/stock-market-trading/internal/simulate"
	"github.com/charmingdata/stock-market-trading/internal/standardize"
)

// Overrides are per-request parameter overrides; zero values fall back
// to the configured defaults.
type Overrides struct {
	Month      string
	WindowDays int
	Size       float64
}

// RunOutput bundles one simulation run's results.
type RunOutput struct {
	Result       *simulate.Result
	Standardized []core.StandardizedTrade
	SetupCount   int
	SkippedRows  int
}

// App is the application orchestrator.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Registry
}

// New creates an App. metrics may be nil when no registry is wired.
func New(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{cfg: cfg, log: log, metrics: reg}
}

// LoadCatalog reads and normalizes the setups table, applying the month
// filter.
func (a *App) LoadCatalog(monthFilter string) (*catalog.Catalog, error) {
	rows, err := ingest.ReadSetups(a.cfg.Data.SetupsPath)
	if err != nil {
		return nil, err
	}
	if monthFilter == "" {
		monthFilter = a.cfg.Simulation.SetupMonthFilter
	}
	cat := catalog.Normalize(rows, monthFilter, a.log)
	if a.metrics != nil && cat.Skipped() > 0 {
		for i := 0; i < cat.Skipped(); i++ {
			a.metrics.RecordSetupSkipped("malformed")
		}
	}
	return cat, nil
}

// LoadSeries reads and normalizes the daily price table.
func (a *App) LoadSeries() (*prices.Series, error) {
	rows, err := ingest.ReadBars(a.cfg.Data.PricesPath)
	if err != nil {
		return nil, err
	}
	return prices.Normalize(rows, a.log), nil
}

// LoadSnapshot reads the current-price table. The table is optional:
// an unconfigured path returns ErrSnapshotMissing and callers valuing
// open positions fall back to realized P&L only.
func (a *App) LoadSnapshot() (prices.Snapshot, error) {
	if a.cfg.Data.SnapshotPath == "" {
		return nil, core.WrapError(core.ErrSnapshotMissing,
			errors.New("data.snapshot_path is not configured"))
	}
	rows, err := ingest.ReadSnapshot(a.cfg.Data.SnapshotPath)
	if err != nil {
		return nil, err
	}
	return prices.NewSnapshot(rows, a.log), nil
}

// Simulate runs the full simulate-and-standardize pipeline.
func (a *App) Simulate(ctx context.Context, ov Overrides) (*RunOutput, error) {
	start := time.Now()
	out, err := a.simulate(ctx, ov)
	if a.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordSimulation(status, time.Since(start).Seconds())
	}
	return out, err
}

func (a *App) simulate(ctx context.Context, ov Overrides) (*RunOutput, error) {
	cat, err := a.LoadCatalog(ov.Month)
	if err != nil {
		return nil, err
	}
	series, err := a.LoadSeries()
	if err != nil {
		return nil, err
	}

	window := a.cfg.Simulation.EntryWindowBusinessDays
	if ov.WindowDays > 0 {
		window = ov.WindowDays
	}
	size := a.cfg.Simulation.PositionSize
	if ov.Size > 0 {
		size = ov.Size
	}

	sim, err := simulate.New(simulate.Options{
		EntryWindowDays: window,
		PositionSize:    size,
		Logger:          a.log,
	})
	if err != nil {
		return nil, err
	}

	res, err := sim.Run(ctx, cat, series)
	if err != nil {
		return nil, err
	}

	std, err := standardize.New(res.PositionSize, a.log)
	if err != nil {
		return nil, err
	}
	standardized, err := std.Run(res.Trades)
	if err != nil {
		return nil, err
	}

	if a.metrics != nil {
		for _, tr := range res.Trades {
			a.metrics.RecordFill(string(tr.Action))
		}
		for i := 0; i < res.PositionsOpened; i++ {
			a.metrics.RecordPositionOpened()
		}
		for i := 0; i < res.StopLossExits; i++ {
			a.metrics.RecordPositionClosed("stop_loss")
		}
		for i := 0; i < res.TargetExits; i++ {
			a.metrics.RecordPositionClosed("targets")
		}
		a.metrics.SetOpenPositions(res.OpenAtEnd)
	}

	return &RunOutput{
		Result:       res,
		Standardized: standardized,
		SetupCount:   cat.Len(),
		SkippedRows:  cat.Skipped(),
	}, nil
}

// OutcomeOutput bundles attribution records with the portfolio P&L
// summary for the same filter.
type OutcomeOutput struct {
	Records []core.OutcomeRecord
	Summary outcome.Summary
}

// Outcomes runs the pipeline and attributes an outcome to every opened
// position passing the filter. The snapshot table is optional: without
// it open positions carry zero unrealized P&L.
func (a *App) Outcomes(ctx context.Context, ov Overrides, typeFilter string) (*OutcomeOutput, error) {
	// Attribution walks the whole ledger, so the simulation itself runs
	// unfiltered; the month filter applies to initial fills only.
	out, err := a.Simulate(ctx, Overrides{WindowDays: ov.WindowDays, Size: ov.Size})
	if err != nil {
		return nil, err
	}

	month := ov.Month
	if month == "" {
		month = a.cfg.Simulation.SetupMonthFilter
	}
	if typeFilter == "" {
		typeFilter = a.cfg.Simulation.PositionTypeFilter
	}
	filter := outcome.Filter{Month: month, Type: typeFilter}

	attr, err := outcome.New(outcome.Payoff{
		Notional: a.cfg.Payoff.Notional,
		StopPct:  a.cfg.Payoff.StopPct,
		PT1Pct:   a.cfg.Payoff.PT1Pct,
		PT2Pct:   a.cfg.Payoff.PT2Pct,
		PT3Pct:   a.cfg.Payoff.PT3Pct,
	}, a.log)
	if err != nil {
		return nil, err
	}
	records := attr.Run(out.Result.Trades, filter)

	snapshot, err := a.LoadSnapshot()
	if err != nil {
		a.log.Warn("snapshot table unavailable, unrealized P&L omitted", zap.Error(err))
		snapshot = nil
	}

	summary := outcome.Summarize(out.Standardized, snapshot, out.Result.PositionSize, filter, a.log)

	return &OutcomeOutput{Records: records, Summary: summary}, nil
}

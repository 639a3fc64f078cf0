// Package simulate replays market days in chronological order and
// decides mechanically when positions are opened, scaled out, stopped
// out or closed, producing an append-only ledger of executed trades.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmingdata/stock-market-trading/internal/catalog"
	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/charmingdata/stock-market-trading/internal/prices"
	"go.uber.org/zap"
)

// Options configures a Simulator.
type Options struct {
	// EntryWindowDays is the number of business days after a setup's
	// observation date during which an entry may still occur.
	EntryWindowDays int
	// PositionSize is the dollar notional carried through to
	// standardization; the simulator itself only passes it along.
	PositionSize float64
	Logger       *zap.Logger
}

// Simulator is the day-by-day trade simulation driver.
type Simulator struct {
	entryWindowDays int
	positionSize    float64
	log             *zap.Logger
}

// Result holds the executed trade ledger and run counters.
type Result struct {
	// Trades is the ledger sorted by (date, ticker); within one ticker
	// and date, fills keep execution order.
	Trades       []core.ExecutedTrade
	PositionSize float64

	PositionsOpened int
	StopLossExits   int
	TargetExits     int // positions that completed all three targets
	OpenAtEnd       int
}

// New creates a Simulator, validating its parameters up front.
func New(opts Options) (*Simulator, error) {
	if opts.EntryWindowDays < 1 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("entry window must be at least 1 business day, got %d", opts.EntryWindowDays))
	}
	if opts.PositionSize <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position size must be positive, got %f", opts.PositionSize))
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		entryWindowDays: opts.EntryWindowDays,
		positionSize:    opts.PositionSize,
		log:             log,
	}, nil
}

// Run replays every trading day in the series in ascending order. Each
// day the exit pass fully completes before the entry pass begins, so a
// ticker that closed today can never re-enter the same day.
func (s *Simulator) Run(ctx context.Context, cat *catalog.Catalog, series *prices.Series) (*Result, error) {
	if cat.Len() == 0 {
		return nil, core.WrapError(core.ErrNoData, errors.New("setup catalog is empty"))
	}
	if series.Len() == 0 {
		return nil, core.WrapError(core.ErrNoData, errors.New("price series is empty"))
	}

	ledger := NewLedger()
	result := &Result{PositionSize: s.positionSize}

	for _, date := range series.Dates() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		closedToday := make(map[string]bool)

		// Exit pass over a snapshot of tickers; deletions hit the live map.
		for _, ticker := range ledger.Tickers() {
			pos, ok := ledger.Get(ticker)
			if !ok {
				continue
			}
			bar, ok := series.Bar(ticker, date)
			if !ok {
				continue // no bar today, position persists
			}
			s.applyExits(date, bar, pos, ledger, closedToday, result)
		}

		// Entry pass in catalog order.
		for _, setup := range cat.Setups() {
			s.tryEnter(date, setup, series, ledger, closedToday, result)
		}
	}

	result.OpenAtEnd = ledger.Len()

	sort.SliceStable(result.Trades, func(i, j int) bool {
		a, b := result.Trades[i], result.Trades[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Ticker < b.Ticker
	})

	s.log.Info("simulation complete",
		zap.Int("fills", len(result.Trades)),
		zap.Int("opened", result.PositionsOpened),
		zap.Int("stopped_out", result.StopLossExits),
		zap.Int("targets_completed", result.TargetExits),
		zap.Int("open_at_end", result.OpenAtEnd))

	return result, nil
}

// applyExits runs the per-position daily state machine: the stop-loss
// check first, and only if it did not trigger, the PT1->PT2->PT3 guarded
// transitions. Target checks re-read the share count after each
// transition so a wide bar can cascade through all three in one day.
func (s *Simulator) applyExits(date time.Time, bar core.PriceBar, pos *Position, ledger *Ledger, closedToday map[string]bool, result *Result) {
	ticker := bar.Ticker

	stopHit := false
	if pos.Direction == core.DirectionShort {
		stopHit = bar.High >= pos.CurrentStop
	} else {
		stopHit = bar.Low <= pos.CurrentStop
	}

	if stopHit {
		result.Trades = append(result.Trades, core.ExecutedTrade{
			Date:            date,
			Ticker:          ticker,
			Action:          stopAction(pos.Direction),
			Price:           pos.CurrentStop,
			SharesTraded:    pos.SharesOpen,
			SharesRemaining: 0,
		})
		pos.SharesOpen = 0
		ledger.Close(ticker)
		closedToday[ticker] = true
		result.StopLossExits++
		return
	}

	touched := func(target float64) bool {
		if pos.Direction == core.DirectionShort {
			return bar.Low <= target
		}
		return bar.High >= target
	}

	if !pos.PT1Reached && pos.SharesOpen == 3 && pos.Setup.PT1 != nil && touched(*pos.Setup.PT1) {
		result.Trades = append(result.Trades, core.ExecutedTrade{
			Date:            date,
			Ticker:          ticker,
			Action:          targetAction(1, pos.Direction),
			Price:           *pos.Setup.PT1,
			SharesTraded:    1,
			SharesRemaining: 2,
		})
		pos.SharesOpen = 2
		pos.PT1Reached = true
		pos.CurrentStop = pos.InitialEntryPrice
	}
	if !pos.PT2Reached && pos.SharesOpen == 2 && pos.Setup.PT2 != nil && touched(*pos.Setup.PT2) {
		result.Trades = append(result.Trades, core.ExecutedTrade{
			Date:            date,
			Ticker:          ticker,
			Action:          targetAction(2, pos.Direction),
			Price:           *pos.Setup.PT2,
			SharesTraded:    1,
			SharesRemaining: 1,
		})
		pos.SharesOpen = 1
		pos.PT2Reached = true
		pos.CurrentStop = *pos.Setup.PT1
	}
	if !pos.PT3Reached && pos.SharesOpen == 1 && pos.Setup.PT3 != nil && touched(*pos.Setup.PT3) {
		result.Trades = append(result.Trades, core.ExecutedTrade{
			Date:            date,
			Ticker:          ticker,
			Action:          targetAction(3, pos.Direction),
			Price:           *pos.Setup.PT3,
			SharesTraded:    1,
			SharesRemaining: 0,
		})
		pos.SharesOpen = 0
		pos.PT3Reached = true
		ledger.Close(ticker)
		closedToday[ticker] = true
		result.TargetExits++
	}
}

// tryEnter opens a new three-share position when the setup is eligible
// today and the bar's close lies inside the entry band.
func (s *Simulator) tryEnter(date time.Time, setup core.Setup, series *prices.Series, ledger *Ledger, closedToday map[string]bool, result *Result) {
	ticker := setup.Ticker

	if closedToday[ticker] || ledger.Has(ticker) {
		return
	}
	if date.Before(setup.Observation) {
		return
	}
	if BusinessDaysSince(setup.Observation, date) > s.entryWindowDays {
		return
	}
	bar, ok := series.Bar(ticker, date)
	if !ok {
		return
	}

	// Nil bounds come from coerced nulls; such a setup never triggers.
	if setup.EntryLow == nil || setup.EntryHigh == nil {
		return
	}
	if bar.Close < *setup.EntryLow || bar.Close > *setup.EntryHigh {
		return
	}
	if setup.StopLoss == nil {
		s.log.Warn("setup matched entry band but has no stop-loss, skipping",
			zap.String("ticker", ticker), zap.Time("date", date))
		return
	}

	result.Trades = append(result.Trades, core.ExecutedTrade{
		Date:            date,
		Ticker:          ticker,
		Action:          initialAction(setup.Direction),
		Price:           bar.Close,
		SharesTraded:    3,
		SharesRemaining: 3,
	})
	ledger.Open(ticker, &Position{
		Setup:             setup,
		Direction:         setup.Direction,
		SharesOpen:        3,
		InitialEntryPrice: bar.Close,
		CurrentStop:       *setup.StopLoss,
		OpenedAt:          date,
	})
	result.PositionsOpened++
}

func initialAction(d core.Direction) core.Action {
	if d == core.DirectionShort {
		return core.ActionInitialShort
	}
	return core.ActionInitialBuy
}

func stopAction(d core.Direction) core.Action {
	if d == core.DirectionShort {
		return core.ActionStopLossBuy
	}
	return core.ActionStopLossSell
}

func targetAction(stage int, d core.Direction) core.Action {
	switch stage {
	case 1:
		if d == core.DirectionShort {
			return core.ActionPT1Buy
		}
		return core.ActionPT1Sell
	case 2:
		if d == core.DirectionShort {
			return core.ActionPT2Buy
		}
		return core.ActionPT2Sell
	default:
		if d == core.DirectionShort {
			return core.ActionPT3Buy
		}
		return core.ActionPT3Sell
	}
}

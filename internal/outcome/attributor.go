// Package outcome classifies each opened position as succeeded, failed
// or still unknown, attributes a schedule-derived dollar result to it,
// and summarizes realized and unrealized P&L over the standardized
// ledger.
package outcome

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

// Filter restricts attribution to a slice of the ledger. Month is an
// English month name or "All"; Type is "All", "Long" or "Short".
type Filter struct {
	Month string
	Type  string
}

// Matches reports whether an initial fill passes the filter.
func (f Filter) Matches(tr core.ExecutedTrade) bool {
	if f.Month != "" && f.Month != "All" && core.MonthName(tr.Date) != f.Month {
		return false
	}
	switch f.Type {
	case "", "All":
		return true
	case "Long":
		return tr.Action == core.ActionInitialBuy
	case "Short":
		return tr.Action == core.ActionInitialShort
	}
	return false
}

// Attributor walks the executed-trade ledger and classifies every
// initial fill that passes its filter.
type Attributor struct {
	payoff Payoff
	log    *zap.Logger
}

// New creates an Attributor with the given payoff schedule.
func New(payoff Payoff, log *zap.Logger) (*Attributor, error) {
	if payoff.Notional <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("payoff notional must be positive, got %f", payoff.Notional))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Attributor{payoff: payoff, log: log}, nil
}

// Run classifies the initial fills in trades, which must be in ledger
// order. Each episode spans an initial fill and the same-ticker fills
// that follow it up to the next initial fill on that ticker:
//
//   - a stop-loss before any profit target marks the episode failed;
//   - any profit target marks it succeeded;
//   - no closing fill at all leaves it unknown with a zero dollar
//     outcome (the position was still open when the data ended).
func (a *Attributor) Run(trades []core.ExecutedTrade, filter Filter) []core.OutcomeRecord {
	byTicker := make(map[string][]core.ExecutedTrade)
	for _, tr := range trades {
		byTicker[tr.Ticker] = append(byTicker[tr.Ticker], tr)
	}

	var records []core.OutcomeRecord
	for _, tr := range trades {
		if !tr.Action.IsInitial() || !filter.Matches(tr) {
			continue
		}
		records = append(records, a.classify(tr, byTicker[tr.Ticker]))
	}

	a.log.Info("attributed outcomes",
		zap.Int("positions", len(records)),
		zap.String("month", filter.Month),
		zap.String("type", filter.Type))
	return records
}

// classify builds the outcome record for one initial fill given all of
// its ticker's fills in ledger order.
func (a *Attributor) classify(initial core.ExecutedTrade, fills []core.ExecutedTrade) core.OutcomeRecord {
	// Locate this episode's fills: everything after the initial fill up
	// to the ticker's next initial fill.
	start := -1
	for i, f := range fills {
		if f == initial {
			start = i + 1
			break
		}
	}

	var pt1, pt2, pt3, stopped bool
	if start >= 0 {
		for _, f := range fills[start:] {
			if f.Action.IsInitial() {
				break
			}
			switch f.Action {
			case core.ActionPT1Sell, core.ActionPT1Buy:
				pt1 = true
			case core.ActionPT2Sell, core.ActionPT2Buy:
				pt2 = true
			case core.ActionPT3Sell, core.ActionPT3Buy:
				pt3 = true
			case core.ActionStopLossSell, core.ActionStopLossBuy:
				stopped = true
			}
			if stopped {
				break
			}
		}
	}

	result := core.OutcomeUnknown
	switch {
	case pt1:
		result = core.OutcomeSucceeded
	case stopped:
		result = core.OutcomeFailed
	}

	return core.OutcomeRecord{
		Date:          initial.Date,
		Ticker:        initial.Ticker,
		InitialAction: initial.Action,
		InitialPrice:  initial.Price,
		Outcome:       result,
		OutcomeDollar: a.payoff.dollars(pt1, pt2, pt3, stopped),
	}
}

// Package standardize rescales executed trades to a common
// initial-position-size basis so fills on a $500 stock and a $5 stock
// contribute comparable dollar values to the aggregate ledger.
package standardize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

// Standardizer converts an executed-trade ledger into standardized
// dollar values. PositionSize is the common notional every initial
// fill is scaled to.
type Standardizer struct {
	positionSize float64
	log          *zap.Logger
}

// New creates a Standardizer. positionSize must be positive.
func New(positionSize float64, log *zap.Logger) (*Standardizer, error) {
	if positionSize <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position size must be positive, got %f", positionSize))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Standardizer{positionSize: positionSize, log: log}, nil
}

// Run standardizes a ledger. Trades must be in ledger order (sorted by
// date, then ticker) so the per-ticker multiplier forward-fill sees each
// episode's initial fill before its closing fills.
//
// Every initial fill sets its ticker's multiplier to
// positionSize / fill price; a later episode on the same ticker
// overwrites it. A closing fill on a ticker with no prior initial fill
// violates ledger ordering and fails with ErrMultiplierMissing.
func (s *Standardizer) Run(trades []core.ExecutedTrade) ([]core.StandardizedTrade, error) {
	multipliers := make(map[string]float64)
	out := make([]core.StandardizedTrade, 0, len(trades))

	for i, tr := range trades {
		if tr.Action.IsInitial() {
			if tr.Price <= 0 {
				return nil, core.WrapError(core.ErrLedgerInvalid,
					fmt.Errorf("row %d: initial fill for %s has non-positive price %f", i, tr.Ticker, tr.Price))
			}
			multipliers[tr.Ticker] = s.positionSize / tr.Price
		}

		mult, ok := multipliers[tr.Ticker]
		if !ok {
			return nil, core.WrapError(core.ErrMultiplierMissing,
				fmt.Errorf("row %d: %s fill for %s precedes any initial fill", i, tr.Action, tr.Ticker))
		}

		value, err := standardizedValue(tr, mult)
		if err != nil {
			return nil, err
		}

		out = append(out, core.StandardizedTrade{
			ExecutedTrade: tr,
			Multiplier:    mult,
			Standardized:  value,
			Month:         core.MonthName(tr.Date),
		})
	}

	s.log.Info("standardized trade ledger",
		zap.Int("trades", len(out)),
		zap.Int("tickers", len(multipliers)),
		zap.Float64("position_size", s.positionSize))
	return out, nil
}

// standardizedValue computes the signed dollar value of one fill.
// Initial fills carry the full base notional; closing fills scale the
// base by the fraction of the position they close. Buy-side fills are
// cash outflows (negative), sell-side fills inflows (positive).
func standardizedValue(tr core.ExecutedTrade, mult float64) (float64, error) {
	base := mult * tr.Price

	if !tr.Action.IsInitial() {
		switch tr.SharesTraded {
		case 1:
			base /= 3
		case 2:
			base = base * 2 / 3
		case 3:
			// stop-loss before any target: full position
		default:
			return 0, core.WrapError(core.ErrLedgerInvalid,
				fmt.Errorf("%s fill for %s closes %d shares, want 1..3", tr.Action, tr.Ticker, tr.SharesTraded))
		}
	}

	switch {
	case tr.Action.IsBuySide():
		return -base, nil
	case tr.Action.IsSellSide():
		return base, nil
	default:
		return 0, core.WrapError(core.ErrLedgerInvalid,
			fmt.Errorf("unknown action %q for %s", tr.Action, tr.Ticker))
	}
}

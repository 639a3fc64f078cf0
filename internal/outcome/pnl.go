package outcome

import (
	"sort"

	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

// QuoteSource supplies a current close price per ticker for valuing
// open shares. prices.Snapshot satisfies it.
type QuoteSource interface {
	Close(ticker string) (float64, bool)
}

// TickerPnL is one ticker's realized and unrealized P&L over the
// standardized ledger.
type TickerPnL struct {
	Ticker     string
	Status     string // "Open" or "Closed"
	SharesOpen int
	Realized   float64
	Unrealized float64
	Total      float64
}

// Summary aggregates per-ticker P&L with portfolio totals. Capital
// deployed counts every opened position at the common position size, so
// the percentage reflects turnover rather than peak exposure.
type Summary struct {
	Tickers         []TickerPnL
	TotalRealized   float64
	TotalUnrealized float64
	TotalPnL        float64
	PositionsOpened int
	CapitalDeployed float64
	TotalPnLPercent float64
}

// episode accumulates one ticker's running position state while
// scanning its standardized fills in ledger order.
type episode struct {
	avgEntryStd float64 // signed standardized entry price per share
	anchorPrice float64 // raw initial fill price, for revaluing
	direction   core.Direction
	sharesOpen  int
}

// Summarize computes per-ticker realized and unrealized P&L from the
// standardized ledger. trades must be in ledger order. quotes values
// any shares still open; a ticker with open shares but no quote
// contributes zero unrealized P&L and logs a warning.
func Summarize(trades []core.StandardizedTrade, quotes QuoteSource, positionSize float64, filter Filter, log *zap.Logger) Summary {
	if log == nil {
		log = zap.NewNop()
	}

	type tickerState struct {
		episode
		active   bool // current episode passes the filter
		realized float64
		opened   int
	}
	states := make(map[string]*tickerState)

	for _, tr := range trades {
		st := states[tr.Ticker]
		if st == nil {
			st = &tickerState{}
			states[tr.Ticker] = st
		}

		if tr.Action.IsInitial() {
			// The whole episode is in or out of the filter together.
			st.active = filter.Matches(tr.ExecutedTrade)
			if !st.active {
				st.episode = episode{}
				continue
			}
			direction := core.DirectionLong
			if tr.Action == core.ActionInitialShort {
				direction = core.DirectionShort
			}
			st.episode = episode{
				avgEntryStd: tr.Standardized / float64(tr.SharesTraded),
				anchorPrice: tr.Price,
				direction:   direction,
				sharesOpen:  tr.SharesTraded,
			}
			st.opened++
			continue
		}

		if !st.active {
			continue
		}

		// Closing fill: per-share exit value plus the signed entry value
		// nets the per-share profit for either direction.
		exitPerShare := tr.Standardized / float64(tr.SharesTraded)
		st.realized += (exitPerShare + st.avgEntryStd) * float64(tr.SharesTraded)
		st.sharesOpen -= tr.SharesTraded
		if st.sharesOpen < 0 {
			st.sharesOpen = 0
		}
	}

	var sum Summary
	tickers := make([]string, 0, len(states))
	for t, st := range states {
		if st.opened > 0 {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		st := states[t]
		row := TickerPnL{Ticker: t, Status: "Closed", Realized: st.realized}

		if st.sharesOpen > 0 {
			row.Status = "Open"
			row.SharesOpen = st.sharesOpen
			if current, ok := quoteFor(quotes, t); ok {
				currentStd := (current / st.anchorPrice) * st.avgEntryStd
				if st.direction == core.DirectionLong {
					row.Unrealized = (currentStd - st.avgEntryStd) * -float64(st.sharesOpen)
				} else {
					row.Unrealized = (st.avgEntryStd - currentStd) * float64(st.sharesOpen)
				}
			} else {
				log.Warn("no current price for open position, unrealized P&L omitted",
					zap.String("ticker", t),
					zap.Int("shares_open", st.sharesOpen))
			}
		}

		row.Total = row.Realized + row.Unrealized
		sum.Tickers = append(sum.Tickers, row)
		sum.TotalRealized += row.Realized
		sum.TotalUnrealized += row.Unrealized
		sum.PositionsOpened += st.opened
	}

	sum.TotalPnL = sum.TotalRealized + sum.TotalUnrealized
	sum.CapitalDeployed = float64(sum.PositionsOpened) * positionSize
	if sum.CapitalDeployed > 0 {
		sum.TotalPnLPercent = sum.TotalPnL / sum.CapitalDeployed * 100
	}
	return sum
}

func quoteFor(quotes QuoteSource, ticker string) (float64, bool) {
	if quotes == nil {
		return 0, false
	}
	return quotes.Close(ticker)
}

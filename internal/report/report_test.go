package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/charmingdata/stock-market-trading/internal/outcome"
	"github.com/charmingdata/stock-market-trading/internal/simulate"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRenderTradesCSV(t *testing.T) {
	trades := []core.ExecutedTrade{
		{Date: day(2025, time.June, 2), Ticker: "AAPL", Action: core.ActionInitialBuy, Price: 50.25, SharesTraded: 3, SharesRemaining: 3},
		{Date: day(2025, time.June, 4), Ticker: "AAPL", Action: core.ActionPT1Sell, Price: 55, SharesTraded: 1, SharesRemaining: 2},
	}

	out := RenderTradesCSV(trades)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,ticker,action,price,shares_traded,shares_remaining", lines[0])
	assert.Equal(t, "2025-06-02,AAPL,Initial Buy,50.2500,3,3", lines[1])
	assert.Equal(t, "2025-06-04,AAPL,PT1 Sell,55.0000,1,2", lines[2])
}

func TestRenderTradesCSV_Empty(t *testing.T) {
	out := RenderTradesCSV(nil)
	assert.Equal(t, "date,ticker,action,price,shares_traded,shares_remaining\n", out)
}

func TestRenderStandardizedCSV(t *testing.T) {
	trades := []core.StandardizedTrade{
		{
			ExecutedTrade: core.ExecutedTrade{
				Date: day(2025, time.June, 2), Ticker: "AAPL",
				Action: core.ActionInitialBuy, Price: 50,
				SharesTraded: 3, SharesRemaining: 3,
			},
			Multiplier:   10,
			Standardized: -500,
			Month:        "June",
		},
	}

	out := RenderStandardizedCSV(trades)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-06-02,AAPL,Initial Buy,50.0000,3,3,10.000000,-500.0000,June", lines[1])
}

func TestRenderOutcomesCSVAndText(t *testing.T) {
	records := []core.OutcomeRecord{
		{Date: day(2025, time.April, 1), Ticker: "WIN", InitialAction: core.ActionInitialBuy, InitialPrice: 100, Outcome: core.OutcomeSucceeded, OutcomeDollar: 74},
		{Date: day(2025, time.April, 3), Ticker: "LOSE", InitialAction: core.ActionInitialShort, InitialPrice: 50, Outcome: core.OutcomeFailed, OutcomeDollar: -27},
		{Date: day(2025, time.April, 9), Ticker: "OPEN", InitialAction: core.ActionInitialBuy, InitialPrice: 20, Outcome: core.OutcomeUnknown, OutcomeDollar: 0},
	}

	csv := RenderOutcomesCSV(records)
	assert.Contains(t, csv, "2025-04-01,WIN,Initial Buy,100.0000,succeeded,74.00")
	assert.Contains(t, csv, "2025-04-03,LOSE,Initial Short,50.0000,failed,-27.00")

	text := RenderOutcomesText(records)
	assert.Contains(t, text, "positions: 3  succeeded: 1  failed: 1  unknown: 1  net: 47.00")
}

func TestRenderPnLText(t *testing.T) {
	sum := outcome.Summary{
		Tickers: []outcome.TickerPnL{
			{Ticker: "AAPL", Status: "Open", SharesOpen: 2, Realized: 16.67, Unrealized: 66.67, Total: 83.34},
		},
		TotalRealized:   16.67,
		TotalUnrealized: 66.67,
		TotalPnL:        83.34,
		PositionsOpened: 1,
		CapitalDeployed: 500,
		TotalPnLPercent: 16.67,
	}

	out := RenderPnLText(sum)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "capital deployed:  500.00")
	assert.Contains(t, out, "total P&L:         83.34 (16.67%)")
}

func TestRenderRunSummary(t *testing.T) {
	res := &simulate.Result{
		Trades:          make([]core.ExecutedTrade, 4),
		PositionsOpened: 2,
		StopLossExits:   1,
		TargetExits:     0,
		OpenAtEnd:       1,
	}

	out := RenderRunSummary(res)
	assert.Contains(t, out, "trades executed:   4")
	assert.Contains(t, out, "positions opened:  2")
	assert.Contains(t, out, "open at end:       1")
}

// Package report renders the simulation's output tables as CSV and
// plain text.
package report

import (
	"fmt"
	"strings"

	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/charmingdata/stock-market-trading/internal/outcome"
	"github.com/charmingdata/stock-market-trading/internal/simulate"
)

const dateLayout = "2006-01-02"

// RenderTradesCSV renders the executed-trade ledger as CSV.
func RenderTradesCSV(trades []core.ExecutedTrade) string {
	var sb strings.Builder

	sb.WriteString("date,ticker,action,price,shares_traded,shares_remaining\n")
	for _, tr := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.4f,%d,%d\n",
			tr.Date.Format(dateLayout),
			tr.Ticker,
			tr.Action,
			tr.Price,
			tr.SharesTraded,
			tr.SharesRemaining,
		))
	}

	return sb.String()
}

// RenderStandardizedCSV renders the standardized ledger as CSV.
func RenderStandardizedCSV(trades []core.StandardizedTrade) string {
	var sb strings.Builder

	sb.WriteString("date,ticker,action,price,shares_traded,shares_remaining,multiplier,standardized,month\n")
	for _, tr := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.4f,%d,%d,%.6f,%.4f,%s\n",
			tr.Date.Format(dateLayout),
			tr.Ticker,
			tr.Action,
			tr.Price,
			tr.SharesTraded,
			tr.SharesRemaining,
			tr.Multiplier,
			tr.Standardized,
			tr.Month,
		))
	}

	return sb.String()
}

// RenderOutcomesCSV renders outcome attribution records as CSV.
func RenderOutcomesCSV(records []core.OutcomeRecord) string {
	var sb strings.Builder

	sb.WriteString("date,ticker,initial_action,initial_price,outcome,outcome_dollar\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.4f,%s,%.2f\n",
			rec.Date.Format(dateLayout),
			rec.Ticker,
			rec.InitialAction,
			rec.InitialPrice,
			rec.Outcome,
			rec.OutcomeDollar,
		))
	}

	return sb.String()
}

// RenderOutcomesText renders attribution records with tallies as a
// readable table for the CLI.
func RenderOutcomesText(records []core.OutcomeRecord) string {
	var sb strings.Builder

	var succeeded, failed, unknown int
	var total float64
	for _, rec := range records {
		switch rec.Outcome {
		case core.OutcomeSucceeded:
			succeeded++
		case core.OutcomeFailed:
			failed++
		default:
			unknown++
		}
		total += rec.OutcomeDollar
	}

	sb.WriteString(fmt.Sprintf("%-12s %-8s %-14s %10s %-10s %10s\n",
		"DATE", "TICKER", "ACTION", "PRICE", "OUTCOME", "DOLLAR"))
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%-12s %-8s %-14s %10.2f %-10s %10.2f\n",
			rec.Date.Format(dateLayout),
			rec.Ticker,
			rec.InitialAction,
			rec.InitialPrice,
			rec.Outcome,
			rec.OutcomeDollar,
		))
	}
	sb.WriteString(fmt.Sprintf("\npositions: %d  succeeded: %d  failed: %d  unknown: %d  net: %.2f\n",
		len(records), succeeded, failed, unknown, total))

	return sb.String()
}

// RenderPnLText renders the portfolio P&L summary for the CLI.
func RenderPnLText(sum outcome.Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-8s %-8s %6s %12s %12s %12s\n",
		"TICKER", "STATUS", "OPEN", "REALIZED", "UNREALIZED", "TOTAL"))
	for _, row := range sum.Tickers {
		sb.WriteString(fmt.Sprintf("%-8s %-8s %6d %12.2f %12.2f %12.2f\n",
			row.Ticker, row.Status, row.SharesOpen,
			row.Realized, row.Unrealized, row.Total))
	}
	sb.WriteString(fmt.Sprintf("\npositions opened:  %d\n", sum.PositionsOpened))
	sb.WriteString(fmt.Sprintf("capital deployed:  %.2f\n", sum.CapitalDeployed))
	sb.WriteString(fmt.Sprintf("realized P&L:      %.2f\n", sum.TotalRealized))
	sb.WriteString(fmt.Sprintf("unrealized P&L:    %.2f\n", sum.TotalUnrealized))
	sb.WriteString(fmt.Sprintf("total P&L:         %.2f (%.2f%%)\n", sum.TotalPnL, sum.TotalPnLPercent))

	return sb.String()
}

// RenderRunSummary renders the simulation run counters for the CLI.
func RenderRunSummary(res *simulate.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("trades executed:   %d\n", len(res.Trades)))
	sb.WriteString(fmt.Sprintf("positions opened:  %d\n", res.PositionsOpened))
	sb.WriteString(fmt.Sprintf("stop-loss exits:   %d\n", res.StopLossExits))
	sb.WriteString(fmt.Sprintf("target exits:      %d\n", res.TargetExits))
	sb.WriteString(fmt.Sprintf("open at end:       %d\n", res.OpenAtEnd))

	return sb.String()
}

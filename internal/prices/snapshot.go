package prices

import (
	"strings"

	"go.uber.org/zap"
)

// RawQuote is one unparsed current-price row.
type RawQuote struct {
	Date   string
	Ticker string
	Close  string
}

// Snapshot maps tickers to their most recent close, used to mark open
// positions for unrealized P&L.
type Snapshot map[string]float64

// NewSnapshot parses raw quote rows into a Snapshot. Malformed rows are
// dropped with a warning; a later row for the same ticker wins.
func NewSnapshot(rows []RawQuote, log *zap.Logger) Snapshot {
	snap := make(Snapshot, len(rows))
	for _, row := range rows {
		ticker := strings.TrimSpace(row.Ticker)
		if ticker == "" {
			continue
		}
		price, err := parseBarFloat(row.Close)
		if err != nil {
			log.Warn("dropping snapshot row with malformed close",
				zap.String("ticker", ticker), zap.String("close", row.Close))
			continue
		}
		snap[ticker] = price
	}
	return snap
}

// Close returns the snapshot close for a ticker, if present.
func (s Snapshot) Close(ticker string) (float64, bool) {
	price, ok := s[ticker]
	return price, ok
}

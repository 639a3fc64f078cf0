package simulate

import (
	"sort"
	"time"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

// Position is the mutable state of one open trade episode on a ticker:
// three equal share units peeled off by successive profit targets, with
// a stop that ratchets tighter after each of the first two targets.
type Position struct {
	Setup             core.Setup
	Direction         core.Direction
	SharesOpen        int
	PT1Reached        bool
	PT2Reached        bool
	PT3Reached        bool
	InitialEntryPrice float64
	CurrentStop       float64
	OpenedAt          time.Time
}

// Ledger tracks at most one open position per ticker. It is owned by a
// single Simulator run and is not safe for concurrent use; the per-day
// loop depends on strictly sequential mutation.
type Ledger struct {
	positions map[string]*Position
}

// NewLedger creates an empty position ledger.
func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*Position)}
}

// Open records a new position for a ticker. The caller must ensure the
// ticker has no open position.
func (l *Ledger) Open(ticker string, pos *Position) {
	l.positions[ticker] = pos
}

// Get returns the open position for a ticker, if any. The returned
// pointer is live: mutations apply to the ledger's state.
func (l *Ledger) Get(ticker string) (*Position, bool) {
	pos, ok := l.positions[ticker]
	return pos, ok
}

// Has reports whether a ticker currently has an open position.
func (l *Ledger) Has(ticker string) bool {
	_, ok := l.positions[ticker]
	return ok
}

// Close removes a ticker's position from the ledger.
func (l *Ledger) Close(ticker string) {
	delete(l.positions, ticker)
}

// Tickers returns a sorted snapshot of tickers with open positions.
// The exit pass iterates this snapshot so positions can be deleted from
// the live map mid-pass.
func (l *Ledger) Tickers() []string {
	tickers := make([]string, 0, len(l.positions))
	for t := range l.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Len returns the number of open positions.
func (l *Ledger) Len() int {
	return len(l.positions)
}

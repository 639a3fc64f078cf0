// Package catalog normalizes raw trade-setup rows into validated setups.
package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmingdata/stock-market-trading/internal/core"
	"go.uber.org/zap"
)

// RawSetup is one unparsed setup row, fields as they appear in the
// source table.
type RawSetup struct {
	Ticker         string
	Trade          string // "buy" or "short"
	Observation    string
	EarningsReport string
	EnterFrom      string
	EnterTo        string
	StopLoss       string
	PT1            string
	PT2            string
	PT3            string
}

// Catalog holds the validated setups in their source order.
type Catalog struct {
	setups  []core.Setup
	skipped int
}

// Normalize parses raw setup rows into a Catalog.
//
// Rows with an empty ticker, unknown trade direction or unparseable
// observation date are skipped with a warning; they never abort the run.
// Numeric fields coerce to nil on malformed input, which leaves the
// affected setup inert rather than failing. monthFilter is "All" or an
// English month name matched against the observation month.
func Normalize(rows []RawSetup, monthFilter string, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{}

	for _, row := range rows {
		ticker := strings.TrimSpace(row.Ticker)
		if ticker == "" {
			c.skipped++
			continue
		}

		dir := core.Direction(strings.ToLower(strings.TrimSpace(row.Trade)))
		if !dir.IsValid() {
			log.Warn("skipping setup with unknown trade direction",
				zap.String("ticker", ticker), zap.String("trade", row.Trade))
			c.skipped++
			continue
		}

		obs, err := parseDate(row.Observation)
		if err != nil {
			log.Warn("skipping setup with unparseable observation date",
				zap.String("ticker", ticker), zap.String("observation", row.Observation))
			c.skipped++
			continue
		}

		if monthFilter != "All" && core.MonthName(obs) != monthFilter {
			continue
		}

		s := core.Setup{
			Ticker:      ticker,
			Direction:   dir,
			Observation: obs,
			StopLoss:    parseFloat(row.StopLoss),
			PT1:         parseFloat(row.PT1),
			PT2:         parseFloat(row.PT2),
			PT3:         parseFloat(row.PT3),
		}

		// e_report is optional and tolerant of garbage.
		if er, err := parseDate(row.EarningsReport); err == nil {
			s.EarningsReport = &er
		}

		// For shorts the raw "from" is the higher bound, so the band is
		// swapped to keep EntryLow <= EntryHigh.
		from := parseFloat(row.EnterFrom)
		to := parseFloat(row.EnterTo)
		if dir == core.DirectionShort {
			s.EntryLow, s.EntryHigh = to, from
		} else {
			s.EntryLow, s.EntryHigh = from, to
		}

		c.setups = append(c.setups, s)
	}

	return c
}

// FromSetups builds a Catalog from already-validated setups, preserving
// their order.
func FromSetups(setups []core.Setup) *Catalog {
	return &Catalog{setups: setups}
}

// Setups returns the validated setups in source order.
func (c *Catalog) Setups() []core.Setup {
	return c.setups
}

// Len returns the number of validated setups.
func (c *Catalog) Len() int {
	return len(c.setups)
}

// Skipped returns the number of rows dropped during normalization.
func (c *Catalog) Skipped() int {
	return c.skipped
}

// Tickers returns the distinct tickers in first-appearance order.
func (c *Catalog) Tickers() []string {
	seen := make(map[string]bool, len(c.setups))
	var tickers []string
	for _, s := range c.setups {
		if !seen[s.Ticker] {
			seen[s.Ticker] = true
			tickers = append(tickers, s.Ticker)
		}
	}
	return tickers
}

// dateLayouts covers the source's M/D/YYYY convention plus ISO dates.
var dateLayouts = []string{"1/2/2006", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return core.DateOnly(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

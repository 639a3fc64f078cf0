// Package prices normalizes daily OHLCV rows into a date-sorted series
// with point lookups by ticker and date.
package prices

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmingdata/stock-market-trading/internal/core"
	"go.uber.org/zap"
)

// RawBar is one unparsed price row.
type RawBar struct {
	Date   string
	Ticker string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

type barKey struct {
	ticker string
	date   time.Time
}

// Series is a per-ticker, date-sorted sequence of daily bars.
// At most one bar exists per (ticker, date).
type Series struct {
	bars    []core.PriceBar
	byKey   map[barKey]core.PriceBar
	byDate  map[time.Time][]core.PriceBar
	dates   []time.Time
	skipped int
}

// Normalize parses raw price rows into a Series. Rows with unparseable
// dates or numeric fields are dropped with a warning, as are duplicate
// (ticker, date) pairs. No gap filling is performed.
func Normalize(rows []RawBar, log *zap.Logger) *Series {
	bars := make([]core.PriceBar, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		ticker := strings.TrimSpace(row.Ticker)
		if ticker == "" {
			skipped++
			continue
		}

		date, err := parseBarDate(row.Date)
		if err != nil {
			log.Warn("dropping price row with unparseable date",
				zap.String("ticker", ticker), zap.String("date", row.Date))
			skipped++
			continue
		}

		open, err1 := parseBarFloat(row.Open)
		high, err2 := parseBarFloat(row.High)
		low, err3 := parseBarFloat(row.Low)
		closePrice, err4 := parseBarFloat(row.Close)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			log.Warn("dropping price row with malformed OHLC field",
				zap.String("ticker", ticker), zap.Time("date", date))
			skipped++
			continue
		}

		// Volume sometimes arrives as a float literal; tolerate that.
		var volume int64
		if v, err := parseBarFloat(row.Volume); err == nil {
			volume = int64(v)
		}

		bars = append(bars, core.PriceBar{
			Ticker: ticker,
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	s := FromBars(bars, log)
	s.skipped += skipped
	return s
}

// FromBars builds a Series from already-typed bars, sorting by
// (date, ticker) and dropping duplicate (ticker, date) entries.
func FromBars(bars []core.PriceBar, log *zap.Logger) *Series {
	sorted := make([]core.PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})

	s := &Series{
		byKey:  make(map[barKey]core.PriceBar, len(sorted)),
		byDate: make(map[time.Time][]core.PriceBar),
	}

	for _, bar := range sorted {
		key := barKey{ticker: bar.Ticker, date: bar.Date}
		if _, dup := s.byKey[key]; dup {
			log.Warn("dropping duplicate price bar",
				zap.String("ticker", bar.Ticker), zap.Time("date", bar.Date))
			s.skipped++
			continue
		}
		s.byKey[key] = bar
		s.bars = append(s.bars, bar)
		if len(s.byDate[bar.Date]) == 0 {
			s.dates = append(s.dates, bar.Date)
		}
		s.byDate[bar.Date] = append(s.byDate[bar.Date], bar)
	}

	return s
}

// Dates returns the sorted distinct trading dates in the series.
func (s *Series) Dates() []time.Time {
	return s.dates
}

// BarsOn returns all bars for the given date in ticker order.
func (s *Series) BarsOn(date time.Time) []core.PriceBar {
	return s.byDate[core.DateOnly(date)]
}

// Bar returns the single bar for a ticker on a date, if present.
func (s *Series) Bar(ticker string, date time.Time) (core.PriceBar, bool) {
	bar, ok := s.byKey[barKey{ticker: ticker, date: core.DateOnly(date)}]
	return bar, ok
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// Skipped returns the number of rows dropped during normalization.
func (s *Series) Skipped() int {
	return s.skipped
}

// barDateLayouts covers ISO dates, timezone-tagged timestamps as written
// by price exporters, and the M/D/YYYY convention.
var barDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"1/2/2006",
}

func parseBarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range barDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return core.DateOnly(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseBarFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

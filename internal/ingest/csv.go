// Package ingest reads the three input CSV tables into raw row types.
// Parsing and validation happen downstream (catalog, prices); ingest
// only maps columns by header name so column order does not matter and
// extra columns such as Dividends or Stock Splits are ignored.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmingdata/stock-market-trading/internal/catalog"
	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/charmingdata/stock-market-trading/internal/prices"
)

// header maps lowercased column names to their index.
type header map[string]int

func readTable(r io.Reader, path string) (header, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, validated per column

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, core.WrapError(core.ErrDataInvalid,
			fmt.Errorf("reading %s: %w", path, err))
	}
	if len(records) == 0 {
		return nil, nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("%s is empty", path))
	}

	h := make(header, len(records[0]))
	for i, name := range records[0] {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, records[1:], nil
}

// field returns the named column of a row, or "" when the column is
// absent or the row is too short.
func (h header) field(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (h header) require(path string, names ...string) error {
	for _, name := range names {
		if _, ok := h[name]; !ok {
			return core.WrapError(core.ErrDataInvalid,
				fmt.Errorf("%s: missing column %q", path, name))
		}
	}
	return nil
}

// ReadSetups reads the trade-setups table. Expected columns: ticker,
// trade, observation, e_report, enter_from, enter_to, stoploss, pt1,
// pt2, pt3.
func ReadSetups(path string) ([]catalog.RawSetup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("opening setups file: %w", err))
	}
	defer f.Close()
	return readSetups(f, path)
}

func readSetups(r io.Reader, path string) ([]catalog.RawSetup, error) {
	h, rows, err := readTable(r, path)
	if err != nil {
		return nil, err
	}
	if err := h.require(path, "ticker", "trade", "observation"); err != nil {
		return nil, err
	}

	out := make([]catalog.RawSetup, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalog.RawSetup{
			Ticker:         h.field(row, "ticker"),
			Trade:          h.field(row, "trade"),
			Observation:    h.field(row, "observation"),
			EarningsReport: h.field(row, "e_report"),
			EnterFrom:      h.field(row, "enter_from"),
			EnterTo:        h.field(row, "enter_to"),
			StopLoss:       h.field(row, "stoploss"),
			PT1:            h.field(row, "pt1"),
			PT2:            h.field(row, "pt2"),
			PT3:            h.field(row, "pt3"),
		})
	}
	return out, nil
}

// ReadBars reads the daily price-history table. Expected columns: Date,
// Ticker, Open, High, Low, Close, Volume; Dividends and Stock Splits
// columns are dropped.
func ReadBars(path string) ([]prices.RawBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("opening prices file: %w", err))
	}
	defer f.Close()
	return readBars(f, path)
}

func readBars(r io.Reader, path string) ([]prices.RawBar, error) {
	h, rows, err := readTable(r, path)
	if err != nil {
		return nil, err
	}
	if err := h.require(path, "date", "ticker", "close"); err != nil {
		return nil, err
	}

	out := make([]prices.RawBar, 0, len(rows))
	for _, row := range rows {
		out = append(out, prices.RawBar{
			Date:   h.field(row, "date"),
			Ticker: h.field(row, "ticker"),
			Open:   h.field(row, "open"),
			High:   h.field(row, "high"),
			Low:    h.field(row, "low"),
			Close:  h.field(row, "close"),
			Volume: h.field(row, "volume"),
		})
	}
	return out, nil
}

// ReadSnapshot reads the current-price table. Expected columns: Date,
// Ticker, Close.
func ReadSnapshot(path string) ([]prices.RawQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("opening snapshot file: %w", err))
	}
	defer f.Close()
	return readSnapshot(f, path)
}

func readSnapshot(r io.Reader, path string) ([]prices.RawQuote, error) {
	h, rows, err := readTable(r, path)
	if err != nil {
		return nil, err
	}
	if err := h.require(path, "ticker", "close"); err != nil {
		return nil, err
	}

	out := make([]prices.RawQuote, 0, len(rows))
	for _, row := range rows {
		out = append(out, prices.RawQuote{
			Date:   h.field(row, "date"),
			Ticker: h.field(row, "ticker"),
			Close:  h.field(row, "close"),
		})
	}
	return out, nil
}

// Package yahoo fetches daily bars and current quotes from the Yahoo
// Finance chart API to populate the price-history and snapshot tables.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validTicker matches plain equity tickers like AAPL or BRK.B.
var validTicker = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

func validateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// Client fetches from the Yahoo Finance chart endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a Yahoo Finance client.
func New(log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchHistory fetches daily OHLCV bars for a ticker over [start, end).
// Bars with missing quote data are skipped, and bar timestamps are
// truncated to their UTC calendar date.
func (c *Client) FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]core.PriceBar, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, ticker, start.Unix(), end.Unix())
	result, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("no quote data for ticker: %s", ticker))
	}
	quotes := r.Indicators.Quote[0]

	bars := make([]core.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quotes.Open) || quotes.Open[i] == nil || quotes.High[i] == nil ||
			quotes.Low[i] == nil || quotes.Close[i] == nil {
			continue
		}
		var volume int64
		if i < len(quotes.Volume) && quotes.Volume[i] != nil {
			volume = int64(*quotes.Volume[i])
		}
		bars = append(bars, core.PriceBar{
			Ticker: ticker,
			Date:   core.DateOnly(time.Unix(int64(ts), 0).UTC()),
			Open:   *quotes.Open[i],
			High:   *quotes.High[i],
			Low:    *quotes.Low[i],
			Close:  *quotes.Close[i],
			Volume: volume,
		})
	}

	c.log.Debug("fetched price history",
		zap.String("ticker", ticker),
		zap.Int("bars", len(bars)))
	return bars, nil
}

// Quote is one current-price observation.
type Quote struct {
	Ticker string
	Price  float64
	Time   time.Time
}

// FetchQuote fetches the latest regular-market price for a ticker.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, ticker)
	result, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	meta := result.Chart.Result[0].Meta
	return &Quote{
		Ticker: ticker,
		Price:  meta.RegularMarketPrice,
		Time:   time.Unix(int64(meta.RegularMarketTime), 0).UTC(),
	}, nil
}

func (c *Client) get(ctx context.Context, url string) (*chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("decoding response: %w", err))
	}
	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("empty chart result"))
	}
	return &result, nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int     `json:"regularMarketTime"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}

package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

func TestValidateTicker(t *testing.T) {
	tests := []struct {
		ticker string
		ok     bool
	}{
		{"AAPL", true},
		{"BRK.B", true},
		{"600519.SS", true},
		{"", false},
		{"BAD TICKER", false},
		{"WAYTOOLONGFORREAL", false},
	}

	for _, tc := range tests {
		err := validateTicker(tc.ticker)
		if tc.ok && err != nil {
			t.Errorf("validateTicker(%q) = %v, want nil", tc.ticker, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("validateTicker(%q) = nil, want error", tc.ticker)
		}
	}
}

func chartJSON(ts int64) string {
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":"AAPL","regularMarketPrice":201.5,"regularMarketTime":%d},
		"timestamp":[%d,%d],
		"indicators":{"quote":[{
			"open":[10.0,null],
			"high":[11.0,12.0],
			"low":[9.5,10.0],
			"close":[10.5,11.5],
			"volume":[1000,2000]
		}]}
	}],"error":null}}`, ts, ts, ts+86400)
}

func TestFetchHistory(t *testing.T) {
	ts := time.Date(2025, time.April, 14, 13, 30, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(ts))
	}))
	defer srv.Close()

	c := New(zap.NewNop(), WithBaseURL(srv.URL))
	bars, err := c.FetchHistory(context.Background(), "AAPL",
		time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 16, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}

	// Second bar has a null open and is skipped.
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	bar := bars[0]
	if bar.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", bar.Ticker)
	}
	if !bar.Date.Equal(time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date truncated to 2025-04-14, got %v", bar.Date)
	}
	if bar.Close != 10.5 || bar.Volume != 1000 {
		t.Errorf("unexpected bar values: %+v", bar)
	}
}

func TestFetchQuote(t *testing.T) {
	ts := time.Date(2025, time.June, 30, 20, 0, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(ts))
	}))
	defer srv.Close()

	c := New(zap.NewNop(), WithBaseURL(srv.URL))
	quote, err := c.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if quote.Price != 201.5 {
		t.Errorf("expected price 201.5, got %v", quote.Price)
	}
	if quote.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", quote.Ticker)
	}
}

func TestFetch_Errors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := New(zap.NewNop(), WithBaseURL(srv.URL))
		_, err := c.FetchQuote(context.Background(), "AAPL")
		if !errors.Is(err, core.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
	})

	t.Run("api error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}))
		defer srv.Close()

		c := New(zap.NewNop(), WithBaseURL(srv.URL))
		_, err := c.FetchHistory(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
		if !errors.Is(err, core.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
	})

	t.Run("invalid ticker", func(t *testing.T) {
		c := New(zap.NewNop())
		_, err := c.FetchQuote(context.Background(), "not a ticker")
		if !errors.Is(err, core.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartJSON(time.Now().Unix()))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := New(zap.NewNop(), WithBaseURL(srv.URL))
		_, err := c.FetchQuote(ctx, "AAPL")
		if err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

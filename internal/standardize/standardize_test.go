package standardize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trade(d time.Time, ticker string, action core.Action, price float64, traded, remaining int) core.ExecutedTrade {
	return core.ExecutedTrade{
		Date:            d,
		Ticker:          ticker,
		Action:          action,
		Price:           price,
		SharesTraded:    traded,
		SharesRemaining: remaining,
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(0, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))

	_, err = New(-100, nil)
	require.Error(t, err)

	s, err := New(500, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestRun_LongEpisode(t *testing.T) {
	// $500 on a $50 stock: multiplier 10. The initial fill books -500;
	// each one-share target fill books a third of its scaled notional.
	s, err := New(500, zap.NewNop())
	require.NoError(t, err)

	out, err := s.Run([]core.ExecutedTrade{
		trade(day(2025, time.June, 2), "AAPL", core.ActionInitialBuy, 50, 3, 3),
		trade(day(2025, time.June, 4), "AAPL", core.ActionPT1Sell, 55, 1, 2),
		trade(day(2025, time.June, 6), "AAPL", core.ActionStopLossSell, 50, 2, 0),
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.InDelta(t, 10.0, out[0].Multiplier, 1e-9)
	assert.InDelta(t, -500.0, out[0].Standardized, 1e-9)
	assert.Equal(t, "June", out[0].Month)

	// PT1 Sell of 1 of 3 shares at 55: 10*55/3.
	assert.InDelta(t, 550.0/3, out[1].Standardized, 1e-9)

	// Stop at entry price for the 2 remaining shares: 10*50*2/3.
	assert.InDelta(t, 1000.0/3, out[2].Standardized, 1e-9)

	// Round trip: the episode nets the PT1 gain on one share only.
	var total float64
	for _, tr := range out {
		total += tr.Standardized
	}
	assert.InDelta(t, 50.0/3, total, 1e-9)
}

func TestRun_ShortSigns(t *testing.T) {
	s, err := New(300, zap.NewNop())
	require.NoError(t, err)

	out, err := s.Run([]core.ExecutedTrade{
		trade(day(2025, time.March, 3), "TSLA", core.ActionInitialShort, 100, 3, 3),
		trade(day(2025, time.March, 5), "TSLA", core.ActionPT1Buy, 87, 1, 2),
		trade(day(2025, time.March, 7), "TSLA", core.ActionStopLossBuy, 100, 2, 0),
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// Short entry is a sell-side inflow.
	assert.InDelta(t, 300.0, out[0].Standardized, 1e-9)
	assert.Less(t, out[1].Standardized, 0.0)
	assert.Less(t, out[2].Standardized, 0.0)

	// Cover at -13% on one share: 3*87/3 = 87 outflow.
	assert.InDelta(t, -87.0, out[1].Standardized, 1e-9)
	assert.InDelta(t, -200.0, out[2].Standardized, 1e-9)
}

// TestRun_PayoffRoundTrip verifies that a position run straight through
// the default payoff ladder nets the published dollar outcomes when the
// fills land exactly on the percentage levels.
func TestRun_PayoffRoundTrip(t *testing.T) {
	s, err := New(300, zap.NewNop())
	require.NoError(t, err)

	entry := 100.0
	d := day(2025, time.April, 1)

	cases := []struct {
		name   string
		trades []core.ExecutedTrade
		net    float64
	}{
		{
			name: "stop first",
			trades: []core.ExecutedTrade{
				trade(d, "A", core.ActionInitialBuy, entry, 3, 3),
				trade(d.AddDate(0, 0, 1), "A", core.ActionStopLossSell, entry*0.91, 3, 0),
			},
			net: -27,
		},
		{
			name: "pt1 then stop at entry",
			trades: []core.ExecutedTrade{
				trade(d, "A", core.ActionInitialBuy, entry, 3, 3),
				trade(d.AddDate(0, 0, 1), "A", core.ActionPT1Sell, entry*1.13, 1, 2),
				trade(d.AddDate(0, 0, 2), "A", core.ActionStopLossSell, entry, 2, 0),
			},
			net: 13,
		},
		{
			name: "pt1 pt2 then stop at pt1",
			trades: []core.ExecutedTrade{
				trade(d, "A", core.ActionInitialBuy, entry, 3, 3),
				trade(d.AddDate(0, 0, 1), "A", core.ActionPT1Sell, entry*1.13, 1, 2),
				trade(d.AddDate(0, 0, 2), "A", core.ActionPT2Sell, entry*1.23, 1, 1),
				trade(d.AddDate(0, 0, 3), "A", core.ActionStopLossSell, entry*1.13, 1, 0),
			},
			net: 49,
		},
		{
			name: "full ladder",
			trades: []core.ExecutedTrade{
				trade(d, "A", core.ActionInitialBuy, entry, 3, 3),
				trade(d.AddDate(0, 0, 1), "A", core.ActionPT1Sell, entry*1.13, 1, 2),
				trade(d.AddDate(0, 0, 2), "A", core.ActionPT2Sell, entry*1.23, 1, 1),
				trade(d.AddDate(0, 0, 3), "A", core.ActionPT3Sell, entry*1.38, 1, 0),
			},
			net: 74,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := s.Run(tc.trades)
			require.NoError(t, err)
			var total float64
			for _, tr := range out {
				total += tr.Standardized
			}
			assert.InDelta(t, tc.net, total, 1e-9)
		})
	}
}

func TestRun_ReentryOverwritesMultiplier(t *testing.T) {
	s, err := New(500, zap.NewNop())
	require.NoError(t, err)

	out, err := s.Run([]core.ExecutedTrade{
		trade(day(2025, time.May, 1), "NVDA", core.ActionInitialBuy, 50, 3, 3),
		trade(day(2025, time.May, 2), "NVDA", core.ActionStopLossSell, 45, 3, 0),
		trade(day(2025, time.May, 5), "NVDA", core.ActionInitialBuy, 40, 3, 3),
		trade(day(2025, time.May, 8), "NVDA", core.ActionPT1Sell, 44, 1, 2),
	})
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.InDelta(t, 10.0, out[0].Multiplier, 1e-9)
	assert.InDelta(t, 10.0, out[1].Multiplier, 1e-9)
	assert.InDelta(t, 12.5, out[2].Multiplier, 1e-9)
	assert.InDelta(t, 12.5, out[3].Multiplier, 1e-9)
	assert.InDelta(t, 12.5*44/3, out[3].Standardized, 1e-9)
}

func TestRun_ClosingFillWithoutInitial(t *testing.T) {
	s, err := New(500, zap.NewNop())
	require.NoError(t, err)

	_, err = s.Run([]core.ExecutedTrade{
		trade(day(2025, time.May, 1), "NVDA", core.ActionPT1Sell, 55, 1, 2),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMultiplierMissing))
}

func TestRun_BadShareCount(t *testing.T) {
	s, err := New(500, zap.NewNop())
	require.NoError(t, err)

	_, err = s.Run([]core.ExecutedTrade{
		trade(day(2025, time.May, 1), "NVDA", core.ActionInitialBuy, 50, 3, 3),
		trade(day(2025, time.May, 2), "NVDA", core.ActionPT1Sell, 55, 4, 0),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrLedgerInvalid))
}

func TestRun_Empty(t *testing.T) {
	s, err := New(500, zap.NewNop())
	require.NoError(t, err)

	out, err := s.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

package core

import "time"

// Direction represents the side of a trade setup.
type Direction string

const (
	DirectionLong  Direction = "buy"
	DirectionShort Direction = "short"
)

// IsValid checks if the direction is a known value.
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Action represents an executed fill type in the trade ledger.
type Action string

const (
	ActionInitialBuy   Action = "Initial Buy"
	ActionInitialShort Action = "Initial Short"
	ActionPT1Buy       Action = "PT1 Buy"
	ActionPT1Sell      Action = "PT1 Sell"
	ActionPT2Buy       Action = "PT2 Buy"
	ActionPT2Sell      Action = "PT2 Sell"
	ActionPT3Buy       Action = "PT3 Buy"
	ActionPT3Sell      Action = "PT3 Sell"
	ActionStopLossBuy  Action = "Stop-Loss Buy"
	ActionStopLossSell Action = "Stop-Loss Sell"
)

// IsInitial reports whether the action opens a position.
func (a Action) IsInitial() bool {
	return a == ActionInitialBuy || a == ActionInitialShort
}

// IsBuySide reports whether the action is a cash outflow
// (long entry or short cover).
func (a Action) IsBuySide() bool {
	switch a {
	case ActionInitialBuy, ActionPT1Buy, ActionPT2Buy, ActionPT3Buy, ActionStopLossBuy:
		return true
	}
	return false
}

// IsSellSide reports whether the action is a cash inflow
// (short entry or long sale).
func (a Action) IsSellSide() bool {
	switch a {
	case ActionInitialShort, ActionPT1Sell, ActionPT2Sell, ActionPT3Sell, ActionStopLossSell:
		return true
	}
	return false
}

// Setup is a candidate trade opportunity: an entry band, an initial stop
// and three profit targets, valid from its observation date.
//
// Numeric fields are pointers because the raw data coerces malformed
// values to null; a setup with a nil entry bound can never trigger.
type Setup struct {
	Ticker         string
	Direction      Direction
	Observation    time.Time
	EarningsReport *time.Time
	EntryLow       *float64
	EntryHigh      *float64
	StopLoss       *float64
	PT1            *float64
	PT2            *float64
	PT3            *float64
}

// PriceBar is one daily OHLCV bar for a ticker.
type PriceBar struct {
	Ticker string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// ExecutedTrade is one immutable fill in the append-only trade ledger.
// SharesRemaining is the position's open share count after this fill.
type ExecutedTrade struct {
	Date            time.Time
	Ticker          string
	Action          Action
	Price           float64
	SharesTraded    int
	SharesRemaining int
}

// StandardizedTrade is an executed trade rescaled to a common
// initial-position-size basis, with a signed dollar value.
type StandardizedTrade struct {
	ExecutedTrade
	Multiplier   float64
	Standardized float64
	Month        string
}

// Outcome classifies the ultimate result of an opened position.
type Outcome string

const (
	OutcomeFailed    Outcome = "failed"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeUnknown   Outcome = "unknown"
)

// OutcomeRecord is the classified result of one initial fill.
type OutcomeRecord struct {
	Date          time.Time
	Ticker        string
	InitialAction Action
	InitialPrice  float64
	Outcome       Outcome
	OutcomeDollar float64
}

// DateOnly truncates a timestamp to its calendar date in UTC.
// All simulation arithmetic compares dates at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthName returns the English calendar month name of a date.
func MonthName(t time.Time) string {
	return t.Month().String()
}

package core

import (
	"testing"
	"time"
)

func TestDirection_IsValid(t *testing.T) {
	if !DirectionLong.IsValid() || !DirectionShort.IsValid() {
		t.Error("expected known directions to be valid")
	}
	if Direction("hold").IsValid() {
		t.Error("expected unknown direction to be invalid")
	}
}

func TestAction_Sides(t *testing.T) {
	buySide := []Action{ActionInitialBuy, ActionPT1Buy, ActionPT2Buy, ActionPT3Buy, ActionStopLossBuy}
	for _, a := range buySide {
		if !a.IsBuySide() || a.IsSellSide() {
			t.Errorf("%s should be buy-side only", a)
		}
	}
	sellSide := []Action{ActionInitialShort, ActionPT1Sell, ActionPT2Sell, ActionPT3Sell, ActionStopLossSell}
	for _, a := range sellSide {
		if !a.IsSellSide() || a.IsBuySide() {
			t.Errorf("%s should be sell-side only", a)
		}
	}
}

func TestAction_IsInitial(t *testing.T) {
	if !ActionInitialBuy.IsInitial() || !ActionInitialShort.IsInitial() {
		t.Error("initial actions should report IsInitial")
	}
	if ActionPT1Sell.IsInitial() || ActionStopLossBuy.IsInitial() {
		t.Error("closing actions should not report IsInitial")
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 4, 15, 14, 30, 12, 999, time.FixedZone("EST", -5*3600))
	got := DateOnly(ts)
	want := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly() = %v, want %v", got, want)
	}
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), "January"},
		{time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), "April"},
		{time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), "December"},
	}
	for _, tt := range tests {
		if got := MonthName(tt.date); got != tt.want {
			t.Errorf("MonthName(%v) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

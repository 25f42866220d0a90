package domain

import (
	"testing"
	"time"
)

func activeMarket() *Market {
	return &Market{
		ID:       "m1",
		MatchID:  "match1",
		Kind:     KindThreeWayResult,
		IsActive: true,
		Status:   MarketActive,
	}
}

func TestIsOpenForBetting_Window(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	opens := now.Add(-time.Hour)
	closes := now.Add(time.Hour)

	m := activeMarket()
	m.OpensAt = &opens
	m.ClosesAt = &closes
	if !m.IsOpenForBetting(now) {
		t.Fatalf("market inside window must be open")
	}

	if m.IsOpenForBetting(opens.Add(-time.Minute)) {
		t.Fatalf("market must be closed before opens_at")
	}
	if m.IsOpenForBetting(closes) {
		t.Fatalf("market must be closed at closes_at")
	}
	if m.IsOpenForBetting(closes.Add(time.Minute)) {
		t.Fatalf("market must be closed after closes_at")
	}
}

func TestIsOpenForBetting_NilWindow(t *testing.T) {
	m := activeMarket()
	if !m.IsOpenForBetting(time.Now()) {
		t.Fatalf("market without window must be open while active")
	}
}

func TestIsOpenForBetting_SuspendedOrInactive(t *testing.T) {
	now := time.Now()

	m := activeMarket()
	m.Status = MarketSuspended
	if m.IsOpenForBetting(now) {
		t.Fatalf("suspended market must not be open")
	}

	m = activeMarket()
	m.IsActive = false
	if m.IsOpenForBetting(now) {
		t.Fatalf("inactive market must not be open")
	}
}

func TestSuspendReopen(t *testing.T) {
	m := activeMarket()
	if err := m.Suspend(); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if m.Status != MarketSuspended {
		t.Fatalf("status=%s want suspended", m.Status)
	}
	if err := m.Suspend(); err != ErrMarketNotActive {
		t.Fatalf("double suspend err=%v want ErrMarketNotActive", err)
	}
	if err := m.Reopen(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if m.Status != MarketActive {
		t.Fatalf("status=%s want active", m.Status)
	}
	if err := m.Reopen(); err != ErrMarketNotSuspended {
		t.Fatalf("double reopen err=%v want ErrMarketNotSuspended", err)
	}
}

func TestSuspendAfterSettlement(t *testing.T) {
	m := activeMarket()
	if err := m.MarkSettled(time.Now()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := m.Suspend(); err != ErrMarketAlreadySettled {
		t.Fatalf("err=%v want ErrMarketAlreadySettled", err)
	}
	if err := m.MarkSettled(time.Now()); err != ErrMarketAlreadySettled {
		t.Fatalf("double settle err=%v want ErrMarketAlreadySettled", err)
	}
}

func TestStakeBounds_Override(t *testing.T) {
	m := activeMarket()
	min, max := m.StakeBounds(dec("10"), dec("10000"))
	if min.String() != "10" || max.String() != "10000" {
		t.Fatalf("bounds=%s/%s want defaults", min, max)
	}

	override := dec("50")
	m.MinStake = &override
	min, _ = m.StakeBounds(dec("10"), dec("10000"))
	if min.String() != "50" {
		t.Fatalf("min=%s want override 50", min)
	}
}

func TestValidateStake(t *testing.T) {
	m := activeMarket()
	minOverride := dec("10")
	m.MinStake = &minOverride

	if err := m.ValidateStake(dec("5"), dec("1"), dec("10000")); err != ErrStakeBelowMinimum {
		t.Fatalf("err=%v want ErrStakeBelowMinimum", err)
	}
	if err := m.ValidateStake(dec("20000"), dec("1"), dec("10000")); err != ErrStakeAboveMaximum {
		t.Fatalf("err=%v want ErrStakeAboveMaximum", err)
	}
	if err := m.ValidateStake(dec("100"), dec("1"), dec("10000")); err != nil {
		t.Fatalf("err=%v want nil", err)
	}
}

func TestNewDefaultMarket(t *testing.T) {
	now := time.Now()
	start := now.Add(48 * time.Hour)
	m, opts := NewDefaultMarket("match1", "Full time result", start, now)

	if m.Kind != KindThreeWayResult {
		t.Fatalf("kind=%s", m.Kind)
	}
	if m.ClosesAt == nil || !m.ClosesAt.Equal(start) {
		t.Fatalf("closes_at must default to match start")
	}
	if len(opts) != 3 {
		t.Fatalf("len(opts)=%d want 3", len(opts))
	}
	wantOdds := map[string]string{"home": "2", "draw": "3", "away": "2.5"}
	for _, o := range opts {
		if o.MarketID != m.ID {
			t.Fatalf("option %s not bound to market", o.Key)
		}
		if o.Odds.String() != wantOdds[o.Key] {
			t.Fatalf("odds[%s]=%s want %s", o.Key, o.Odds, wantOdds[o.Key])
		}
	}
}

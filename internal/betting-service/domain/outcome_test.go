package domain

import (
	"testing"
	"time"
)

func TestNewManualOutcome_ValidatesMembership(t *testing.T) {
	m := activeMarket()
	opts := []*Option{
		NewOption(m.ID, "a", "A", dec("2.0")),
		NewOption(m.ID, "b", "B", dec("3.0")),
	}

	if _, err := NewManualOutcome(m.ID, opts, []string{opts[0].ID, "stranger"}, "op1", "", time.Now()); err != ErrInvalidWinningOption {
		t.Fatalf("err=%v want ErrInvalidWinningOption", err)
	}
	if _, err := NewManualOutcome(m.ID, opts, nil, "op1", "", time.Now()); err != ErrInvalidWinningOption {
		t.Fatalf("empty ids err=%v want ErrInvalidWinningOption", err)
	}

	out, err := NewManualOutcome(m.ID, opts, []string{opts[1].ID, opts[0].ID}, "op1", "joint winners", time.Now())
	if err != nil {
		t.Fatalf("manual: %v", err)
	}
	if out.WinningOptionID == nil || *out.WinningOptionID != opts[1].ID {
		t.Fatalf("primary winner must be the first id")
	}
	set := out.WinningSet()
	if len(set) != 2 {
		t.Fatalf("winning set=%v", set)
	}
}

func TestWinningSet_SingletonFallback(t *testing.T) {
	out := NewResultOutcome("m1", "opt1", 2, 1, "home", time.Now())
	set := out.WinningSet()
	if _, ok := set["opt1"]; !ok || len(set) != 1 {
		t.Fatalf("set=%v want singleton opt1", set)
	}
	if out.Result.SettlementType != SettlementResult {
		t.Fatalf("type=%s", out.Result.SettlementType)
	}
	if *out.Result.HomeScore != 2 || *out.Result.AwayScore != 1 {
		t.Fatalf("scores=%v/%v", out.Result.HomeScore, out.Result.AwayScore)
	}
}

func TestNewCancelledOutcome(t *testing.T) {
	out := NewCancelledOutcome("m1", "op1", "pitch flooded", time.Now())
	if out.WinningOptionID != nil {
		t.Fatalf("cancelled outcome must have no winner")
	}
	if out.Result.SettlementType != SettlementCancelled {
		t.Fatalf("type=%s", out.Result.SettlementType)
	}
	if len(out.WinningSet()) != 0 {
		t.Fatalf("winning set must be empty")
	}
}

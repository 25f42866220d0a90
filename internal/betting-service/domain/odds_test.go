package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeOdds_Formula(t *testing.T) {
	// share = 100/400 → odds = (400/100) × 0.9 = 3.60
	odds, ok := ComputeOdds(dec("100"), dec("400"))
	if !ok {
		t.Fatalf("expected recompute")
	}
	if odds.String() != "3.6" {
		t.Fatalf("odds=%s want 3.6", odds)
	}
}

func TestComputeOdds_Rounding(t *testing.T) {
	// (1000/300) × 0.9 = 3.0 exato; (1000/700) × 0.9 = 1.2857... → 1.29
	odds, _ := ComputeOdds(dec("700"), dec("1000"))
	if odds.String() != "1.29" {
		t.Fatalf("odds=%s want 1.29", odds)
	}
}

func TestComputeOdds_Floor(t *testing.T) {
	// opção dominante: (100/95) × 0.9 = 0.947 → piso 1.10
	odds, ok := ComputeOdds(dec("95"), dec("100"))
	if !ok {
		t.Fatalf("expected recompute")
	}
	if !odds.Equal(MinOdds) {
		t.Fatalf("odds=%s want %s", odds, MinOdds)
	}
}

func TestComputeOdds_ZeroStakeLeavesOddsUnchanged(t *testing.T) {
	if _, ok := ComputeOdds(decimal.Zero, dec("500")); ok {
		t.Fatalf("zero option stake must not recompute")
	}
	if _, ok := ComputeOdds(dec("50"), decimal.Zero); ok {
		t.Fatalf("zero market total must not recompute")
	}
}

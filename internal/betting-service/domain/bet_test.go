package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func placedBet(t *testing.T, stake, odds string) *Bet {
	t.Helper()
	m := activeMarket()
	o := NewOption(m.ID, "home", "Home", dec(odds))
	b, err := NewBet("u1", m, o, dec(stake), PaymentOnline, dec("1"), dec("100000"), time.Now())
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	return b
}

func TestNewBet_SnapshotsOdds(t *testing.T) {
	b := placedBet(t, "100", "2.15")
	if b.OddsAtPlacement.String() != "2.15" {
		t.Fatalf("odds snapshot=%s", b.OddsAtPlacement)
	}
	if b.PotentialPayout.String() != "215" {
		t.Fatalf("potential=%s want 215", b.PotentialPayout)
	}
	if b.Status != BetPending || b.PaymentStatus != PaymentPending {
		t.Fatalf("status=%s payment=%s", b.Status, b.PaymentStatus)
	}
}

func TestNewBet_RejectsClosedMarket(t *testing.T) {
	m := activeMarket()
	m.Status = MarketSuspended
	o := NewOption(m.ID, "home", "Home", dec("2.0"))
	if _, err := NewBet("u1", m, o, dec("100"), PaymentOnline, dec("1"), dec("1000"), time.Now()); err != ErrMarketClosed {
		t.Fatalf("err=%v want ErrMarketClosed", err)
	}
}

func TestNewBet_RejectsInactiveOption(t *testing.T) {
	m := activeMarket()
	o := NewOption(m.ID, "home", "Home", dec("2.0"))
	o.IsActive = false
	if _, err := NewBet("u1", m, o, dec("100"), PaymentOnline, dec("1"), dec("1000"), time.Now()); err != ErrOptionInactive {
		t.Fatalf("err=%v want ErrOptionInactive", err)
	}
}

func TestNewBet_RejectsStakeBelowMinimum(t *testing.T) {
	m := activeMarket()
	min := dec("10")
	m.MinStake = &min
	o := NewOption(m.ID, "home", "Home", dec("2.0"))
	if _, err := NewBet("u1", m, o, dec("5"), PaymentOnline, dec("1"), dec("1000"), time.Now()); err != ErrStakeBelowMinimum {
		t.Fatalf("err=%v want ErrStakeBelowMinimum", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	b := placedBet(t, "100", "2.0")
	now := time.Now()
	if err := b.ConfirmPayment("pay-1", now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b.Status != BetActive || b.PaymentStatus != PaymentConfirmed {
		t.Fatalf("status=%s payment=%s", b.Status, b.PaymentStatus)
	}
	if b.PaymentConfirmedAt == nil {
		t.Fatalf("payment_confirmed_at not set")
	}
	if err := b.ConfirmPayment("pay-2", now); err != ErrPaymentNotPending {
		t.Fatalf("double confirm err=%v", err)
	}
}

func TestFailPayment_KeepsBetPending(t *testing.T) {
	b := placedBet(t, "100", "2.0")
	if err := b.FailPayment(); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if b.Status != BetPending || b.PaymentStatus != PaymentFailed {
		t.Fatalf("status=%s payment=%s", b.Status, b.PaymentStatus)
	}
}

func TestMarkAsWon_PaysSnapshottedOdds(t *testing.T) {
	b := placedBet(t, "100", "2.0")
	_ = b.ConfirmPayment("pay-1", time.Now())

	// a odd da opção derivou depois da colocação; payout não acompanha
	now := time.Now()
	if err := b.MarkAsWon(now); err != nil {
		t.Fatalf("won: %v", err)
	}
	if b.ActualPayout.String() != "200" {
		t.Fatalf("payout=%s want 200", b.ActualPayout)
	}
	if b.Profit().String() != "100" {
		t.Fatalf("profit=%s want 100", b.Profit())
	}
	if b.SettledAt == nil {
		t.Fatalf("settled_at not set")
	}
	if err := b.MarkAsWon(now); err != ErrBetAlreadySettled {
		t.Fatalf("double settle err=%v", err)
	}
}

func TestMarkAsLost(t *testing.T) {
	b := placedBet(t, "100", "2.0")
	_ = b.ConfirmPayment("pay-1", time.Now())
	if err := b.MarkAsLost(time.Now()); err != nil {
		t.Fatalf("lost: %v", err)
	}
	if !b.ActualPayout.IsZero() {
		t.Fatalf("payout=%s want 0", b.ActualPayout)
	}
	if b.Profit().String() != "-100" {
		t.Fatalf("profit=%s want -100", b.Profit())
	}
}

func TestMarkAsCancelled_RefundsStake(t *testing.T) {
	b := placedBet(t, "75.50", "3.1")
	if err := b.MarkAsCancelled("market voided", time.Now()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.ActualPayout.String() != "75.5" {
		t.Fatalf("payout=%s want 75.5", b.ActualPayout)
	}
	if !b.Profit().IsZero() {
		t.Fatalf("profit=%s want 0", b.Profit())
	}
}

func TestRecordPayout(t *testing.T) {
	b := placedBet(t, "100", "2.0")
	_ = b.ConfirmPayment("pay-1", time.Now())

	if err := b.RecordPayout(PayoutCompleted, time.Now()); err != ErrBetNotWon {
		t.Fatalf("payout before settle err=%v", err)
	}

	_ = b.MarkAsWon(time.Now())
	if err := b.RecordPayout(PayoutFailed, time.Now()); err != nil {
		t.Fatalf("payout: %v", err)
	}
	if b.PayoutStatus != PayoutFailed || b.PayoutProcessedAt == nil {
		t.Fatalf("payout_status=%s", b.PayoutStatus)
	}
	// falha no desembolso não mexe no resultado da aposta
	if b.Status != BetWon {
		t.Fatalf("status=%s want won", b.Status)
	}
}

func TestPotentialPayout_ExactDecimal(t *testing.T) {
	b := placedBet(t, "10.55", "2.15")
	want := decimal.RequireFromString("10.55").Mul(decimal.RequireFromString("2.15"))
	if !b.PotentialPayout.Equal(want) {
		t.Fatalf("potential=%s want %s", b.PotentialPayout, want)
	}
}

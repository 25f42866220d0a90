package domain

import (
	"testing"
	"time"
)

// Cenário: aposta confirmada de 100 na opção A (odd 2.0) e aposta não paga
// de 50 na B; A vence → A paga 200, B é cancelada com devolução de 50.
func TestResolveBets_WinnerAndUnpaid(t *testing.T) {
	now := time.Now()
	m := activeMarket()
	optA := NewOption(m.ID, "home", "Home", dec("2.0"))
	optB := NewOption(m.ID, "away", "Away", dec("3.0"))

	betA, _ := NewBet("u1", m, optA, dec("100"), PaymentOnline, dec("1"), dec("10000"), now)
	_ = betA.ConfirmPayment("pay-1", now)
	betB, _ := NewBet("u2", m, optB, dec("50"), PaymentOnline, dec("1"), dec("10000"), now)

	sum, err := ResolveBets([]*Bet{betA, betB}, map[string]struct{}{optA.ID: {}}, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if betA.Status != BetWon || betA.ActualPayout.String() != "200" {
		t.Fatalf("betA status=%s payout=%s", betA.Status, betA.ActualPayout)
	}
	if betB.Status != BetCancelled || betB.ActualPayout.String() != "50" {
		t.Fatalf("betB status=%s payout=%s", betB.Status, betB.ActualPayout)
	}
	if sum.Won != 1 || sum.Cancelled != 1 || sum.Lost != 0 {
		t.Fatalf("summary=%+v", sum)
	}
	if sum.TotalPaidOut.String() != "250" {
		t.Fatalf("paid=%s want 250", sum.TotalPaidOut)
	}
}

// Cenário: vencedores múltiplos A e C; confirmadas em A e C ganham, em B perdem.
func TestResolveBets_MultiWinner(t *testing.T) {
	now := time.Now()
	m := activeMarket()
	optA := NewOption(m.ID, "a", "A", dec("2.0"))
	optB := NewOption(m.ID, "b", "B", dec("3.0"))
	optC := NewOption(m.ID, "c", "C", dec("4.0"))

	mk := func(opt *Option, stake string) *Bet {
		b, _ := NewBet("u", m, opt, dec(stake), PaymentOnline, dec("1"), dec("10000"), now)
		_ = b.ConfirmPayment("pay", now)
		return b
	}
	betA, betB, betC := mk(optA, "10"), mk(optB, "20"), mk(optC, "30")

	winning := map[string]struct{}{optA.ID: {}, optC.ID: {}}
	if _, err := ResolveBets([]*Bet{betA, betB, betC}, winning, now); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if betA.Status != BetWon || betC.Status != BetWon {
		t.Fatalf("a=%s c=%s want won", betA.Status, betC.Status)
	}
	if betB.Status != BetLost || !betB.ActualPayout.IsZero() {
		t.Fatalf("b=%s payout=%s want lost/0", betB.Status, betB.ActualPayout)
	}
}

// Aposta com pagamento falho ainda pendente na liquidação vira cancelled, nunca lost.
func TestResolveBets_FailedPaymentCancelled(t *testing.T) {
	now := time.Now()
	m := activeMarket()
	opt := NewOption(m.ID, "home", "Home", dec("2.0"))

	b, _ := NewBet("u1", m, opt, dec("40"), PaymentOffline, dec("1"), dec("10000"), now)
	_ = b.FailPayment()

	if _, err := ResolveBets([]*Bet{b}, map[string]struct{}{}, now); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Status != BetCancelled || b.ActualPayout.String() != "40" {
		t.Fatalf("status=%s payout=%s", b.Status, b.ActualPayout)
	}
}

func TestResolveBets_AlreadySettledAborts(t *testing.T) {
	now := time.Now()
	m := activeMarket()
	opt := NewOption(m.ID, "home", "Home", dec("2.0"))

	b, _ := NewBet("u1", m, opt, dec("40"), PaymentOnline, dec("1"), dec("10000"), now)
	_ = b.ConfirmPayment("pay", now)
	_ = b.MarkAsWon(now)

	if _, err := ResolveBets([]*Bet{b}, map[string]struct{}{opt.ID: {}}, now); err != ErrBetAlreadySettled {
		t.Fatalf("err=%v want ErrBetAlreadySettled", err)
	}
}

// Cenário de anulação: três apostas pendentes de 10, 20 e 30 → todas canceladas
// devolvendo o próprio stake.
func TestRefundBets_PendingStakes(t *testing.T) {
	now := time.Now()
	m := activeMarket()
	opt := NewOption(m.ID, "home", "Home", dec("2.0"))

	var bets []*Bet
	for _, stake := range []string{"10", "20", "30"} {
		b, _ := NewBet("u", m, opt, dec(stake), PaymentOnline, dec("1"), dec("10000"), now)
		bets = append(bets, b)
	}

	sum, err := RefundBets(bets, "match postponed", now)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	for i, want := range []string{"10", "20", "30"} {
		if bets[i].Status != BetCancelled || bets[i].ActualPayout.String() != want {
			t.Fatalf("bet[%d] status=%s payout=%s want cancelled/%s", i, bets[i].Status, bets[i].ActualPayout, want)
		}
	}
	if sum.Cancelled != 3 || sum.TotalPaidOut.String() != "60" {
		t.Fatalf("summary=%+v", sum)
	}
}

// Apostas já pagas (active) também recebem o stake de volta no cancelamento.
func TestRefundBets_IncludesConfirmedBets(t *testing.T) {
	now := time.Now()
	m := activeMarket()
	opt := NewOption(m.ID, "home", "Home", dec("2.0"))

	b, _ := NewBet("u1", m, opt, dec("80"), PaymentWallet, dec("1"), dec("10000"), now)
	_ = b.ConfirmPayment("pay", now)

	if _, err := RefundBets([]*Bet{b}, "voided", now); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if b.Status != BetCancelled || b.ActualPayout.String() != "80" {
		t.Fatalf("status=%s payout=%s", b.Status, b.ActualPayout)
	}
}

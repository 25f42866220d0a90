package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary acumula o resultado de uma rodada de liquidação
type Summary struct {
	Won          int
	Lost         int
	Cancelled    int
	TotalPaidOut decimal.Decimal
}

// ResolveBets aplica um desfecho com vencedores a todas as apostas do mercado:
//   - pagamento confirmado → won/lost conforme pertencimento ao conjunto vencedor
//   - ainda pendente com pagamento pendente/falho → cancelled (stake devolvido;
//     quem nunca pagou não pode ser contabilizado como perdedor)
//
// Qualquer aposta já terminal aborta a rodada inteira — a liquidação é
// tudo-ou-nada e o chamador descarta a transação.
func ResolveBets(bets []*Bet, winning map[string]struct{}, now time.Time) (Summary, error) {
	s := Summary{TotalPaidOut: decimal.Zero}
	for _, b := range bets {
		switch {
		case b.PaymentStatus == PaymentConfirmed:
			if _, ok := winning[b.OptionID]; ok {
				if err := b.MarkAsWon(now); err != nil {
					return Summary{}, err
				}
				s.Won++
				s.TotalPaidOut = s.TotalPaidOut.Add(b.ActualPayout)
			} else {
				if err := b.MarkAsLost(now); err != nil {
					return Summary{}, err
				}
				s.Lost++
			}
		case b.Status == BetPending:
			if err := b.MarkAsCancelled("payment not confirmed at settlement", now); err != nil {
				return Summary{}, err
			}
			s.Cancelled++
			s.TotalPaidOut = s.TotalPaidOut.Add(b.ActualPayout)
		default:
			return Summary{}, ErrBetAlreadySettled
		}
	}
	return s, nil
}

// RefundBets devolve o stake de todas as apostas vivas num cancelamento de
// mercado. Apostas active (pagas) também são reembolsadas: mercado anulado
// devolve cada stake, não só os pagamentos pendentes.
func RefundBets(bets []*Bet, reason string, now time.Time) (Summary, error) {
	s := Summary{TotalPaidOut: decimal.Zero}
	for _, b := range bets {
		if b.IsSettled() {
			return Summary{}, ErrBetAlreadySettled
		}
		if err := b.MarkAsCancelled(reason, now); err != nil {
			return Summary{}, err
		}
		s.Cancelled++
		s.TotalPaidOut = s.TotalPaidOut.Add(b.ActualPayout)
	}
	return s, nil
}

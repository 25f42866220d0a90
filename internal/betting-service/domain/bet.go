package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetActive    BetStatus = "active" // pagamento confirmado, aguardando resultado
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
	BetRefunded  BetStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentOffline PaymentMethod = "offline"
	PaymentWallet  PaymentMethod = "wallet"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutFailed    PayoutStatus = "failed"
)

// Bet é a aposta de um usuário contra uma opção de mercado.
// OddsAtPlacement é congelada na criação: o payout sai sempre dela,
// não importa pra onde a odd do mercado derive depois.
type Bet struct {
	ID                 string
	UserID             string
	MarketID           string
	OptionID           string
	Stake              decimal.Decimal
	OddsAtPlacement    decimal.Decimal
	PotentialPayout    decimal.Decimal // Stake × OddsAtPlacement
	ActualPayout       decimal.Decimal
	Status             BetStatus
	PaymentMethod      PaymentMethod
	PaymentStatus      PaymentStatus
	PaymentRef         string
	PaymentConfirmedAt *time.Time
	PayoutStatus       PayoutStatus
	PayoutProcessedAt  *time.Time
	PlacedAt           time.Time
	SettledAt          *time.Time
	CancelReason       string
}

// NewBet cria a aposta já validada contra o mercado e a opção.
// Não insere nada: validação sem efeito colateral; persistência é do repositório.
func NewBet(userID string, m *Market, o *Option, stake decimal.Decimal, method PaymentMethod, defaultMin, defaultMax decimal.Decimal, now time.Time) (*Bet, error) {
	if !m.IsOpenForBetting(now) {
		return nil, ErrMarketClosed
	}
	if !o.CanAcceptBets(m, now) {
		return nil, ErrOptionInactive
	}
	if err := m.ValidateStake(stake, defaultMin, defaultMax); err != nil {
		return nil, err
	}
	return &Bet{
		ID:              uuid.NewString(),
		UserID:          userID,
		MarketID:        m.ID,
		OptionID:        o.ID,
		Stake:           stake,
		OddsAtPlacement: o.Odds,
		PotentialPayout: stake.Mul(o.Odds),
		ActualPayout:    decimal.Zero,
		Status:          BetPending,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		PayoutStatus:    PayoutPending,
		PlacedAt:        now,
	}, nil
}

// IsSettled indica estado terminal (won/lost/cancelled/refunded)
func (b *Bet) IsSettled() bool {
	switch b.Status {
	case BetWon, BetLost, BetCancelled, BetRefunded:
		return true
	}
	return false
}

// ConfirmPayment registra confirmação do colaborador de pagamento
// pending → active; só sai do estado de pagamento pendente
func (b *Bet) ConfirmPayment(ref string, now time.Time) error {
	if b.IsSettled() {
		return ErrBetAlreadySettled
	}
	if b.PaymentStatus != PaymentPending {
		return ErrPaymentNotPending
	}
	b.PaymentStatus = PaymentConfirmed
	b.PaymentConfirmedAt = &now
	b.PaymentRef = ref
	b.Status = BetActive
	return nil
}

// FailPayment registra falha de cobrança; a aposta fica pendente até a
// liquidação cancelar (nunca vira perdida sem pagamento confirmado)
func (b *Bet) FailPayment() error {
	if b.IsSettled() {
		return ErrBetAlreadySettled
	}
	if b.PaymentStatus != PaymentPending {
		return ErrPaymentNotPending
	}
	b.PaymentStatus = PaymentFailed
	return nil
}

// MarkAsWon paga a aposta pela odd congelada na colocação
func (b *Bet) MarkAsWon(now time.Time) error {
	if b.IsSettled() {
		return ErrBetAlreadySettled
	}
	b.Status = BetWon
	b.ActualPayout = b.PotentialPayout
	b.SettledAt = &now
	return nil
}

// MarkAsLost zera o payout
func (b *Bet) MarkAsLost(now time.Time) error {
	if b.IsSettled() {
		return ErrBetAlreadySettled
	}
	b.Status = BetLost
	b.ActualPayout = decimal.Zero
	b.SettledAt = &now
	return nil
}

// MarkAsCancelled devolve exatamente o stake (sem lucro nem perda)
func (b *Bet) MarkAsCancelled(reason string, now time.Time) error {
	if b.IsSettled() {
		return ErrBetAlreadySettled
	}
	b.Status = BetCancelled
	b.ActualPayout = b.Stake
	b.CancelReason = reason
	b.SettledAt = &now
	return nil
}

// RecordPayout registra o retorno do colaborador de desembolso.
// Falha fica gravada pra retry manual; nunca mexe no estado won/lost.
func (b *Bet) RecordPayout(status PayoutStatus, now time.Time) error {
	if b.Status != BetWon {
		return ErrBetNotWon
	}
	b.PayoutStatus = status
	b.PayoutProcessedAt = &now
	return nil
}

// Profit retorna actual_payout − stake (0 enquanto não liquidada)
func (b *Bet) Profit() decimal.Decimal {
	if !b.IsSettled() {
		return decimal.Zero
	}
	return b.ActualPayout.Sub(b.Stake)
}

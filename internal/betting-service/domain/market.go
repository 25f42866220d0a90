package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MarketStatus string

const (
	MarketActive    MarketStatus = "active"
	MarketSuspended MarketStatus = "suspended"
	MarketSettled   MarketStatus = "settled"
	MarketCancelled MarketStatus = "cancelled"
)

type MarketKind string

const (
	KindThreeWayResult MarketKind = "three_way_result"
	KindCorrectScore   MarketKind = "correct_score"
	KindTotalGoals     MarketKind = "total_goals"
	KindPlayerScoring  MarketKind = "player_scoring"
)

// Market agrupa opções mutuamente exclusivas de uma partida
// Controla o ciclo de vida (active/suspended/settled/cancelled) e a janela de apostas
type Market struct {
	ID          string
	MatchID     string
	Kind        MarketKind
	Name        string
	Description string
	IsActive    bool
	Status      MarketStatus
	OpensAt     *time.Time
	ClosesAt    *time.Time
	SettledAt   *time.Time
	MinStake    *decimal.Decimal // sobrescreve o mínimo global quando presente
	MaxStake    *decimal.Decimal
	Metadata    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpenForBetting verifica se o mercado aceita apostas no instante dado.
// O closes_at é respeitado: passou do horário de fechamento, não entra mais aposta.
func (m *Market) IsOpenForBetting(now time.Time) bool {
	if !m.IsActive || m.Status != MarketActive {
		return false
	}
	if m.OpensAt != nil && now.Before(*m.OpensAt) {
		return false
	}
	if m.ClosesAt != nil && !now.Before(*m.ClosesAt) {
		return false
	}
	return true
}

// Suspend pausa temporariamente o mercado; não mexe em apostas nem opções
func (m *Market) Suspend() error {
	if m.Status == MarketSettled || m.Status == MarketCancelled {
		return ErrMarketAlreadySettled
	}
	if m.Status != MarketActive {
		return ErrMarketNotActive
	}
	m.Status = MarketSuspended
	return nil
}

// Reopen reativa um mercado suspenso
func (m *Market) Reopen() error {
	if m.Status == MarketSettled || m.Status == MarketCancelled {
		return ErrMarketAlreadySettled
	}
	if m.Status != MarketSuspended {
		return ErrMarketNotSuspended
	}
	m.Status = MarketActive
	return nil
}

// MarkSettled transiciona para o estado terminal settled; só a liquidação chama
func (m *Market) MarkSettled(settledAt time.Time) error {
	if m.Status == MarketSettled || m.Status == MarketCancelled {
		return ErrMarketAlreadySettled
	}
	m.Status = MarketSettled
	m.SettledAt = &settledAt
	return nil
}

// MarkCancelled transiciona para o estado terminal cancelled (mercado anulado)
func (m *Market) MarkCancelled(settledAt time.Time) error {
	if m.Status == MarketSettled || m.Status == MarketCancelled {
		return ErrMarketAlreadySettled
	}
	m.Status = MarketCancelled
	m.SettledAt = &settledAt
	return nil
}

// StakeBounds resolve o min/max efetivo: override do mercado ou default global
func (m *Market) StakeBounds(defaultMin, defaultMax decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	min, max := defaultMin, defaultMax
	if m.MinStake != nil {
		min = *m.MinStake
	}
	if m.MaxStake != nil {
		max = *m.MaxStake
	}
	return min, max
}

// ValidateStake confere o valor apostado contra os limites efetivos do mercado
func (m *Market) ValidateStake(stake, defaultMin, defaultMax decimal.Decimal) error {
	min, max := m.StakeBounds(defaultMin, defaultMax)
	if stake.LessThan(min) {
		return ErrStakeBelowMinimum
	}
	if stake.GreaterThan(max) {
		return ErrStakeAboveMaximum
	}
	return nil
}

// Odds iniciais do mercado padrão 1x2
var (
	StarterHomeOdds = decimal.New(200, -2) // 2.00
	StarterDrawOdds = decimal.New(300, -2) // 3.00
	StarterAwayOdds = decimal.New(250, -2) // 2.50
)

// NewDefaultMarket cria o mercado canônico de resultado (home/draw/away)
// para uma partida, fechando as apostas no horário de início do jogo
func NewDefaultMarket(matchID, name string, matchStartsAt time.Time, now time.Time) (*Market, []*Option) {
	closes := matchStartsAt
	m := &Market{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		Kind:      KindThreeWayResult,
		Name:      name,
		IsActive:  true,
		Status:    MarketActive,
		ClosesAt:  &closes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	opts := []*Option{
		newOption(m.ID, "home", "Home", StarterHomeOdds),
		newOption(m.ID, "draw", "Draw", StarterDrawOdds),
		newOption(m.ID, "away", "Away", StarterAwayOdds),
	}
	return m, opts
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
)

type OptionResponse struct {
	ID                 string `json:"id"`
	Key                string `json:"key"`
	Name               string `json:"name"`
	Odds               string `json:"odds"`
	ImpliedProbability string `json:"implied_probability"`
	TotalStake         string `json:"total_stake"`
	BetCount           int64  `json:"bet_count"`
	IsActive           bool   `json:"is_active"`
	IsWinningOption    bool   `json:"is_winning_option"`
}

type MarketResponse struct {
	ID          string           `json:"id"`
	MatchID     string           `json:"match_id"`
	Kind        string           `json:"kind"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	IsActive    bool             `json:"is_active"`
	Status      string           `json:"status"`
	OpensAt     *time.Time       `json:"opens_at,omitempty"`
	ClosesAt    *time.Time       `json:"closes_at,omitempty"`
	SettledAt   *time.Time       `json:"settled_at,omitempty"`
	MinStake    string           `json:"min_stake,omitempty"`
	MaxStake    string           `json:"max_stake,omitempty"`
	TotalStake  string           `json:"total_stake"`
	TotalBets   int64            `json:"total_bets"`
	Options     []OptionResponse `json:"options"`
}

type BetResponse struct {
	BetID           string     `json:"bet_id"`
	UserID          string     `json:"user_id"`
	MarketID        string     `json:"market_id"`
	OptionID        string     `json:"option_id"`
	Stake           string     `json:"stake"`
	OddsAtPlacement string     `json:"odds_at_placement"`
	PotentialPayout string     `json:"potential_payout"`
	ActualPayout    string     `json:"actual_payout"`
	Status          string     `json:"status"`
	PaymentMethod   string     `json:"payment_method"`
	PaymentStatus   string     `json:"payment_status"`
	PayoutStatus    string     `json:"payout_status"`
	PlacedAt        time.Time  `json:"placed_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
	Profit          string     `json:"profit"`
}

type SettlementResponse struct {
	MarketID      string `json:"market_id"`
	Status        string `json:"status"`
	BetsWon       int    `json:"bets_won"`
	BetsLost      int    `json:"bets_lost"`
	BetsCancelled int    `json:"bets_cancelled"`
	TotalPaidOut  string `json:"total_paid_out"`
}

// ToBetResponse converte a entidade pro payload da API
func ToBetResponse(b *domain.Bet) BetResponse {
	return BetResponse{
		BetID:           b.ID,
		UserID:          b.UserID,
		MarketID:        b.MarketID,
		OptionID:        b.OptionID,
		Stake:           b.Stake.StringFixed(2),
		OddsAtPlacement: b.OddsAtPlacement.StringFixed(2),
		PotentialPayout: b.PotentialPayout.String(),
		ActualPayout:    b.ActualPayout.String(),
		Status:          string(b.Status),
		PaymentMethod:   string(b.PaymentMethod),
		PaymentStatus:   string(b.PaymentStatus),
		PayoutStatus:    string(b.PayoutStatus),
		PlacedAt:        b.PlacedAt,
		SettledAt:       b.SettledAt,
		Profit:          b.Profit().String(),
	}
}

// ToMarketResponse monta a visão completa do mercado com agregados
func ToMarketResponse(m *domain.Market, opts []*domain.Option) MarketResponse {
	resp := MarketResponse{
		ID:          m.ID,
		MatchID:     m.MatchID,
		Kind:        string(m.Kind),
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		Status:      string(m.Status),
		OpensAt:     m.OpensAt,
		ClosesAt:    m.ClosesAt,
		SettledAt:   m.SettledAt,
	}
	if m.MinStake != nil {
		resp.MinStake = m.MinStake.StringFixed(2)
	}
	if m.MaxStake != nil {
		resp.MaxStake = m.MaxStake.StringFixed(2)
	}
	total := decimal.Zero
	for _, o := range opts {
		total = total.Add(o.TotalStake)
		resp.TotalBets += o.BetCount
		resp.Options = append(resp.Options, OptionResponse{
			ID:                 o.ID,
			Key:                o.Key,
			Name:               o.Name,
			Odds:               o.Odds.StringFixed(2),
			ImpliedProbability: o.ImpliedProbability().String(),
			TotalStake:         o.TotalStake.StringFixed(2),
			BetCount:           o.BetCount,
			IsActive:           o.IsActive,
			IsWinningOption:    o.IsWinningOption,
		})
	}
	resp.TotalStake = total.StringFixed(2)
	return resp
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Option é um desfecho apostável dentro de um mercado
// TotalStake/BetCount são agregados mantidos incrementalmente pelo repositório
type Option struct {
	ID              string
	MarketID        string
	Key             string // "home" | "draw" | "away" | "2x1" | ...
	Name            string
	Odds            decimal.Decimal
	TotalStake      decimal.Decimal
	BetCount        int64
	IsActive        bool
	IsWinningOption bool
}

func newOption(marketID, key, name string, odds decimal.Decimal) *Option {
	return &Option{
		ID:       uuid.NewString(),
		MarketID: marketID,
		Key:      key,
		Name:     name,
		Odds:     odds,
		IsActive: true,
	}
}

// NewOption cria uma opção avulsa; só faz sentido enquanto o mercado está aberto
func NewOption(marketID, key, name string, odds decimal.Decimal) *Option {
	return newOption(marketID, key, name, odds)
}

// CanAcceptBets: opção ativa dentro de um mercado aberto
func (o *Option) CanAcceptBets(m *Market, now time.Time) bool {
	return o.IsActive && m.IsOpenForBetting(now)
}

// ImpliedProbability retorna 100/odds (informativo; inclui a margem da casa)
func (o *Option) ImpliedProbability() decimal.Decimal {
	if !o.Odds.IsPositive() {
		return decimal.Zero
	}
	return decimal.New(100, 0).Div(o.Odds).Round(2)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type SettlementType string

const (
	SettlementResult    SettlementType = "result"    // automática, a partir do placar
	SettlementManual    SettlementType = "manual"    // operador informa vencedores
	SettlementCancelled SettlementType = "cancelled" // mercado anulado, tudo devolvido
)

// ActualResult é o payload estruturado persistido junto ao desfecho
type ActualResult struct {
	SettlementType   SettlementType `json:"settlement_type"`
	HomeScore        *int           `json:"home_score,omitempty"`
	AwayScore        *int           `json:"away_score,omitempty"`
	OutcomeCode      string         `json:"outcome_code,omitempty"` // "home" | "draw" | "away"
	WinningOptionIDs []string       `json:"winning_option_ids,omitempty"`
}

// Outcome é o registro autoritativo de como um mercado terminou.
// Escrito uma única vez; correção exige fluxo compensatório, nunca mutação.
type Outcome struct {
	ID                   string
	MarketID             string
	WinningOptionID      *string // vencedor primário; nil em cancelamento
	Result               ActualResult
	SettledBy            string
	SettledAt            time.Time
	Notes                string
	RequiresManualReview bool
}

// NewResultOutcome monta o desfecho automático a partir do placar da partida
func NewResultOutcome(marketID, winningOptionID string, homeScore, awayScore int, outcomeCode string, now time.Time) *Outcome {
	return &Outcome{
		ID:              uuid.NewString(),
		MarketID:        marketID,
		WinningOptionID: &winningOptionID,
		Result: ActualResult{
			SettlementType:   SettlementResult,
			HomeScore:        &homeScore,
			AwayScore:        &awayScore,
			OutcomeCode:      outcomeCode,
			WinningOptionIDs: []string{winningOptionID},
		},
		SettledBy: "match-result",
		SettledAt: now,
	}
}

// NewManualOutcome monta o desfecho informado pelo operador.
// Todo id precisa pertencer ao mercado; qualquer id estranho aborta sem criar nada.
// O primeiro id também vira o WinningOptionID singular, pra consultas legadas.
func NewManualOutcome(marketID string, options []*Option, winningIDs []string, settledBy, notes string, now time.Time) (*Outcome, error) {
	if len(winningIDs) == 0 {
		return nil, ErrInvalidWinningOption
	}
	known := make(map[string]struct{}, len(options))
	for _, o := range options {
		known[o.ID] = struct{}{}
	}
	for _, id := range winningIDs {
		if _, ok := known[id]; !ok {
			return nil, ErrInvalidWinningOption
		}
	}
	primary := winningIDs[0]
	return &Outcome{
		ID:              uuid.NewString(),
		MarketID:        marketID,
		WinningOptionID: &primary,
		Result: ActualResult{
			SettlementType:   SettlementManual,
			WinningOptionIDs: winningIDs,
		},
		SettledBy: settledBy,
		SettledAt: now,
		Notes:     notes,
	}, nil
}

// NewCancelledOutcome monta o desfecho de anulação: sem vencedor, tudo reembolsado
func NewCancelledOutcome(marketID, settledBy, reason string, now time.Time) *Outcome {
	return &Outcome{
		ID:       uuid.NewString(),
		MarketID: marketID,
		Result: ActualResult{
			SettlementType: SettlementCancelled,
		},
		SettledBy: settledBy,
		SettledAt: now,
		Notes:     reason,
	}
}

// WinningSet resolve o conjunto completo de vencedores:
// winning_option_ids quando presente, senão o singleton do vencedor primário
func (o *Outcome) WinningSet() map[string]struct{} {
	set := make(map[string]struct{})
	if len(o.Result.WinningOptionIDs) > 0 {
		for _, id := range o.Result.WinningOptionIDs {
			set[id] = struct{}{}
		}
		return set
	}
	if o.WinningOptionID != nil {
		set[*o.WinningOptionID] = struct{}{}
	}
	return set
}

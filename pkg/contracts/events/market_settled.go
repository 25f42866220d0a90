package events

import "time"

// Evento emitido após a liquidação (ou cancelamento) de um mercado.
type MarketSettled struct {
	MarketID         string    `json:"market_id"`
	MatchID          string    `json:"match_id"`
	SettlementType   string    `json:"settlement_type"` // "result" | "manual" | "cancelled"
	WinningOptionIDs []string  `json:"winning_option_ids,omitempty"`
	BetsWon          int       `json:"bets_won"`
	BetsLost         int       `json:"bets_lost"`
	BetsCancelled    int       `json:"bets_cancelled"`
	TotalPaidOut     string    `json:"total_paid_out"` // decimal como string
	SettledAt        time.Time `json:"settled_at"`
}

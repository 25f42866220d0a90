package events

import "time"

// Odd corrente de uma opção dentro de um mercado.
type OptionOdds struct {
	OptionID  string `json:"option_id"`
	OptionKey string `json:"option_key"`
	Odds      string `json:"odds"` // decimal como string, ex: "2.15"
}

// Evento publicado no tópico "odds_updates" após cada recálculo pari-mutuel.
type OddsUpdate struct {
	MarketID  string       `json:"market_id"`
	MatchID   string       `json:"match_id"`
	Options   []OptionOdds `json:"options"`
	UpdatedAt time.Time    `json:"updated_at"`
	Source    string       `json:"source"` // "betting-service"
}

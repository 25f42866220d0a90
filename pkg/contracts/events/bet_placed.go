package events

type BetPlaced struct {
	BetID           string `json:"bet_id"`
	UserID          string `json:"user_id"`
	MarketID        string `json:"market_id"`
	OptionID        string `json:"option_id"`
	OptionKey       string `json:"option_key"`
	Stake           string `json:"stake"`             // decimal como string, ex: "100.00"
	OddsAtPlacement string `json:"odds_at_placement"` // odd congelada no momento da aposta
	PaymentMethod   string `json:"payment_method"`
	TsUnixMs        int64  `json:"ts_unix_ms"`
}

package topics

const (
	// Odds
	OddsUpdates = "odds_updates"

	// Bets
	BetPlaced = "bet_placed"

	// Markets
	MatchConcluded = "match_concluded"
	MarketSettled  = "market_settled"

	// DLQs
	MatchConcludedDLQ = "match_concluded_dlq"
)

package events

import "time"

// Evento publicado pela plataforma de partidas quando um jogo termina.
// Winner: "home" | "away" | "draw"
type MatchConcluded struct {
	MatchID     string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	Winner      string    `json:"winner"`
	ConcludedAt time.Time `json:"concluded_at"`
}

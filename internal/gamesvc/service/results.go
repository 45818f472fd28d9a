package service

import "github.com/shopspring/decimal"

type PlayerScore struct {
	PlayerID   string          `json:"playerId"`
	PlayerName string          `json:"playerName"`
	Points     decimal.Decimal `json:"points"`
}

// RoundResult reports the state of the round a score was just recorded
// into. Completed means the round closed and a new one was opened.
type RoundResult struct {
	RoundNumber  int             `json:"roundNumber"`
	Completed    bool            `json:"completed"`
	PlayerScores []PlayerScore   `json:"playerScores"`
	Total        decimal.Decimal `json:"total"`
}

type CurrentScore struct {
	PlayerID   string          `json:"playerId"`
	PlayerName string          `json:"playerName"`
	Points     decimal.Decimal `json:"points"`
}

type PlayerTotalScore struct {
	PlayerID    string          `json:"playerId"`
	PlayerName  string          `json:"playerName"`
	TotalPoints decimal.Decimal `json:"totalPoints"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScoreMetadata struct {
	Rank *int `json:"rank,omitempty"`
}

// Score is one player's result for one round. At most one score exists
// per (round, player); a re-record overwrites it in place.
type Score struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	RoundID     string          `json:"round_id"`
	PlayerID    string          `json:"player_id"`
	Points      decimal.Decimal `json:"points"`
	Amount      decimal.Decimal `json:"amount"` // points scaled by the game point value
	RoundNumber int             `json:"round_number"`
	Metadata    *ScoreMetadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

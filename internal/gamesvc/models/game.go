package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameType string

const (
	GameTypePoker   GameType = "poker"
	GameTypeTienLen GameType = "tienlen"
)

// PlayerResult is written into game metadata when a tien len game ends.
type PlayerResult struct {
	PlayerID   string          `json:"playerId"`
	PlayerName string          `json:"playerName"`
	Points     decimal.Decimal `json:"points"`
}

// GameMetadata carries the policy parameters the game was created with,
// plus the final winners/losers for tien len.
type GameMetadata struct {
	InitialPoints decimal.Decimal `json:"initialPoints"`
	PointValue    decimal.Decimal `json:"pointValue"`
	MaxPlayers    int             `json:"maxPlayers,omitempty"`
	Winners       []PlayerResult  `json:"winners,omitempty"`
	Losers        []PlayerResult  `json:"losers,omitempty"`
}

type Game struct {
	ID                 string        `json:"id"`
	Type               GameType      `json:"type"`
	IsActive           bool          `json:"is_active"`
	CurrentRoundNumber int           `json:"current_round_number"`
	CreatedAt          time.Time     `json:"created_at"`
	EndedAt            *time.Time    `json:"ended_at,omitempty"`
	Metadata           *GameMetadata `json:"metadata,omitempty"`
}

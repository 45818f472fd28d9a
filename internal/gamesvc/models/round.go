package models

import "time"

type Round struct {
	ID          string     `json:"id"`
	GameID      string     `json:"game_id"`
	RoundNumber int        `json:"round_number"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

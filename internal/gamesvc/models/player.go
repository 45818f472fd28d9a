package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Player struct {
	ID          string          `json:"id"`
	TelegramID  string          `json:"telegram_id"`
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name,omitempty"`
	Balance     decimal.Decimal `json:"balance"` // maintained by the financial service
	CreatedAt   time.Time       `json:"created_at"`
}

// Name returns the best display label for the player.
func (p *Player) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Username != "" {
		return p.Username
	}
	return fmt.Sprintf("Player %s", p.TelegramID)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionGameSettlement TransactionType = "game_settlement"
	TransactionFundDeposit    TransactionType = "fund_deposit"
	TransactionFundWithdrawal TransactionType = "fund_withdrawal"
)

// Transaction is one ledger entry. A player's balance is the sum of
// their transaction amounts; entries are never updated or deleted.
type Transaction struct {
	ID        string                 `json:"id"`
	PlayerID  string                 `json:"player_id"`
	Type      TransactionType        `json:"type"`
	Amount    decimal.Decimal        `json:"amount"`
	GameID    string                 `json:"game_id,omitempty"`
	FundID    string                 `json:"fund_id,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

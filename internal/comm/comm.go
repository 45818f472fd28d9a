package comm

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Subjects the services listen on. Both brokers use queue subscriptions
// so additional instances share the load.
const (
	GameSubject      = "game.cmd"
	FinancialSubject = "financial.cmd"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Command is the envelope every front end sends over NATS request/reply.
type Command struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the uniform reply envelope. On failure Data is empty and
// Message carries the human-readable reason.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK wraps v into a success envelope.
func OK(v interface{}) ([]byte, error) {
	var data json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return json.Marshal(&Response{Status: StatusOK, Data: data})
}

// Fail wraps a message into an error envelope.
func Fail(message string) []byte {
	b, _ := json.Marshal(&Response{Status: StatusError, Message: message})
	return b
}

type PlayerInfo struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
}

// Game command payloads.

type CreateGameReq struct {
	Type string `json:"type"`
	// Optional override of the policy default point value (poker only).
	PointValue *decimal.Decimal `json:"pointValue,omitempty"`
}

type JoinGameReq struct {
	PlayerID   string      `json:"playerId"`
	PlayerInfo *PlayerInfo `json:"playerInfo,omitempty"`
}

type RecordScoreReq struct {
	PlayerID string          `json:"playerId"`
	Points   decimal.Decimal `json:"points"`
	Rank     *int            `json:"rank,omitempty"`
}

// Financial command payloads.

type GameTransactionReq struct {
	PlayerID string                 `json:"playerId"`
	GameID   string                 `json:"gameId"`
	Amount   decimal.Decimal        `json:"amount"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type PlayerBalanceReq struct {
	PlayerID string `json:"playerId"`
}

type ReportReq struct {
	PlayerID  string `json:"playerId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type FundDepositReq struct {
	PlayerID string          `json:"playerId"`
	Amount   decimal.Decimal `json:"amount"`
	FundID   string          `json:"fundId"`
}

type CreateFundReq struct {
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

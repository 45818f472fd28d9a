package botsvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/cardtable-services/internal/comm"
	finservice "github.com/tdnguyen/cardtable-services/internal/finsvc/service"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/service"
)

// requester is the slice of *nats.Conn the client needs; tests swap in
// a fake.
type requester interface {
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

// Client issues commands to the game and financial services over NATS
// request/reply and unwraps the response envelope.
type Client struct {
	nc      requester
	timeout time.Duration
}

func NewClient(nc *nats.Conn) *Client {
	return &Client{nc: nc, timeout: 5 * time.Second}
}

func (c *Client) do(subject, cmd string, payload, out interface{}) error {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		data = b
	}

	body, err := json.Marshal(&comm.Command{Cmd: cmd, Data: data})
	if err != nil {
		return err
	}

	msg, err := c.nc.Request(subject, body, c.timeout)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", cmd, err)
	}

	resp := &comm.Response{}
	if err := json.Unmarshal(msg.Data, resp); err != nil {
		return fmt.Errorf("%s reply is malformed: %w", cmd, err)
	}
	if resp.Status != comm.StatusOK {
		return errors.New(resp.Message)
	}
	if out != nil && len(resp.Data) > 0 {
		return json.Unmarshal(resp.Data, out)
	}
	return nil
}

func (c *Client) CreateGame(gameType string) (*models.Game, error) {
	game := &models.Game{}
	err := c.do(comm.GameSubject, "create_game", &comm.CreateGameReq{Type: gameType}, game)
	return game, err
}

func (c *Client) JoinGame(playerID string, info *comm.PlayerInfo) (*models.Game, error) {
	game := &models.Game{}
	err := c.do(comm.GameSubject, "join_game", &comm.JoinGameReq{PlayerID: playerID, PlayerInfo: info}, game)
	return game, err
}

func (c *Client) RecordScore(playerID string, points decimal.Decimal, rank *int) (*service.RoundResult, error) {
	result := &service.RoundResult{}
	err := c.do(comm.GameSubject, "record_score", &comm.RecordScoreReq{PlayerID: playerID, Points: points, Rank: rank}, result)
	return result, err
}

func (c *Client) GetCurrentScores() ([]service.CurrentScore, error) {
	var scores []service.CurrentScore
	err := c.do(comm.GameSubject, "get_current_scores", nil, &scores)
	return scores, err
}

func (c *Client) GetTotalScores() ([]service.PlayerTotalScore, error) {
	var totals []service.PlayerTotalScore
	err := c.do(comm.GameSubject, "get_total_scores", nil, &totals)
	return totals, err
}

func (c *Client) EndGame() (*models.Game, error) {
	game := &models.Game{}
	err := c.do(comm.GameSubject, "end_game", nil, game)
	return game, err
}

func (c *Client) GetPlayerBalance(playerID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := c.do(comm.FinancialSubject, "get_player_balance", &comm.PlayerBalanceReq{PlayerID: playerID}, &balance)
	return balance, err
}

func (c *Client) GetReport(playerID string, start, end time.Time) (*finservice.Report, error) {
	report := &finservice.Report{}
	err := c.do(comm.FinancialSubject, "get_report", &comm.ReportReq{
		PlayerID:  playerID,
		StartDate: start.Format(time.RFC3339),
		EndDate:   end.Format(time.RFC3339),
	}, report)
	return report, err
}

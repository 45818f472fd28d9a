package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/tdnguyen/cardtable-services/internal/apperr"
	"github.com/tdnguyen/cardtable-services/internal/comm"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/service"
)

const requestTimeout = 10 * time.Second

type Broker struct {
	Conn        *nats.Conn
	GameService *service.GameService
}

func NewBroker(nc *nats.Conn, gameService *service.GameService) *Broker {
	return &Broker{
		Conn:        nc,
		GameService: gameService,
	}
}

// handleCommand dispatches one named command and replies on the message's
// reply subject with a success or error envelope.
func (b *Broker) handleCommand(msgNat *nats.Msg) {
	cmd := &comm.Command{}
	if err := json.Unmarshal(msgNat.Data, cmd); err != nil {
		log.Errorf("Error nats message %s", err)
		b.respondError(msgNat, "malformed command")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch cmd.Cmd {
	case "create_game":
		var req comm.CreateGameReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed create_game payload")
			return
		}
		game, err := b.GameService.CreateGame(ctx, models.GameType(req.Type), req.PointValue)
		b.respond(msgNat, cmd.Cmd, game, err)

	case "join_game":
		var req comm.JoinGameReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed join_game payload")
			return
		}
		game, err := b.GameService.AddPlayerToGame(ctx, req.PlayerID, req.PlayerInfo)
		b.respond(msgNat, cmd.Cmd, game, err)

	case "record_score":
		var req comm.RecordScoreReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed record_score payload")
			return
		}
		result, err := b.GameService.RecordScore(ctx, req.PlayerID, req.Points, req.Rank)
		b.respond(msgNat, cmd.Cmd, result, err)

	case "get_current_scores":
		scores, err := b.GameService.GetCurrentScores(ctx)
		b.respond(msgNat, cmd.Cmd, scores, err)

	case "get_total_scores":
		totals, err := b.GameService.GetTotalScores(ctx)
		b.respond(msgNat, cmd.Cmd, totals, err)

	case "end_game":
		game, err := b.GameService.EndGame(ctx)
		b.respond(msgNat, cmd.Cmd, game, err)

	default:
		log.Errorf("Unknown game command %q", cmd.Cmd)
		b.respondError(msgNat, "unknown command: "+cmd.Cmd)
	}
}

func (b *Broker) respond(msgNat *nats.Msg, cmd string, result interface{}, err error) {
	if err != nil {
		log.Errorf("Error [%s] (%s): %s", cmd, apperr.KindOf(err), err)
		b.respondError(msgNat, err.Error())
		return
	}

	payload, err := comm.OK(result)
	if err != nil {
		log.Errorf("Error [%s] unable to marshal response: %s", cmd, err)
		b.respondError(msgNat, "failed to encode response")
		return
	}

	if err := msgNat.Respond(payload); err != nil {
		log.Errorf("Error responding to %s: %s", cmd, err)
	}
}

func (b *Broker) respondError(msgNat *nats.Msg, message string) {
	if err := msgNat.Respond(comm.Fail(message)); err != nil {
		log.Errorf("Error publishing error response: %s", err)
	}
}

// Subscribe joins the service queue group on the game command subject.
func (b *Broker) Subscribe(queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(comm.GameSubject, queueGroup, b.handleCommand)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/tdnguyen/cardtable-services/internal/apperr"
	"github.com/tdnguyen/cardtable-services/internal/comm"
	"github.com/tdnguyen/cardtable-services/internal/finsvc/service"
)

const requestTimeout = 10 * time.Second

type Broker struct {
	Conn             *nats.Conn
	FinancialService *service.FinancialService
}

func NewBroker(nc *nats.Conn, financialService *service.FinancialService) *Broker {
	return &Broker{
		Conn:             nc,
		FinancialService: financialService,
	}
}

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
	case "record_game_transaction":
		var req comm.GameTransactionReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed record_game_transaction payload")
			return
		}
		tx, err := b.FinancialService.RecordGameTransaction(ctx, req.PlayerID, req.GameID, req.Amount, req.Metadata)
		b.respond(msgNat, cmd.Cmd, tx, err)

	case "get_player_balance":
		var req comm.PlayerBalanceReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed get_player_balance payload")
			return
		}
		balance, err := b.FinancialService.GetPlayerBalance(ctx, req.PlayerID)
		b.respond(msgNat, cmd.Cmd, balance, err)

	case "get_report":
		var req comm.ReportReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed get_report payload")
			return
		}
		start, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			b.respondError(msgNat, "invalid startDate")
			return
		}
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			b.respondError(msgNat, "invalid endDate")
			return
		}
		report, err := b.FinancialService.GetReport(ctx, req.PlayerID, start, end)
		b.respond(msgNat, cmd.Cmd, report, err)

	case "deposit_to_fund":
		var req comm.FundDepositReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed deposit_to_fund payload")
			return
		}
		tx, err := b.FinancialService.DepositToFund(ctx, req.PlayerID, req.Amount, req.FundID)
		b.respond(msgNat, cmd.Cmd, tx, err)

	case "create_fund":
		var req comm.CreateFundReq
		if err := json.Unmarshal(cmd.Data, &req); err != nil {
			b.respondError(msgNat, "malformed create_fund payload")
			return
		}
		fund, err := b.FinancialService.CreateFund(ctx, req.Name, req.Metadata)
		b.respond(msgNat, cmd.Cmd, fund, err)

	default:
		log.Errorf("Unknown financial command %q", cmd.Cmd)
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

// Subscribe joins the service queue group on the financial command subject.
func (b *Broker) Subscribe(queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(comm.FinancialSubject, queueGroup, b.handleCommand)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/tdnguyen/cardtable-services/internal/apperr"
	"github.com/tdnguyen/cardtable-services/internal/finsvc/models"
)

// Storage gateway interfaces consumed by the financial service.

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetByPlayer(ctx context.Context, playerID string) ([]*models.Transaction, error)
	GetByPlayerBetween(ctx context.Context, playerID string, start, end time.Time) ([]*models.Transaction, error)
}

type FundStore interface {
	GetFund(ctx context.Context, fundID string) (*models.Fund, error)
	CreateFund(ctx context.Context, fund *models.Fund) error
	SaveFund(ctx context.Context, fund *models.Fund) error
}

// FinancialService is the ledger: balances are sums over transactions,
// never stored counters. The game and financial domains stay independent;
// no transaction spans both.
type FinancialService struct {
	transactions TransactionStore
	funds        FundStore
}

func NewFinancialService(transactions TransactionStore, funds FundStore) *FinancialService {
	return &FinancialService{
		transactions: transactions,
		funds:        funds,
	}
}

// RecordGameTransaction books a game settlement against a player.
func (s *FinancialService) RecordGameTransaction(ctx context.Context, playerID, gameID string, amount decimal.Decimal, metadata map[string]interface{}) (*models.Transaction, error) {
	if playerID == "" {
		return nil, apperr.InvalidArgument("player id is required")
	}

	tx := &models.Transaction{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		GameID:    gameID,
		Type:      models.TransactionGameSettlement,
		Amount:    amount,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	if err := s.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	log.Infof("recorded settlement of %s for player %s (game %s)", amount, playerID, gameID)
	return tx, nil
}

// GetPlayerBalance sums every ledger entry of the player.
func (s *FinancialService) GetPlayerBalance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	txs, err := s.transactions.GetByPlayer(ctx, playerID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(tx.Amount)
	}
	return balance, nil
}

// Report is a player's transactions in a period plus their sum.
type Report struct {
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []*models.Transaction `json:"transactions"`
}

func (s *FinancialService) GetReport(ctx context.Context, playerID string, start, end time.Time) (*Report, error) {
	txs, err := s.transactions.GetByPlayerBetween(ctx, playerID, start, end)
	if err != nil {
		return nil, err
	}

	balance := decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(tx.Amount)
	}
	return &Report{Balance: balance, Transactions: txs}, nil
}

// DepositToFund moves a player contribution into a shared fund and books
// the matching ledger entry.
func (s *FinancialService) DepositToFund(ctx context.Context, playerID string, amount decimal.Decimal, fundID string) (*models.Transaction, error) {
	fund, err := s.funds.GetFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, apperr.NotFound("fund not found")
	}

	now := time.Now()
	fund.Balance = fund.Balance.Add(amount)
	fund.LastUpdatedAt = &now
	if err := s.funds.SaveFund(ctx, fund); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		FundID:    fund.ID,
		Type:      models.TransactionFundDeposit,
		Amount:    amount,
		CreatedAt: now,
		Metadata:  map[string]interface{}{"description": fmt.Sprintf("Deposit to %s", fund.Name)},
	}
	if err := s.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *FinancialService) CreateFund(ctx context.Context, name string, metadata map[string]interface{}) (*models.Fund, error) {
	if name == "" {
		return nil, apperr.InvalidArgument("fund name is required")
	}

	fund := &models.Fund{
		ID:        uuid.NewString(),
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	if err := s.funds.CreateFund(ctx, fund); err != nil {
		return nil, err
	}

	return fund, nil
}

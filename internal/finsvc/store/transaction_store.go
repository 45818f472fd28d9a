package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/cardtable-services/internal/finsvc/models"
)

type TransactionStore struct {
	db *pgxpool.Pool
}

func NewTransactionStore(db *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	metadata, err := json.Marshal(tx.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode transaction metadata: %w", err)
	}

	query := `
		INSERT INTO transactions (id, player_id, type, amount, game_id, fund_id, created_at, metadata)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
	`

	_, err = s.db.Exec(ctx, query,
		tx.ID, tx.PlayerID, tx.Type, tx.Amount, tx.GameID, tx.FundID, tx.CreatedAt, metadata)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var gameID, fundID *string
	var metadata []byte
	err := row.Scan(
		&tx.ID,
		&tx.PlayerID,
		&tx.Type,
		&tx.Amount,
		&gameID,
		&fundID,
		&tx.CreatedAt,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	if gameID != nil {
		tx.GameID = *gameID
	}
	if fundID != nil {
		tx.FundID = *fundID
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode transaction metadata: %w", err)
		}
	}

	return tx, nil
}

const transactionColumns = `id, player_id, type, amount, game_id, fund_id, created_at, metadata`

func (s *TransactionStore) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]*models.Transaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// GetByPlayer returns every ledger entry for a player.
func (s *TransactionStore) GetByPlayer(ctx context.Context, playerID string) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE player_id = $1 ORDER BY created_at`
	return s.queryTransactions(ctx, query, playerID)
}

// GetByPlayerBetween returns a player's entries in a period, newest first.
func (s *TransactionStore) GetByPlayerBetween(ctx context.Context, playerID string, start, end time.Time) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE player_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC
	`
	return s.queryTransactions(ctx, query, playerID, start, end)
}

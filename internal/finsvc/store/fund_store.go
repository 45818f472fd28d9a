package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/cardtable-services/internal/finsvc/models"
)

type FundStore struct {
	db *pgxpool.Pool
}

func NewFundStore(db *pgxpool.Pool) *FundStore {
	return &FundStore{db: db}
}

// GetFund returns nil, nil when the fund is unknown.
func (s *FundStore) GetFund(ctx context.Context, fundID string) (*models.Fund, error) {
	query := `
		SELECT id, name, balance, created_at, last_updated_at, metadata
		FROM funds
		WHERE id = $1
	`

	f := &models.Fund{}
	var metadata []byte
	err := s.db.QueryRow(ctx, query, fundID).Scan(
		&f.ID,
		&f.Name,
		&f.Balance,
		&f.CreatedAt,
		&f.LastUpdatedAt,
		&metadata,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &f.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode fund metadata: %w", err)
		}
	}

	return f, nil
}

func (s *FundStore) CreateFund(ctx context.Context, f *models.Fund) error {
	metadata, err := json.Marshal(f.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode fund metadata: %w", err)
	}

	query := `
		INSERT INTO funds (id, name, balance, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.db.Exec(ctx, query, f.ID, f.Name, f.Balance, f.CreatedAt, metadata)
	if err != nil {
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}

// SaveFund persists the fund balance and update timestamp.
func (s *FundStore) SaveFund(ctx context.Context, f *models.Fund) error {
	query := `
		UPDATE funds
		SET balance = $2, last_updated_at = $3
		WHERE id = $1
	`

	_, err := s.db.Exec(ctx, query, f.ID, f.Balance, f.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save fund: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

type ScoreStore struct {
	db *pgxpool.Pool
}

func NewScoreStore(db *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{db: db}
}

const scoreColumns = `id, game_id, round_id, player_id, points, amount, round_number, metadata, created_at`

func scanScore(row pgx.Row) (*models.Score, error) {
	sc := &models.Score{}
	var metadata []byte
	err := row.Scan(
		&sc.ID,
		&sc.GameID,
		&sc.RoundID,
		&sc.PlayerID,
		&sc.Points,
		&sc.Amount,
		&sc.RoundNumber,
		&metadata,
		&sc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		sc.Metadata = &models.ScoreMetadata{}
		if err := json.Unmarshal(metadata, sc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode score metadata: %w", err)
		}
	}

	return sc, nil
}

// GetScore returns the score a player holds in a round, or nil.
func (s *ScoreStore) GetScore(ctx context.Context, roundID, playerID string) (*models.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE round_id = $1 AND player_id = $2`

	sc, err := scanScore(s.db.QueryRow(ctx, query, roundID, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return sc, nil
}

// UpsertScore writes the score for (round, player), overwriting points,
// amount and metadata on conflict.
func (s *ScoreStore) UpsertScore(ctx context.Context, sc *models.Score) error {
	metadata, err := json.Marshal(sc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode score metadata: %w", err)
	}

	query := `
		INSERT INTO scores (id, game_id, round_id, player_id, points, amount, round_number, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (round_id, player_id)
		DO UPDATE SET points = EXCLUDED.points, amount = EXCLUDED.amount, metadata = EXCLUDED.metadata
	`

	_, err = s.db.Exec(ctx, query,
		sc.ID, sc.GameID, sc.RoundID, sc.PlayerID,
		sc.Points, sc.Amount, sc.RoundNumber, metadata, sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	return nil
}

func (s *ScoreStore) queryScores(ctx context.Context, query string, args ...interface{}) ([]*models.Score, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*models.Score
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}

	return scores, rows.Err()
}

// GetRoundScores returns all scores of a round ordered by creation.
func (s *ScoreStore) GetRoundScores(ctx context.Context, roundID string) ([]*models.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE round_id = $1 ORDER BY created_at`
	return s.queryScores(ctx, query, roundID)
}

// GetGameScores returns every score recorded for a game across all rounds.
func (s *ScoreStore) GetGameScores(ctx context.Context, gameID string) ([]*models.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE game_id = $1 ORDER BY created_at`
	return s.queryScores(ctx, query, gameID)
}

// PlayerGameTotal sums a player's points across the whole game.
func (s *ScoreStore) PlayerGameTotal(ctx context.Context, gameID, playerID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM scores
		WHERE game_id = $1 AND player_id = $2
	`, gameID, playerID).Scan(&total)

	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum player points: %w", err)
	}

	return total, nil
}

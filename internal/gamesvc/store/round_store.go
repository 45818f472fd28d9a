package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

type RoundStore struct {
	db *pgxpool.Pool
}

func NewRoundStore(db *pgxpool.Pool) *RoundStore {
	return &RoundStore{db: db}
}

// GetRound returns the round with the given number, or nil when absent.
func (s *RoundStore) GetRound(ctx context.Context, gameID string, roundNumber int) (*models.Round, error) {
	query := `
		SELECT id, game_id, round_number, is_completed, created_at, completed_at
		FROM rounds
		WHERE game_id = $1 AND round_number = $2
	`

	r := &models.Round{}
	err := s.db.QueryRow(ctx, query, gameID, roundNumber).Scan(
		&r.ID,
		&r.GameID,
		&r.RoundNumber,
		&r.IsCompleted,
		&r.CreatedAt,
		&r.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	return r, nil
}

// MaxRoundNumber returns the highest round number created for the game,
// or 0 when the game has no rounds yet. Seeding rounds count too, so the
// next number never collides with one inserted out of sequence.
func (s *RoundStore) MaxRoundNumber(ctx context.Context, gameID string) (int, error) {
	var max int
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(round_number), 0) FROM rounds WHERE game_id = $1
	`, gameID).Scan(&max)

	if err != nil {
		return 0, fmt.Errorf("failed to get max round number: %w", err)
	}

	return max, nil
}

func (s *RoundStore) CreateRound(ctx context.Context, r *models.Round) error {
	query := `
		INSERT INTO rounds (id, game_id, round_number, is_completed, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		r.ID, r.GameID, r.RoundNumber, r.IsCompleted, r.CreatedAt, r.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("round %d already exists for game %s", r.RoundNumber, r.GameID)
		}
		return fmt.Errorf("failed to create round: %w", err)
	}

	return nil
}

// SaveRound persists completion state.
func (s *RoundStore) SaveRound(ctx context.Context, r *models.Round) error {
	query := `
		UPDATE rounds
		SET is_completed = $2, completed_at = $3
		WHERE id = $1
	`

	_, err := s.db.Exec(ctx, query, r.ID, r.IsCompleted, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}

	return nil
}

// HasOpenRoundWithScore reports whether the player has a score in any
// round of the game that is still open.
func (s *RoundStore) HasOpenRoundWithScore(ctx context.Context, gameID, playerID string) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM rounds r
		JOIN scores s ON s.round_id = r.id
		WHERE r.game_id = $1 AND r.is_completed = false AND s.player_id = $2
	`, gameID, playerID).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to check open rounds: %w", err)
	}

	return count > 0, nil
}

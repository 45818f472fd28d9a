package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

// GetByTelegramID returns nil, nil when the player is unknown.
func (s *PlayerStore) GetByTelegramID(ctx context.Context, telegramID string) (*models.Player, error) {
	query := `
		SELECT id, telegram_id, username, display_name, balance, created_at
		FROM players
		WHERE telegram_id = $1
	`

	p := &models.Player{}
	err := s.db.QueryRow(ctx, query, telegramID).Scan(
		&p.ID,
		&p.TelegramID,
		&p.Username,
		&p.DisplayName,
		&p.Balance,
		&p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

func (s *PlayerStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (id, telegram_id, username, display_name, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		p.ID, p.TelegramID, p.Username, p.DisplayName, p.Balance, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

// HasGames reports whether the player has ever been rostered in a game.
func (s *PlayerStore) HasGames(ctx context.Context, playerID string) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM game_players WHERE player_id = $1
	`, playerID).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("failed to count player games: %w", err)
	}

	return count > 0, nil
}

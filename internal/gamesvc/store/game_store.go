package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

// GetActiveGame returns the single game flagged active, or nil when none
// exists. A partial unique index keeps more than one from ever being active.
func (s *GameStore) GetActiveGame(ctx context.Context) (*models.Game, error) {
	query := `
		SELECT id, type, is_active, current_round_number, created_at, ended_at, metadata
		FROM games
		WHERE is_active = true
		LIMIT 1
	`

	game := &models.Game{}
	var metadata []byte
	err := s.db.QueryRow(ctx, query).Scan(
		&game.ID,
		&game.Type,
		&game.IsActive,
		&game.CurrentRoundNumber,
		&game.CreatedAt,
		&game.EndedAt,
		&metadata,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no active game
		}
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}

	if len(metadata) > 0 {
		game.Metadata = &models.GameMetadata{}
		if err := json.Unmarshal(metadata, game.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode game metadata: %w", err)
		}
	}

	return game, nil
}

func (s *GameStore) CreateGame(ctx context.Context, game *models.Game) error {
	metadata, err := json.Marshal(game.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode game metadata: %w", err)
	}

	query := `
		INSERT INTO games (id, type, is_active, current_round_number, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.Exec(ctx, query,
		game.ID, game.Type, game.IsActive, game.CurrentRoundNumber, game.CreatedAt, metadata)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("another game is already active")
		}
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// SaveGame persists the mutable game columns.
func (s *GameStore) SaveGame(ctx context.Context, game *models.Game) error {
	metadata, err := json.Marshal(game.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode game metadata: %w", err)
	}

	query := `
		UPDATE games
		SET is_active = $2, current_round_number = $3, ended_at = $4, metadata = $5
		WHERE id = $1
	`

	_, err = s.db.Exec(ctx, query,
		game.ID, game.IsActive, game.CurrentRoundNumber, game.EndedAt, metadata)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// AddPlayer records game membership. Re-adding is a no-op.
func (s *GameStore) AddPlayer(ctx context.Context, gameID, playerID string) error {
	query := `
		INSERT INTO game_players (game_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (game_id, player_id) DO NOTHING
	`

	_, err := s.db.Exec(ctx, query, gameID, playerID)
	if err != nil {
		return fmt.Errorf("failed to add player to game: %w", err)
	}

	return nil
}

func (s *GameStore) GetGamePlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.telegram_id, p.username, p.display_name, p.balance, p.created_at
		FROM players p
		JOIN game_players gp ON gp.player_id = p.id
		WHERE gp.game_id = $1
		ORDER BY p.created_at
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var p models.Player
		err := rows.Scan(
			&p.ID,
			&p.TelegramID,
			&p.Username,
			&p.DisplayName,
			&p.Balance,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, &p)
	}

	return players, rows.Err()
}

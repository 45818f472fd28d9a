package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

// Storage gateway interfaces consumed by the game service. The pgx
// implementations live in the store package; tests substitute in-memory
// fakes.

type GameStore interface {
	GetActiveGame(ctx context.Context) (*models.Game, error)
	CreateGame(ctx context.Context, game *models.Game) error
	SaveGame(ctx context.Context, game *models.Game) error
	AddPlayer(ctx context.Context, gameID, playerID string) error
	GetGamePlayers(ctx context.Context, gameID string) ([]*models.Player, error)
}

type PlayerStore interface {
	GetByTelegramID(ctx context.Context, telegramID string) (*models.Player, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	HasGames(ctx context.Context, playerID string) (bool, error)
}

type RoundStore interface {
	GetRound(ctx context.Context, gameID string, roundNumber int) (*models.Round, error)
	MaxRoundNumber(ctx context.Context, gameID string) (int, error)
	CreateRound(ctx context.Context, round *models.Round) error
	SaveRound(ctx context.Context, round *models.Round) error
	HasOpenRoundWithScore(ctx context.Context, gameID, playerID string) (bool, error)
}

type ScoreStore interface {
	GetScore(ctx context.Context, roundID, playerID string) (*models.Score, error)
	UpsertScore(ctx context.Context, score *models.Score) error
	GetRoundScores(ctx context.Context, roundID string) ([]*models.Score, error)
	GetGameScores(ctx context.Context, gameID string) ([]*models.Score, error)
	PlayerGameTotal(ctx context.Context, gameID, playerID string) (decimal.Decimal, error)
}

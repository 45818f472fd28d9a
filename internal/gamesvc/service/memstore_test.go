package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

// memStore is an in-memory implementation of the four storage interfaces,
// mimicking the relational constraints of the real schema (one active
// game, unique round numbers, one score per round and player).
type memStore struct {
	games   map[string]models.Game
	roster  map[string][]string // game id -> player ids in join order
	players map[string]models.Player
	rounds  map[string]models.Round
	scores  []models.Score
}

func newMemStore() *memStore {
	return &memStore{
		games:   make(map[string]models.Game),
		roster:  make(map[string][]string),
		players: make(map[string]models.Player),
		rounds:  make(map[string]models.Round),
	}
}

// GameStore

func (m *memStore) GetActiveGame(ctx context.Context) (*models.Game, error) {
	for _, g := range m.games {
		if g.IsActive {
			game := g
			return &game, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateGame(ctx context.Context, game *models.Game) error {
	for _, g := range m.games {
		if g.IsActive && game.IsActive {
			return fmt.Errorf("another game is already active")
		}
	}
	m.games[game.ID] = *game
	return nil
}

func (m *memStore) SaveGame(ctx context.Context, game *models.Game) error {
	if _, ok := m.games[game.ID]; !ok {
		return fmt.Errorf("game %s does not exist", game.ID)
	}
	m.games[game.ID] = *game
	return nil
}

func (m *memStore) AddPlayer(ctx context.Context, gameID, playerID string) error {
	for _, id := range m.roster[gameID] {
		if id == playerID {
			return nil
		}
	}
	m.roster[gameID] = append(m.roster[gameID], playerID)
	return nil
}

func (m *memStore) GetGamePlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	var players []*models.Player
	for _, id := range m.roster[gameID] {
		p := m.players[id]
		players = append(players, &p)
	}
	return players, nil
}

// PlayerStore

func (m *memStore) GetByTelegramID(ctx context.Context, telegramID string) (*models.Player, error) {
	for _, p := range m.players {
		if p.TelegramID == telegramID {
			player := p
			return &player, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	m.players[player.ID] = *player
	return nil
}

func (m *memStore) HasGames(ctx context.Context, playerID string) (bool, error) {
	for _, roster := range m.roster {
		for _, id := range roster {
			if id == playerID {
				return true, nil
			}
		}
	}
	return false, nil
}

// RoundStore

func (m *memStore) GetRound(ctx context.Context, gameID string, roundNumber int) (*models.Round, error) {
	for _, r := range m.rounds {
		if r.GameID == gameID && r.RoundNumber == roundNumber {
			round := r
			return &round, nil
		}
	}
	return nil, nil
}

func (m *memStore) MaxRoundNumber(ctx context.Context, gameID string) (int, error) {
	max := 0
	for _, r := range m.rounds {
		if r.GameID == gameID && r.RoundNumber > max {
			max = r.RoundNumber
		}
	}
	return max, nil
}

func (m *memStore) CreateRound(ctx context.Context, round *models.Round) error {
	for _, r := range m.rounds {
		if r.GameID == round.GameID && r.RoundNumber == round.RoundNumber {
			return fmt.Errorf("round %d already exists for game %s", round.RoundNumber, round.GameID)
		}
	}
	m.rounds[round.ID] = *round
	return nil
}

func (m *memStore) SaveRound(ctx context.Context, round *models.Round) error {
	if _, ok := m.rounds[round.ID]; !ok {
		return fmt.Errorf("round %s does not exist", round.ID)
	}
	m.rounds[round.ID] = *round
	return nil
}

func (m *memStore) HasOpenRoundWithScore(ctx context.Context, gameID, playerID string) (bool, error) {
	for _, sc := range m.scores {
		if sc.GameID != gameID || sc.PlayerID != playerID {
			continue
		}
		if r, ok := m.rounds[sc.RoundID]; ok && !r.IsCompleted {
			return true, nil
		}
	}
	return false, nil
}

// ScoreStore

func (m *memStore) GetScore(ctx context.Context, roundID, playerID string) (*models.Score, error) {
	for _, sc := range m.scores {
		if sc.RoundID == roundID && sc.PlayerID == playerID {
			score := sc
			return &score, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpsertScore(ctx context.Context, score *models.Score) error {
	for i, sc := range m.scores {
		if sc.RoundID == score.RoundID && sc.PlayerID == score.PlayerID {
			updated := sc
			updated.Points = score.Points
			updated.Amount = score.Amount
			updated.Metadata = score.Metadata
			m.scores[i] = updated
			return nil
		}
	}
	m.scores = append(m.scores, *score)
	return nil
}

func (m *memStore) GetRoundScores(ctx context.Context, roundID string) ([]*models.Score, error) {
	var scores []*models.Score
	for _, sc := range m.scores {
		if sc.RoundID == roundID {
			score := sc
			scores = append(scores, &score)
		}
	}
	return scores, nil
}

func (m *memStore) GetGameScores(ctx context.Context, gameID string) ([]*models.Score, error) {
	var scores []*models.Score
	for _, sc := range m.scores {
		if sc.GameID == gameID {
			score := sc
			scores = append(scores, &score)
		}
	}
	return scores, nil
}

func (m *memStore) PlayerGameTotal(ctx context.Context, gameID, playerID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, sc := range m.scores {
		if sc.GameID == gameID && sc.PlayerID == playerID {
			total = total.Add(sc.Points)
		}
	}
	return total, nil
}

// openRounds counts rounds of the game that are not completed.
func (m *memStore) openRounds(gameID string) int {
	count := 0
	for _, r := range m.rounds {
		if r.GameID == gameID && !r.IsCompleted {
			count++
		}
	}
	return count
}

// roundCount counts every round created for the game.
func (m *memStore) roundCount(gameID string) int {
	count := 0
	for _, r := range m.rounds {
		if r.GameID == gameID {
			count++
		}
	}
	return count
}

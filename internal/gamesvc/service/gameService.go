package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/tdnguyen/cardtable-services/internal/apperr"
	"github.com/tdnguyen/cardtable-services/internal/comm"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/policy"
)

// GameService owns the game lifecycle and the round engine. All mutating
// operations are serialized on a single mutex; the round completion check
// and the advance to the next round must never interleave. Uniqueness
// constraints on (game_id, round_number) and on the active-game flag back
// this up at the store level.
type GameService struct {
	mu      sync.Mutex
	games   GameStore
	players PlayerStore
	rounds  RoundStore
	scores  ScoreStore
}

func NewGameService(games GameStore, players PlayerStore, rounds RoundStore, scores ScoreStore) *GameService {
	return &GameService{
		games:   games,
		players: players,
		rounds:  rounds,
		scores:  scores,
	}
}

// GetActiveGame returns the active game, or nil when none exists.
func (s *GameService) GetActiveGame(ctx context.Context) (*models.Game, error) {
	return s.games.GetActiveGame(ctx)
}

func (s *GameService) requireActiveGame(ctx context.Context) (*models.Game, error) {
	game, err := s.games.GetActiveGame(ctx)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.NotFound("no active game found")
	}
	return game, nil
}

// CreateGame deactivates any currently active game, then creates a new
// active game with its first round open.
func (s *GameService) CreateGame(ctx context.Context, gameType models.GameType, pointValue *decimal.Decimal) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, ok := policy.For(gameType)
	if !ok {
		return nil, apperr.InvalidArgument(fmt.Sprintf("unknown game type: %s", gameType))
	}

	if err := s.deactivateCurrentGame(ctx); err != nil {
		return nil, err
	}

	metadata := &models.GameMetadata{
		InitialPoints: rules.InitialPoints,
		PointValue:    rules.PointValue,
		MaxPlayers:    rules.MaxPlayers,
	}
	if pointValue != nil {
		metadata.PointValue = *pointValue
	}

	game := &models.Game{
		ID:                 uuid.NewString(),
		Type:               gameType,
		IsActive:           true,
		CurrentRoundNumber: 1,
		CreatedAt:          time.Now(),
		Metadata:           metadata,
	}

	if err := s.games.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	if err := s.openNextRound(ctx, game); err != nil {
		return nil, err
	}

	log.Infof("created %s game %s", game.Type, game.ID)
	return game, nil
}

func (s *GameService) deactivateCurrentGame(ctx context.Context) error {
	game, err := s.games.GetActiveGame(ctx)
	if err != nil {
		return err
	}
	if game == nil {
		return nil
	}

	now := time.Now()
	game.IsActive = false
	game.EndedAt = &now
	log.Infof("deactivating game %s for a new game", game.ID)
	return s.games.SaveGame(ctx, game)
}

// openNextRound advances the game to a fresh open round. The number is
// derived from the highest existing round, not from a bare increment, so
// a seeding round inserted out of sequence never collides.
func (s *GameService) openNextRound(ctx context.Context, game *models.Game) error {
	max, err := s.rounds.MaxRoundNumber(ctx, game.ID)
	if err != nil {
		return err
	}

	next := max + 1
	game.CurrentRoundNumber = next
	if err := s.games.SaveGame(ctx, game); err != nil {
		return err
	}

	round := &models.Round{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		RoundNumber: next,
		CreatedAt:   time.Now(),
	}
	return s.rounds.CreateRound(ctx, round)
}

// AddPlayerToGame joins a player to the active game, creating the player
// record on first contact. Joining again is a no-op, except that a poker
// player holding zero points is re-seeded with the initial stake.
func (s *GameService) AddPlayerToGame(ctx context.Context, playerID string, info *comm.PlayerInfo) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.requireActiveGame(ctx)
	if err != nil {
		return nil, err
	}
	rules, _ := policy.For(game.Type)

	player, err := s.getOrCreatePlayer(ctx, playerID, info)
	if err != nil {
		return nil, err
	}

	if game.Type == models.GameTypePoker {
		if err := s.handlePokerPlayerJoin(ctx, game, player, rules); err != nil {
			return nil, err
		}
	}

	roster, err := s.games.GetGamePlayers(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	for _, member := range roster {
		if member.ID == player.ID {
			return game, nil // already joined
		}
	}

	if rules.MaxPlayers > 0 && len(roster) >= rules.MaxPlayers {
		return nil, apperr.InvalidState(fmt.Sprintf("%s game already has maximum players", game.Type))
	}

	if err := s.games.AddPlayer(ctx, game.ID, player.ID); err != nil {
		return nil, err
	}

	log.Infof("player %s joined game %s", player.TelegramID, game.ID)
	return game, nil
}

func (s *GameService) getOrCreatePlayer(ctx context.Context, playerID string, info *comm.PlayerInfo) (*models.Player, error) {
	player, err := s.players.GetByTelegramID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player != nil {
		return player, nil
	}
	if info == nil {
		return nil, apperr.InvalidArgument("player info is required for new player")
	}

	player = &models.Player{
		ID:          uuid.NewString(),
		TelegramID:  playerID,
		Username:    info.Username,
		DisplayName: info.DisplayName,
		Balance:     decimal.Zero,
		CreatedAt:   time.Now(),
	}
	if err := s.players.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// handlePokerPlayerJoin seeds a joining poker player with the initial
// stake when they have never played or hold zero points in this game.
func (s *GameService) handlePokerPlayerJoin(ctx context.Context, game *models.Game, player *models.Player, rules policy.Rules) error {
	total, err := s.scores.PlayerGameTotal(ctx, game.ID, player.ID)
	if err != nil {
		return err
	}
	hasGames, err := s.players.HasGames(ctx, player.ID)
	if err != nil {
		return err
	}
	if hasGames && !total.IsZero() {
		return nil
	}
	return s.grantInitialPoints(ctx, game, player, rules)
}

// grantInitialPoints records the stake as a single score inside a
// pre-completed round, so it never counts toward the open round's
// completion sum.
func (s *GameService) grantInitialPoints(ctx context.Context, game *models.Game, player *models.Player, rules policy.Rules) error {
	max, err := s.rounds.MaxRoundNumber(ctx, game.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	round := &models.Round{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		RoundNumber: max + 1,
		IsCompleted: true,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := s.rounds.CreateRound(ctx, round); err != nil {
		return err
	}

	score := &models.Score{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		RoundID:     round.ID,
		PlayerID:    player.ID,
		Points:      rules.InitialPoints,
		Amount:      policy.DerivedAmount(rules.InitialPoints, s.pointValue(game)),
		RoundNumber: round.RoundNumber,
		CreatedAt:   now,
	}
	if err := s.scores.UpsertScore(ctx, score); err != nil {
		return err
	}

	log.Infof("seeded player %s with %s points in game %s", player.TelegramID, rules.InitialPoints, game.ID)
	return nil
}

func (s *GameService) pointValue(game *models.Game) decimal.Decimal {
	if game.Metadata != nil {
		return game.Metadata.PointValue
	}
	rules, _ := policy.For(game.Type)
	return rules.PointValue
}

// RecordScore upserts the player's score for the current round, then
// closes and advances the round when the policy says it is complete.
func (s *GameService) RecordScore(ctx context.Context, playerID string, points decimal.Decimal, rank *int) (*RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.requireActiveGame(ctx)
	if err != nil {
		return nil, err
	}
	rules, _ := policy.For(game.Type)

	roster, err := s.games.GetGamePlayers(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if rules.CloseOnFullRoster && len(roster) != rules.MaxPlayers {
		return nil, apperr.InvalidState(fmt.Sprintf("%s game requires exactly %d players to record scores", game.Type, rules.MaxPlayers))
	}

	player, err := s.players.GetByTelegramID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperr.NotFound("player not found")
	}

	if game.Type == models.GameTypePoker {
		if err := s.validatePokerPlayerState(ctx, game, player, rules); err != nil {
			return nil, err
		}
	}

	round, err := s.rounds.GetRound(ctx, game.ID, game.CurrentRoundNumber)
	if err != nil {
		return nil, err
	}
	if round == nil || round.IsCompleted {
		return nil, apperr.Internal("current round not found", nil)
	}

	if err := s.upsertScore(ctx, game, round, player, points, rank); err != nil {
		return nil, err
	}

	roundScores, err := s.scores.GetRoundScores(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	total := sumPoints(roundScores)

	result := &RoundResult{
		RoundNumber: round.RoundNumber,
		Total:       total,
	}

	if rules.RoundComplete(len(roundScores), len(roster), total) {
		// The policy already matched, but the target is re-verified
		// before the round is closed. A mismatch here means corrupted
		// scores; adjusting them silently would falsify the ledger.
		if !rules.TargetMet(total) {
			return nil, apperr.InvalidState(fmt.Sprintf("total points in %s must be %s", game.Type, rules.CompletionTarget))
		}
		if err := s.completeRound(ctx, round); err != nil {
			return nil, err
		}
		if err := s.openNextRound(ctx, game); err != nil {
			return nil, err
		}
		result.Completed = true
		log.Infof("game %s round %d completed, round %d open", game.ID, round.RoundNumber, game.CurrentRoundNumber)
	}

	result.PlayerScores = mapRoundScores(roundScores, playerNames(roster, player))
	return result, nil
}

func (s *GameService) validatePokerPlayerState(ctx context.Context, game *models.Game, player *models.Player, rules policy.Rules) error {
	total, err := s.scores.PlayerGameTotal(ctx, game.ID, player.ID)
	if err != nil {
		return err
	}
	open, err := s.rounds.HasOpenRoundWithScore(ctx, game.ID, player.ID)
	if err != nil {
		return err
	}
	if total.IsZero() && !open {
		return apperr.InvalidState(fmt.Sprintf("player needs to join the game again to deposit %s points before continuing", rules.InitialPoints))
	}
	return nil
}

func (s *GameService) upsertScore(ctx context.Context, game *models.Game, round *models.Round, player *models.Player, points decimal.Decimal, rank *int) error {
	amount := policy.DerivedAmount(points, s.pointValue(game))

	existing, err := s.scores.GetScore(ctx, round.ID, player.ID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.Points = points
		existing.Amount = amount
		if rank != nil {
			if existing.Metadata == nil {
				existing.Metadata = &models.ScoreMetadata{}
			}
			existing.Metadata.Rank = rank
		}
		return s.scores.UpsertScore(ctx, existing)
	}

	score := &models.Score{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		RoundID:     round.ID,
		PlayerID:    player.ID,
		Points:      points,
		Amount:      amount,
		RoundNumber: round.RoundNumber,
		CreatedAt:   time.Now(),
	}
	if rank != nil {
		score.Metadata = &models.ScoreMetadata{Rank: rank}
	}
	return s.scores.UpsertScore(ctx, score)
}

func (s *GameService) completeRound(ctx context.Context, round *models.Round) error {
	now := time.Now()
	round.IsCompleted = true
	round.CompletedAt = &now
	return s.rounds.SaveRound(ctx, round)
}

// GetCurrentScores returns each player's raw points in the open round.
func (s *GameService) GetCurrentScores(ctx context.Context) ([]CurrentScore, error) {
	game, err := s.requireActiveGame(ctx)
	if err != nil {
		return nil, err
	}

	round, err := s.rounds.GetRound(ctx, game.ID, game.CurrentRoundNumber)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.Internal("current round not found", nil)
	}

	roundScores, err := s.scores.GetRoundScores(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	roster, err := s.games.GetGamePlayers(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	names := playerNames(roster)
	current := make([]CurrentScore, 0, len(roundScores))
	for _, sc := range roundScores {
		id, name := names.lookup(sc.PlayerID)
		current = append(current, CurrentScore{
			PlayerID:   id,
			PlayerName: name,
			Points:     sc.Points,
		})
	}
	return current, nil
}

// GetTotalScores aggregates every score of the game per player, sorted
// descending by total. The ordering is deterministic for identical data:
// grouping follows score insertion order and the sort is stable.
func (s *GameService) GetTotalScores(ctx context.Context) ([]PlayerTotalScore, error) {
	game, err := s.requireActiveGame(ctx)
	if err != nil {
		return nil, err
	}
	return s.totalScores(ctx, game)
}

func (s *GameService) totalScores(ctx context.Context, game *models.Game) ([]PlayerTotalScore, error) {
	scores, err := s.scores.GetGameScores(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	roster, err := s.games.GetGamePlayers(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	names := playerNames(roster)
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, sc := range scores {
		if _, seen := totals[sc.PlayerID]; !seen {
			order = append(order, sc.PlayerID)
		}
		totals[sc.PlayerID] = totals[sc.PlayerID].Add(sc.Points)
	}

	result := make([]PlayerTotalScore, 0, len(order))
	for _, playerID := range order {
		id, name := names.lookup(playerID)
		result = append(result, PlayerTotalScore{
			PlayerID:    id,
			PlayerName:  name,
			TotalPoints: totals[playerID].Round(2),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalPoints.GreaterThan(result[j].TotalPoints)
	})
	return result, nil
}

// EndGame closes the active game after the per-type exit checks pass.
// For tien len the final standings are written into the game metadata.
func (s *GameService) EndGame(ctx context.Context) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.requireActiveGame(ctx)
	if err != nil {
		return nil, err
	}
	rules, _ := policy.For(game.Type)

	switch game.Type {
	case models.GameTypePoker:
		scores, err := s.scores.GetGameScores(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		if !sumPoints(scores).Equal(rules.CompletionTarget) {
			return nil, apperr.InvalidState(fmt.Sprintf("cannot end %s game - total points must be %s", game.Type, rules.CompletionTarget))
		}
	case models.GameTypeTienLen:
		totals, err := s.totalScores(ctx, game)
		if err != nil {
			return nil, err
		}
		if len(totals) < rules.MaxPlayers {
			return nil, apperr.InvalidState(fmt.Sprintf("cannot end %s game - requires %d players", game.Type, rules.MaxPlayers))
		}
		writeStandings(game, totals)
	}

	now := time.Now()
	game.IsActive = false
	game.EndedAt = &now
	if err := s.games.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	log.Infof("ended %s game %s", game.Type, game.ID)
	return game, nil
}

// writeStandings records the top two and bottom two players into the
// game metadata, preserving the original policy parameters.
func writeStandings(game *models.Game, totals []PlayerTotalScore) {
	if game.Metadata == nil {
		game.Metadata = &models.GameMetadata{}
	}
	toResult := func(t PlayerTotalScore) models.PlayerResult {
		return models.PlayerResult{
			PlayerID:   t.PlayerID,
			PlayerName: t.PlayerName,
			Points:     t.TotalPoints,
		}
	}
	game.Metadata.Winners = []models.PlayerResult{toResult(totals[0]), toResult(totals[1])}
	game.Metadata.Losers = []models.PlayerResult{toResult(totals[len(totals)-2]), toResult(totals[len(totals)-1])}
}

func sumPoints(scores []*models.Score) decimal.Decimal {
	total := decimal.Zero
	for _, sc := range scores {
		total = total.Add(sc.Points)
	}
	return total
}

// nameIndex resolves internal player ids to telegram ids and display names.
type nameIndex map[string]*models.Player

func playerNames(roster []*models.Player, extra ...*models.Player) nameIndex {
	idx := make(nameIndex, len(roster)+len(extra))
	for _, p := range roster {
		idx[p.ID] = p
	}
	for _, p := range extra {
		idx[p.ID] = p
	}
	return idx
}

func (n nameIndex) lookup(playerID string) (telegramID, name string) {
	if p, ok := n[playerID]; ok {
		return p.TelegramID, p.Name()
	}
	return playerID, fmt.Sprintf("Player %s", playerID)
}

func mapRoundScores(scores []*models.Score, names nameIndex) []PlayerScore {
	result := make([]PlayerScore, 0, len(scores))
	for _, sc := range scores {
		id, name := names.lookup(sc.PlayerID)
		result = append(result, PlayerScore{
			PlayerID:   id,
			PlayerName: name,
			Points:     sc.Points,
		})
	}
	return result
}

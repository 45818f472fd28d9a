package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/cardtable-services/internal/apperr"
	"github.com/tdnguyen/cardtable-services/internal/comm"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

func newTestService() (*GameService, *memStore) {
	st := newMemStore()
	return NewGameService(st, st, st, st), st
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func info(username string) *comm.PlayerInfo {
	return &comm.PlayerInfo{Username: username}
}

func setupTienLen(t *testing.T, svc *GameService) *models.Game {
	t.Helper()
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, models.GameTypeTienLen, nil)
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		_, err := svc.AddPlayerToGame(ctx, fmt.Sprintf("p%d", i), info(fmt.Sprintf("player%d", i)))
		require.NoError(t, err)
	}
	return game
}

func TestCreateGameStartsWithOpenFirstRound(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, models.GameTypeTienLen, nil)
	require.NoError(t, err)

	assert.True(t, game.IsActive)
	assert.Equal(t, 1, game.CurrentRoundNumber)
	require.NotNil(t, game.Metadata)
	assert.True(t, game.Metadata.PointValue.Equal(dec("1")))
	assert.Equal(t, 4, game.Metadata.MaxPlayers)

	round, err := st.GetRound(ctx, game.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.False(t, round.IsCompleted)
	assert.Equal(t, 1, st.openRounds(game.ID))
}

func TestCreateGameDeactivatesPreviousGame(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	first, err := svc.CreateGame(ctx, models.GameTypeTienLen, nil)
	require.NoError(t, err)

	second, err := svc.CreateGame(ctx, models.GameTypePoker, nil)
	require.NoError(t, err)

	prior := st.games[first.ID]
	assert.False(t, prior.IsActive)
	require.NotNil(t, prior.EndedAt)

	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, 1, active.CurrentRoundNumber)
}

func TestCreateGameUnknownType(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateGame(context.Background(), models.GameType("bridge"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCreateGamePointValueOverride(t *testing.T) {
	svc, _ := newTestService()

	pv := dec("0.5")
	game, err := svc.CreateGame(context.Background(), models.GameTypePoker, &pv)
	require.NoError(t, err)
	assert.True(t, game.Metadata.PointValue.Equal(pv))
}

func TestJoinWithoutActiveGame(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddPlayerToGame(context.Background(), "p1", info("alice"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestJoinNewPlayerRequiresInfo(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, models.GameTypeTienLen, nil)
	require.NoError(t, err)

	_, err = svc.AddPlayerToGame(ctx, "stranger", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestTienLenRosterLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	game := setupTienLen(t, svc)

	_, err := svc.AddPlayerToGame(ctx, "p5", info("player5"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// re-joining an existing member is a no-op, not an error
	got, err := svc.AddPlayerToGame(ctx, "p2", nil)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)
}

func TestTienLenRecordScoreRequiresFullRoster(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, models.GameTypeTienLen, nil)
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := svc.AddPlayerToGame(ctx, fmt.Sprintf("p%d", i), info(fmt.Sprintf("player%d", i)))
		require.NoError(t, err)
	}

	_, err = svc.RecordScore(ctx, "p1", dec("3"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestRecordScoreUnknownPlayer(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupTienLen(t, svc)

	_, err := svc.RecordScore(ctx, "ghost", dec("3"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTienLenRoundCompletion(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupTienLen(t, svc)

	for _, rec := range []struct {
		player string
		points string
	}{
		{"p1", "3"}, {"p2", "3"}, {"p3", "-1"},
	} {
		result, err := svc.RecordScore(ctx, rec.player, dec(rec.points), nil)
		require.NoError(t, err)
		assert.False(t, result.Completed)
	}

	result, err := svc.RecordScore(ctx, "p4", dec("1"), nil)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 1, result.RoundNumber)
	assert.Len(t, result.PlayerScores, 4)
	assert.True(t, result.Total.Equal(dec("6")))

	closed, err := st.GetRound(ctx, game.ID, 1)
	require.NoError(t, err)
	assert.True(t, closed.IsCompleted)
	require.NotNil(t, closed.CompletedAt)

	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, active.CurrentRoundNumber)

	current, err := svc.GetCurrentScores(ctx)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestTienLenBadTotalFailsAtCompletion(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupTienLen(t, svc)

	for _, rec := range []struct {
		player string
		points string
	}{
		{"p1", "3"}, {"p2", "3"}, {"p3", "-2"},
	} {
		_, err := svc.RecordScore(ctx, rec.player, dec(rec.points), nil)
		require.NoError(t, err)
	}

	// fourth score arrives, but the sum is 5 instead of 6
	_, err := svc.RecordScore(ctx, "p4", dec("1"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// round stays open; the game did not advance
	round, err := st.GetRound(ctx, game.ID, 1)
	require.NoError(t, err)
	assert.False(t, round.IsCompleted)
	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.CurrentRoundNumber)

	// correcting one score closes the round
	result, err := svc.RecordScore(ctx, "p3", dec("-1"), nil)
	require.NoError(t, err)
	assert.True(t, result.Completed)
}

func TestScoreOverwriteKeepsSingleEntry(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupTienLen(t, svc)

	_, err := svc.RecordScore(ctx, "p1", dec("3"), nil)
	require.NoError(t, err)

	rank := 2
	_, err = svc.RecordScore(ctx, "p1", dec("4"), &rank)
	require.NoError(t, err)

	round, err := st.GetRound(ctx, game.ID, 1)
	require.NoError(t, err)
	scores, err := st.GetRoundScores(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.True(t, scores[0].Points.Equal(dec("4")))
	assert.True(t, scores[0].Amount.Equal(dec("4")))
	require.NotNil(t, scores[0].Metadata)
	require.NotNil(t, scores[0].Metadata.Rank)
	assert.Equal(t, 2, *scores[0].Metadata.Rank)
}

func setupPoker(t *testing.T, svc *GameService, players ...string) *models.Game {
	t.Helper()
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, models.GameTypePoker, nil)
	require.NoError(t, err)
	for _, p := range players {
		_, err := svc.AddPlayerToGame(ctx, p, info(p))
		require.NoError(t, err)
	}
	return game
}

func TestPokerJoinSeedsInitialPoints(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupPoker(t, svc, "p1", "p2")

	// one open first round plus two pre-completed seeding rounds
	assert.Equal(t, 3, st.roundCount(game.ID))
	assert.Equal(t, 1, st.openRounds(game.ID))

	p1, err := st.GetByTelegramID(ctx, "p1")
	require.NoError(t, err)
	total, err := st.PlayerGameTotal(ctx, game.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("500")))

	// the seed lives outside the current round
	current, err := svc.GetCurrentScores(ctx)
	require.NoError(t, err)
	assert.Empty(t, current)

	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.CurrentRoundNumber)
}

func TestPokerJoinDoesNotReseedNonZeroTotal(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupPoker(t, svc, "p1")

	before := st.roundCount(game.ID)
	_, err := svc.AddPlayerToGame(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, before, st.roundCount(game.ID))
}

func TestPokerRoundCompletesOnZeroSum(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupPoker(t, svc, "p1", "p2")

	result, err := svc.RecordScore(ctx, "p1", dec("50"), nil)
	require.NoError(t, err)
	assert.False(t, result.Completed)

	result, err = svc.RecordScore(ctx, "p2", dec("-50"), nil)
	require.NoError(t, err)
	assert.True(t, result.Completed)

	// seeding rounds took numbers 2 and 3, so the next open round is 4
	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, active.CurrentRoundNumber)
	round, err := st.GetRound(ctx, game.ID, 4)
	require.NoError(t, err)
	assert.False(t, round.IsCompleted)
}

func TestPokerRoundStaysOpenOnNonZeroSum(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupPoker(t, svc, "p1", "p2")

	_, err := svc.RecordScore(ctx, "p1", dec("50"), nil)
	require.NoError(t, err)
	result, err := svc.RecordScore(ctx, "p2", dec("-30"), nil)
	require.NoError(t, err)

	assert.False(t, result.Completed)
	assert.True(t, result.Total.Equal(dec("20")))

	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.CurrentRoundNumber)
}

func TestPokerDerivedAmountUsesPointValue(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupPoker(t, svc, "p1", "p2")

	_, err := svc.RecordScore(ctx, "p1", dec("50"), nil)
	require.NoError(t, err)

	round, err := st.GetRound(ctx, game.ID, 1)
	require.NoError(t, err)
	scores, err := st.GetRoundScores(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.True(t, scores[0].Amount.Equal(dec("5")))
}

func TestPokerBustedPlayerMustRejoin(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	game := setupPoker(t, svc, "p1", "p2")

	_, err := svc.RecordScore(ctx, "p1", dec("-500"), nil)
	require.NoError(t, err)
	result, err := svc.RecordScore(ctx, "p2", dec("500"), nil)
	require.NoError(t, err)
	require.True(t, result.Completed)

	// p1 now holds zero points with no open-round score
	_, err = svc.RecordScore(ctx, "p1", dec("10"), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// p2 is unaffected
	_, err = svc.RecordScore(ctx, "p2", dec("10"), nil)
	require.NoError(t, err)

	// rejoining re-seeds p1 and unblocks scoring
	before := st.roundCount(game.ID)
	_, err = svc.AddPlayerToGame(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, st.roundCount(game.ID))

	_, err = svc.RecordScore(ctx, "p1", dec("-10"), nil)
	require.NoError(t, err)
}

func TestGetTotalScoresSortedAndStable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupTienLen(t, svc)

	// p1 and p2 tie; insertion order breaks the tie deterministically
	for _, rec := range []struct {
		player string
		points string
	}{
		{"p1", "3"}, {"p2", "3"}, {"p3", "-1"}, {"p4", "1"},
	} {
		_, err := svc.RecordScore(ctx, rec.player, dec(rec.points), nil)
		require.NoError(t, err)
	}

	first, err := svc.GetTotalScores(ctx)
	require.NoError(t, err)
	second, err := svc.GetTotalScores(ctx)
	require.NoError(t, err)

	require.Len(t, first, 4)
	assert.Equal(t, "p1", first[0].PlayerID)
	assert.Equal(t, "p2", first[1].PlayerID)
	assert.Equal(t, "p4", first[2].PlayerID)
	assert.Equal(t, "p3", first[3].PlayerID)
	for i := range first {
		assert.Equal(t, first[i].PlayerID, second[i].PlayerID)
		assert.True(t, first[i].TotalPoints.Equal(second[i].TotalPoints))
	}
}

func TestGetTotalScoresRoundsToTwoDecimals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupPoker(t, svc, "p1", "p2")

	_, err := svc.RecordScore(ctx, "p1", dec("50.555"), nil)
	require.NoError(t, err)

	totals, err := svc.GetTotalScores(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, totals)
	assert.Equal(t, "p1", totals[0].PlayerID)
	assert.True(t, totals[0].TotalPoints.Equal(dec("550.56")), "got %s", totals[0].TotalPoints)
}

func TestEndGamePokerRequiresZeroTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupPoker(t, svc, "p1")

	// the 500 seed is still outstanding
	_, err := svc.EndGame(ctx)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	active, err := svc.GetActiveGame(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, active.IsActive)

	// cashing out brings the game total back to zero
	_, err = svc.RecordScore(ctx, "p1", dec("-500"), nil)
	require.NoError(t, err)

	game, err := svc.EndGame(ctx)
	require.NoError(t, err)
	assert.False(t, game.IsActive)
	require.NotNil(t, game.EndedAt)
}

func TestEndGameTienLenWritesStandings(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupTienLen(t, svc)

	for _, rec := range []struct {
		player string
		points string
	}{
		{"p1", "3"}, {"p2", "2"}, {"p3", "1"}, {"p4", "0"},
	} {
		_, err := svc.RecordScore(ctx, rec.player, dec(rec.points), nil)
		require.NoError(t, err)
	}

	game, err := svc.EndGame(ctx)
	require.NoError(t, err)
	assert.False(t, game.IsActive)

	require.NotNil(t, game.Metadata)
	require.Len(t, game.Metadata.Winners, 2)
	require.Len(t, game.Metadata.Losers, 2)
	assert.Equal(t, "p1", game.Metadata.Winners[0].PlayerID)
	assert.Equal(t, "p2", game.Metadata.Winners[1].PlayerID)
	assert.Equal(t, "p3", game.Metadata.Losers[0].PlayerID)
	assert.Equal(t, "p4", game.Metadata.Losers[1].PlayerID)

	// original policy parameters survive the metadata update
	assert.True(t, game.Metadata.PointValue.Equal(dec("1")))
	assert.Equal(t, 4, game.Metadata.MaxPlayers)
}

func TestEndGameTienLenRequiresFourScoredPlayers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupTienLen(t, svc)

	// roster is full but nobody has scored yet
	_, err := svc.EndGame(ctx)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestGetCurrentScoresReturnsOpenRoundOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	setupTienLen(t, svc)

	_, err := svc.RecordScore(ctx, "p1", dec("3"), nil)
	require.NoError(t, err)
	_, err = svc.RecordScore(ctx, "p2", dec("2"), nil)
	require.NoError(t, err)

	current, err := svc.GetCurrentScores(ctx)
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, "p1", current[0].PlayerID)
	assert.True(t, current[0].Points.Equal(dec("3")))
	assert.Equal(t, "player1", current[0].PlayerName)
}

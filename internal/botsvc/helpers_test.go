package botsvc

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/service"
)

func TestParseScoreArgs(t *testing.T) {
	points, rank, err := parseScoreArgs("-50")
	require.NoError(t, err)
	assert.True(t, points.Equal(decimal.NewFromInt(-50)))
	assert.Nil(t, rank)

	points, rank, err = parseScoreArgs("3 1")
	require.NoError(t, err)
	assert.True(t, points.Equal(decimal.NewFromInt(3)))
	require.NotNil(t, rank)
	assert.Equal(t, 1, *rank)

	points, _, err = parseScoreArgs("2.5")
	require.NoError(t, err)
	assert.True(t, points.Equal(decimal.NewFromFloat(2.5)))

	_, _, err = parseScoreArgs("")
	assert.Error(t, err)
	_, _, err = parseScoreArgs("abc")
	assert.Error(t, err)
	_, _, err = parseScoreArgs("3 0")
	assert.Error(t, err)
	_, _, err = parseScoreArgs("3 1 extra")
	assert.Error(t, err)
}

func TestReportPeriod(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := reportPeriod("", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -1), start)
	assert.Equal(t, now, end)

	start, _, err = reportPeriod("weekly", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), start)

	start, _, err = reportPeriod("monthly", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, -1, 0), start)

	_, _, err = reportPeriod("yearly", now)
	assert.Error(t, err)
}

func TestFormatRoundResult(t *testing.T) {
	open := &service.RoundResult{
		RoundNumber: 2,
		Total:       decimal.NewFromInt(20),
		PlayerScores: []service.PlayerScore{
			{PlayerID: "1", PlayerName: "alice", Points: decimal.NewFromInt(50)},
			{PlayerID: "2", PlayerName: "bob", Points: decimal.NewFromInt(-30)},
		},
	}
	text := formatRoundResult(open)
	assert.Contains(t, text, "Round 2 scores:")
	assert.Contains(t, text, "alice: 50")
	assert.Contains(t, text, "still open (sum 20)")

	open.Completed = true
	assert.Contains(t, formatRoundResult(open), "Round complete!")
}

func TestFormatTotals(t *testing.T) {
	assert.Equal(t, "No scores recorded yet.", formatTotals(nil))

	text := formatTotals([]service.PlayerTotalScore{
		{PlayerID: "1", PlayerName: "alice", TotalPoints: decimal.NewFromInt(6)},
		{PlayerID: "2", PlayerName: "bob", TotalPoints: decimal.NewFromInt(-1)},
	})
	assert.Contains(t, text, "1. alice: 6")
	assert.Contains(t, text, "2. bob: -1")
}

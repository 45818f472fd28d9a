package botsvc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
	"github.com/tdnguyen/cardtable-services/internal/gamesvc/service"
)

// parseScoreArgs parses "/score <points> [rank]" arguments.
func parseScoreArgs(args string) (decimal.Decimal, *int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return decimal.Zero, nil, fmt.Errorf("expected <points> [rank], got %q", args)
	}

	points, err := decimal.NewFromString(fields[0])
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("invalid points %q", fields[0])
	}

	var rank *int
	if len(fields) == 2 {
		r, err := strconv.Atoi(fields[1])
		if err != nil || r < 1 {
			return decimal.Zero, nil, fmt.Errorf("invalid rank %q", fields[1])
		}
		rank = &r
	}

	return points, rank, nil
}

// reportPeriod maps a period name onto a [start, end] window ending now.
func reportPeriod(period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case "", "daily":
		return now.AddDate(0, 0, -1), now, nil
	case "weekly":
		return now.AddDate(0, 0, -7), now, nil
	case "monthly":
		return now.AddDate(0, -1, 0), now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}

func formatRoundResult(result *service.RoundResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d scores:\n", result.RoundNumber)
	for _, ps := range result.PlayerScores {
		fmt.Fprintf(&b, "  %s: %s\n", ps.PlayerName, ps.Points.String())
	}
	if result.Completed {
		b.WriteString("Round complete! A new round is open.")
	} else {
		fmt.Fprintf(&b, "Round still open (sum %s).", result.Total.String())
	}
	return b.String()
}

func formatCurrentScores(scores []service.CurrentScore) string {
	if len(scores) == 0 {
		return "No scores recorded in the current round yet."
	}

	var b strings.Builder
	b.WriteString("Current round:\n")
	for _, sc := range scores {
		fmt.Fprintf(&b, "  %s: %s\n", sc.PlayerName, sc.Points.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTotals(totals []service.PlayerTotalScore) string {
	if len(totals) == 0 {
		return "No scores recorded yet."
	}

	var b strings.Builder
	b.WriteString("Total scores:\n")
	for i, t := range totals {
		fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, t.PlayerName, t.TotalPoints.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatGameEnd(game *models.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s game ended.", game.Type)
	if game.Metadata != nil && len(game.Metadata.Winners) > 0 {
		b.WriteString("\nWinners:")
		for _, w := range game.Metadata.Winners {
			fmt.Fprintf(&b, " %s (%s)", w.PlayerName, w.Points.String())
		}
		b.WriteString("\nLosers:")
		for _, l := range game.Metadata.Losers {
			fmt.Fprintf(&b, " %s (%s)", l.PlayerName, l.Points.String())
		}
	}
	return b.String()
}

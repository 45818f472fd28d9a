package policy

import (
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/cardtable-services/internal/gamesvc/models"
)

// Rules encodes the per-game-type scoring policy. Adding a game type is
// a new entry in the table below; the game service stays variant-agnostic.
type Rules struct {
	PointValue    decimal.Decimal
	InitialPoints decimal.Decimal
	// MaxPlayers of 0 means unbounded.
	MaxPlayers int
	// CompletionTarget is the sum a round's points must reach for the
	// round to be valid when it closes.
	CompletionTarget decimal.Decimal
	// MinScores is the minimum number of recorded scores before a round
	// may close on target.
	MinScores int
	// CloseOnFullRoster closes the round once every rostered player has
	// scored, instead of watching the running sum.
	CloseOnFullRoster bool
}

var table = map[models.GameType]Rules{
	models.GameTypePoker: {
		PointValue:       decimal.NewFromFloat(0.1), // 10 points = 1 currency unit
		InitialPoints:    decimal.NewFromInt(500),
		MaxPlayers:       0,
		CompletionTarget: decimal.Zero,
		MinScores:        2,
	},
	models.GameTypeTienLen: {
		PointValue:        decimal.NewFromInt(1),
		InitialPoints:     decimal.Zero,
		MaxPlayers:        4,
		CompletionTarget:  decimal.NewFromInt(6),
		CloseOnFullRoster: true,
	},
}

// For returns the rules for a game type.
func For(t models.GameType) (Rules, bool) {
	r, ok := table[t]
	return r, ok
}

// DerivedAmount scales raw points by the given point value.
func DerivedAmount(points, pointValue decimal.Decimal) decimal.Decimal {
	return points.Mul(pointValue)
}

// RoundComplete reports whether a round holding scoreCount scores that
// sum to total should close, given the current roster size.
func (r Rules) RoundComplete(scoreCount, rosterSize int, total decimal.Decimal) bool {
	if r.CloseOnFullRoster {
		return rosterSize > 0 && scoreCount == rosterSize
	}
	return scoreCount >= r.MinScores && total.Equal(r.CompletionTarget)
}

// TargetMet reports whether total satisfies the completion target. This
// is the authoritative check run again before a round is marked complete.
func (r Rules) TargetMet(total decimal.Decimal) bool {
	return total.Equal(r.CompletionTarget)
}

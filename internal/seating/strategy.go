package seating

import (
	"fmt"
	"math/rand"
)

// Strategy selects which table a newly checked-in player is seated at.
type Strategy string

const (
	// StrategyBalanced seats the player at the table with the fewest
	// players. This is the default.
	StrategyBalanced Strategy = "balanced"
	// StrategySequential fills tables in table-number order, moving to
	// the next table only when the previous one is full.
	StrategySequential Strategy = "sequential"
	// StrategyRandom picks uniformly among tables with a free seat.
	StrategyRandom Strategy = "random"
	// StrategyManual performs no automatic seating; the operator
	// assigns a seat explicitly.
	StrategyManual Strategy = "manual"
)

// ParseStrategy maps a request string onto a Strategy. An empty string
// selects the balanced default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyBalanced, nil
	case StrategyBalanced, StrategySequential, StrategyRandom, StrategyManual:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown seating strategy %q", s)
}

// PickTable chooses a table for a new player according to the
// strategy. Only tables with at least one free seat are considered.
// The second return value is false when no table can take a player or
// the strategy is manual. Ties under the balanced strategy break
// toward the lower table number so floor staff can predict the choice.
func PickTable(tables []TableState, strategy Strategy, rng *rand.Rand) (*TableState, bool) {
	open := make([]*TableState, 0, len(tables))
	for i := range tables {
		if tables[i].PlayerCount() < tables[i].MaxSeats {
			open = append(open, &tables[i])
		}
	}
	if len(open) == 0 || strategy == StrategyManual {
		return nil, false
	}
	switch strategy {
	case StrategySequential:
		best := open[0]
		for _, t := range open[1:] {
			if t.TableNumber < best.TableNumber {
				best = t
			}
		}
		return best, true
	case StrategyRandom:
		return open[rng.Intn(len(open))], true
	default: // balanced
		best := open[0]
		for _, t := range open[1:] {
			if t.PlayerCount() < best.PlayerCount() ||
				(t.PlayerCount() == best.PlayerCount() && t.TableNumber < best.TableNumber) {
				best = t
			}
		}
		return best, true
	}
}

// ChooseSeat picks a seat at the table uniformly at random among the
// free seats. Random placement avoids the positional advantage an
// always-lowest-seat rule would hand to early arrivals. The second
// return value is false when the table is full.
func ChooseSeat(t *TableState, rng *rand.Rand) (int, bool) {
	free := t.AvailableSeats()
	if len(free) == 0 {
		return 0, false
	}
	return free[rng.Intn(len(free))], true
}

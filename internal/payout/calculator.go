// Package payout computes prize distributions. All money is integer
// cents; percentages only exist inside templates and every computed
// distribution reconciles exactly to the prize pool, with rounding
// remainders folded into the last paid position.
package payout

import (
	"fmt"
	"math"
	"sort"

	"github.com/brunomoyse/pp-service/internal/model"
)

// sumTolerance is how far a structure's percentages may drift from 100
// before it is rejected. Covers float representation noise, nothing
// more.
const sumTolerance = 0.01

// StructureError reports an invalid payout structure. Templates are
// validated at every use, not only at creation, because rows can be
// edited after tournaments started referencing them.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string { return "invalid payout structure: " + e.Reason }

// ValidateStructure checks a template's (position, percentage) lines:
// positions must be contiguous from 1, every percentage must lie in
// [0, 100], and the percentages must sum to 100 within tolerance. A
// zero-percentage line is allowed; it marks a position that finished
// in the money but earns nothing, as some house templates do.
func ValidateStructure(lines []model.PayoutLine) error {
	if len(lines) == 0 {
		return &StructureError{Reason: "structure is empty"}
	}
	sum := 0.0
	for i, l := range lines {
		if l.Position != i+1 {
			return &StructureError{Reason: fmt.Sprintf("position %d at index %d, expected %d", l.Position, i, i+1)}
		}
		if l.Percentage < 0 || l.Percentage > 100 {
			return &StructureError{Reason: fmt.Sprintf("percentage %.4f for position %d is out of range", l.Percentage, l.Position)}
		}
		sum += l.Percentage
	}
	if math.Abs(sum-100) > sumTolerance {
		return &StructureError{Reason: fmt.Sprintf("percentages sum to %.4f, expected 100", sum)}
	}
	return nil
}

// Compute distributes the prize pool across a validated structure.
// Each position receives round(pool * pct / 100) cents; whatever the
// rounding leaves over (positive or negative) is added to the last
// position with a non-zero amount, so the total always equals the
// pool exactly.
func Compute(totalCents int64, lines []model.PayoutLine) []model.PayoutPosition {
	positions := make([]model.PayoutPosition, len(lines))
	var paid int64
	for i, l := range lines {
		amount := int64(math.Round(float64(totalCents) * l.Percentage / 100))
		positions[i] = model.PayoutPosition{
			Position:    l.Position,
			Percentage:  l.Percentage,
			AmountCents: amount,
		}
		paid += amount
	}
	if remainder := totalCents - paid; remainder != 0 {
		for i := len(positions) - 1; i >= 0; i-- {
			if positions[i].AmountCents > 0 {
				positions[i].AmountCents += remainder
				break
			}
		}
	}
	return positions
}

// PrizeFor returns the amount owed to a finishing position, or zero
// when the position is outside the paid places. Positions are 1-based.
func PrizeFor(positions []model.PayoutPosition, finalPosition int) int64 {
	if finalPosition < 1 || finalPosition > len(positions) {
		return 0
	}
	return positions[finalPosition-1].AmountCents
}

// EvenSplit divides an amount equally across the given finishing
// positions. Indivisible cents go to the best (lowest) position, so
// the split reconciles exactly and the tiny edge lands on the player
// who earned the chip lead.
func EvenSplit(totalCents int64, positions []int) map[int]int64 {
	if len(positions) == 0 {
		return map[int]int64{}
	}
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	per := totalCents / int64(len(sorted))
	out := make(map[int]int64, len(sorted))
	for _, p := range sorted {
		out[p] = per
	}
	out[sorted[0]] += totalCents - per*int64(len(sorted))
	return out
}

// DealAmounts resolves the per-position amounts a deal replaces the
// template payouts with. Even-split and ICM deals both collapse to an
// even split of the money the affected positions would have received
// (chip counts are not tracked, so true ICM equity cannot be
// computed; the even split is the agreed stand-in). When no snapshot
// positions exist the whole pool is treated as covered. Custom deals
// are resolved by the caller from explicit per-player amounts.
func DealAmounts(dealType model.DealType, totalPool int64, snapshot []model.PayoutPosition, affected []int) map[int]int64 {
	covered := int64(0)
	if len(snapshot) == 0 {
		covered = totalPool
	} else {
		for _, p := range affected {
			covered += PrizeFor(snapshot, p)
		}
	}
	switch dealType {
	case model.DealEvenSplit, model.DealICM:
		return EvenSplit(covered, affected)
	default:
		return map[int]int64{}
	}
}

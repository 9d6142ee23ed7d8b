package payout

import (
	"testing"

	"github.com/brunomoyse/pp-service/internal/model"
)

func lines(pcts ...float64) []model.PayoutLine {
	out := make([]model.PayoutLine, len(pcts))
	for i, p := range pcts {
		out[i] = model.PayoutLine{Position: i + 1, Percentage: p}
	}
	return out
}

func TestValidateStructure(t *testing.T) {
	if err := ValidateStructure(lines(50, 30, 20)); err != nil {
		t.Fatalf("valid structure rejected: %v", err)
	}
	if err := ValidateStructure(lines(100)); err != nil {
		t.Fatalf("winner-takes-all rejected: %v", err)
	}
	if err := ValidateStructure(lines(100, 0)); err != nil {
		t.Fatalf("trailing zero-percentage position rejected: %v", err)
	}

	cases := []struct {
		name  string
		lines []model.PayoutLine
	}{
		{"empty", nil},
		{"sum below 100", lines(50, 30)},
		{"sum above 100", lines(60, 30, 20)},
		{"negative percentage", lines(100, 5, -5)},
		{"gap in positions", []model.PayoutLine{
			{Position: 1, Percentage: 50},
			{Position: 3, Percentage: 50},
		}},
	}
	for _, tc := range cases {
		err := ValidateStructure(tc.lines)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if _, ok := err.(*StructureError); !ok {
			t.Fatalf("%s: expected *StructureError, got %T", tc.name, err)
		}
	}
}

func TestComputeExactSplit(t *testing.T) {
	got := Compute(10000, lines(50, 30, 20))
	want := []int64{5000, 3000, 2000}
	for i, w := range want {
		if got[i].AmountCents != w {
			t.Fatalf("position %d: got %d, want %d", i+1, got[i].AmountCents, w)
		}
	}
}

func TestComputeZeroPercentagePaysNothing(t *testing.T) {
	positions := Compute(10000, lines(60, 40, 0))
	if positions[2].AmountCents != 0 {
		t.Fatalf("zero-percentage position got %d", positions[2].AmountCents)
	}
	if positions[0].AmountCents != 6000 || positions[1].AmountCents != 4000 {
		t.Fatalf("paid positions: %d, %d", positions[0].AmountCents, positions[1].AmountCents)
	}
}

func TestComputeReconcilesRounding(t *testing.T) {
	pools := []int64{99, 10001, 333333, 1000003}
	for _, pool := range pools {
		positions := Compute(pool, lines(33.33, 33.33, 33.34))
		var total int64
		for _, p := range positions {
			total += p.AmountCents
		}
		if total != pool {
			t.Fatalf("pool %d: payouts sum to %d", pool, total)
		}
	}
}

func TestComputeTinyPoolRoundsToZero(t *testing.T) {
	// A single cent split three ways rounds every share to zero, and
	// with no nonzero payout there is no position to carry the
	// remainder.
	positions := Compute(1, lines(33.33, 33.33, 33.34))
	for _, p := range positions {
		if p.AmountCents != 0 {
			t.Fatalf("position %d: got %d, want 0", p.Position, p.AmountCents)
		}
	}
}

func TestComputeRemainderGoesToLastPaidPosition(t *testing.T) {
	// 33.33/33.33/33.34 of 100 cents rounds to 33+33+33, leaving one cent
	// for position 3.
	positions := Compute(100, lines(33.33, 33.33, 33.34))
	if positions[2].AmountCents != 34 {
		t.Fatalf("last position got %d, want 34", positions[2].AmountCents)
	}
}

func TestPrizeFor(t *testing.T) {
	positions := Compute(10000, lines(50, 30, 20))
	if got := PrizeFor(positions, 1); got != 5000 {
		t.Fatalf("position 1: got %d", got)
	}
	if got := PrizeFor(positions, 3); got != 2000 {
		t.Fatalf("position 3: got %d", got)
	}
	if got := PrizeFor(positions, 4); got != 0 {
		t.Fatalf("unpaid position: got %d, want 0", got)
	}
	if got := PrizeFor(positions, 0); got != 0 {
		t.Fatalf("position 0: got %d, want 0", got)
	}
}

func TestEvenSplit(t *testing.T) {
	got := EvenSplit(1000, []int{1, 2})
	if got[1] != 500 || got[2] != 500 {
		t.Fatalf("even split: %v", got)
	}

	// Indivisible cent lands on the best position.
	got = EvenSplit(1001, []int{3, 1, 2})
	if got[1] != 335 || got[2] != 333 || got[3] != 333 {
		t.Fatalf("split with remainder: %v", got)
	}

	if got := EvenSplit(1000, nil); len(got) != 0 {
		t.Fatalf("empty positions: %v", got)
	}
}

func TestDealAmountsEvenSplit(t *testing.T) {
	snapshot := Compute(10000, lines(50, 30, 20))

	got := DealAmounts(model.DealEvenSplit, 10000, snapshot, []int{1, 2})
	// Positions 1 and 2 would take 5000+3000; split evenly.
	if got[1] != 4000 || got[2] != 4000 {
		t.Fatalf("deal amounts: %v", got)
	}

	// ICM collapses to the same even split.
	icm := DealAmounts(model.DealICM, 10000, snapshot, []int{1, 2})
	if icm[1] != got[1] || icm[2] != got[2] {
		t.Fatalf("icm differs from even split: %v vs %v", icm, got)
	}
}

func TestDealAmountsWithoutSnapshotCoversPool(t *testing.T) {
	got := DealAmounts(model.DealEvenSplit, 9000, nil, []int{1, 2, 3})
	if got[1] != 3000 || got[2] != 3000 || got[3] != 3000 {
		t.Fatalf("deal amounts without snapshot: %v", got)
	}
}

func TestDealAmountsCustomResolvedByCaller(t *testing.T) {
	if got := DealAmounts(model.DealCustom, 10000, nil, []int{1, 2}); len(got) != 0 {
		t.Fatalf("custom deal should resolve to nothing here: %v", got)
	}
}

package seating

import (
	"math/rand"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyBalanced, false},
		{"balanced", StrategyBalanced, false},
		{"sequential", StrategySequential, false},
		{"random", StrategyRandom, false},
		{"manual", StrategyManual, false},
		{"roundrobin", "", true},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseStrategy(%q) accepted", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseStrategy(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStrategy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPickTableBalanced(t *testing.T) {
	tables := []TableState{
		table("t1", 1, 9, 1, 2, 3, 4),
		table("t2", 2, 9, 1, 2),
		table("t3", 3, 9, 1, 2, 3),
	}
	rng := rand.New(rand.NewSource(1))
	picked, ok := PickTable(tables, StrategyBalanced, rng)
	if !ok || picked.ClubTableID != "t2" {
		t.Fatalf("picked %+v, want t2", picked)
	}
}

func TestPickTableBalancedTieBreaksOnTableNumber(t *testing.T) {
	tables := []TableState{
		table("t2", 2, 9, 1, 2),
		table("t1", 1, 9, 1, 2),
	}
	rng := rand.New(rand.NewSource(1))
	picked, ok := PickTable(tables, StrategyBalanced, rng)
	if !ok || picked.TableNumber != 1 {
		t.Fatalf("picked table %d, want 1", picked.TableNumber)
	}
}

func TestPickTableSequentialSkipsFullTables(t *testing.T) {
	tables := []TableState{
		table("t1", 1, 2, 1, 2),
		table("t2", 2, 9, 1),
		table("t3", 3, 9),
	}
	rng := rand.New(rand.NewSource(1))
	picked, ok := PickTable(tables, StrategySequential, rng)
	if !ok || picked.ClubTableID != "t2" {
		t.Fatalf("picked %+v, want t2", picked)
	}
}

func TestPickTableRandomOnlyOpenTables(t *testing.T) {
	tables := []TableState{
		table("t1", 1, 2, 1, 2),
		table("t2", 2, 9, 1),
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		picked, ok := PickTable(tables, StrategyRandom, rng)
		if !ok {
			t.Fatal("no table picked")
		}
		if picked.ClubTableID != "t2" {
			t.Fatalf("random pick landed on full table %s", picked.ClubTableID)
		}
	}
}

func TestPickTableManualNeverPicks(t *testing.T) {
	tables := []TableState{table("t1", 1, 9, 1)}
	rng := rand.New(rand.NewSource(1))
	if _, ok := PickTable(tables, StrategyManual, rng); ok {
		t.Fatal("manual strategy picked a table")
	}
}

func TestPickTableFullFloor(t *testing.T) {
	tables := []TableState{table("t1", 1, 2, 1, 2)}
	rng := rand.New(rand.NewSource(1))
	if _, ok := PickTable(tables, StrategyBalanced, rng); ok {
		t.Fatal("picked a table on a full floor")
	}
}

func TestChooseSeatPicksFreeSeat(t *testing.T) {
	tbl := table("t1", 1, 9, 1, 3, 5, 7, 9)
	rng := rand.New(rand.NewSource(7))
	occupied := map[int]bool{1: true, 3: true, 5: true, 7: true, 9: true}
	for i := 0; i < 20; i++ {
		seat, ok := ChooseSeat(&tbl, rng)
		if !ok {
			t.Fatal("no seat chosen")
		}
		if occupied[seat] || seat < 1 || seat > tbl.MaxSeats {
			t.Fatalf("chose occupied or out-of-range seat %d", seat)
		}
	}
}

func TestChooseSeatFullTable(t *testing.T) {
	tbl := table("t1", 1, 2, 1, 2)
	rng := rand.New(rand.NewSource(1))
	if _, ok := ChooseSeat(&tbl, rng); ok {
		t.Fatal("chose a seat at a full table")
	}
}

package seating

import (
	"fmt"
	"testing"
	"time"
)

func table(id string, number, maxSeats int, seatNumbers ...int) TableState {
	t := TableState{ClubTableID: id, TableNumber: number, MaxSeats: maxSeats}
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for i, n := range seatNumbers {
		t.Seats = append(t.Seats, PlayerSeat{
			AssignmentID: fmt.Sprintf("%s-a%d", id, n),
			UserID:       fmt.Sprintf("%s-u%d", id, n),
			SeatNumber:   n,
			AssignedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	return t
}

func TestAvailableSeats(t *testing.T) {
	tbl := table("t1", 1, 5, 2, 4)
	got := tbl.AvailableSeats()
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("AvailableSeats = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AvailableSeats = %v, want %v", got, want)
		}
	}
}

func TestNeedsRebalancing(t *testing.T) {
	cases := []struct {
		name   string
		tables []TableState
		want   bool
	}{
		{"empty floor", nil, false},
		{"single table short-handed", []TableState{table("t1", 1, 9, 1, 2)}, false},
		{"even floor", []TableState{
			table("t1", 1, 9, 1, 2, 3, 4, 5),
			table("t2", 2, 9, 1, 2, 3, 4, 5),
		}, false},
		{"spread of two tolerated", []TableState{
			table("t1", 1, 9, 1, 2, 3, 4, 5, 6),
			table("t2", 2, 9, 1, 2, 3, 4),
		}, false},
		{"spread of three", []TableState{
			table("t1", 1, 9, 1, 2, 3, 4, 5, 6, 7),
			table("t2", 2, 9, 1, 2, 3, 4),
		}, true},
		{"short-handed table among several", []TableState{
			table("t1", 1, 9, 1, 2, 3, 4, 5),
			table("t2", 2, 9, 1, 2, 3),
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsRebalancing(tc.tables); got != tc.want {
				t.Fatalf("NeedsRebalancing = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTargetPerTable(t *testing.T) {
	cases := []struct {
		players, tables, want int
	}{
		{18, 2, 9},
		{19, 2, 10},
		{10, 3, 4},
		{0, 3, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := TargetPerTable(tc.players, tc.tables); got != tc.want {
			t.Fatalf("TargetPerTable(%d, %d) = %d, want %d", tc.players, tc.tables, got, tc.want)
		}
	}
}

func TestPlanRebalanceEvensTheFloor(t *testing.T) {
	tables := []TableState{
		table("t1", 1, 9, 1, 2, 3, 4, 5, 6, 7, 8),
		table("t2", 2, 9, 1, 2, 3),
	}
	moves := PlanRebalance(tables)
	if len(moves) != 2 {
		t.Fatalf("got %d moves, want 2: %+v", len(moves), moves)
	}
	for _, m := range moves {
		if m.FromTableID != "t1" || m.ToTableID != "t2" {
			t.Fatalf("move goes %s -> %s, want t1 -> t2", m.FromTableID, m.ToTableID)
		}
	}
	// Most recently seated players leave first. Seats were assigned in
	// the order given, so seat 8 goes before seat 7.
	if moves[0].FromSeat != 8 || moves[1].FromSeat != 7 {
		t.Fatalf("moves pull seats %d, %d, want 8, 7", moves[0].FromSeat, moves[1].FromSeat)
	}
	// Receivers fill their lowest free seats.
	if moves[0].ToSeat != 4 || moves[1].ToSeat != 5 {
		t.Fatalf("moves land on seats %d, %d, want 4, 5", moves[0].ToSeat, moves[1].ToSeat)
	}
}

func TestPlanRebalanceBalancedFloorYieldsNoMoves(t *testing.T) {
	tables := []TableState{
		table("t1", 1, 9, 1, 2, 3, 4, 5),
		table("t2", 2, 9, 1, 2, 3, 4, 5),
	}
	if moves := PlanRebalance(tables); len(moves) != 0 {
		t.Fatalf("balanced floor produced moves: %+v", moves)
	}
}

func TestPlanRebalanceSingleTable(t *testing.T) {
	tables := []TableState{table("t1", 1, 9, 1, 2)}
	if moves := PlanRebalance(tables); moves != nil {
		t.Fatalf("single table produced moves: %+v", moves)
	}
}

func TestPlanRebalanceDoesNotMutateSnapshot(t *testing.T) {
	tables := []TableState{
		table("t1", 1, 9, 1, 2, 3, 4, 5, 6),
		table("t2", 2, 9, 1),
	}
	PlanRebalance(tables)
	if got := tables[0].PlayerCount(); got != 6 {
		t.Fatalf("donor snapshot mutated, count = %d, want 6", got)
	}
	if got := tables[1].PlayerCount(); got != 1 {
		t.Fatalf("receiver snapshot mutated, count = %d, want 1", got)
	}
}

func TestPlanRebalanceIsDeterministic(t *testing.T) {
	build := func() []TableState {
		return []TableState{
			table("t1", 1, 9, 1, 2, 3, 4, 5, 6, 7),
			table("t2", 2, 9, 1, 2),
			table("t3", 3, 9, 1, 2, 3),
		}
	}
	first := PlanRebalance(build())
	second := PlanRebalance(build())
	if len(first) != len(second) {
		t.Fatalf("plans differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("plans diverge at move %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPlanRebalanceRespectsCapacity(t *testing.T) {
	// Receiver has only one physically free seat, so a single move is
	// possible even though the spread calls for more.
	tables := []TableState{
		table("t1", 1, 9, 1, 2, 3, 4, 5, 6, 7, 8),
		table("t2", 2, 3, 1, 2),
	}
	moves := PlanRebalance(tables)
	if len(moves) != 1 {
		t.Fatalf("got %d moves, want 1: %+v", len(moves), moves)
	}
	if moves[0].ToSeat != 3 {
		t.Fatalf("move lands on seat %d, want 3", moves[0].ToSeat)
	}
}

func TestSortByTableNumber(t *testing.T) {
	tables := []TableState{
		table("t3", 3, 9),
		table("t1", 1, 9),
		table("t2", 2, 9),
	}
	SortByTableNumber(tables)
	for i, want := range []int{1, 2, 3} {
		if tables[i].TableNumber != want {
			t.Fatalf("position %d has table %d, want %d", i, tables[i].TableNumber, want)
		}
	}
}

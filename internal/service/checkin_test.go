package service

import (
	"testing"
	"time"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/repository"
)

func TestBuildFloor(t *testing.T) {
	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	tables := []repository.TournamentTable{
		{ClubTableID: "ct1", TableNumber: 1, MaxSeats: 9},
		{ClubTableID: "ct2", TableNumber: 2, MaxSeats: 9},
	}
	stack := 20000
	assignments := []model.SeatAssignment{
		{ID: "a1", UserID: "u1", ClubTableID: "ct1", SeatNumber: 3, StackSize: &stack, AssignedAt: now},
		{ID: "a2", UserID: "u2", ClubTableID: "ct1", SeatNumber: 5, AssignedAt: now},
		{ID: "a3", UserID: "u3", ClubTableID: "ct2", SeatNumber: 1, AssignedAt: now},
	}
	floor := buildFloor(tables, assignments)
	if len(floor) != 2 {
		t.Fatalf("floor has %d tables, want 2", len(floor))
	}
	if floor[0].PlayerCount() != 2 || floor[1].PlayerCount() != 1 {
		t.Fatalf("player counts %d/%d, want 2/1", floor[0].PlayerCount(), floor[1].PlayerCount())
	}
	seat := floor[0].Seats[0]
	if seat.AssignmentID != "a1" || seat.SeatNumber != 3 || seat.StackSize == nil || *seat.StackSize != 20000 {
		t.Fatalf("seat carried over wrong: %+v", seat)
	}
}

func TestBuildFloorSkipsSeatsOnUnknownTables(t *testing.T) {
	tables := []repository.TournamentTable{
		{ClubTableID: "ct1", TableNumber: 1, MaxSeats: 9},
	}
	assignments := []model.SeatAssignment{
		{ID: "a1", UserID: "u1", ClubTableID: "ct-gone", SeatNumber: 2, AssignedAt: time.Now()},
	}
	floor := buildFloor(tables, assignments)
	if floor[0].PlayerCount() != 0 {
		t.Fatalf("seat on removed table leaked into the floor: %+v", floor[0].Seats)
	}
}

func TestBuildFloorEmpty(t *testing.T) {
	if floor := buildFloor(nil, nil); len(floor) != 0 {
		t.Fatalf("empty inputs produced tables: %+v", floor)
	}
}

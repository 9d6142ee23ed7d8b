// Package seating holds the pure seating logic: table balancing and
// seat selection strategies. Nothing in this package touches the
// database; services feed it a snapshot of the floor and persist the
// plan it returns, so the decisions are deterministic and testable in
// isolation.
package seating

import (
	"sort"
	"time"
)

// PlayerSeat is one occupied seat in a floor snapshot.
type PlayerSeat struct {
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	SeatNumber   int       `json:"seat_number"`
	StackSize    *int      `json:"stack_size,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// TableState is one table in a floor snapshot: its identity, capacity
// and current occupants.
type TableState struct {
	ClubTableID string
	TableNumber int
	MaxSeats    int
	Seats       []PlayerSeat
}

// PlayerCount returns the number of occupied seats.
func (t *TableState) PlayerCount() int { return len(t.Seats) }

// AvailableSeats returns the free seat numbers in ascending order.
func (t *TableState) AvailableSeats() []int {
	occupied := make(map[int]bool, len(t.Seats))
	for _, s := range t.Seats {
		occupied[s.SeatNumber] = true
	}
	free := make([]int, 0, t.MaxSeats-len(t.Seats))
	for n := 1; n <= t.MaxSeats; n++ {
		if !occupied[n] {
			free = append(free, n)
		}
	}
	return free
}

// shortHandedThreshold is the player count under which a table is
// considered too short-handed to keep open when other tables exist.
const shortHandedThreshold = 4

// maxImbalance is the largest tolerated difference between the
// fullest and emptiest table.
const maxImbalance = 2

// NeedsRebalancing reports whether the floor is out of balance: either
// the spread between the fullest and emptiest table exceeds two
// players, or some table is short-handed (under four players) while
// more than one table is open. A floor with at most one table is
// always balanced.
func NeedsRebalancing(tables []TableState) bool {
	if len(tables) <= 1 {
		return false
	}
	min, max := tables[0].PlayerCount(), tables[0].PlayerCount()
	for _, t := range tables[1:] {
		n := t.PlayerCount()
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return max-min > maxImbalance || min < shortHandedThreshold
}

// TargetPerTable returns the per-table player count a balanced floor
// aims for: total players divided across tables, rounded up.
func TargetPerTable(totalPlayers, tables int) int {
	if tables <= 0 {
		return 0
	}
	return (totalPlayers + tables - 1) / tables
}

// Move is one planned player relocation.
type Move struct {
	UserID       string `json:"user_id"`
	AssignmentID string `json:"-"`
	FromTableID  string `json:"from_table_id"`
	FromSeat     int    `json:"from_seat"`
	ToTableID    string `json:"to_table_id"`
	ToSeat       int    `json:"to_seat"`
	StackSize    *int   `json:"-"`
}

// PlanRebalance computes the moves that bring the floor to the target
// count per table. Overfull tables give up their most recently seated
// players first, so long-tenured players keep their seats; each moved
// player lands in the lowest free seat of the emptiest table still
// below target. The input snapshot is not modified. An already
// balanced floor yields no moves.
func PlanRebalance(tables []TableState) []Move {
	if len(tables) <= 1 {
		return nil
	}
	// Work on a copy so planning never mutates the caller's snapshot.
	work := make([]TableState, len(tables))
	for i, t := range tables {
		work[i] = t
		work[i].Seats = append([]PlayerSeat(nil), t.Seats...)
	}
	total := 0
	for _, t := range work {
		total += t.PlayerCount()
	}
	target := TargetPerTable(total, len(work))

	moves := make([]Move, 0)
	for {
		donor := pickDonor(work, target)
		receiver := pickReceiver(work, target)
		if donor < 0 || receiver < 0 {
			break
		}
		// Most recently seated player leaves first.
		pi := mostRecentSeat(work[donor].Seats)
		player := work[donor].Seats[pi]
		free := work[receiver].AvailableSeats()
		if len(free) == 0 {
			break
		}
		seat := free[0]
		moves = append(moves, Move{
			UserID:       player.UserID,
			AssignmentID: player.AssignmentID,
			FromTableID:  work[donor].ClubTableID,
			FromSeat:     player.SeatNumber,
			ToTableID:    work[receiver].ClubTableID,
			ToSeat:       seat,
			StackSize:    player.StackSize,
		})
		work[donor].Seats = append(work[donor].Seats[:pi], work[donor].Seats[pi+1:]...)
		work[receiver].Seats = append(work[receiver].Seats, PlayerSeat{
			AssignmentID: player.AssignmentID,
			UserID:       player.UserID,
			SeatNumber:   seat,
			StackSize:    player.StackSize,
			AssignedAt:   player.AssignedAt,
		})
	}
	return moves
}

// pickDonor returns the index of the fullest table above target, or -1.
// Ties break toward the higher table number so the plan is stable.
func pickDonor(tables []TableState, target int) int {
	best := -1
	for i, t := range tables {
		if t.PlayerCount() <= target {
			continue
		}
		if best < 0 || t.PlayerCount() > tables[best].PlayerCount() ||
			(t.PlayerCount() == tables[best].PlayerCount() && t.TableNumber > tables[best].TableNumber) {
			best = i
		}
	}
	return best
}

// pickReceiver returns the index of the emptiest table below target
// that still has a physically free seat, or -1. Ties break toward the
// lower table number.
func pickReceiver(tables []TableState, target int) int {
	best := -1
	for i, t := range tables {
		if t.PlayerCount() >= target || t.PlayerCount() >= t.MaxSeats {
			continue
		}
		if best < 0 || t.PlayerCount() < tables[best].PlayerCount() ||
			(t.PlayerCount() == tables[best].PlayerCount() && t.TableNumber < tables[best].TableNumber) {
			best = i
		}
	}
	return best
}

// mostRecentSeat returns the index of the most recently assigned seat.
// Ties break toward the higher seat number.
func mostRecentSeat(seats []PlayerSeat) int {
	best := 0
	for i, s := range seats[1:] {
		j := i + 1
		if s.AssignedAt.After(seats[best].AssignedAt) ||
			(s.AssignedAt.Equal(seats[best].AssignedAt) && s.SeatNumber > seats[best].SeatNumber) {
			best = j
		}
	}
	return best
}

// SortByTableNumber orders a snapshot by table number in place. Repos
// already return tables ordered, but plans built from merged sources
// normalize here first.
func SortByTableNumber(tables []TableState) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableNumber < tables[j].TableNumber })
}

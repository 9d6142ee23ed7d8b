package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/queue"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/seating"
)

// SeatingService owns the floor: manual seat assignment, moves,
// unassignment, table lifecycle and rebalancing. Every mutation runs
// in one transaction so an interrupted rebalance can never leave a
// player half-moved.
type SeatingService struct {
	db     *sql.DB
	seats  *repository.SeatAssignmentRepo
	tables *repository.ClubTableRepo
	pub    *queue.Publisher
	log    *zap.Logger
}

// NewSeatingService constructs a SeatingService.
func NewSeatingService(db *sql.DB, seats *repository.SeatAssignmentRepo, tables *repository.ClubTableRepo, pub *queue.Publisher, log *zap.Logger) *SeatingService {
	return &SeatingService{db: db, seats: seats, tables: tables, pub: pub, log: log}
}

// AssignSeat seats a player at an explicit table and seat. When the
// player already holds a current seat in the tournament it is
// superseded first, so the operation doubles as a move. Conflicts with
// another occupant surface as repository.ErrSeatOccupied.
func (s *SeatingService) AssignSeat(ctx context.Context, tournamentID, userID, clubTableID string, seatNumber int, stackSize *int, actorID *string, notes *string) (*model.SeatAssignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	prev, err := s.seats.UnassignCurrentForUserTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	stack := stackSize
	if stack == nil && prev != nil {
		stack = prev.StackSize // a move carries the player's stack along
	}
	assignment := &model.SeatAssignment{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		ClubTableID:  clubTableID,
		UserID:       userID,
		SeatNumber:   seatNumber,
		StackSize:    stack,
		AssignedBy:   actorID,
		Notes:        notes,
	}
	if err := s.seats.AssignTx(ctx, tx, assignment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return assignment, nil
}

// Unassign frees one seat. It returns repository.ErrNotCurrent when
// the assignment was already superseded, so a stale floor view fails
// loudly instead of silently double-freeing.
func (s *SeatingService) Unassign(ctx context.Context, assignmentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.seats.UnassignTx(ctx, tx, assignmentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStack records a player's current chip count on their active
// seat without touching seating history.
func (s *SeatingService) UpdateStack(ctx context.Context, tournamentID, userID string, stackSize int) (*model.SeatAssignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE table_seat_assignments SET stack_size = ?
	           WHERE tournament_id = ? AND user_id = ? AND is_current = 1`
	res, err := tx.ExecContext(ctx, q, stackSize, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repository.ErrAssignmentNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return s.seats.GetCurrentForUser(ctx, tournamentID, userID)
}

// FloorTable is one table of the seating chart returned to clients.
type FloorTable struct {
	ClubTableID string               `json:"club_table_id"`
	TableNumber int                  `json:"table_number"`
	MaxSeats    int                  `json:"max_seats"`
	PlayerCount int                  `json:"player_count"`
	FreeSeats   []int                `json:"free_seats"`
	Seats       []seating.PlayerSeat `json:"seats"`
}

// Floor returns the live seating chart: every active table with its
// occupants and free seats.
func (s *SeatingService) Floor(ctx context.Context, tournamentID string) ([]FloorTable, error) {
	tables, err := s.tables.ListActiveForTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.seats.ListCurrentByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	floor := buildFloor(tables, assignments)
	out := make([]FloorTable, len(floor))
	for i := range floor {
		t := &floor[i]
		out[i] = FloorTable{
			ClubTableID: t.ClubTableID,
			TableNumber: t.TableNumber,
			MaxSeats:    t.MaxSeats,
			PlayerCount: t.PlayerCount(),
			FreeSeats:   t.AvailableSeats(),
			Seats:       t.Seats,
		}
	}
	return out, nil
}

// BalanceResult reports the outcome of a rebalance request.
type BalanceResult struct {
	Needed bool           `json:"needed"`
	Moves  []seating.Move `json:"moves"`
}

// BalanceTables checks floor balance and, when needed, plans and
// executes the moves in one transaction. Overfull tables shed their
// most recently seated players into the lowest free seats of the
// emptiest tables. A balanced floor returns Needed false and no moves.
func (s *SeatingService) BalanceTables(ctx context.Context, tournamentID string, actorID string) (*BalanceResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	tables, err := s.tables.ListActiveForTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.seats.ListCurrentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	floor := buildFloor(tables, assignments)
	if !seating.NeedsRebalancing(floor) {
		return &BalanceResult{Needed: false, Moves: []seating.Move{}}, nil
	}
	moves := seating.PlanRebalance(floor)
	for _, m := range moves {
		if err := s.seats.UnassignTx(ctx, tx, m.AssignmentID); err != nil {
			return nil, err
		}
		assignment := &model.SeatAssignment{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			ClubTableID:  m.ToTableID,
			UserID:       m.UserID,
			SeatNumber:   m.ToSeat,
			StackSize:    m.StackSize,
			AssignedBy:   &actorID,
		}
		if err := s.seats.AssignTx(ctx, tx, assignment); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	summaries := make([]string, len(moves))
	numbers := make(map[string]int, len(tables))
	for _, t := range tables {
		numbers[t.ClubTableID] = t.TableNumber
	}
	for i, m := range moves {
		summaries[i] = fmt.Sprintf("table %d seat %d -> table %d seat %d",
			numbers[m.FromTableID], m.FromSeat, numbers[m.ToTableID], m.ToSeat)
	}
	_ = s.pub.SeatingRebalanced(ctx, queue.SeatingRebalancedEvent{
		TournamentID: tournamentID,
		MoveCount:    len(moves),
		Moves:        summaries,
		TriggeredBy:  actorID,
		RebalancedAt: time.Now().UTC().Format(time.RFC3339),
	})
	s.log.Info("tables rebalanced",
		zap.String("tournament_id", tournamentID),
		zap.Int("moves", len(moves)))
	return &BalanceResult{Needed: true, Moves: moves}, nil
}

// AssignTable puts a club table in play for a tournament, optionally
// overriding its seat count. Reassigning a deactivated table
// reactivates it.
func (s *SeatingService) AssignTable(ctx context.Context, tournamentID, clubTableID string, maxSeatsOverride *int) (*model.TournamentTableAssignment, error) {
	if _, err := s.tables.GetByID(ctx, clubTableID); err != nil {
		return nil, err
	}
	a := &model.TournamentTableAssignment{
		ID:               uuid.NewString(),
		TournamentID:     tournamentID,
		ClubTableID:      clubTableID,
		MaxSeatsOverride: maxSeatsOverride,
	}
	if err := s.tables.AssignToTournament(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UnassignTable takes a table out of play. The table must be empty:
// repository.ErrTableHasSeatedPlayers is returned while current seat
// assignments remain, and the check and deactivation share one
// transaction so a racing seat insert cannot slip through.
func (s *SeatingService) UnassignTable(ctx context.Context, tournamentID, clubTableID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	n, err := s.seats.CountCurrentByTableTx(ctx, tx, tournamentID, clubTableID)
	if err != nil {
		return err
	}
	if n > 0 {
		return repository.ErrTableHasSeatedPlayers
	}
	if err := s.tables.DeactivateTx(ctx, tx, tournamentID, clubTableID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

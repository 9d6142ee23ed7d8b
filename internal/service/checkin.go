package service

import (
	"context"
	"database/sql"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/queue"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/seating"
)

// seatRetryLimit bounds how many times a check-in retries seat
// selection after losing a seat race to a concurrent check-in.
const seatRetryLimit = 3

// CheckInService handles registration and arrival workflows: signing
// players up (with seat-cap waitlisting), checking them in with a
// seating strategy, cancellations and waitlist promotion.
type CheckInService struct {
	db     *sql.DB
	trnmts *repository.TournamentRepo
	regs   *repository.RegistrationRepo
	seats  *repository.SeatAssignmentRepo
	tables *repository.ClubTableRepo
	users  *repository.UserRepo
	pub    *queue.Publisher
	log    *zap.Logger
	rng    *rand.Rand
}

// NewCheckInService constructs a CheckInService. The random source
// drives seat selection; pass a seeded one in tests for determinism.
func NewCheckInService(db *sql.DB, trnmts *repository.TournamentRepo, regs *repository.RegistrationRepo, seats *repository.SeatAssignmentRepo, tables *repository.ClubTableRepo, users *repository.UserRepo, pub *queue.Publisher, log *zap.Logger, rng *rand.Rand) *CheckInService {
	return &CheckInService{db: db, trnmts: trnmts, regs: regs, seats: seats, tables: tables, users: users, pub: pub, log: log, rng: rng}
}

// Register signs a player up for a tournament. When the tournament has
// a seat cap and it is already reached, the player is waitlisted
// instead; the waitlist is strictly first come, first served.
func (s *CheckInService) Register(ctx context.Context, tournamentID, userID string, notes *string) (*model.Registration, error) {
	t, err := s.trnmts.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	status := model.RegistrationRegistered
	if t.SeatCap != nil {
		active, err := s.regs.CountActive(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		if active >= *t.SeatCap {
			status = model.RegistrationWaitlisted
		}
	}
	reg := &model.Registration{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Status:       status,
		Notes:        notes,
	}
	if err := s.regs.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// CheckInResult reports the outcome of a check-in. Seated is false
// when the player was checked in but no seat could be assigned (no
// tables, full floor, manual strategy, or a lost seat race); Message
// then explains why. The check-in itself still succeeded.
type CheckInResult struct {
	Registration *model.Registration   `json:"registration"`
	Assignment   *model.SeatAssignment `json:"assignment,omitempty"`
	TableNumber  *int                  `json:"table_number,omitempty"`
	Seated       bool                  `json:"seated"`
	BonusChips   int                   `json:"bonus_chips,omitempty"`
	Message      string                `json:"message,omitempty"`
}

// CheckIn marks a registered player as arrived and seats them
// according to the strategy. The status transition and the seat
// assignment run in one transaction, but seating is deliberately
// loose: when every table is full (or the seat race is lost
// repeatedly) the player stays checked in without a seat and the
// response says so; the floor can always seat them manually later.
// Players not in the registered status cannot check in; the error
// names their current status.
func (s *CheckInService) CheckIn(ctx context.Context, tournamentID, userID string, strategy seating.Strategy, actorID *string) (*CheckInResult, error) {
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

	t, err := s.trnmts.GetByIDTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !t.LiveStatus.AcceptsCheckIns() {
		return nil, &repository.StatusTransitionError{Current: string(t.LiveStatus), Attempted: "check in"}
	}
	reg, err := s.regs.GetByTournamentAndUserTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, model.RegistrationRegistered, model.RegistrationCheckedIn); err != nil {
		return nil, err
	}
	reg.Status = model.RegistrationCheckedIn

	result := &CheckInResult{Registration: reg}
	// Early-bird bonus: checking in before the cards are in the air.
	if t.EarlyBirdBonusChips != nil && t.LiveStatus == model.LiveStatusRegistrationOpen {
		result.BonusChips = *t.EarlyBirdBonusChips
	}

	if strategy != seating.StrategyManual {
		assignment, tableNumber, msg, err := s.trySeat(ctx, tx, t, userID, strategy, actorID, result.BonusChips)
		if err != nil {
			return nil, err
		}
		if assignment != nil {
			if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, model.RegistrationCheckedIn, model.RegistrationSeated); err != nil {
				return nil, err
			}
			reg.Status = model.RegistrationSeated
			result.Assignment = assignment
			result.TableNumber = &tableNumber
			result.Seated = true
		} else {
			result.Message = msg
		}
	} else {
		result.Message = "manual seating requested; assign a seat explicitly"
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publishCheckedIn(ctx, t, reg, result, strategy)
	return result, nil
}

// SelfCheckIn lets a player announce their own arrival. Unregistered
// players are registered on the spot while registration is open; an
// already checked-in or seated player gets a benign no-op response
// instead of an error so the kiosk flow never dead-ends. Seating
// always uses the balanced strategy.
func (s *CheckInService) SelfCheckIn(ctx context.Context, tournamentID, userID string) (*CheckInResult, error) {
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

	t, err := s.trnmts.GetByIDTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !t.LiveStatus.AcceptsCheckIns() {
		return nil, &repository.StatusTransitionError{Current: string(t.LiveStatus), Attempted: "check in"}
	}

	reg, err := s.regs.GetByTournamentAndUserTx(ctx, tx, tournamentID, userID)
	switch err {
	case nil:
	case repository.ErrRegistrationNotFound:
		if t.LiveStatus != model.LiveStatusRegistrationOpen {
			return nil, err
		}
		reg = &model.Registration{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			UserID:       userID,
			Status:       model.RegistrationRegistered,
		}
		if err := s.regs.CreateTx(ctx, tx, reg); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	switch reg.Status {
	case model.RegistrationCheckedIn, model.RegistrationSeated:
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return &CheckInResult{
			Registration: reg,
			Seated:       reg.Status == model.RegistrationSeated,
			Message:      "already checked in",
		}, nil
	}

	// Waitlisted, cancelled and busted players cannot check themselves
	// in; the front desk sorts those out.
	if reg.Status != model.RegistrationRegistered {
		return nil, &repository.StatusTransitionError{Current: string(reg.Status), Attempted: "check in"}
	}
	if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, model.RegistrationRegistered, model.RegistrationCheckedIn); err != nil {
		return nil, err
	}
	reg.Status = model.RegistrationCheckedIn

	result := &CheckInResult{Registration: reg}
	if t.EarlyBirdBonusChips != nil && t.LiveStatus == model.LiveStatusRegistrationOpen {
		result.BonusChips = *t.EarlyBirdBonusChips
	}
	assignment, tableNumber, msg, err := s.trySeat(ctx, tx, t, userID, seating.StrategyBalanced, nil, result.BonusChips)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, model.RegistrationCheckedIn, model.RegistrationSeated); err != nil {
			return nil, err
		}
		reg.Status = model.RegistrationSeated
		result.Assignment = assignment
		result.TableNumber = &tableNumber
		result.Seated = true
	} else {
		result.Message = msg
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publishCheckedIn(ctx, t, reg, result, seating.StrategyBalanced)
	return result, nil
}

// trySeat picks a table and seat per the strategy and inserts the
// assignment. A lost seat race (concurrent check-in grabbed the seat)
// is retried against a fresh snapshot a few times; seating gives up
// gracefully rather than failing the check-in. MySQL rolls back only
// the failed statement, not the transaction, so the committed status
// change is unaffected by an insert that lost.
func (s *CheckInService) trySeat(ctx context.Context, tx *sql.Tx, t *model.Tournament, userID string, strategy seating.Strategy, actorID *string, bonusChips int) (*model.SeatAssignment, int, string, error) {
	for attempt := 0; attempt < seatRetryLimit; attempt++ {
		floor, err := s.loadFloorTx(ctx, tx, t.ID)
		if err != nil {
			return nil, 0, "", err
		}
		if len(floor) == 0 {
			return nil, 0, "no tables assigned to this tournament yet", nil
		}
		table, ok := seating.PickTable(floor, strategy, s.rng)
		if !ok {
			return nil, 0, "all tables are full", nil
		}
		seat, ok := seating.ChooseSeat(table, s.rng)
		if !ok {
			return nil, 0, "all tables are full", nil
		}
		var stack *int
		if bonusChips > 0 {
			b := bonusChips
			stack = &b
		}
		assignment := &model.SeatAssignment{
			ID:           uuid.NewString(),
			TournamentID: t.ID,
			ClubTableID:  table.ClubTableID,
			UserID:       userID,
			SeatNumber:   seat,
			StackSize:    stack,
			AssignedBy:   actorID,
		}
		err = s.seats.AssignTx(ctx, tx, assignment)
		switch err {
		case nil:
			return assignment, table.TableNumber, "", nil
		case repository.ErrSeatOccupied:
			continue // stale snapshot, re-read and retry
		case repository.ErrAlreadySeated:
			return nil, 0, "player already holds a seat", nil
		default:
			return nil, 0, "", err
		}
	}
	return nil, 0, "could not win a seat; assign manually", nil
}

// loadFloorTx builds the seating snapshot (active tables plus current
// occupants) inside the caller's transaction.
func (s *CheckInService) loadFloorTx(ctx context.Context, tx *sql.Tx, tournamentID string) ([]seating.TableState, error) {
	tables, err := s.tables.ListActiveForTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.seats.ListCurrentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	return buildFloor(tables, assignments), nil
}

// buildFloor merges tables and current assignments into the snapshot
// the seating package operates on.
func buildFloor(tables []repository.TournamentTable, assignments []model.SeatAssignment) []seating.TableState {
	floor := make([]seating.TableState, len(tables))
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		floor[i] = seating.TableState{
			ClubTableID: t.ClubTableID,
			TableNumber: t.TableNumber,
			MaxSeats:    t.MaxSeats,
		}
		index[t.ClubTableID] = i
	}
	for _, a := range assignments {
		i, ok := index[a.ClubTableID]
		if !ok {
			continue // seat on a deactivated table; not part of the live floor
		}
		floor[i].Seats = append(floor[i].Seats, seating.PlayerSeat{
			AssignmentID: a.ID,
			UserID:       a.UserID,
			SeatNumber:   a.SeatNumber,
			StackSize:    a.StackSize,
			AssignedAt:   a.AssignedAt,
		})
	}
	return floor
}

func (s *CheckInService) publishCheckedIn(ctx context.Context, t *model.Tournament, reg *model.Registration, result *CheckInResult, strategy seating.Strategy) {
	ev := queue.PlayerCheckedInEvent{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		Strategy:       string(strategy),
		BonusChips:     result.BonusChips,
		CheckedInAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if u, err := s.users.GetByID(ctx, reg.UserID); err == nil {
		ev.PlayerName = u.FirstName
		if u.LastName != nil {
			ev.PlayerName += " " + *u.LastName
		}
	}
	if result.Seated {
		ev.TableNumber = result.TableNumber
		seat := result.Assignment.SeatNumber
		ev.SeatNumber = &seat
	}
	_ = s.pub.PlayerCheckedIn(ctx, ev)
}

// Cancel withdraws a registration. Registered, waitlisted and
// checked-in players may cancel; a seated player must be unseated
// first. Freeing a capped slot promotes the longest-waiting
// waitlisted player in the same transaction.
func (s *CheckInService) Cancel(ctx context.Context, tournamentID, userID string) (*model.Registration, error) {
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
	reg, err := s.regs.GetByTournamentAndUserTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	switch reg.Status {
	case model.RegistrationRegistered, model.RegistrationWaitlisted, model.RegistrationCheckedIn:
	default:
		return nil, &repository.StatusTransitionError{Current: string(reg.Status), Attempted: "cancel"}
	}
	wasActive := reg.Status != model.RegistrationWaitlisted
	if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, reg.Status, model.RegistrationCancelled); err != nil {
		return nil, err
	}
	reg.Status = model.RegistrationCancelled

	if wasActive {
		// Promote the head of the waitlist into the freed slot.
		next, err := s.regs.NextWaitlistedTx(ctx, tx, tournamentID)
		switch err {
		case nil:
			if err := s.regs.UpdateStatusTx(ctx, tx, next.ID, model.RegistrationWaitlisted, model.RegistrationRegistered); err != nil {
				return nil, err
			}
			s.log.Info("promoted player from waitlist",
				zap.String("tournament_id", tournamentID),
				zap.String("user_id", next.UserID))
		case repository.ErrRegistrationNotFound:
			// Empty waitlist.
		default:
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return reg, nil
}

// MarkNoShow flags a registered player who never arrived. Their capped
// slot is released to the waitlist like a cancellation.
func (s *CheckInService) MarkNoShow(ctx context.Context, tournamentID, userID string) (*model.Registration, error) {
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
	reg, err := s.regs.GetByTournamentAndUserTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, model.RegistrationRegistered, model.RegistrationNoShow); err != nil {
		return nil, err
	}
	reg.Status = model.RegistrationNoShow
	next, err := s.regs.NextWaitlistedTx(ctx, tx, tournamentID)
	switch err {
	case nil:
		if err := s.regs.UpdateStatusTx(ctx, tx, next.ID, model.RegistrationWaitlisted, model.RegistrationRegistered); err != nil {
			return nil, err
		}
	case repository.ErrRegistrationNotFound:
	default:
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return reg, nil
}

// Eliminate marks a seated player as busted and frees their seat.
func (s *CheckInService) Eliminate(ctx context.Context, tournamentID, userID string, actorID *string) (*model.Registration, error) {
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
	reg, err := s.regs.GetByTournamentAndUserTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.regs.UpdateStatusTx(ctx, tx, reg.ID, model.RegistrationSeated, model.RegistrationBusted); err != nil {
		return nil, err
	}
	reg.Status = model.RegistrationBusted
	prev, err := s.seats.UnassignCurrentForUserTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	fields := []zap.Field{
		zap.String("tournament_id", tournamentID),
		zap.String("user_id", userID),
	}
	if prev != nil {
		fields = append(fields, zap.Int("freed_seat", prev.SeatNumber))
	}
	s.log.Info("player eliminated", fields...)
	return reg, nil
}

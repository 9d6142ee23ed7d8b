// Package service implements the tournament workflows: check-in,
// seating, the blind-level clock and results entry. Each workflow runs
// its critical database operations inside one transaction; broker
// publishes happen only after a successful commit and are best effort.
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
)

// staleClockAge is how long a running or paused clock may go untouched
// before the sweeper force-finishes its tournament.
const staleClockAge = 24 * time.Hour

// ClockStateError reports a clock operation attempted from a state
// that does not allow it.
type ClockStateError struct {
	Status model.ClockStatus
	Action string
}

func (e *ClockStateError) Error() string {
	return fmt.Sprintf("cannot %s a %s clock", e.Action, e.Status)
}

// ClockService drives the tournament clock state machine. Every
// transition locks the clock row for its transaction, writes the new
// state and an audit event atomically, and publishes a broker event
// after commit. The background ticker goes through the same paths, so
// operator actions and automatic advances serialize on the row lock.
type ClockService struct {
	db         *sql.DB
	clocks     *repository.ClockRepo
	structures *repository.StructureRepo
	trnmts     *repository.TournamentRepo
	pub        *queue.Publisher
	log        *zap.Logger
}

// NewClockService constructs a ClockService. All dependencies must be
// non-nil.
func NewClockService(db *sql.DB, clocks *repository.ClockRepo, structures *repository.StructureRepo, trnmts *repository.TournamentRepo, pub *queue.Publisher, log *zap.Logger) *ClockService {
	return &ClockService{db: db, clocks: clocks, structures: structures, trnmts: trnmts, pub: pub, log: log}
}

// CreateClock creates the clock for a tournament at level 1, stopped.
// ErrClockExists is returned when the tournament already has one.
func (s *ClockService) CreateClock(ctx context.Context, tournamentID string, autoAdvance bool) (*model.TournamentClock, error) {
	if _, err := s.trnmts.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
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
	clock := &model.TournamentClock{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		AutoAdvance:  autoAdvance,
	}
	if err := s.clocks.CreateTx(ctx, tx, clock); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return clock, nil
}

// ClockState is the derived view of a clock returned to clients: the
// stored row plus the current level's blinds and the remaining time,
// which is never stored.
type ClockState struct {
	Clock            *model.TournamentClock     `json:"clock"`
	Level            *model.TournamentStructure `json:"level,omitempty"`
	NextLevel        *model.TournamentStructure `json:"next_level,omitempty"`
	RemainingSeconds int64                      `json:"remaining_seconds"`
}

// State returns the clock with its remaining time derived at the
// current instant. A clock whose tournament has no structure for the
// current level still reports its stored state, with zero remaining.
func (s *ClockService) State(ctx context.Context, tournamentID string) (*ClockState, error) {
	clock, err := s.clocks.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	state := &ClockState{Clock: clock}
	level, err := s.structures.GetLevel(ctx, tournamentID, clock.CurrentLevel)
	if err == nil {
		state.Level = level
		state.RemainingSeconds = int64(clock.TimeRemaining(level.Duration(), time.Now().UTC()).Seconds())
	} else if err != repository.ErrStructureNotFound {
		return nil, err
	}
	// The on-deck level, so displays can show what is coming. Absent at
	// the final level.
	if next, err := s.structures.GetLevel(ctx, tournamentID, clock.CurrentLevel+1); err == nil {
		state.NextLevel = next
	} else if err != repository.ErrStructureNotFound {
		return nil, err
	}
	return state, nil
}

// startFresh says how a start request applies to a clock in the given
// status: a stopped clock gets a fresh timing epoch, a paused clock is
// folded back into running like a resume, and a running clock rejects
// the request.
func startFresh(status model.ClockStatus) (bool, error) {
	switch status {
	case model.ClockStopped:
		return true, nil
	case model.ClockPaused:
		return false, nil
	default:
		return false, &ClockStateError{Status: status, Action: "start"}
	}
}

// Start begins the clock at its current level. Starting from stopped
// opens a fresh timing epoch, so accumulated pause time resets to
// zero; starting a paused clock behaves like a resume, shifting the
// deadline and keeping the accumulator.
func (s *ClockService) Start(ctx context.Context, tournamentID string, actorID *string) (*model.TournamentClock, error) {
	return s.transition(ctx, tournamentID, func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error) {
		fresh, err := startFresh(clock.Status)
		if err != nil {
			return "", err
		}
		if !fresh {
			if err := s.clocks.ResumeTx(ctx, tx, tournamentID, now); err != nil {
				return "", err
			}
			return model.ClockEventStart, nil
		}
		level, err := s.structures.GetLevelTx(ctx, tx, tournamentID, clock.CurrentLevel)
		if err != nil {
			return "", err
		}
		if err := s.clocks.StartTx(ctx, tx, tournamentID, now, now.Add(level.Duration())); err != nil {
			return "", err
		}
		return model.ClockEventStart, nil
	}, actorID)
}

// Pause freezes a running clock. The level deadline stays put and the
// pause instant is recorded, so remaining time is frozen exactly at
// the moment of pause.
func (s *ClockService) Pause(ctx context.Context, tournamentID string, actorID *string) (*model.TournamentClock, error) {
	return s.transition(ctx, tournamentID, func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error) {
		if clock.Status != model.ClockRunning {
			return "", &ClockStateError{Status: clock.Status, Action: "pause"}
		}
		if err := s.clocks.PauseTx(ctx, tx, tournamentID, now); err != nil {
			return "", err
		}
		return model.ClockEventPause, nil
	}, actorID)
}

// Resume unfreezes a paused clock, shifting the level deadline forward
// by the pause duration and folding that duration into the lifetime
// accumulator.
func (s *ClockService) Resume(ctx context.Context, tournamentID string, actorID *string) (*model.TournamentClock, error) {
	return s.transition(ctx, tournamentID, func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error) {
		if clock.Status != model.ClockPaused {
			return "", &ClockStateError{Status: clock.Status, Action: "resume"}
		}
		if err := s.clocks.ResumeTx(ctx, tx, tournamentID, now); err != nil {
			return "", err
		}
		return model.ClockEventResume, nil
	}, actorID)
}

// AdvanceLevel moves the clock to the next level manually. Advancing
// past the final level completes the schedule: the clock stops and a
// final-level-complete event is recorded instead. The clock is forced
// into the running state on a normal advance even if it was paused.
func (s *ClockService) AdvanceLevel(ctx context.Context, tournamentID string, actorID *string) (*model.TournamentClock, error) {
	return s.transition(ctx, tournamentID, func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error) {
		maxLevel, err := s.structures.MaxLevelTx(ctx, tx, tournamentID)
		if err != nil {
			return "", err
		}
		if clock.CurrentLevel >= maxLevel {
			if err := s.clocks.StopTx(ctx, tx, tournamentID); err != nil {
				return "", err
			}
			return model.ClockEventFinalComplete, nil
		}
		next, err := s.structures.GetLevelTx(ctx, tx, tournamentID, clock.CurrentLevel+1)
		if err != nil {
			return "", err
		}
		if err := s.clocks.AdvanceLevelTx(ctx, tx, tournamentID, clock.CurrentLevel, now, now.Add(next.Duration())); err != nil {
			return "", err
		}
		return model.ClockEventManualAdvance, nil
	}, actorID)
}

// RevertLevel moves the clock back one level, restarting that level in
// full. Reverting at level 1 returns ErrAlreadyAtFirstLevel.
func (s *ClockService) RevertLevel(ctx context.Context, tournamentID string, actorID *string) (*model.TournamentClock, error) {
	return s.transition(ctx, tournamentID, func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error) {
		if clock.CurrentLevel <= 1 {
			return "", repository.ErrAlreadyAtFirstLevel
		}
		prev, err := s.structures.GetLevelTx(ctx, tx, tournamentID, clock.CurrentLevel-1)
		if err != nil {
			return "", err
		}
		if err := s.clocks.RevertLevelTx(ctx, tx, tournamentID, clock.CurrentLevel, now, now.Add(prev.Duration())); err != nil {
			return "", err
		}
		return model.ClockEventManualRevert, nil
	}, actorID)
}

// transition runs one clock state change: lock the row, apply op,
// append the audit event, commit, then publish. op returns the event
// type to record.
func (s *ClockService) transition(ctx context.Context, tournamentID string, op func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error), actorID *string) (*model.TournamentClock, error) {
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
	clock, err := s.clocks.GetTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	eventType, err := op(tx, clock, now)
	if err != nil {
		return nil, err
	}
	updated, err := s.clocks.GetTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	level := updated.CurrentLevel
	if err := s.clocks.InsertEventTx(ctx, tx, &model.ClockEvent{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		EventType:    eventType,
		LevelNumber:  &level,
		ActorID:      actorID,
		EventTime:    now,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publishClockChanged(ctx, updated, eventType, now)
	return updated, nil
}

func (s *ClockService) publishClockChanged(ctx context.Context, clock *model.TournamentClock, eventType string, at time.Time) {
	ev := queue.ClockChangedEvent{
		TournamentID: clock.TournamentID,
		EventType:    eventType,
		Level:        clock.CurrentLevel,
		ChangedAt:    at.Format(time.RFC3339),
	}
	if level, err := s.structures.GetLevel(ctx, clock.TournamentID, clock.CurrentLevel); err == nil {
		ev.SmallBlind = level.SmallBlind
		ev.BigBlind = level.BigBlind
		ev.Ante = level.Ante
	}
	// Best effort; the publisher already logged any failure.
	_ = s.pub.ClockChanged(ctx, ev)
}

// Events returns the newest entries of a tournament's clock audit log.
func (s *ClockService) Events(ctx context.Context, tournamentID string, limit int) ([]model.ClockEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.clocks.ListEvents(ctx, tournamentID, limit)
}

// SetAutoAdvance toggles automatic level advancement for a clock.
func (s *ClockService) SetAutoAdvance(ctx context.Context, tournamentID string, enabled bool) error {
	return s.clocks.SetAutoAdvance(ctx, tournamentID, enabled)
}

// AdvanceDue advances every running auto-advance clock whose level
// deadline has passed. Called by the background ticker. Each
// tournament is handled in its own transaction; the clock is re-read
// under lock so a concurrent manual advance simply makes the automatic
// one a no-op (ErrLevelChanged from the guarded update).
func (s *ClockService) AdvanceDue(ctx context.Context) {
	due, err := s.clocks.ListDueForAdvance(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("list due clocks failed", zap.Error(err))
		return
	}
	for _, tournamentID := range due {
		if err := s.autoAdvance(ctx, tournamentID); err != nil {
			s.log.Error("auto advance failed", zap.String("tournament_id", tournamentID), zap.Error(err))
		}
	}
}

func (s *ClockService) autoAdvance(ctx context.Context, tournamentID string) error {
	_, err := s.transition(ctx, tournamentID, func(tx *sql.Tx, clock *model.TournamentClock, now time.Time) (string, error) {
		// Re-check under lock: a manual action may have raced us.
		if clock.Status != model.ClockRunning || clock.LevelEndTime == nil || clock.LevelEndTime.After(now) {
			return "", repository.ErrLevelChanged
		}
		maxLevel, err := s.structures.MaxLevelTx(ctx, tx, tournamentID)
		if err != nil {
			return "", err
		}
		if clock.CurrentLevel >= maxLevel {
			if err := s.clocks.StopTx(ctx, tx, tournamentID); err != nil {
				return "", err
			}
			return model.ClockEventFinalComplete, nil
		}
		next, err := s.structures.GetLevelTx(ctx, tx, tournamentID, clock.CurrentLevel+1)
		if err != nil {
			return "", err
		}
		if err := s.clocks.AdvanceLevelTx(ctx, tx, tournamentID, clock.CurrentLevel, now, now.Add(next.Duration())); err != nil {
			return "", err
		}
		return model.ClockEventLevelAdvance, nil
	}, nil)
	if err == repository.ErrLevelChanged {
		// Lost the race to a manual action; nothing to do.
		return nil
	}
	return err
}

// SweepStale force-finishes tournaments whose clocks have been running
// or paused without any activity for a day. Abandoned clocks otherwise
// accumulate in the due list forever.
func (s *ClockService) SweepStale(ctx context.Context) {
	stale, err := s.clocks.ListStaleRunning(ctx, time.Now().UTC().Add(-staleClockAge))
	if err != nil {
		s.log.Error("list stale clocks failed", zap.Error(err))
		return
	}
	for _, tournamentID := range stale {
		if err := s.forceFinish(ctx, tournamentID); err != nil {
			s.log.Error("stale sweep failed", zap.String("tournament_id", tournamentID), zap.Error(err))
			continue
		}
		s.log.Info("force-finished stale tournament", zap.String("tournament_id", tournamentID))
	}
}

func (s *ClockService) forceFinish(ctx context.Context, tournamentID string) error {
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
	if _, err := s.clocks.GetTx(ctx, tx, tournamentID); err != nil {
		return err
	}
	if err := s.clocks.StopTx(ctx, tx, tournamentID); err != nil {
		return err
	}
	if err := s.trnmts.ForceLiveStatusTx(ctx, tx, tournamentID, model.LiveStatusFinished); err != nil {
		return err
	}
	if err := s.trnmts.SetEndTimeTx(ctx, tx, tournamentID); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.clocks.InsertEventTx(ctx, tx, &model.ClockEvent{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		EventType:    model.ClockEventFinalComplete,
		EventTime:    now,
		Metadata:     `{"reason":"stale"}`,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	_ = s.pub.TournamentFinished(ctx, queue.TournamentFinishedEvent{
		TournamentID: tournamentID,
		Reason:       "stale",
		FinishedAt:   now.Format(time.RFC3339),
	})
	return nil
}

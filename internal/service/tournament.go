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

// liveTransitions is the tournament state machine: each live status
// maps to the statuses it may move to. Finished is terminal.
var liveTransitions = map[model.TournamentLiveStatus][]model.TournamentLiveStatus{
	model.LiveStatusNotStarted:       {model.LiveStatusRegistrationOpen},
	model.LiveStatusRegistrationOpen: {model.LiveStatusLateRegistration, model.LiveStatusInProgress},
	model.LiveStatusLateRegistration: {model.LiveStatusInProgress},
	model.LiveStatusInProgress:       {model.LiveStatusBreak, model.LiveStatusFinalTable, model.LiveStatusFinished},
	model.LiveStatusBreak:            {model.LiveStatusInProgress, model.LiveStatusFinalTable},
	model.LiveStatusFinalTable:       {model.LiveStatusFinished},
	model.LiveStatusFinished:         {},
}

func transitionAllowed(from, to model.TournamentLiveStatus) bool {
	for _, s := range liveTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TournamentService manages tournament lifecycle: creation, the live
// status state machine and the blind schedule.
type TournamentService struct {
	db         *sql.DB
	trnmts     *repository.TournamentRepo
	structures *repository.StructureRepo
	clocks     *repository.ClockRepo
	pub        *queue.Publisher
	log        *zap.Logger
}

// NewTournamentService constructs a TournamentService.
func NewTournamentService(db *sql.DB, trnmts *repository.TournamentRepo, structures *repository.StructureRepo, clocks *repository.ClockRepo, pub *queue.Publisher, log *zap.Logger) *TournamentService {
	return &TournamentService{db: db, trnmts: trnmts, structures: structures, clocks: clocks, pub: pub, log: log}
}

// Create stores a new tournament in the not-started state.
func (s *TournamentService) Create(ctx context.Context, t *model.Tournament) error {
	if t.Name == "" {
		return fmt.Errorf("tournament name is required: %w", ErrInvalid)
	}
	if t.BuyInCents < 0 {
		return fmt.Errorf("buy-in must not be negative: %w", ErrInvalid)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.LiveStatus = model.LiveStatusNotStarted
	return s.trnmts.Create(ctx, t)
}

// Get returns a tournament by id.
func (s *TournamentService) Get(ctx context.Context, tournamentID string) (*model.Tournament, error) {
	return s.trnmts.GetByID(ctx, tournamentID)
}

// ListByClub returns a club's tournaments, newest first.
func (s *TournamentService) ListByClub(ctx context.Context, clubID string) ([]model.Tournament, error) {
	return s.trnmts.ListByClub(ctx, clubID)
}

// UpdateLiveStatus moves the tournament through its state machine. An
// illegal jump returns a StatusTransitionError naming the current
// state. Finishing a tournament also stops its clock and stamps the
// end time.
func (s *TournamentService) UpdateLiveStatus(ctx context.Context, tournamentID string, to model.TournamentLiveStatus, actorID string) (*model.Tournament, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown live status %q: %w", to, ErrInvalid)
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
	t, err := s.trnmts.GetByIDTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(t.LiveStatus, to) {
		return nil, &repository.StatusTransitionError{Current: string(t.LiveStatus), Attempted: "move to " + string(to)}
	}
	if err := s.trnmts.UpdateLiveStatusTx(ctx, tx, tournamentID, t.LiveStatus, to); err != nil {
		return nil, err
	}
	if to == model.LiveStatusFinished {
		if err := s.trnmts.SetEndTimeTx(ctx, tx, tournamentID); err != nil {
			return nil, err
		}
		// Stop the clock if the tournament has one.
		if _, err := s.clocks.GetTx(ctx, tx, tournamentID); err == nil {
			if err := s.clocks.StopTx(ctx, tx, tournamentID); err != nil {
				return nil, err
			}
		} else if err != repository.ErrClockNotFound {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	t.LiveStatus = to
	s.log.Info("tournament status changed",
		zap.String("tournament_id", tournamentID),
		zap.String("status", string(to)),
		zap.String("actor", actorID))
	if to == model.LiveStatusFinished {
		_ = s.pub.TournamentFinished(ctx, queue.TournamentFinishedEvent{
			TournamentID: tournamentID,
			Reason:       "operator",
			FinishedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}
	return t, nil
}

// SetStructure replaces the tournament's blind schedule. The schedule
// is rejected after the clock has left level 1, because renumbering
// levels under a running clock would corrupt its position. Level
// numbers must be contiguous from 1.
func (s *TournamentService) SetStructure(ctx context.Context, tournamentID string, levels []model.TournamentStructure) ([]model.TournamentStructure, error) {
	for i := range levels {
		if levels[i].LevelNumber != i+1 {
			return nil, fmt.Errorf("level %d at index %d, expected %d: %w", levels[i].LevelNumber, i, i+1, ErrInvalid)
		}
		if levels[i].DurationMinutes <= 0 {
			return nil, fmt.Errorf("level %d needs a positive duration: %w", levels[i].LevelNumber, ErrInvalid)
		}
		if levels[i].ID == "" {
			levels[i].ID = uuid.NewString()
		}
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
	if _, err := s.trnmts.GetByIDTx(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	clock, err := s.clocks.GetTx(ctx, tx, tournamentID)
	if err == nil {
		if clock.Status != model.ClockStopped || clock.CurrentLevel > 1 {
			return nil, fmt.Errorf("cannot replace the structure once the clock has run: %w", ErrInvalid)
		}
	} else if err != repository.ErrClockNotFound {
		return nil, err
	}
	if err := s.structures.ReplaceTx(ctx, tx, tournamentID, levels); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return s.structures.ListByTournament(ctx, tournamentID)
}

// Structure returns the tournament's blind schedule.
func (s *TournamentService) Structure(ctx context.Context, tournamentID string) ([]model.TournamentStructure, error) {
	return s.structures.ListByTournament(ctx, tournamentID)
}

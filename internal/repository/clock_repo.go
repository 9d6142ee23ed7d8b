package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brunomoyse/pp-service/internal/model"
)

// ClockRepo provides operations on tournament_clocks and the
// append-only tournament_clock_events log. One clock row exists per
// tournament. State transitions hold the clock row under FOR UPDATE
// (see GetTx) for their transaction, and level changes additionally
// carry the expected current level in the WHERE clause so that a
// manual advance racing the background ticker increments the level
// exactly once.
//
// Pause time is folded into total_pause_seconds in SQL rather than in
// Go so the arithmetic uses a single clock source: the timestamps
// already stored in the row and the caller-provided instant.
type ClockRepo struct {
	db *sql.DB
}

// NewClockRepo returns a new ClockRepo bound to the given database.
func NewClockRepo(db *sql.DB) *ClockRepo { return &ClockRepo{db: db} }

const clockCols = `id, tournament_id, clock_status, current_level, level_started_at,
       level_end_time, pause_started_at, total_pause_seconds, auto_advance, created_at, updated_at`

func scanClock(row interface{ Scan(...interface{}) error }) (*model.TournamentClock, error) {
	var c model.TournamentClock
	var levelStarted, levelEnd, pauseStarted sql.NullTime
	err := row.Scan(
		&c.ID, &c.TournamentID, &c.Status, &c.CurrentLevel, &levelStarted,
		&levelEnd, &pauseStarted, &c.TotalPauseSeconds, &c.AutoAdvance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if levelStarted.Valid {
		t := levelStarted.Time
		c.LevelStartedAt = &t
	}
	if levelEnd.Valid {
		t := levelEnd.Time
		c.LevelEndTime = &t
	}
	if pauseStarted.Valid {
		t := pauseStarted.Time
		c.PauseStartedAt = &t
	}
	return &c, nil
}

// CreateTx inserts the clock for a tournament within a transaction. A
// tournament may have at most one clock; a duplicate returns
// ErrClockExists and leaves the existing clock untouched.
func (r *ClockRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.TournamentClock) error {
	const q = `INSERT INTO tournament_clocks
	           (id, tournament_id, clock_status, current_level, auto_advance)
	           VALUES (?, ?, ?, ?, ?)`
	if c.Status == "" {
		c.Status = model.ClockStopped
	}
	if c.CurrentLevel == 0 {
		c.CurrentLevel = 1
	}
	if _, err := tx.ExecContext(ctx, q, c.ID, c.TournamentID, c.Status, c.CurrentLevel, c.AutoAdvance); err != nil {
		if isDuplicateEntry(err) {
			return ErrClockExists
		}
		return err
	}
	const sel = `SELECT ` + clockCols + ` FROM tournament_clocks WHERE id = ?`
	stored, err := scanClock(tx.QueryRowContext(ctx, sel, c.ID))
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// Get returns a tournament's clock, or ErrClockNotFound.
func (r *ClockRepo) Get(ctx context.Context, tournamentID string) (*model.TournamentClock, error) {
	const q = `SELECT ` + clockCols + ` FROM tournament_clocks WHERE tournament_id = ?`
	c, err := scanClock(r.db.QueryRowContext(ctx, q, tournamentID))
	if err == sql.ErrNoRows {
		return nil, ErrClockNotFound
	}
	return c, err
}

// GetTx returns a tournament's clock locked FOR UPDATE. Every state
// transition starts here so operator actions and the background ticker
// serialize on the row.
func (r *ClockRepo) GetTx(ctx context.Context, tx *sql.Tx, tournamentID string) (*model.TournamentClock, error) {
	const q = `SELECT ` + clockCols + ` FROM tournament_clocks WHERE tournament_id = ? FOR UPDATE`
	c, err := scanClock(tx.QueryRowContext(ctx, q, tournamentID))
	if err == sql.ErrNoRows {
		return nil, ErrClockNotFound
	}
	return c, err
}

// StartTx moves the clock into the running state at the current level.
// Starting from stopped begins a fresh timing epoch: accumulated pause
// time is reset to zero.
func (r *ClockRepo) StartTx(ctx context.Context, tx *sql.Tx, tournamentID string, startedAt, levelEnd time.Time) error {
	const q = `UPDATE tournament_clocks
	           SET clock_status = 'running',
	               level_started_at = ?,
	               level_end_time = ?,
	               pause_started_at = NULL,
	               total_pause_seconds = 0
	           WHERE tournament_id = ?`
	return r.execOne(ctx, tx, q, startedAt, levelEnd, tournamentID)
}

// PauseTx freezes a running clock. The level deadline is left in place;
// the pause instant is recorded so the remaining time stays derivable
// and the eventual resume can shift the deadline.
func (r *ClockRepo) PauseTx(ctx context.Context, tx *sql.Tx, tournamentID string, pausedAt time.Time) error {
	const q = `UPDATE tournament_clocks
	           SET clock_status = 'paused', pause_started_at = ?
	           WHERE tournament_id = ? AND clock_status = 'running'`
	return r.execOne(ctx, tx, q, pausedAt, tournamentID)
}

// ResumeTx unfreezes a paused clock: the level deadline shifts forward
// by the pause duration and that duration is added to the lifetime
// pause accumulator. Both computations happen in SQL against the stored
// pause_started_at so they cannot disagree.
func (r *ClockRepo) ResumeTx(ctx context.Context, tx *sql.Tx, tournamentID string, resumedAt time.Time) error {
	const q = `UPDATE tournament_clocks
	           SET clock_status = 'running',
	               level_end_time = DATE_ADD(level_end_time, INTERVAL TIMESTAMPDIFF(SECOND, pause_started_at, ?) SECOND),
	               total_pause_seconds = total_pause_seconds + TIMESTAMPDIFF(SECOND, pause_started_at, ?),
	               pause_started_at = NULL
	           WHERE tournament_id = ? AND clock_status = 'paused'`
	return r.execOne(ctx, tx, q, resumedAt, resumedAt, tournamentID)
}

// AdvanceLevelTx moves the clock to the next level and forces it into
// the running state. The expected current level guards the update; when
// a concurrent transition got there first, ErrLevelChanged is returned
// and nothing is written. An in-flight pause is folded into the
// accumulator before being cleared.
func (r *ClockRepo) AdvanceLevelTx(ctx context.Context, tx *sql.Tx, tournamentID string, fromLevel int, startedAt, levelEnd time.Time) error {
	const q = `UPDATE tournament_clocks
	           SET current_level = current_level + 1,
	               clock_status = 'running',
	               level_started_at = ?,
	               level_end_time = ?,
	               total_pause_seconds = total_pause_seconds +
	                   IF(pause_started_at IS NULL, 0, TIMESTAMPDIFF(SECOND, pause_started_at, ?)),
	               pause_started_at = NULL
	           WHERE tournament_id = ? AND current_level = ?`
	res, err := tx.ExecContext(ctx, q, startedAt, levelEnd, startedAt, tournamentID, fromLevel)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLevelChanged
	}
	return nil
}

// RevertLevelTx moves the clock back one level, with the same guard and
// pause folding as AdvanceLevelTx. The level floor is enforced in SQL
// as well: a revert can never take the clock below level 1.
func (r *ClockRepo) RevertLevelTx(ctx context.Context, tx *sql.Tx, tournamentID string, fromLevel int, startedAt, levelEnd time.Time) error {
	const q = `UPDATE tournament_clocks
	           SET current_level = current_level - 1,
	               clock_status = 'running',
	               level_started_at = ?,
	               level_end_time = ?,
	               total_pause_seconds = total_pause_seconds +
	                   IF(pause_started_at IS NULL, 0, TIMESTAMPDIFF(SECOND, pause_started_at, ?)),
	               pause_started_at = NULL
	           WHERE tournament_id = ? AND current_level = ? AND current_level > 1`
	res, err := tx.ExecContext(ctx, q, startedAt, levelEnd, startedAt, tournamentID, fromLevel)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLevelChanged
	}
	return nil
}

// StopTx stops the clock, clearing all level timing. The current level
// and the pause accumulator are preserved for the record.
func (r *ClockRepo) StopTx(ctx context.Context, tx *sql.Tx, tournamentID string) error {
	const q = `UPDATE tournament_clocks
	           SET clock_status = 'stopped',
	               level_started_at = NULL,
	               level_end_time = NULL,
	               pause_started_at = NULL
	           WHERE tournament_id = ?`
	return r.execOne(ctx, tx, q, tournamentID)
}

// SetAutoAdvance toggles whether the background ticker advances this
// clock when a level expires.
func (r *ClockRepo) SetAutoAdvance(ctx context.Context, tournamentID string, enabled bool) error {
	const q = `UPDATE tournament_clocks SET auto_advance = ? WHERE tournament_id = ?`
	res, err := r.db.ExecContext(ctx, q, enabled, tournamentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClockNotFound
	}
	return nil
}

// ListDueForAdvance returns the tournament IDs whose clocks are
// running with auto-advance enabled and a level deadline at or before
// the given instant. The ticker re-reads each clock under lock before
// acting, so this list is only a candidate set.
func (r *ClockRepo) ListDueForAdvance(ctx context.Context, now time.Time) ([]string, error) {
	const q = `SELECT tournament_id FROM tournament_clocks
	           WHERE clock_status = 'running' AND auto_advance = 1 AND level_end_time <= ?`
	return r.listIDs(ctx, q, now)
}

// ListStaleRunning returns the tournament IDs whose clocks are still
// running or paused but have not been touched since the cutoff. The
// hourly sweeper force-finishes these abandoned tournaments.
func (r *ClockRepo) ListStaleRunning(ctx context.Context, cutoff time.Time) ([]string, error) {
	const q = `SELECT tournament_id FROM tournament_clocks
	           WHERE clock_status IN ('running', 'paused') AND updated_at < ?`
	return r.listIDs(ctx, q, cutoff)
}

// InsertEventTx appends one entry to the clock's audit log within the
// transaction of the state change it records.
func (r *ClockRepo) InsertEventTx(ctx context.Context, tx *sql.Tx, e *model.ClockEvent) error {
	const q = `INSERT INTO tournament_clock_events
	           (id, tournament_id, event_type, level_number, actor_id, event_time, metadata)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if e.EventTime.IsZero() {
		e.EventTime = time.Now().UTC()
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	_, err := tx.ExecContext(ctx, q, e.ID, e.TournamentID, e.EventType, e.LevelNumber, e.ActorID, e.EventTime, e.Metadata)
	return err
}

// ListEvents returns a tournament's clock events, newest first,
// capped at limit.
func (r *ClockRepo) ListEvents(ctx context.Context, tournamentID string, limit int) ([]model.ClockEvent, error) {
	const q = `SELECT id, tournament_id, event_type, level_number, actor_id, event_time, metadata
	           FROM tournament_clock_events
	           WHERE tournament_id = ?
	           ORDER BY event_time DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, tournamentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.ClockEvent, 0)
	for rows.Next() {
		var e model.ClockEvent
		var level sql.NullInt64
		var actor sql.NullString
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.EventType, &level, &actor, &e.EventTime, &e.Metadata); err != nil {
			return nil, err
		}
		if level.Valid {
			v := int(level.Int64)
			e.LevelNumber = &v
		}
		if actor.Valid {
			v := actor.String
			e.ActorID = &v
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *ClockRepo) execOne(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClockNotFound
	}
	return nil
}

func (r *ClockRepo) listIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

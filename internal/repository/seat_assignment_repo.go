package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/brunomoyse/pp-service/internal/model"
)

// SeatAssignmentRepo provides operations on the table_seat_assignments
// table. Seat assignments are append-only: a player is moved or removed
// by superseding the current row (is_current set to NULL) rather than
// deleting it, so the table holds the full seating history alongside
// the live picture. All timestamp fields are stored in UTC.
//
// Uniqueness of current rows is enforced by two composite keys over
// (.., is_current); because is_current is NULL on superseded rows,
// those never collide.
type SeatAssignmentRepo struct {
	db *sql.DB
}

// NewSeatAssignmentRepo returns a new SeatAssignmentRepo bound to the given database.
func NewSeatAssignmentRepo(db *sql.DB) *SeatAssignmentRepo { return &SeatAssignmentRepo{db: db} }

const seatAssignmentCols = `id, tournament_id, club_table_id, user_id, seat_number,
       stack_size, is_current, assigned_at, unassigned_at, assigned_by, notes,
       created_at, updated_at`

// scanSeatAssignment scans one row selected with seatAssignmentCols.
func scanSeatAssignment(row interface{ Scan(...interface{}) error }) (*model.SeatAssignment, error) {
	var a model.SeatAssignment
	var stack sql.NullInt64
	var current sql.NullInt64
	var unassignedAt sql.NullTime
	var assignedBy, notes sql.NullString
	err := row.Scan(
		&a.ID, &a.TournamentID, &a.ClubTableID, &a.UserID, &a.SeatNumber,
		&stack, &current, &a.AssignedAt, &unassignedAt, &assignedBy, &notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if stack.Valid {
		v := int(stack.Int64)
		a.StackSize = &v
	}
	a.IsCurrent = current.Valid && current.Int64 == 1
	if unassignedAt.Valid {
		t := unassignedAt.Time
		a.UnassignedAt = &t
	}
	if assignedBy.Valid {
		v := assignedBy.String
		a.AssignedBy = &v
	}
	if notes.Valid {
		v := notes.String
		a.Notes = &v
	}
	return &a, nil
}

// AssignTx inserts a new current seat assignment within the scope of an
// existing transaction. The two current-row unique keys turn concurrent
// conflicting writes into duplicate-entry errors, which are classified
// into ErrSeatOccupied (seat taken at this table) or ErrAlreadySeated
// (player already has a current seat in the tournament). On success the
// record's timestamps are populated by querying the row back.
func (r *SeatAssignmentRepo) AssignTx(ctx context.Context, tx *sql.Tx, a *model.SeatAssignment) error {
	const q = `INSERT INTO table_seat_assignments
	           (id, tournament_id, club_table_id, user_id, seat_number, stack_size, is_current, assigned_at, assigned_by, notes)
	           VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx, q,
		a.ID, a.TournamentID, a.ClubTableID, a.UserID, a.SeatNumber,
		a.StackSize, a.AssignedAt, a.AssignedBy, a.Notes,
	)
	if err != nil {
		switch key := duplicateKey(err); {
		case strings.Contains(key, "player"):
			return ErrAlreadySeated
		case key != "":
			return ErrSeatOccupied
		}
		return err
	}
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + seatAssignmentCols + ` FROM table_seat_assignments WHERE id = ?`
	stored, err := scanSeatAssignment(tx.QueryRowContext(ctx, sel, a.ID))
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// UnassignTx marks the given assignment as superseded within a
// transaction. It fails with ErrNotCurrent when the row exists but has
// already been superseded and ErrAssignmentNotFound when it does not
// exist at all. Unassign is intentionally not idempotent so racing
// operators see that their view was stale.
func (r *SeatAssignmentRepo) UnassignTx(ctx context.Context, tx *sql.Tx, assignmentID string) error {
	const q = `UPDATE table_seat_assignments
	           SET is_current = NULL, unassigned_at = ?
	           WHERE id = ? AND is_current = 1`
	res, err := tx.ExecContext(ctx, q, time.Now().UTC(), assignmentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	const exists = `SELECT 1 FROM table_seat_assignments WHERE id = ?`
	var one int
	switch err := tx.QueryRowContext(ctx, exists, assignmentID).Scan(&one); err {
	case nil:
		return ErrNotCurrent
	case sql.ErrNoRows:
		return ErrAssignmentNotFound
	default:
		return err
	}
}

// UnassignCurrentForUserTx supersedes the player's current seat in the
// tournament, if any. It returns the superseded assignment so callers
// can report where the player moved from, or nil when the player was
// not seated.
func (r *SeatAssignmentRepo) UnassignCurrentForUserTx(ctx context.Context, tx *sql.Tx, tournamentID, userID string) (*model.SeatAssignment, error) {
	const sel = `SELECT ` + seatAssignmentCols + `
	             FROM table_seat_assignments
	             WHERE tournament_id = ? AND user_id = ? AND is_current = 1`
	prev, err := scanSeatAssignment(tx.QueryRowContext(ctx, sel, tournamentID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	const q = `UPDATE table_seat_assignments
	           SET is_current = NULL, unassigned_at = ?
	           WHERE id = ? AND is_current = 1`
	if _, err := tx.ExecContext(ctx, q, time.Now().UTC(), prev.ID); err != nil {
		return nil, err
	}
	return prev, nil
}

// GetByID returns a single assignment by primary key. It returns
// ErrAssignmentNotFound when no row exists.
func (r *SeatAssignmentRepo) GetByID(ctx context.Context, assignmentID string) (*model.SeatAssignment, error) {
	const q = `SELECT ` + seatAssignmentCols + ` FROM table_seat_assignments WHERE id = ?`
	a, err := scanSeatAssignment(r.db.QueryRowContext(ctx, q, assignmentID))
	if err == sql.ErrNoRows {
		return nil, ErrAssignmentNotFound
	}
	return a, err
}

// GetCurrentForUser returns the player's current seat in the
// tournament, or ErrAssignmentNotFound when the player is not seated.
func (r *SeatAssignmentRepo) GetCurrentForUser(ctx context.Context, tournamentID, userID string) (*model.SeatAssignment, error) {
	const q = `SELECT ` + seatAssignmentCols + `
	           FROM table_seat_assignments
	           WHERE tournament_id = ? AND user_id = ? AND is_current = 1`
	a, err := scanSeatAssignment(r.db.QueryRowContext(ctx, q, tournamentID, userID))
	if err == sql.ErrNoRows {
		return nil, ErrAssignmentNotFound
	}
	return a, err
}

// ListCurrentByTournament returns all current assignments for a
// tournament ordered by table and seat number for deterministic output.
func (r *SeatAssignmentRepo) ListCurrentByTournament(ctx context.Context, tournamentID string) ([]model.SeatAssignment, error) {
	const q = `SELECT ` + seatAssignmentCols + `
	           FROM table_seat_assignments
	           WHERE tournament_id = ? AND is_current = 1
	           ORDER BY club_table_id, seat_number`
	return r.listAssignments(ctx, r.db, q, tournamentID)
}

// ListCurrentTx is the transactional variant of ListCurrentByTournament.
// It is used by the balancer so plan and execution observe the same
// seating snapshot.
func (r *SeatAssignmentRepo) ListCurrentTx(ctx context.Context, tx *sql.Tx, tournamentID string) ([]model.SeatAssignment, error) {
	const q = `SELECT ` + seatAssignmentCols + `
	           FROM table_seat_assignments
	           WHERE tournament_id = ? AND is_current = 1
	           ORDER BY club_table_id, seat_number`
	return r.listAssignments(ctx, tx, q, tournamentID)
}

// ListCurrentByTable returns the current assignments on one table,
// ordered by seat number.
func (r *SeatAssignmentRepo) ListCurrentByTable(ctx context.Context, tournamentID, clubTableID string) ([]model.SeatAssignment, error) {
	const q = `SELECT ` + seatAssignmentCols + `
	           FROM table_seat_assignments
	           WHERE tournament_id = ? AND club_table_id = ? AND is_current = 1
	           ORDER BY seat_number`
	return r.listAssignments(ctx, r.db, q, tournamentID, clubTableID)
}

// historyMaxRows bounds a single history page. Tournament histories
// grow without limit, so the cap applies even when the caller asks for
// more.
const historyMaxRows = 1000

// HistoryFilter narrows ListHistory. Nil fields are ignored; Limit is
// clamped to historyMaxRows and defaults to it when unset.
type HistoryFilter struct {
	UserID      *string
	ClubTableID *string
	Current     *bool
	From        *time.Time
	To          *time.Time
	Limit       int
}

// historyQuery assembles the filtered history select. Superseded rows
// carry a NULL is_current, so the Current=false branch matches on NULL
// rather than 0.
func historyQuery(tournamentID string, f HistoryFilter) (string, []interface{}) {
	q := `SELECT ` + seatAssignmentCols + `
	      FROM table_seat_assignments
	      WHERE tournament_id = ?`
	args := []interface{}{tournamentID}
	if f.UserID != nil {
		q += ` AND user_id = ?`
		args = append(args, *f.UserID)
	}
	if f.ClubTableID != nil {
		q += ` AND club_table_id = ?`
		args = append(args, *f.ClubTableID)
	}
	if f.Current != nil {
		if *f.Current {
			q += ` AND is_current = 1`
		} else {
			q += ` AND is_current IS NULL`
		}
	}
	if f.From != nil {
		q += ` AND assigned_at >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		q += ` AND assigned_at < ?`
		args = append(args, *f.To)
	}
	limit := f.Limit
	if limit <= 0 || limit > historyMaxRows {
		limit = historyMaxRows
	}
	q += ` ORDER BY assigned_at DESC, created_at DESC LIMIT ?`
	args = append(args, limit)
	return q, args
}

// ListHistory returns the assignment history of a tournament, newest
// first, narrowed by the given filter.
func (r *SeatAssignmentRepo) ListHistory(ctx context.Context, tournamentID string, f HistoryFilter) ([]model.SeatAssignment, error) {
	q, args := historyQuery(tournamentID, f)
	return r.listAssignments(ctx, r.db, q, args...)
}

// CountCurrentByTableTx counts the current assignments on one table
// within a transaction. Used as the emptiness check before a table is
// released from a tournament.
func (r *SeatAssignmentRepo) CountCurrentByTableTx(ctx context.Context, tx *sql.Tx, tournamentID, clubTableID string) (int, error) {
	const q = `SELECT COUNT(*) FROM table_seat_assignments
	           WHERE tournament_id = ? AND club_table_id = ? AND is_current = 1`
	var n int
	err := tx.QueryRowContext(ctx, q, tournamentID, clubTableID).Scan(&n)
	return n, err
}

// UnassignedPlayer is an active player without a current seat, as
// returned by ListUnassignedPlayers.
type UnassignedPlayer struct {
	UserID           string    `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         *string   `json:"last_name,omitempty"`
	Status           string    `json:"status"`
	RegistrationTime time.Time `json:"registration_time"`
}

// unassignedPlayersQuery finds active players without a current seat.
// The 'seated' status stays in the list because unassigning a seat
// does not touch the registration row, so a player pulled from a
// broken table still reads as seated while waiting for a new seat.
const unassignedPlayersQuery = `SELECT tr.user_id, u.first_name, u.last_name, tr.status, tr.registration_time
           FROM tournament_registrations tr
           JOIN users u ON u.id = tr.user_id
           LEFT JOIN table_seat_assignments tsa
                  ON tsa.tournament_id = tr.tournament_id
                 AND tsa.user_id = tr.user_id
                 AND tsa.is_current = 1
           WHERE tr.tournament_id = ?
             AND tr.status IN ('registered', 'checked_in', 'seated')
             AND tsa.id IS NULL
           ORDER BY tr.registration_time`

// ListUnassignedPlayers returns the tournament's active players that
// currently hold no seat, ordered by registration time so the
// longest-waiting players surface first.
func (r *SeatAssignmentRepo) ListUnassignedPlayers(ctx context.Context, tournamentID string) ([]UnassignedPlayer, error) {
	rows, err := r.db.QueryContext(ctx, unassignedPlayersQuery, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	players := make([]UnassignedPlayer, 0)
	for rows.Next() {
		var p UnassignedPlayer
		var lastName sql.NullString
		if err := rows.Scan(&p.UserID, &p.FirstName, &lastName, &p.Status, &p.RegistrationTime); err != nil {
			return nil, err
		}
		if lastName.Valid {
			ln := lastName.String
			p.LastName = &ln
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// querier abstracts *sql.DB and *sql.Tx for the shared list helper.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *SeatAssignmentRepo) listAssignments(ctx context.Context, q querier, query string, args ...interface{}) ([]model.SeatAssignment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SeatAssignment, 0)
	for rows.Next() {
		a, err := scanSeatAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

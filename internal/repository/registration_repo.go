package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brunomoyse/pp-service/internal/model"
)

// RegistrationRepo provides operations on tournament_registrations.
// Each (tournament, user) pair has at most one registration; the pair
// is enforced with a unique key so double sign-ups surface as
// ErrAlreadyRegistered. Status transitions are guarded updates: the
// expected current status is part of the WHERE clause so a stale
// caller loses the race instead of clobbering a newer state.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a new RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

const registrationCols = `id, tournament_id, user_id, registration_time, status, notes, created_at, updated_at`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*model.Registration, error) {
	var reg model.Registration
	var notes sql.NullString
	err := row.Scan(
		&reg.ID, &reg.TournamentID, &reg.UserID, &reg.RegistrationTime,
		&reg.Status, &notes, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		v := notes.String
		reg.Notes = &v
	}
	return &reg, nil
}

// Create inserts a new registration and queries the row back to
// populate timestamps. A duplicate (tournament, user) pair returns
// ErrAlreadyRegistered.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	const q = `INSERT INTO tournament_registrations (id, tournament_id, user_id, registration_time, status, notes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	if reg.RegistrationTime.IsZero() {
		reg.RegistrationTime = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, q, reg.ID, reg.TournamentID, reg.UserID, reg.RegistrationTime, reg.Status, reg.Notes); err != nil {
		if isDuplicateEntry(err) {
			return ErrAlreadyRegistered
		}
		return err
	}
	const sel = `SELECT ` + registrationCols + ` FROM tournament_registrations WHERE id = ?`
	stored, err := scanRegistration(r.db.QueryRowContext(ctx, sel, reg.ID))
	if err != nil {
		return err
	}
	*reg = *stored
	return nil
}

// CreateTx inserts a registration inside the caller's transaction.
// Used by self check-in, which registers and checks in atomically.
func (r *RegistrationRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.Registration) error {
	const q = `INSERT INTO tournament_registrations (id, tournament_id, user_id, registration_time, status, notes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	if reg.RegistrationTime.IsZero() {
		reg.RegistrationTime = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, q, reg.ID, reg.TournamentID, reg.UserID, reg.RegistrationTime, reg.Status, reg.Notes); err != nil {
		if isDuplicateEntry(err) {
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// GetByID returns a registration by primary key, or
// ErrRegistrationNotFound.
func (r *RegistrationRepo) GetByID(ctx context.Context, registrationID string) (*model.Registration, error) {
	const q = `SELECT ` + registrationCols + ` FROM tournament_registrations WHERE id = ?`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, q, registrationID))
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	return reg, err
}

// GetByTournamentAndUser returns the player's registration in a
// tournament, or ErrRegistrationNotFound.
func (r *RegistrationRepo) GetByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*model.Registration, error) {
	const q = `SELECT ` + registrationCols + `
	           FROM tournament_registrations
	           WHERE tournament_id = ? AND user_id = ?`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, q, tournamentID, userID))
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	return reg, err
}

// GetByTournamentAndUserTx is the transactional variant of
// GetByTournamentAndUser, locking the row for the duration of the
// transaction so check-in workflows read and transition atomically.
func (r *RegistrationRepo) GetByTournamentAndUserTx(ctx context.Context, tx *sql.Tx, tournamentID, userID string) (*model.Registration, error) {
	const q = `SELECT ` + registrationCols + `
	           FROM tournament_registrations
	           WHERE tournament_id = ? AND user_id = ?
	           FOR UPDATE`
	reg, err := scanRegistration(tx.QueryRowContext(ctx, q, tournamentID, userID))
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	return reg, err
}

// ListByTournament returns a tournament's registrations ordered by
// registration time, optionally filtered to one status.
func (r *RegistrationRepo) ListByTournament(ctx context.Context, tournamentID string, status *model.RegistrationStatus) ([]model.Registration, error) {
	q := `SELECT ` + registrationCols + `
	      FROM tournament_registrations
	      WHERE tournament_id = ?`
	args := []interface{}{tournamentID}
	if status != nil {
		q += ` AND status = ?`
		args = append(args, *status)
	}
	q += ` ORDER BY registration_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

// CountActive counts registrations that occupy a slot toward the seat
// cap: registered, checked-in and seated players.
func (r *RegistrationRepo) CountActive(ctx context.Context, tournamentID string) (int, error) {
	const q = `SELECT COUNT(*) FROM tournament_registrations
	           WHERE tournament_id = ? AND status IN ('registered', 'checked_in', 'seated')`
	var n int
	err := r.db.QueryRowContext(ctx, q, tournamentID).Scan(&n)
	return n, err
}

// UpdateStatusTx transitions a registration from an expected status to
// a new one within a transaction. When the row is no longer in the
// expected status, a StatusTransitionError carrying the actual current
// status is returned; when the row does not exist,
// ErrRegistrationNotFound.
func (r *RegistrationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, registrationID string, from, to model.RegistrationStatus) error {
	const q = `UPDATE tournament_registrations SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, to, registrationID, from)
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
	const sel = `SELECT status FROM tournament_registrations WHERE id = ?`
	var current string
	switch err := tx.QueryRowContext(ctx, sel, registrationID).Scan(&current); err {
	case nil:
		return &StatusTransitionError{Current: current, Attempted: string(to)}
	case sql.ErrNoRows:
		return ErrRegistrationNotFound
	default:
		return err
	}
}

// UpdateStatus is the non-transactional variant of UpdateStatusTx for
// single-step transitions.
func (r *RegistrationRepo) UpdateStatus(ctx context.Context, registrationID string, from, to model.RegistrationStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.UpdateStatusTx(ctx, tx, registrationID, from, to); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// NextWaitlistedTx returns the longest-waiting waitlisted registration
// for a tournament, locking it for the transaction, or
// ErrRegistrationNotFound when the waitlist is empty. Waitlist order is
// strictly first come, first served.
func (r *RegistrationRepo) NextWaitlistedTx(ctx context.Context, tx *sql.Tx, tournamentID string) (*model.Registration, error) {
	const q = `SELECT ` + registrationCols + `
	           FROM tournament_registrations
	           WHERE tournament_id = ? AND status = 'waitlisted'
	           ORDER BY registration_time
	           LIMIT 1
	           FOR UPDATE`
	reg, err := scanRegistration(tx.QueryRowContext(ctx, q, tournamentID))
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	return reg, err
}

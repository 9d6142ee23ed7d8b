package repository

import (
	"context"
	"database/sql"

	"github.com/brunomoyse/pp-service/internal/model"
)

// TournamentRepo provides operations on the tournaments table. The
// fine-grained live_status column is the stored lifecycle state; the
// coarse status exposed to clients is always derived from it in the
// model layer and never written here.
type TournamentRepo struct {
	db *sql.DB
}

// NewTournamentRepo returns a new TournamentRepo bound to the given database.
func NewTournamentRepo(db *sql.DB) *TournamentRepo { return &TournamentRepo{db: db} }

const tournamentCols = `id, club_id, name, description, start_time, end_time,
       buy_in_cents, seat_cap, live_status, early_bird_bonus_chips, created_at, updated_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*model.Tournament, error) {
	var t model.Tournament
	var description sql.NullString
	var endTime sql.NullTime
	var seatCap, bonus sql.NullInt64
	err := row.Scan(
		&t.ID, &t.ClubID, &t.Name, &description, &t.StartTime, &endTime,
		&t.BuyInCents, &seatCap, &t.LiveStatus, &bonus, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		v := description.String
		t.Description = &v
	}
	if endTime.Valid {
		v := endTime.Time
		t.EndTime = &v
	}
	if seatCap.Valid {
		v := int(seatCap.Int64)
		t.SeatCap = &v
	}
	if bonus.Valid {
		v := int(bonus.Int64)
		t.EarlyBirdBonusChips = &v
	}
	return &t, nil
}

// Create inserts a new tournament and queries the row back to populate
// timestamps and defaults.
func (r *TournamentRepo) Create(ctx context.Context, t *model.Tournament) error {
	const q = `INSERT INTO tournaments
	           (id, club_id, name, description, start_time, end_time, buy_in_cents, seat_cap, live_status, early_bird_bonus_chips)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if t.LiveStatus == "" {
		t.LiveStatus = model.LiveStatusNotStarted
	}
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.ClubID, t.Name, t.Description, t.StartTime, t.EndTime,
		t.BuyInCents, t.SeatCap, t.LiveStatus, t.EarlyBirdBonusChips,
	)
	if err != nil {
		return err
	}
	const sel = `SELECT ` + tournamentCols + ` FROM tournaments WHERE id = ?`
	stored, err := scanTournament(r.db.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}

// GetByID returns a tournament by primary key, or ErrTournamentNotFound.
func (r *TournamentRepo) GetByID(ctx context.Context, tournamentID string) (*model.Tournament, error) {
	const q = `SELECT ` + tournamentCols + ` FROM tournaments WHERE id = ?`
	t, err := scanTournament(r.db.QueryRowContext(ctx, q, tournamentID))
	if err == sql.ErrNoRows {
		return nil, ErrTournamentNotFound
	}
	return t, err
}

// GetByIDTx returns a tournament by primary key within a transaction,
// locking the row. Workflows that read the live status and then write
// dependent state (check-in, bulk bonuses, status transitions) use this
// to keep the status stable for the transaction's duration.
func (r *TournamentRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, tournamentID string) (*model.Tournament, error) {
	const q = `SELECT ` + tournamentCols + ` FROM tournaments WHERE id = ? FOR UPDATE`
	t, err := scanTournament(tx.QueryRowContext(ctx, q, tournamentID))
	if err == sql.ErrNoRows {
		return nil, ErrTournamentNotFound
	}
	return t, err
}

// ListByClub returns a club's tournaments ordered by start time
// descending (newest first).
func (r *TournamentRepo) ListByClub(ctx context.Context, clubID string) ([]model.Tournament, error) {
	const q = `SELECT ` + tournamentCols + ` FROM tournaments WHERE club_id = ? ORDER BY start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLiveStatusTx transitions a tournament's live status within a
// transaction. The expected current status guards the update so
// concurrent transitions cannot interleave; a stale expectation yields
// a StatusTransitionError carrying the actual current value.
func (r *TournamentRepo) UpdateLiveStatusTx(ctx context.Context, tx *sql.Tx, tournamentID string, from, to model.TournamentLiveStatus) error {
	const q = `UPDATE tournaments SET live_status = ? WHERE id = ? AND live_status = ?`
	res, err := tx.ExecContext(ctx, q, to, tournamentID, from)
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
	const sel = `SELECT live_status FROM tournaments WHERE id = ?`
	var current string
	switch err := tx.QueryRowContext(ctx, sel, tournamentID).Scan(&current); err {
	case nil:
		return &StatusTransitionError{Current: current, Attempted: string(to)}
	case sql.ErrNoRows:
		return ErrTournamentNotFound
	default:
		return err
	}
}

// ForceLiveStatusTx sets the live status unconditionally. Only the
// stale-tournament sweeper uses this; interactive transitions go
// through UpdateLiveStatusTx.
func (r *TournamentRepo) ForceLiveStatusTx(ctx context.Context, tx *sql.Tx, tournamentID string, to model.TournamentLiveStatus) error {
	const q = `UPDATE tournaments SET live_status = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, to, tournamentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// SetEndTimeTx records the tournament's actual end time.
func (r *TournamentRepo) SetEndTimeTx(ctx context.Context, tx *sql.Tx, tournamentID string) error {
	const q = `UPDATE tournaments SET end_time = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, tournamentID)
	return err
}

package repository

import (
	"context"
	"database/sql"

	"github.com/brunomoyse/pp-service/internal/model"
)

// EntryRepo provides operations on tournament_entries, the append-only
// money ledger. Every buy-in, rebuy and add-on is one row; the prize
// pool is always the sum of a tournament's rows and never stored
// separately.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// Create appends one ledger entry and queries the row back to populate
// its timestamp.
func (r *EntryRepo) Create(ctx context.Context, e *model.TournamentEntry) error {
	const q = `INSERT INTO tournament_entries
	           (id, tournament_id, user_id, entry_type, amount_cents, chips_received, recorded_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, e.ID, e.TournamentID, e.UserID, e.EntryType, e.AmountCents, e.ChipsReceived, e.RecordedBy); err != nil {
		return err
	}
	const sel = `SELECT created_at FROM tournament_entries WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(&e.CreatedAt)
}

// CreateTx is the transactional variant of Create, used when an entry
// is written alongside a registration transition (e.g. a buy-in
// recorded at check-in).
func (r *EntryRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.TournamentEntry) error {
	const q = `INSERT INTO tournament_entries
	           (id, tournament_id, user_id, entry_type, amount_cents, chips_received, recorded_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, e.ID, e.TournamentID, e.UserID, e.EntryType, e.AmountCents, e.ChipsReceived, e.RecordedBy); err != nil {
		return err
	}
	const sel = `SELECT created_at FROM tournament_entries WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, e.ID).Scan(&e.CreatedAt)
}

// ListByTournament returns a tournament's ledger in insertion order.
func (r *EntryRepo) ListByTournament(ctx context.Context, tournamentID string) ([]model.TournamentEntry, error) {
	const q = `SELECT id, tournament_id, user_id, entry_type, amount_cents, chips_received, recorded_by, created_at
	           FROM tournament_entries
	           WHERE tournament_id = ?
	           ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.TournamentEntry, 0)
	for rows.Next() {
		var e model.TournamentEntry
		var chips sql.NullInt64
		var recordedBy sql.NullString
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.UserID, &e.EntryType, &e.AmountCents, &chips, &recordedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		if chips.Valid {
			v := int(chips.Int64)
			e.ChipsReceived = &v
		}
		if recordedBy.Valid {
			v := recordedBy.String
			e.RecordedBy = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// PrizePool returns the tournament's total prize pool in cents: the
// sum over its ledger, zero when the ledger is empty.
func (r *EntryRepo) PrizePool(ctx context.Context, tournamentID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_cents), 0) FROM tournament_entries WHERE tournament_id = ?`
	var total int64
	err := r.db.QueryRowContext(ctx, q, tournamentID).Scan(&total)
	return total, err
}

// CountDistinctPlayers returns how many distinct players appear in the
// ledger. Used to pick a suitable payout template for the field size.
func (r *EntryRepo) CountDistinctPlayers(ctx context.Context, tournamentID string) (int, error) {
	const q = `SELECT COUNT(DISTINCT user_id) FROM tournament_entries WHERE tournament_id = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, tournamentID).Scan(&n)
	return n, err
}

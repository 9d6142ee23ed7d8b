package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brunomoyse/pp-service/internal/model"
)

// ClubTableRepo provides operations on club_tables and
// tournament_table_assignments. A physical table belongs to a club;
// linking it to a tournament creates (or reactivates) an assignment
// row. A table is in play for a tournament only while its assignment
// is active.
type ClubTableRepo struct {
	db *sql.DB
}

// NewClubTableRepo returns a new ClubTableRepo bound to the given database.
func NewClubTableRepo(db *sql.DB) *ClubTableRepo { return &ClubTableRepo{db: db} }

// Create inserts a new physical table for a club and queries the row
// back to populate defaults.
func (r *ClubTableRepo) Create(ctx context.Context, t *model.ClubTable) error {
	const q = `INSERT INTO club_tables (id, club_id, table_number, max_seats, is_active)
	           VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.ClubID, t.TableNumber, t.MaxSeats, t.IsActive); err != nil {
		return err
	}
	const sel = `SELECT id, club_id, table_number, max_seats, is_active, created_at, updated_at
	             FROM club_tables WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(
		&t.ID, &t.ClubID, &t.TableNumber, &t.MaxSeats, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
}

// GetByID returns a single table by primary key, or ErrTableNotFound.
func (r *ClubTableRepo) GetByID(ctx context.Context, tableID string) (*model.ClubTable, error) {
	const q = `SELECT id, club_id, table_number, max_seats, is_active, created_at, updated_at
	           FROM club_tables WHERE id = ?`
	var t model.ClubTable
	err := r.db.QueryRowContext(ctx, q, tableID).Scan(
		&t.ID, &t.ClubID, &t.TableNumber, &t.MaxSeats, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByClub returns all of a club's tables ordered by table number.
func (r *ClubTableRepo) ListByClub(ctx context.Context, clubID string) ([]model.ClubTable, error) {
	const q = `SELECT id, club_id, table_number, max_seats, is_active, created_at, updated_at
	           FROM club_tables WHERE club_id = ? ORDER BY table_number`
	rows, err := r.db.QueryContext(ctx, q, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.ClubTable, 0)
	for rows.Next() {
		var t model.ClubTable
		if err := rows.Scan(&t.ID, &t.ClubID, &t.TableNumber, &t.MaxSeats, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// AssignToTournament links a table to a tournament. Re-assigning a
// previously deactivated table reactivates the existing row instead of
// creating a new one, so the assignment keeps a stable identity across
// deactivation cycles.
func (r *ClubTableRepo) AssignToTournament(ctx context.Context, a *model.TournamentTableAssignment) error {
	const q = `INSERT INTO tournament_table_assignments
	           (id, tournament_id, club_table_id, is_active, assigned_at, max_seats_override)
	           VALUES (?, ?, ?, 1, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               is_active = 1,
	               deactivated_at = NULL,
	               assigned_at = VALUES(assigned_at),
	               max_seats_override = VALUES(max_seats_override)`
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, q, a.ID, a.TournamentID, a.ClubTableID, a.AssignedAt, a.MaxSeatsOverride); err != nil {
		return err
	}
	// The upsert may have kept an older row's id; read the row back by
	// its natural key.
	const sel = `SELECT id, tournament_id, club_table_id, is_active, assigned_at,
	                    deactivated_at, max_seats_override, created_at, updated_at
	             FROM tournament_table_assignments
	             WHERE tournament_id = ? AND club_table_id = ?`
	var deactivatedAt sql.NullTime
	var override sql.NullInt64
	err := r.db.QueryRowContext(ctx, sel, a.TournamentID, a.ClubTableID).Scan(
		&a.ID, &a.TournamentID, &a.ClubTableID, &a.IsActive, &a.AssignedAt,
		&deactivatedAt, &override, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if deactivatedAt.Valid {
		t := deactivatedAt.Time
		a.DeactivatedAt = &t
	}
	if override.Valid {
		v := int(override.Int64)
		a.MaxSeatsOverride = &v
	}
	return nil
}

// DeactivateTx deactivates a tournament's table assignment within a
// transaction. Callers must first verify that the table holds no
// current seat assignments (see SeatAssignmentRepo.CountCurrentByTableTx);
// this method only flips the link. ErrTableNotFound is returned when no
// active assignment exists.
func (r *ClubTableRepo) DeactivateTx(ctx context.Context, tx *sql.Tx, tournamentID, clubTableID string) error {
	const q = `UPDATE tournament_table_assignments
	           SET is_active = 0, deactivated_at = ?
	           WHERE tournament_id = ? AND club_table_id = ? AND is_active = 1`
	res, err := tx.ExecContext(ctx, q, time.Now().UTC(), tournamentID, clubTableID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// TournamentTable is a table in play for a tournament: the physical
// table joined with its assignment, with the effective seat count
// already resolved (per-tournament override, else the table default).
type TournamentTable struct {
	ClubTableID string    `json:"club_table_id"`
	TableNumber int       `json:"table_number"`
	MaxSeats    int       `json:"max_seats"`
	AssignedAt  time.Time `json:"assigned_at"`
}

const tournamentTableQuery = `SELECT ct.id, ct.table_number,
       COALESCE(tta.max_seats_override, ct.max_seats), tta.assigned_at
	FROM tournament_table_assignments tta
	JOIN club_tables ct ON ct.id = tta.club_table_id
	WHERE tta.tournament_id = ? AND tta.is_active = 1 AND ct.is_active = 1
	ORDER BY ct.table_number`

// ListActiveForTournament returns the tables currently in play for a
// tournament, ordered by table number.
func (r *ClubTableRepo) ListActiveForTournament(ctx context.Context, tournamentID string) ([]TournamentTable, error) {
	return scanTournamentTables(ctx, r.db, tournamentID)
}

// ListActiveForTournamentTx is the transactional variant of
// ListActiveForTournament, used when seating decisions and writes must
// observe the same set of tables.
func (r *ClubTableRepo) ListActiveForTournamentTx(ctx context.Context, tx *sql.Tx, tournamentID string) ([]TournamentTable, error) {
	return scanTournamentTables(ctx, tx, tournamentID)
}

func scanTournamentTables(ctx context.Context, q querier, tournamentID string) ([]TournamentTable, error) {
	rows, err := q.QueryContext(ctx, tournamentTableQuery, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]TournamentTable, 0)
	for rows.Next() {
		var t TournamentTable
		if err := rows.Scan(&t.ClubTableID, &t.TableNumber, &t.MaxSeats, &t.AssignedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

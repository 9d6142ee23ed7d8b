package repository

import (
	"context"
	"database/sql"

	"github.com/brunomoyse/pp-service/internal/model"
)

// ResultRepo provides operations on tournament_results. Results are
// written in bulk by the results-entry workflow; re-entering results
// replaces the whole set for the tournament within one transaction.
type ResultRepo struct {
	db *sql.DB
}

// NewResultRepo returns a new ResultRepo bound to the given database.
func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{db: db} }

// ReplaceTx deletes a tournament's existing results and bulk-inserts
// the given set within a transaction, so readers never observe a
// partial standings list.
func (r *ResultRepo) ReplaceTx(ctx context.Context, tx *sql.Tx, tournamentID string, results []model.TournamentResult) error {
	const del = `DELETE FROM tournament_results WHERE tournament_id = ?`
	if _, err := tx.ExecContext(ctx, del, tournamentID); err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}
	query := `INSERT INTO tournament_results
	          (id, tournament_id, user_id, final_position, prize_cents, points, notes) VALUES `
	args := make([]interface{}, 0, len(results)*7)
	for i, res := range results {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, res.ID, tournamentID, res.UserID, res.FinalPosition, res.PrizeCents, res.Points, res.Notes)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ResultDetail is a result row joined with the player's name for
// standings display.
type ResultDetail struct {
	model.TournamentResult
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
}

// ListByTournament returns a tournament's standings ordered by final
// position.
func (r *ResultRepo) ListByTournament(ctx context.Context, tournamentID string) ([]ResultDetail, error) {
	const q = `SELECT tr.id, tr.tournament_id, tr.user_id, tr.final_position, tr.prize_cents, tr.points, tr.notes, tr.created_at,
	                  u.first_name, u.last_name
	           FROM tournament_results tr
	           JOIN users u ON u.id = tr.user_id
	           WHERE tr.tournament_id = ?
	           ORDER BY tr.final_position`
	rows, err := r.db.QueryContext(ctx, q, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]ResultDetail, 0)
	for rows.Next() {
		var d ResultDetail
		var notes, lastName sql.NullString
		if err := rows.Scan(
			&d.ID, &d.TournamentID, &d.UserID, &d.FinalPosition, &d.PrizeCents, &d.Points, &notes, &d.CreatedAt,
			&d.FirstName, &lastName,
		); err != nil {
			return nil, err
		}
		if notes.Valid {
			v := notes.String
			d.Notes = &v
		}
		if lastName.Valid {
			v := lastName.String
			d.LastName = &v
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/brunomoyse/pp-service/internal/model"
)

// StructureRepo provides operations on tournament_structures, the
// blind-level schedule of a tournament. Levels are 1-based and
// contiguous per tournament; the whole schedule is replaced as a unit
// rather than edited level by level.
type StructureRepo struct {
	db *sql.DB
}

// NewStructureRepo returns a new StructureRepo bound to the given database.
func NewStructureRepo(db *sql.DB) *StructureRepo { return &StructureRepo{db: db} }

const structureCols = `id, tournament_id, level_number, small_blind, big_blind, ante,
       duration_minutes, is_break, break_duration_minutes, created_at`

func scanStructure(row interface{ Scan(...interface{}) error }) (*model.TournamentStructure, error) {
	var s model.TournamentStructure
	var breakDur sql.NullInt64
	err := row.Scan(
		&s.ID, &s.TournamentID, &s.LevelNumber, &s.SmallBlind, &s.BigBlind, &s.Ante,
		&s.DurationMinutes, &s.IsBreak, &breakDur, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if breakDur.Valid {
		v := int(breakDur.Int64)
		s.BreakDurationMinutes = &v
	}
	return &s, nil
}

// ReplaceTx swaps a tournament's entire blind schedule within a
// transaction: existing levels are removed and the given ones inserted
// in a single statement. Passing an empty slice clears the schedule.
func (r *StructureRepo) ReplaceTx(ctx context.Context, tx *sql.Tx, tournamentID string, levels []model.TournamentStructure) error {
	const del = `DELETE FROM tournament_structures WHERE tournament_id = ?`
	if _, err := tx.ExecContext(ctx, del, tournamentID); err != nil {
		return err
	}
	if len(levels) == 0 {
		return nil
	}
	query := `INSERT INTO tournament_structures
	          (id, tournament_id, level_number, small_blind, big_blind, ante, duration_minutes, is_break, break_duration_minutes) VALUES `
	args := make([]interface{}, 0, len(levels)*9)
	for i, s := range levels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, s.ID, tournamentID, s.LevelNumber, s.SmallBlind, s.BigBlind,
			s.Ante, s.DurationMinutes, s.IsBreak, s.BreakDurationMinutes)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByTournament returns the full schedule ordered by level number.
func (r *StructureRepo) ListByTournament(ctx context.Context, tournamentID string) ([]model.TournamentStructure, error) {
	const q = `SELECT ` + structureCols + `
	           FROM tournament_structures
	           WHERE tournament_id = ?
	           ORDER BY level_number`
	rows, err := r.db.QueryContext(ctx, q, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	levels := make([]model.TournamentStructure, 0)
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return levels, nil
}

// GetLevel returns one level of the schedule, or ErrStructureNotFound.
func (r *StructureRepo) GetLevel(ctx context.Context, tournamentID string, level int) (*model.TournamentStructure, error) {
	const q = `SELECT ` + structureCols + `
	           FROM tournament_structures
	           WHERE tournament_id = ? AND level_number = ?`
	s, err := scanStructure(r.db.QueryRowContext(ctx, q, tournamentID, level))
	if err == sql.ErrNoRows {
		return nil, ErrStructureNotFound
	}
	return s, err
}

// GetLevelTx is the transactional variant of GetLevel, used by clock
// transitions that need the level duration inside the clock's locked
// transaction.
func (r *StructureRepo) GetLevelTx(ctx context.Context, tx *sql.Tx, tournamentID string, level int) (*model.TournamentStructure, error) {
	const q = `SELECT ` + structureCols + `
	           FROM tournament_structures
	           WHERE tournament_id = ? AND level_number = ?`
	s, err := scanStructure(tx.QueryRowContext(ctx, q, tournamentID, level))
	if err == sql.ErrNoRows {
		return nil, ErrStructureNotFound
	}
	return s, err
}

// MaxLevelTx returns the highest defined level number for a tournament.
// A tournament without a schedule reports level 0.
func (r *StructureRepo) MaxLevelTx(ctx context.Context, tx *sql.Tx, tournamentID string) (int, error) {
	const q = `SELECT COALESCE(MAX(level_number), 0) FROM tournament_structures WHERE tournament_id = ?`
	var max int
	err := tx.QueryRowContext(ctx, q, tournamentID).Scan(&max)
	return max, err
}

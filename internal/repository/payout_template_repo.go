package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/brunomoyse/pp-service/internal/model"
)

// PayoutTemplateRepo provides operations on payout_templates. The
// (position, percentage) structure is stored as a JSON column; it is
// decoded on read and re-validated by the payout calculator every time
// it is used, since rows may have been edited since creation.
type PayoutTemplateRepo struct {
	db *sql.DB
}

// NewPayoutTemplateRepo returns a new PayoutTemplateRepo bound to the given database.
func NewPayoutTemplateRepo(db *sql.DB) *PayoutTemplateRepo { return &PayoutTemplateRepo{db: db} }

const payoutTemplateCols = `id, name, description, min_players, max_players, payout_structure, created_at, updated_at`

func scanPayoutTemplate(row interface{ Scan(...interface{}) error }) (*model.PayoutTemplate, error) {
	var t model.PayoutTemplate
	var description sql.NullString
	var maxPlayers sql.NullInt64
	var structure []byte
	err := row.Scan(&t.ID, &t.Name, &description, &t.MinPlayers, &maxPlayers, &structure, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		v := description.String
		t.Description = &v
	}
	if maxPlayers.Valid {
		v := int(maxPlayers.Int64)
		t.MaxPlayers = &v
	}
	if err := json.Unmarshal(structure, &t.Structure); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new template and queries the row back to populate
// timestamps.
func (r *PayoutTemplateRepo) Create(ctx context.Context, t *model.PayoutTemplate) error {
	structure, err := json.Marshal(t.Structure)
	if err != nil {
		return err
	}
	const q = `INSERT INTO payout_templates (id, name, description, min_players, max_players, payout_structure)
	           VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.Name, t.Description, t.MinPlayers, t.MaxPlayers, structure); err != nil {
		return err
	}
	const sel = `SELECT ` + payoutTemplateCols + ` FROM payout_templates WHERE id = ?`
	stored, err := scanPayoutTemplate(r.db.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}

// GetByID returns a template by primary key, or ErrTemplateNotFound.
func (r *PayoutTemplateRepo) GetByID(ctx context.Context, templateID string) (*model.PayoutTemplate, error) {
	const q = `SELECT ` + payoutTemplateCols + ` FROM payout_templates WHERE id = ?`
	t, err := scanPayoutTemplate(r.db.QueryRowContext(ctx, q, templateID))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// List returns all templates ordered by their minimum field size.
func (r *PayoutTemplateRepo) List(ctx context.Context) ([]model.PayoutTemplate, error) {
	const q = `SELECT ` + payoutTemplateCols + ` FROM payout_templates ORDER BY min_players, name`
	return r.listTemplates(ctx, q)
}

// ListForPlayerCount returns the templates whose player range covers
// the given field size, narrowest range first. A NULL max_players
// means the template is open-ended.
func (r *PayoutTemplateRepo) ListForPlayerCount(ctx context.Context, players int) ([]model.PayoutTemplate, error) {
	const q = `SELECT ` + payoutTemplateCols + `
	           FROM payout_templates
	           WHERE min_players <= ? AND (max_players IS NULL OR max_players >= ?)
	           ORDER BY COALESCE(max_players - min_players, 1000000), min_players`
	return r.listTemplates(ctx, q, players, players)
}

// Update replaces a template's mutable fields. ErrTemplateNotFound is
// returned when the row does not exist.
func (r *PayoutTemplateRepo) Update(ctx context.Context, t *model.PayoutTemplate) error {
	structure, err := json.Marshal(t.Structure)
	if err != nil {
		return err
	}
	const q = `UPDATE payout_templates
	           SET name = ?, description = ?, min_players = ?, max_players = ?, payout_structure = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Description, t.MinPlayers, t.MaxPlayers, structure, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no change" from "no row".
		const sel = `SELECT 1 FROM payout_templates WHERE id = ?`
		var one int
		if err := r.db.QueryRowContext(ctx, sel, t.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrTemplateNotFound
		} else if err != nil {
			return err
		}
	}
	const sel = `SELECT ` + payoutTemplateCols + ` FROM payout_templates WHERE id = ?`
	stored, err := scanPayoutTemplate(r.db.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}

// Delete removes a template. Snapshots computed from it keep their own
// copy of the positions, so deletion never rewrites history.
func (r *PayoutTemplateRepo) Delete(ctx context.Context, templateID string) error {
	const q = `DELETE FROM payout_templates WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, templateID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *PayoutTemplateRepo) listTemplates(ctx context.Context, query string, args ...interface{}) ([]model.PayoutTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	templates := make([]model.PayoutTemplate, 0)
	for rows.Next() {
		t, err := scanPayoutTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

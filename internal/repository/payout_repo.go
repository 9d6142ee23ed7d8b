package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/brunomoyse/pp-service/internal/model"
)

// PayoutRepo provides operations on tournament_payouts (the cached
// payout snapshot, one row per tournament) and player_deals. The
// snapshot is derived data: it may be recomputed and overwritten at
// any time, which is why writes are upserts keyed on the tournament.
type PayoutRepo struct {
	db *sql.DB
}

// NewPayoutRepo returns a new PayoutRepo bound to the given database.
func NewPayoutRepo(db *sql.DB) *PayoutRepo { return &PayoutRepo{db: db} }

// Upsert stores a tournament's payout snapshot, replacing any previous
// one. The record's timestamps are populated by querying the row back.
func (r *PayoutRepo) Upsert(ctx context.Context, p *model.TournamentPayout) error {
	positions, err := json.Marshal(p.Positions)
	if err != nil {
		return err
	}
	const q = `INSERT INTO tournament_payouts
	           (id, tournament_id, template_id, player_count, total_prize_pool_cents, payout_positions)
	           VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               template_id = VALUES(template_id),
	               player_count = VALUES(player_count),
	               total_prize_pool_cents = VALUES(total_prize_pool_cents),
	               payout_positions = VALUES(payout_positions)`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.TournamentID, p.TemplateID, p.PlayerCount, p.TotalPrizePoolCents, positions); err != nil {
		return err
	}
	return r.getInto(ctx, p.TournamentID, p)
}

// Get returns a tournament's payout snapshot, or ErrPayoutNotFound.
func (r *PayoutRepo) Get(ctx context.Context, tournamentID string) (*model.TournamentPayout, error) {
	var p model.TournamentPayout
	if err := r.getInto(ctx, tournamentID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepo) getInto(ctx context.Context, tournamentID string, p *model.TournamentPayout) error {
	const q = `SELECT id, tournament_id, template_id, player_count, total_prize_pool_cents, payout_positions, created_at, updated_at
	           FROM tournament_payouts
	           WHERE tournament_id = ?`
	var templateID sql.NullString
	var positions []byte
	err := r.db.QueryRowContext(ctx, q, tournamentID).Scan(
		&p.ID, &p.TournamentID, &templateID, &p.PlayerCount, &p.TotalPrizePoolCents,
		&positions, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return ErrPayoutNotFound
	}
	if err != nil {
		return err
	}
	p.TemplateID = nil
	if templateID.Valid {
		v := templateID.String
		p.TemplateID = &v
	}
	return json.Unmarshal(positions, &p.Positions)
}

// CreateDealTx records a player deal within a transaction. Deals are
// immutable once written; the results-entry workflow creates at most
// one per tournament.
func (r *PayoutRepo) CreateDealTx(ctx context.Context, tx *sql.Tx, d *model.PlayerDeal) error {
	affected, err := json.Marshal(d.AffectedPositions)
	if err != nil {
		return err
	}
	var custom interface{}
	if d.CustomPayouts != nil {
		b, err := json.Marshal(d.CustomPayouts)
		if err != nil {
			return err
		}
		custom = b
	}
	const q = `INSERT INTO player_deals
	           (id, tournament_id, deal_type, affected_positions, custom_payouts, total_amount_cents, notes, created_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, d.ID, d.TournamentID, d.DealType, affected, custom, d.TotalAmountCents, d.Notes, d.CreatedBy); err != nil {
		return err
	}
	const sel = `SELECT created_at FROM player_deals WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, d.ID).Scan(&d.CreatedAt)
}

// GetDeal returns the most recent deal recorded for a tournament, or
// nil when none exists.
func (r *PayoutRepo) GetDeal(ctx context.Context, tournamentID string) (*model.PlayerDeal, error) {
	const q = `SELECT id, tournament_id, deal_type, affected_positions, custom_payouts, total_amount_cents, notes, created_by, created_at
	           FROM player_deals
	           WHERE tournament_id = ?
	           ORDER BY created_at DESC
	           LIMIT 1`
	var d model.PlayerDeal
	var affected []byte
	var custom []byte
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, q, tournamentID).Scan(
		&d.ID, &d.TournamentID, &d.DealType, &affected, &custom, &d.TotalAmountCents, &notes, &d.CreatedBy, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(affected, &d.AffectedPositions); err != nil {
		return nil, err
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &d.CustomPayouts); err != nil {
			return nil, err
		}
	}
	if notes.Valid {
		v := notes.String
		d.Notes = &v
	}
	return &d, nil
}
